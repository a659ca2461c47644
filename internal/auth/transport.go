package auth

import (
	"net/http"
	"strings"
)

// forwardedProtoHeader carries the original scheme when the service sits
// behind a reverse proxy that terminates TLS and forwards over plain HTTP.
const forwardedProtoHeader = "X-Forwarded-Proto"

// SecureTransport reports whether the request reached the client over
// HTTPS, preferring the forwarded-protocol header over the connection's
// own state.
//
// The result decides whether a session cookie is marked Secure. Marking
// it Secure on a plain channel locks clients out entirely (the cookie is
// never sent back); leaving it insecure on a TLS-terminated deployment
// exposes tokens to downgrade interception.
func SecureTransport(r *http.Request) bool {
	if proto := r.Header.Get(forwardedProtoHeader); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		return strings.EqualFold(strings.TrimSpace(first), "https")
	}
	return r.TLS != nil
}
