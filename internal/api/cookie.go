package api

import (
	"net/http"

	"github.com/nerrad567/chronicle-core/internal/auth"
)

// sessionCookieName is the cookie carrying the session token.
const sessionCookieName = "chronicle_session"

// secondsPerDay converts the configured max age to cookie seconds.
const secondsPerDay = 24 * 60 * 60

// setSessionCookie writes the session token as an HttpOnly cookie.
//
// The Secure flag follows the transport the request actually arrived
// on: a TLS-terminating proxy is honoured via X-Forwarded-Proto, so
// cookies set behind one are still marked Secure.
func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.secCfg.SessionMaxAgeDays * secondsPerDay,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   auth.SecureTransport(r),
	})
}

// clearSessionCookie expires the session cookie.
func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   auth.SecureTransport(r),
	})
}

// sessionToken extracts the session token from the request cookie.
// Returns "" when no session is present.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
