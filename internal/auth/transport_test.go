package auth

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
)

func TestSecureTransport(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		tls       bool
		want      bool
	}{
		{"forwarded https", "https", false, true},
		{"forwarded https uppercase", "HTTPS", false, true},
		{"forwarded https with spaces", "  https  ", false, true},
		{"forwarded https first of list", "https, http", false, true},
		{"forwarded http first of list", "http, https", false, false},
		{"forwarded http", "http", false, false},
		{"forwarded garbage", "wss", false, false},
		{"forwarded header wins over tls", "http", true, false},
		{"no header plain connection", "", false, false},
		{"no header tls connection", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "http://example.test/login", nil)
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}

			if got := SecureTransport(r); got != tt.want {
				t.Errorf("SecureTransport() = %v, want %v", got, tt.want)
			}
		})
	}
}
