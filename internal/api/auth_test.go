package api

import (
	"net/http"
	"testing"
)

func TestLogin(t *testing.T) {
	_, router, db := testServer(t)
	seedUser(t, db, "alice", "correct-password", "player", false)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "correct-password",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	decode(t, rec, &body)
	if body["username"] != "alice" {
		t.Errorf("username = %v, want alice", body["username"])
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("response must not contain the password hash")
	}

	var sessionSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionSet = true
			if !c.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
			if c.SameSite != http.SameSiteLaxMode {
				t.Error("session cookie should be SameSite=Lax")
			}
			if c.Path != "/" {
				t.Errorf("session cookie path = %q, want /", c.Path)
			}
			if c.Secure {
				t.Error("session cookie should not be Secure over plain HTTP")
			}
			if c.MaxAge != testMaxAgeDays*24*60*60 {
				t.Errorf("session cookie MaxAge = %d, want %d", c.MaxAge, testMaxAgeDays*24*60*60)
			}
		}
	}
	if !sessionSet {
		t.Error("login should set the session cookie")
	}
}

func TestLogin_SecureCookieBehindProxy(t *testing.T) {
	_, router, db := testServer(t)
	seedUser(t, db, "alice", "correct-password", "player", false)

	rec := doJSONWithHeader(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "correct-password",
	}, nil, "X-Forwarded-Proto", "https")
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d", rec.Code)
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && !c.Secure {
			t.Error("session cookie should be Secure when the proxy reports https")
		}
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	_, router, db := testServer(t)
	seedUser(t, db, "alice", "correct-password", "player", false)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"username": "alice", "password": "wrong"}},
		{"unknown user", map[string]string{"username": "mallory", "password": "whatever"}},
	}

	var responses []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", tt.body, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("login returned %d, want 401", rec.Code)
			}
			responses = append(responses, rec.Body.String())
		})
	}

	// Unknown accounts and wrong passwords are indistinguishable.
	if len(responses) == 2 && responses[0] != responses[1] {
		t.Error("login error responses should be identical for unknown user and wrong password")
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	_, router, _ := testServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("login with empty body returned %d, want 400", rec.Code)
	}
}

func TestMe(t *testing.T) {
	_, router, db := testServer(t)
	seedUser(t, db, "alice", "correct-password", "player", false)

	session := login(t, router, "alice", "correct-password")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("me returned %d", rec.Code)
	}

	var body map[string]any
	decode(t, rec, &body)
	if body["username"] != "alice" {
		t.Errorf("username = %v, want alice", body["username"])
	}

	// Without a session the endpoint refuses.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me without session returned %d, want 401", rec.Code)
	}

	// A garbage cookie refuses identically.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, &http.Cookie{
		Name: sessionCookieName, Value: "not-a-token",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me with garbage session returned %d, want 401", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	_, router, db := testServer(t)
	seedUser(t, db, "alice", "correct-password", "player", false)

	session := login(t, router, "alice", "correct-password")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", nil, session)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout returned %d", rec.Code)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout should expire the session cookie")
	}
}

func TestChangePassword_ForcedFlow(t *testing.T) {
	_, router, db := testServer(t)
	seedUser(t, db, "alice", "temp-pass-1", "player", true)

	session := login(t, router, "alice", "temp-pass-1")

	// Sheet access is blocked while the flag is set.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/character/", nil, session)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("character during forced change returned %d, want 403", rec.Code)
	}
	var apiErr Error
	decode(t, rec, &apiErr)
	if apiErr.Code != ErrCodePasswordChange {
		t.Errorf("error code = %q, want %q", apiErr.Code, ErrCodePasswordChange)
	}

	// /auth/me stays reachable so the client can see the flag.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("me during forced change returned %d, want 200", rec.Code)
	}
	var me map[string]any
	decode(t, rec, &me)
	if me["must_change_password"] != true {
		t.Error("me should report must_change_password = true")
	}

	// The change endpoint is the exit.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"new_password":     "brand-new-password",
		"confirm_password": "brand-new-password",
	}, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("change-password returned %d: %s", rec.Code, rec.Body.String())
	}

	var newSession *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			newSession = c
		}
	}
	if newSession == nil {
		t.Fatal("change-password should rotate the session cookie")
	}

	// Sheet access works with the fresh session.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/character/", nil, newSession)
	if rec.Code != http.StatusOK {
		t.Errorf("character after change returned %d, want 200", rec.Code)
	}

	// The old temp password no longer logs in; the new one does.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "temp-pass-1",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with old password returned %d, want 401", rec.Code)
	}
	login(t, router, "alice", "brand-new-password")
}

func TestChangePassword_Validation(t *testing.T) {
	_, router, db := testServer(t)
	seedUser(t, db, "alice", "correct-password", "player", false)
	session := login(t, router, "alice", "correct-password")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"too short", map[string]string{"new_password": "short", "confirm_password": "short"}},
		{"mismatch", map[string]string{"new_password": "long-enough-1", "confirm_password": "long-enough-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/change-password", tt.body, session)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("change-password returned %d, want 400", rec.Code)
			}
		})
	}

	// Unauthenticated change is refused.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"new_password": "long-enough-1", "confirm_password": "long-enough-1",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("change-password without session returned %d, want 401", rec.Code)
	}
}
