package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/chronicle-core/internal/audit"
	"github.com/nerrad567/chronicle-core/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// changePasswordRequest is the request body for POST /auth/change-password.
type changePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// handleLogin verifies credentials and establishes a session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, token, err := s.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid username or password")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	s.setSessionCookie(w, r, token)
	s.recordAudit(r.Context(), user, audit.ActionLogin, "", "")

	writeJSON(w, http.StatusOK, user)
}

// handleLogout clears the session cookie. The token itself stays valid
// until its age window lapses; logout is a client-side affair.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the logged-in account.
//
// Uses Authenticate rather than Require so the endpoint stays
// reachable during a forced password change - the client needs the
// must_change_password flag to route to the change screen.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.gate.Authenticate(r.Context(), sessionToken(r))
	if err != nil {
		writeUnauthorized(w, "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleChangePassword replaces the account's credential and rotates
// the session cookie. This is the only exit from the forced-change
// state, so it authenticates without the lifecycle check.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := s.gate.Authenticate(r.Context(), sessionToken(r))
	if err != nil {
		writeUnauthorized(w, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, err := s.gate.ChangePassword(r.Context(), user, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "password must be at least 8 characters")
		case errors.Is(err, auth.ErrPasswordMismatch):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "password confirmation does not match")
		default:
			s.logger.Error("password change failed", "error", err, "user_id", user.ID)
			writeInternalError(w, "password change failed")
		}
		return
	}

	s.setSessionCookie(w, r, token)
	s.recordAudit(r.Context(), user, audit.ActionChangePassword, "", "")

	writeJSON(w, http.StatusOK, user)
}

// recordAudit writes an audit entry, logging rather than failing the
// request if the trail is unavailable.
func (s *Server) recordAudit(ctx context.Context, actor *auth.User, action, targetID, detail string) {
	if s.audit == nil {
		return
	}
	entry := &audit.Entry{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		Action:        action,
		TargetID:      targetID,
		Detail:        detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("recording audit entry", "error", err, "action", action)
	}
}
