package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/chronicle-core/internal/audit"
	"github.com/nerrad567/chronicle-core/internal/auth"
)

// createPlayerRequest is the request body for POST /players.
type createPlayerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"` // optional; a temp password is generated if empty
}

// createPlayerResponse includes the generated temp password exactly
// once; it is never stored or retrievable later.
type createPlayerResponse struct {
	*auth.User
	TempPassword string `json:"temp_password,omitempty"`
}

// requireMaster resolves the session as a master account, writing the
// appropriate error response on failure.
func (s *Server) requireMaster(w http.ResponseWriter, r *http.Request) *auth.User {
	user, err := s.gate.Require(r.Context(), sessionToken(r), auth.RequireMaster)
	switch {
	case err == nil:
		return user
	case errors.Is(err, auth.ErrMustChangePassword):
		writeError(w, http.StatusForbidden, ErrCodePasswordChange, "password change required")
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, "master role required")
	default:
		writeUnauthorized(w, "not authenticated")
	}
	return nil
}

// handleListPlayers returns all player accounts.
func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	if s.requireMaster(w, r) == nil {
		return
	}

	players, err := s.users.ListByRole(r.Context(), auth.RolePlayer)
	if err != nil {
		s.logger.Error("listing players", "error", err)
		writeInternalError(w, "failed to list players")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"players": players,
		"count":   len(players),
	})
}

// handleCreatePlayer creates a player account. The account starts in
// the forced-change state so the temp password is replaced on first
// login.
func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	master := s.requireMaster(w, r)
	if master == nil {
		return
	}

	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidUsername(req.Username) {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "username must be 1-64 characters: letters, digits, dots, hyphens, underscores")
		return
	}

	password := req.Password
	var tempPassword string
	if password == "" {
		var err error
		tempPassword, err = auth.GenerateTempPassword()
		if err != nil {
			s.logger.Error("generating temp password", "error", err)
			writeInternalError(w, "failed to create player")
			return
		}
		password = tempPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		writeInternalError(w, "failed to create player")
		return
	}

	user := &auth.User{
		Username:           req.Username,
		PasswordHash:       hash,
		Role:               auth.RolePlayer,
		MustChangePassword: true,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrUsernameExists) {
			writeConflict(w, "username already exists")
			return
		}
		s.logger.Error("creating player", "error", err)
		writeInternalError(w, "failed to create player")
		return
	}

	s.recordAudit(r.Context(), master, audit.ActionCreateUser, user.ID, user.Username)

	writeJSON(w, http.StatusCreated, createPlayerResponse{
		User:         user,
		TempPassword: tempPassword,
	})
}

// handleDeletePlayer removes a player account. The character sheet
// goes with it via the foreign key cascade.
func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	master, target := s.resolveTarget(w, r)
	if target == nil {
		return
	}

	if err := s.users.Delete(r.Context(), target.ID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "player not found")
			return
		}
		s.logger.Error("deleting player", "error", err, "target_id", target.ID)
		writeInternalError(w, "failed to delete player")
		return
	}

	s.recordAudit(r.Context(), master, audit.ActionDeleteUser, target.ID, target.Username)

	w.WriteHeader(http.StatusNoContent)
}

// handleResetPlayerPassword issues a fresh temp password and forces a
// change on next login. The plaintext is returned once for out-of-band
// delivery.
func (s *Server) handleResetPlayerPassword(w http.ResponseWriter, r *http.Request) {
	master, target := s.resolveTarget(w, r)
	if target == nil {
		return
	}

	temp, err := auth.ResetPassword(r.Context(), s.users, target)
	if err != nil {
		s.logger.Error("resetting player password", "error", err, "target_id", target.ID)
		writeInternalError(w, "failed to reset password")
		return
	}

	s.recordAudit(r.Context(), master, audit.ActionResetPassword, target.ID, target.Username)

	writeJSON(w, http.StatusOK, map[string]any{
		"temp_password": temp,
	})
}

// resolveTarget authenticates the session as a master acting on the
// player named in the URL, writing the error response on failure.
func (s *Server) resolveTarget(w http.ResponseWriter, r *http.Request) (master, target *auth.User) {
	targetID := chi.URLParam(r, "id")

	master, target, err := s.gate.OnBehalfOf(r.Context(), sessionToken(r), targetID)
	switch {
	case err == nil:
		return master, target
	case errors.Is(err, auth.ErrUserNotFound):
		writeNotFound(w, "player not found")
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, "master role required")
	default:
		writeUnauthorized(w, "not authenticated")
	}
	return nil, nil
}

// handleListAudit returns the audit trail, master only.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.requireMaster(w, r) == nil {
		return
	}
	if s.audit == nil {
		writeNotFound(w, "audit trail not enabled")
		return
	}

	filter := audit.Filter{
		Action:   r.URL.Query().Get("action"),
		ActorID:  r.URL.Query().Get("actor_id"),
		TargetID: r.URL.Query().Get("target_id"),
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
