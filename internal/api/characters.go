package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/chronicle-core/internal/audit"
	"github.com/nerrad567/chronicle-core/internal/auth"
)

// sheetRequest carries the mutable character sheet fields for PUT.
// Attribute and pool values outside their bounds are clamped, and an
// unknown personality falls back to the default rather than erroring.
type sheetRequest struct {
	Name        string `json:"name"`
	Age         string `json:"age"`
	Occupation  string `json:"occupation"`
	Level       string `json:"level"`
	Affiliation string `json:"affiliation"`
	Personality string `json:"personality"`

	Heroism   int `json:"heroism"`
	Agility   int `json:"agility"`
	Intellect int `json:"intellect"`
	Strength  int `json:"strength"`
	Willpower int `json:"willpower"`
	Vigor     int `json:"vigor"`

	HP         int `json:"hp"`
	HeroPoints int `json:"hero_points"`

	Notes         string `json:"notes"`
	InventoryText string `json:"inventory_text"`
	SkillsText    string `json:"skills_text"`
}

// apply copies the request fields onto the stored sheet, leaving
// identity and timestamps alone.
func (req *sheetRequest) apply(c *auth.Character) {
	c.Name = req.Name
	c.Age = req.Age
	c.Occupation = req.Occupation
	c.Level = req.Level
	c.Affiliation = req.Affiliation
	c.Personality = req.Personality
	c.Heroism = req.Heroism
	c.Agility = req.Agility
	c.Intellect = req.Intellect
	c.Strength = req.Strength
	c.Willpower = req.Willpower
	c.Vigor = req.Vigor
	c.HP = req.HP
	c.HeroPoints = req.HeroPoints
	c.Notes = req.Notes
	c.InventoryText = req.InventoryText
	c.SkillsText = req.SkillsText
}

// requirePlayer resolves the session as a player account.
func (s *Server) requirePlayer(w http.ResponseWriter, r *http.Request) *auth.User {
	user, err := s.gate.Require(r.Context(), sessionToken(r), auth.RequirePlayer)
	switch {
	case err == nil:
		return user
	case errors.Is(err, auth.ErrMustChangePassword):
		writeError(w, http.StatusForbidden, ErrCodePasswordChange, "password change required")
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, "player role required")
	default:
		writeUnauthorized(w, "not authenticated")
	}
	return nil
}

// handleGetOwnCharacter returns the player's sheet, provisioning it on
// first access.
func (s *Server) handleGetOwnCharacter(w http.ResponseWriter, r *http.Request) {
	user := s.requirePlayer(w, r)
	if user == nil {
		return
	}

	character, err := s.characters.GetOrCreate(r.Context(), user)
	if err != nil {
		s.logger.Error("loading character", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to load character")
		return
	}

	writeJSON(w, http.StatusOK, character)
}

// handleUpdateOwnCharacter replaces the mutable fields of the player's
// sheet.
func (s *Server) handleUpdateOwnCharacter(w http.ResponseWriter, r *http.Request) {
	user := s.requirePlayer(w, r)
	if user == nil {
		return
	}

	var req sheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	character, err := s.characters.GetOrCreate(r.Context(), user)
	if err != nil {
		s.logger.Error("loading character", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to load character")
		return
	}

	req.apply(character)
	if err := s.characters.Update(r.Context(), character); err != nil {
		s.logger.Error("updating character", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to update character")
		return
	}

	writeJSON(w, http.StatusOK, character)
}

// handleGetPlayerCharacter returns a player's sheet to the master,
// provisioning it if the player has never logged in.
func (s *Server) handleGetPlayerCharacter(w http.ResponseWriter, r *http.Request) {
	_, target := s.resolveTarget(w, r)
	if target == nil {
		return
	}

	character, err := s.characters.GetOrCreate(r.Context(), target)
	if err != nil {
		s.logger.Error("loading character", "error", err, "user_id", target.ID)
		writeInternalError(w, "failed to load character")
		return
	}

	writeJSON(w, http.StatusOK, character)
}

// handleUpdatePlayerCharacter lets the master edit a player's sheet
// on their behalf.
func (s *Server) handleUpdatePlayerCharacter(w http.ResponseWriter, r *http.Request) {
	master, target := s.resolveTarget(w, r)
	if target == nil {
		return
	}

	var req sheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	character, err := s.characters.GetOrCreate(r.Context(), target)
	if err != nil {
		s.logger.Error("loading character", "error", err, "user_id", target.ID)
		writeInternalError(w, "failed to load character")
		return
	}

	req.apply(character)
	if err := s.characters.Update(r.Context(), character); err != nil {
		s.logger.Error("updating character", "error", err, "user_id", target.ID)
		writeInternalError(w, "failed to update character")
		return
	}

	s.recordAudit(r.Context(), master, audit.ActionUpdateSheet, target.ID, character.Name)

	writeJSON(w, http.StatusOK, character)
}
