package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes. Session checks happen in the handlers through the
	// auth gate, so the forced-change redirect can distinguish endpoints
	// that stay reachable from those that don't.
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Session endpoints
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)
		r.Post("/auth/change-password", s.handleChangePassword)

		// Player's own character sheet
		r.Route("/character", func(r chi.Router) {
			r.Get("/", s.handleGetOwnCharacter)
			r.Put("/", s.handleUpdateOwnCharacter)
		})

		// Master endpoints
		r.Route("/players", func(r chi.Router) {
			r.Get("/", s.handleListPlayers)
			r.Post("/", s.handleCreatePlayer)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.handleDeletePlayer)
				r.Post("/reset-password", s.handleResetPlayerPassword)
				r.Get("/character", s.handleGetPlayerCharacter)
				r.Put("/character", s.handleUpdatePlayerCharacter)
			})
		})

		// Audit trail (master only)
		r.Get("/audit", s.handleListAudit)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
