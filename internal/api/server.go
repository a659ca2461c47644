package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/chronicle-core/internal/audit"
	"github.com/nerrad567/chronicle-core/internal/auth"
	"github.com/nerrad567/chronicle-core/internal/infrastructure/config"
	"github.com/nerrad567/chronicle-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Security   config.SecurityConfig
	Logger     *logging.Logger
	Gate       *auth.Gate
	Users      auth.UserRepository
	Characters auth.CharacterRepository
	Audit      audit.Repository
	Version    string
}

// Server is the HTTP API server for Chronicle Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	gate       *auth.Gate
	users      auth.UserRepository
	characters auth.CharacterRepository
	audit      audit.Repository
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("auth gate is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Characters == nil {
		return nil, fmt.Errorf("character repository is required")
	}
	// Audit is optional; endpoints still function without a trail.

	return &Server{
		cfg:        deps.Config,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		gate:       deps.Gate,
		users:      deps.Users,
		characters: deps.Characters,
		audit:      deps.Audit,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background
// goroutine. The server is stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds
// for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
