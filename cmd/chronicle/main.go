// Chronicle Core - Campaign Companion Backend
//
// This is the main entry point for the Chronicle Core application.
// Chronicle is the session and access-control backend for a tabletop
// campaign companion:
//   - Cookie-based sessions with signed tokens
//   - Master-administered player accounts with forced password rotation
//   - Lazily provisioned character sheets, one per player
//
// For the data model, see the migrations under migrations/.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/chronicle-core/migrations"

	"github.com/nerrad567/chronicle-core/internal/api"
	"github.com/nerrad567/chronicle-core/internal/audit"
	"github.com/nerrad567/chronicle-core/internal/auth"
	"github.com/nerrad567/chronicle-core/internal/infrastructure/config"
	"github.com/nerrad567/chronicle-core/internal/infrastructure/database"
	"github.com/nerrad567/chronicle-core/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Chronicle Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Apply the configured password hashing work factor before any
	// account is touched.
	auth.SetHashIterations(cfg.Security.PBKDF2Iterations)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	users := auth.NewUserRepository(db.DB)
	characters := auth.NewCharacterRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Seed well-known accounts
	if seedErr := auth.SeedAccounts(ctx, users, seedAccounts(cfg), log.Logger); seedErr != nil {
		return fmt.Errorf("seeding accounts: %w", seedErr)
	}

	// Session codec and auth gate
	codec := auth.NewSessionCodec(cfg.Security.SessionSecret)
	gate := auth.NewGate(codec, users, cfg.SessionMaxAge())

	// Start API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Security:   cfg.Security,
		Logger:     log,
		Gate:       gate,
		Users:      users,
		Characters: characters,
		Audit:      auditRepo,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
		"tls", cfg.API.TLS.Enabled,
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (graceful drain)
	// 2. Database

	log.Info("Chronicle Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CHRONICLE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CHRONICLE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// seedAccounts converts configured seed entries to auth seeds.
func seedAccounts(cfg *config.Config) []auth.SeedAccount {
	seeds := make([]auth.SeedAccount, 0, len(cfg.Seed.Accounts))
	for _, a := range cfg.Seed.Accounts {
		seeds = append(seeds, auth.SeedAccount{
			Username:           a.Username,
			Password:           a.Password,
			Role:               auth.Role(a.Role),
			MustChangePassword: a.MustChangePassword,
		})
	}
	return seeds
}
