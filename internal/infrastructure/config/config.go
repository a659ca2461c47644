package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Chronicle Core.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
	Seed     SeedConfig     `yaml:"seed"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains session and credential settings.
type SecurityConfig struct {
	// SessionSecret signs session tokens. Required; must be at least
	// 32 characters. Always set via CHRONICLE_SESSION_SECRET in
	// production rather than committing it to the config file.
	SessionSecret string `yaml:"session_secret"`

	// SessionMaxAgeDays is the validity window applied when reading
	// session tokens and the lifetime of the session cookie.
	SessionMaxAgeDays int `yaml:"session_max_age_days"`

	// PBKDF2Iterations overrides the password hashing work factor.
	// Zero means the built-in default.
	PBKDF2Iterations int `yaml:"pbkdf2_iterations"`
}

// SeedConfig lists well-known accounts ensured at startup.
type SeedConfig struct {
	Accounts []SeedAccountConfig `yaml:"accounts"`
}

// SeedAccountConfig describes one account to seed.
type SeedAccountConfig struct {
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	Role               string `yaml:"role"`
	MustChangePassword bool   `yaml:"must_change_password"`
}

// minSessionSecretLength guards against weak signing keys. A short
// secret would let an attacker forge session tokens offline.
const minSessionSecretLength = 32

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// Environment variables follow the pattern CHRONICLE_SECTION_KEY, for
// example CHRONICLE_DATABASE_PATH or CHRONICLE_SESSION_SECRET.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/chronicle.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			SessionMaxAgeDays: 14,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Only the settings that differ per deployment are
// exposed this way; structural settings stay in the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHRONICLE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("CHRONICLE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("CHRONICLE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("CHRONICLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("CHRONICLE_SESSION_SECRET"); v != "" {
		cfg.Security.SessionSecret = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Security.SessionSecret == "" {
		errs = append(errs, "security.session_secret is required (set CHRONICLE_SESSION_SECRET environment variable)")
	} else if len(c.Security.SessionSecret) < minSessionSecretLength {
		errs = append(errs, "security.session_secret must be at least 32 characters")
	}

	if c.Security.SessionMaxAgeDays < 1 {
		errs = append(errs, "security.session_max_age_days must be at least 1")
	}

	if c.Security.PBKDF2Iterations < 0 {
		errs = append(errs, "security.pbkdf2_iterations must not be negative")
	}

	for _, acct := range c.Seed.Accounts {
		if acct.Username != "" && acct.Role != "player" && acct.Role != "master" {
			errs = append(errs, fmt.Sprintf("seed account %q: role must be player or master", acct.Username))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SessionMaxAge returns the session validity window as a Duration.
func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.Security.SessionMaxAgeDays) * 24 * time.Hour
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
