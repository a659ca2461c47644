// Package config loads application configuration from YAML with
// environment variable overrides.
//
// Loading order: hardcoded defaults, then the YAML file, then
// CHRONICLE_* environment variables. Validation runs last, so a config
// that passes Load is safe to hand to the rest of the application.
package config
