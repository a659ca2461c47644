// Package logging provides structured logging built on log/slog.
//
// All log output is structured (JSON in production, text in
// development) with service and version fields attached to every
// record. Component loggers are derived with With.
package logging
