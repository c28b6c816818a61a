// Package logging provides structured logging for camportal.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the device and the client.
//
// # Features
//
//   - JSON output for the device (machine-parsable)
//   - Text output for interactive use
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Attributes named token, password, secret, storage_key or cookie are
//     replaced with [REDACTED]
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("config server listening", "addr", cfg.ConfigServer.Addr())
//	logger.Error("token store failed", "error", err)
//
// # Security
//
// Access tokens and WiFi passwords are never logged. Redaction is a
// backstop; callers should not pass them in the first place.
package logging
