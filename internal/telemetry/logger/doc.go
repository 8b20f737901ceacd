// Package logger provides structured logging for cmsadmin.
//
// It wraps log/slog:
//
//   - logger.go: handler setup, dynamic level, package-level default
//   - context.go: request ID propagation
//   - redact.go: masking of passwords, bearer tokens and JWTs
//
// Logs go to stderr at warn level by default so command output on stdout
// stays machine-readable.
package logger
