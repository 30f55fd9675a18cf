// Package clog is rootbridge's operational log. It is separate from
// user-facing output (see internal/term) and from the audit trail (see
// internal/audit).
//
// Levels:
//   - Debug: command construction, search order; only with --debug
//   - Info: selections, provisioning, server lifecycle
//   - Warn: recoverable trouble (store unreadable, write fallback failed)
//   - Error: failures that make an operation unusable
//
// Destinations:
//   - File: every message at or above the configured level
//   - Stderr: Warn and Error only, and never in daemon mode (serve)
//
// Tokens must never be passed to clog. Commands that embed a token are
// logged through shell.Redact.
package clog

import "strings"

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the uppercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, case-insensitively. Unknown names map to
// LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error", "err":
		return LevelError
	default:
		return LevelInfo
	}
}
