// Package logging installs the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps "debug", "info", "warn", "error" to a slog level; anything else is info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger, or JSON when format is "json"
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init sets the default logger on stderr. Empty arguments fall back to
// ORACLE_LOG_LEVEL and ORACLE_LOG_FORMAT.
func Init(level, format string) {
	if level == "" {
		level = os.Getenv("ORACLE_LOG_LEVEL")
	}
	if format == "" {
		format = os.Getenv("ORACLE_LOG_FORMAT")
	}
	slog.SetDefault(New(os.Stderr, level, format))
}
