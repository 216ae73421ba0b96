// Package logger configures the process-wide slog logger from LOG_LEVEL and
// LOG_FORMAT.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds a logger writing to stderr and installs it as the slog default.
func Setup() *slog.Logger {
	l := New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(l)
	return l
}

// New builds a logger for the given level (debug|info|warn|error) and format
// (json|text). Unknown values fall back to info and text.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
