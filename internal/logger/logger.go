// Package logger builds the structured loggers shared by the simulator components.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Build returns a JSON logger writing to stderr at the given level name
// (debug, info, warn, error; unknown names fall back to info).
func Build(level string) *slog.Logger {
	return New(os.Stderr, level)
}

// New returns a JSON logger writing to w.
func New(w io.Writer, level string) *slog.Logger {
	ops := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	return slog.New(slog.NewJSONHandler(w, ops))
}

// Discard returns a logger dropping every record.
func Discard() *slog.Logger {
	return New(io.Discard, "error")
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ErrAttr wraps err as the "error" attribute.
func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
