// Package logging configures structured logging with log/slog.
//
// Usage:
//
//	logging.Setup("debug", "text")  // colored output via tint
//	logging.Setup("info", "json")   // one JSON object per line
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger and returns it.
// Unknown levels fall back to info, unknown formats to text.
func Setup(level, format string) *slog.Logger {
	logger := New(os.Stderr, ParseLevel(level), format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
