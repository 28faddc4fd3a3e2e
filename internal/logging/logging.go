// Package logging builds the slog loggers used by the analyzer and the CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/edp1096/toy-lti/internal/config"
)

// New returns a logger writing to w in the configured format and level.
func New(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	return NewAt(w, cfg.Format, LevelFromString(cfg.Level))
}

// NewAt is New with an explicit level, for command line overrides.
func NewAt(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString converts a level name to a slog.Level. Unknown names map
// to info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity maps -v flags onto a level above the configured one:
// one -v is info, two or more are debug.
func LevelFromVerbosity(verbosity int, quiet bool, configured slog.Level) slog.Level {
	if quiet {
		return slog.Level(100)
	}
	switch {
	case verbosity >= 2:
		return slog.LevelDebug
	case verbosity == 1 && configured > slog.LevelInfo:
		return slog.LevelInfo
	default:
		return configured
	}
}
