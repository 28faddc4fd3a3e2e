package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/edp1096/toy-lti/internal/config"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"other", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := LevelFromString(tt.in); got != tt.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity  int
		quiet      bool
		configured slog.Level
		want       slog.Level
	}{
		{0, false, slog.LevelWarn, slog.LevelWarn},
		{1, false, slog.LevelWarn, slog.LevelInfo},
		{1, false, slog.LevelDebug, slog.LevelDebug},
		{2, false, slog.LevelError, slog.LevelDebug},
		{2, true, slog.LevelDebug, slog.Level(100)},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet, tt.configured); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d, %v, %v) = %v, want %v", tt.verbosity, tt.quiet, tt.configured, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LoggingConfig{Level: "info", Format: "json"})
	logger.Debug("hidden")
	logger.Info("bucket solved", "key", "dc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d records, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "bucket solved" || rec["key"] != "dc" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LoggingConfig{Level: "debug", Format: "text"})
	logger.Debug("solve", "domain", "laplace")
	if got := buf.String(); !strings.Contains(got, "msg=solve") || !strings.Contains(got, "domain=laplace") {
		t.Errorf("output = %q", got)
	}
}

func TestNewDiscardLogger(t *testing.T) {
	if NewDiscardLogger().Enabled(context.Background(), slog.LevelError) {
		t.Errorf("discard logger is enabled at error level")
	}
}
