package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"lti.yaml", "analysis:\n  workers: 3\n  talbotNodes: 48\n  strict: true\nnoise:\n  points: 128\nlogging:\n  level: debug\n  format: json\n"},
		{"lti.toml", "[analysis]\nworkers = 3\ntalbotNodes = 48\nstrict = true\n[noise]\npoints = 128\n[logging]\nlevel = \"debug\"\nformat = \"json\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Analysis.Workers != 3 || cfg.Analysis.TalbotNodes != 48 || !cfg.Analysis.Strict {
				t.Errorf("Analysis = %+v", cfg.Analysis)
			}
			if cfg.Noise.Points != 128 {
				t.Errorf("Noise.Points = %d, want 128", cfg.Noise.Points)
			}
			if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
				t.Errorf("Logging = %+v", cfg.Logging)
			}
			if cfg.Analysis.Temperature != 27 {
				t.Errorf("Temperature = %v, want default 27", cfg.Analysis.Temperature)
			}
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LTI_ANALYSIS_WORKERS", "5")
	t.Setenv("LTI_LOGGING_LEVEL", "error")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Analysis.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Analysis.Workers)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %q, want error", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Load() error = nil for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"analysis.workers", func(c *Config) { c.Analysis.Workers = -1 }},
		{"analysis.talbotNodes", func(c *Config) { c.Analysis.TalbotNodes = 2 }},
		{"analysis.temperature", func(c *Config) { c.Analysis.Temperature = -300 }},
		{"noise.points", func(c *Config) { c.Noise.Points = 1 }},
		{"logging.level", func(c *Config) { c.Logging.Level = "loud" }},
		{"logging.format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			var ce *ConfigError
			if err := cfg.Validate(); !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("Validate() = %v, want ConfigError on %s", err, tt.field)
			}
		})
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("LTI_NOISE_POINTS", "1")

	var ce *ConfigError
	if _, err := Load(""); !errors.As(err, &ce) || ce.Field != "noise.points" {
		t.Errorf("Load() error = %v, want ConfigError on noise.points", err)
	}
}
