// Package config loads analyzer settings from defaults, an optional lti.yaml
// or lti.toml file and LTI_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Noise    NoiseConfig    `mapstructure:"noise" yaml:"noise"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

type AnalysisConfig struct {
	// Workers bounds concurrent bucket solves; 0 uses GOMAXPROCS.
	Workers     int  `mapstructure:"workers" yaml:"workers"`
	TalbotNodes int  `mapstructure:"talbotNodes" yaml:"talbotNodes"`
	Strict      bool `mapstructure:"strict" yaml:"strict"`
	// Temperature in degC, used when a netlist has no .temp.
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

type NoiseConfig struct {
	// Points is the number of quadrature nodes for RMS integration.
	Points int `mapstructure:"points" yaml:"points"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:     0,
			TalbotNodes: 32,
			Strict:      false,
			Temperature: 27,
		},
		Noise: NoiseConfig{
			Points: 64,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.talbotNodes", d.Analysis.TalbotNodes)
	v.SetDefault("analysis.strict", d.Analysis.Strict)
	v.SetDefault("analysis.temperature", d.Analysis.Temperature)
	v.SetDefault("noise.points", d.Noise.Points)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads the configuration. With an empty path it looks for lti.yaml,
// lti.toml or lti.json in the working directory and falls back to the
// defaults when there is none. Environment variables are named after the
// key, e.g. LTI_ANALYSIS_WORKERS or LTI_LOGGING_LEVEL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LTI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("lti")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Analysis.Workers < 0 {
		return &ConfigError{Field: "analysis.workers", Message: "must not be negative"}
	}
	if c.Analysis.TalbotNodes < 4 {
		return &ConfigError{Field: "analysis.talbotNodes", Message: "need at least 4 contour nodes"}
	}
	if c.Analysis.Temperature <= -273.15 {
		return &ConfigError{Field: "analysis.temperature", Message: "below absolute zero"}
	}
	if c.Noise.Points < 2 {
		return &ConfigError{Field: "noise.points", Message: "need at least 2 quadrature points"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
