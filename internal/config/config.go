// Package config provides configuration loading for the stacklight sampler.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the sampling engine. The interval matches the original
// 1ms design default; buffer bounds match the historical fixed constants.
const (
	DefaultInterval  = 1 * time.Millisecond
	DefaultMaxTraces = 2000
	DefaultMaxFrames = 512
)

// Config is the top-level stacklight configuration.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Log      LogConfig      `yaml:"log"`
}

// SamplingConfig configures the sampling engine.
type SamplingConfig struct {
	// Interval is the period between timer ticks.
	Interval time.Duration `yaml:"interval" env:"STACKLIGHT_INTERVAL"`
	// MaxTraces is the per-worker trace buffer capacity.
	MaxTraces int `yaml:"max_traces" env:"STACKLIGHT_MAX_TRACES"`
	// MaxFrames bounds the number of frames captured per trace.
	MaxFrames int `yaml:"max_frames" env:"STACKLIGHT_MAX_FRAMES"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level" env:"STACKLIGHT_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"STACKLIGHT_LOG_PRETTY"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Interval:  DefaultInterval,
			MaxTraces: DefaultMaxTraces,
			MaxFrames: DefaultMaxFrames,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load returns the configuration from an optional YAML file at path, with
// environment variable overrides applied on top (layered configuration).
// A missing file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Sampling.Interval <= 0 {
		return fmt.Errorf("sampling.interval must be positive, got %s", c.Sampling.Interval)
	}
	if c.Sampling.MaxTraces <= 0 {
		return fmt.Errorf("sampling.max_traces must be positive, got %d", c.Sampling.MaxTraces)
	}
	if c.Sampling.MaxFrames <= 0 {
		return fmt.Errorf("sampling.max_frames must be positive, got %d", c.Sampling.MaxFrames)
	}
	return nil
}
