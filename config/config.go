// Package config handles YAML configuration for Driftwatch.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Version   string      `yaml:"version"`
	Region    string      `yaml:"region"`
	TopicARN  string      `yaml:"topic_arn"`
	QueueURL  string      `yaml:"queue_url,omitempty"`
	StackSets []string    `yaml:"stacksets,omitempty"`
	Drift     DriftConfig `yaml:"drift,omitempty"`
	OTEL      OTELConfig  `yaml:"otel,omitempty"`
	Log       LogConfig   `yaml:"log,omitempty"`
}

// DriftConfig holds drift-detection operation preferences.
type DriftConfig struct {
	RegionConcurrency  string `yaml:"region_concurrency"`
	MaxConcurrentCount int32  `yaml:"max_concurrent_count"`
	ConcurrencyMode    string `yaml:"concurrency_mode"`
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Insecure    bool          `yaml:"insecure"`
	ServiceName string        `yaml:"service_name"`
	Traces      TracesConfig  `yaml:"traces"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// TracesConfig holds tracing settings.
type TracesConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sample_rate"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Drift.RegionConcurrency == "" {
		cfg.Drift.RegionConcurrency = "PARALLEL"
	}
	if cfg.Drift.MaxConcurrentCount == 0 {
		cfg.Drift.MaxConcurrentCount = 10
	}
	if cfg.Drift.ConcurrencyMode == "" {
		cfg.Drift.ConcurrencyMode = "SOFT_FAILURE_TOLERANCE"
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "driftwatch"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the configuration is valid.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.TopicARN == "" {
		return fmt.Errorf("topic_arn is required")
	}
	if c.Drift.MaxConcurrentCount < 0 {
		return fmt.Errorf("drift: max_concurrent_count must be non-negative (got %d)", c.Drift.MaxConcurrentCount)
	}
	if c.OTEL.Traces.SampleRate < 0.0 || c.OTEL.Traces.SampleRate > 1.0 {
		return fmt.Errorf("otel: traces.sample_rate must be between 0.0 and 1.0 (got %v)", c.OTEL.Traces.SampleRate)
	}
	return nil
}
