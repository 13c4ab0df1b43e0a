package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
version: "1"
region: us-east-1
topic_arn: arn:aws:sns:us-east-1:123456789012:drift-notifications
queue_url: https://sqs.us-east-1.amazonaws.com/123456789012/drift-events
stacksets:
  - core-networking
  - iam-baseline
drift:
  region_concurrency: SEQUENTIAL
  max_concurrent_count: 5
  concurrency_mode: STRICT_FAILURE_TOLERANCE
otel:
  endpoint: localhost:4317
  insecure: true
  service_name: driftwatch
  traces:
    enabled: true
    sample_rate: 1.0
  metrics:
    enabled: true
log:
  level: debug
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:drift-notifications", cfg.TopicARN)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123456789012/drift-events", cfg.QueueURL)
	assert.Equal(t, []string{"core-networking", "iam-baseline"}, cfg.StackSets)
	assert.Equal(t, "SEQUENTIAL", cfg.Drift.RegionConcurrency)
	assert.Equal(t, int32(5), cfg.Drift.MaxConcurrentCount)
	assert.Equal(t, "STRICT_FAILURE_TOLERANCE", cfg.Drift.ConcurrencyMode)
	assert.Equal(t, "localhost:4317", cfg.OTEL.Endpoint)
	assert.True(t, cfg.OTEL.Insecure)
	assert.True(t, cfg.OTEL.Traces.Enabled)
	assert.Equal(t, 1.0, cfg.OTEL.Traces.SampleRate)
	assert.True(t, cfg.OTEL.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	content := `
version: "1"
region: us-east-1
topic_arn: arn:aws:sns:us-east-1:123456789012:drift-notifications
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "PARALLEL", cfg.Drift.RegionConcurrency)
	assert.Equal(t, int32(10), cfg.Drift.MaxConcurrentCount)
	assert.Equal(t, "SOFT_FAILURE_TOLERANCE", cfg.Drift.ConcurrencyMode)
	assert.Equal(t, "driftwatch", cfg.OTEL.ServiceName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "version: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing version",
			mutate:  func(c *Config) { c.Version = "" },
			wantErr: "version is required",
		},
		{
			name:    "missing region",
			mutate:  func(c *Config) { c.Region = "" },
			wantErr: "region is required",
		},
		{
			name:    "missing topic arn",
			mutate:  func(c *Config) { c.TopicARN = "" },
			wantErr: "topic_arn is required",
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Drift.MaxConcurrentCount = -1 },
			wantErr: "max_concurrent_count",
		},
		{
			name:    "bad sample rate",
			mutate:  func(c *Config) { c.OTEL.Traces.SampleRate = 1.5 },
			wantErr: "sample_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Version:  "1",
				Region:   "us-east-1",
				TopicARN: "arn:aws:sns:us-east-1:123456789012:topic",
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "driftwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
