package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10*time.Minute, cfg.StaleJobThreshold)

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default is valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "batch size zero",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: "batch size must be at least 1",
		},
		{
			name:    "batch size negative",
			mutate:  func(c *Config) { c.BatchSize = -1 },
			wantErr: "batch size must be at least 1",
		},
		{
			name:    "batch size too high",
			mutate:  func(c *Config) { c.BatchSize = 51 },
			wantErr: "batch size too high",
		},
		{
			name:   "batch size at ceiling",
			mutate: func(c *Config) { c.BatchSize = 50 },
		},
		{
			name:    "poll interval too short",
			mutate:  func(c *Config) { c.PollInterval = 50 * time.Millisecond },
			wantErr: "poll interval must be at least 100ms",
		},
		{
			name:   "poll interval at floor",
			mutate: func(c *Config) { c.PollInterval = 100 * time.Millisecond },
		},
		{
			name:    "job timeout too short",
			mutate:  func(c *Config) { c.JobTimeout = 500 * time.Millisecond },
			wantErr: "job timeout must be at least 1 second",
		},
		{
			name:    "shutdown timeout too short",
			mutate:  func(c *Config) { c.ShutdownTimeout = 0 },
			wantErr: "shutdown timeout must be at least 1 second",
		},
		{
			name:    "stale threshold too short",
			mutate:  func(c *Config) { c.StaleJobThreshold = 30 * time.Second },
			wantErr: "stale job threshold must be at least 1 minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
