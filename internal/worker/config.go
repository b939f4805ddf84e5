package worker

import (
	"fmt"
	"time"
)

// Config holds the configuration for the report generation worker.
type Config struct {
	// BatchSize is the maximum number of pending jobs claimed per poll.
	// Claimed jobs are rendered concurrently, so this also bounds the
	// number of simultaneous browser tabs. Default: 3
	BatchSize int

	// PollInterval is how long the worker sleeps after an empty claim or
	// a loop error. Default: 2 seconds
	PollInterval time.Duration

	// JobTimeout is the maximum time a single job is allowed to run.
	// If a job exceeds this timeout, its context is canceled and it's
	// marked as failed. Default: 5 minutes
	JobTimeout time.Duration

	// ShutdownTimeout is how long to wait for in-flight jobs to complete
	// during graceful shutdown. Default: 30 seconds
	ShutdownTimeout time.Duration

	// StaleJobThreshold defines how old a 'processing' job must be before
	// it's considered abandoned by a crashed worker. Stale jobs are
	// requeued on startup. Default: 10 minutes
	StaleJobThreshold time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		BatchSize:         3,
		PollInterval:      2 * time.Second,
		JobTimeout:        5 * time.Minute,
		ShutdownTimeout:   30 * time.Second,
		StaleJobThreshold: 10 * time.Minute,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any values are invalid.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.BatchSize > 50 {
		return fmt.Errorf("batch size too high (max 50), got %d", c.BatchSize)
	}
	if c.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("poll interval must be at least 100ms, got %v", c.PollInterval)
	}
	if c.JobTimeout < 1*time.Second {
		return fmt.Errorf("job timeout must be at least 1 second, got %v", c.JobTimeout)
	}
	if c.ShutdownTimeout < 1*time.Second {
		return fmt.Errorf("shutdown timeout must be at least 1 second, got %v", c.ShutdownTimeout)
	}
	if c.StaleJobThreshold < 1*time.Minute {
		return fmt.Errorf("stale job threshold must be at least 1 minute, got %v", c.StaleJobThreshold)
	}
	return nil
}
