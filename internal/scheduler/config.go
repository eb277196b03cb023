package scheduler

import (
	"fmt"
	"time"
)

// Config holds the configuration for the analysis scheduler.
type Config struct {
	// Workers is the number of worker goroutines polling the queue.
	// Each worker processes one request at a time.
	// Default: 2
	Workers int

	// MaxConcurrent caps the number of analyses executing at once across
	// all workers. When Workers exceeds this cap, a shared semaphore gates
	// execution inside the per-item procedure.
	// Default: 2
	MaxConcurrent int

	// MaxRetries is how many times a failed analysis is re-enqueued with
	// retry priority before it is left in a terminal failed state.
	// Default: 2
	MaxRetries int

	// DrainTimeout is how long Stop waits for in-flight analyses to finish.
	// After the timeout, remaining work is cancelled and marked failed.
	// Default: 30 seconds
	DrainTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		MaxConcurrent: 2,
		MaxRetries:    2,
		DrainTimeout:  30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any values are invalid.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Workers > 100 {
		return fmt.Errorf("workers too high (max 100), got %d", c.Workers)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.DrainTimeout < 1*time.Second {
		return fmt.Errorf("drain timeout must be at least 1 second, got %v", c.DrainTimeout)
	}
	return nil
}
