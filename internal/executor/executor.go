// Package executor defines the analysis execution interface and its result
// types. The scheduler depends only on this package; concrete backends live
// in subpackages (openai for production, mock for development and tests).
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Executor performs one zone analysis. Implementations must be safe to call
// concurrently for different zones; concurrent calls for the same zone are
// not serialized by the scheduler, so backends needing per-zone mutual
// exclusion must implement it themselves.
type Executor interface {
	// Execute inspects the named zone and returns its analysis. Zone
	// attributes (snapshot location, prompt context) are resolved by the
	// implementation, typically against the zone registry.
	Execute(ctx context.Context, zoneName string) (*Analysis, error)
}

// =============================================================================
// Result Types
// =============================================================================

// ZoneStatus is the overall assessment of a zone produced by an analysis.
type ZoneStatus string

const (
	// StatusNominal means nothing noteworthy was observed.
	StatusNominal ZoneStatus = "nominal"

	// StatusAttention means something unusual was observed that does not
	// demand immediate action.
	StatusAttention ZoneStatus = "attention"

	// StatusAlert means a condition was observed that should be surfaced to
	// a person right away.
	StatusAlert ZoneStatus = "alert"
)

// Valid checks if the zone status is one of the known values.
func (s ZoneStatus) Valid() bool {
	switch s {
	case StatusNominal, StatusAttention, StatusAlert:
		return true
	default:
		return false
	}
}

// Analysis is the complete result of one zone inspection.
type Analysis struct {
	Status       ZoneStatus    // Overall assessment
	Summary      string        // Short human-readable description of the zone
	Observations []Observation // Individual noteworthy findings
	Usage        UsageInfo     // Model usage for monitoring
}

// Observation is a single noteworthy finding within a zone.
type Observation struct {
	Label      string     // What was observed (e.g. "person on floor")
	Detail     string     // Where/how it was observed
	Confidence Confidence // How confident the model is
}

// Confidence levels for observations.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid checks if the confidence level is valid.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	default:
		return false
	}
}

// UsageInfo tracks model usage for monitoring.
type UsageInfo struct {
	Model        string        // Model used for the analysis
	InputTokens  int           // Tokens in the request
	OutputTokens int           // Tokens in the response
	Duration     time.Duration // Wall-clock time for the call
}

// Config contains common configuration for executor backends.
type Config struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrRateLimit indicates the backend's rate limit has been exceeded.
	ErrRateLimit = errors.New("executor rate limit exceeded")

	// ErrTimeout indicates the backend request timed out.
	ErrTimeout = errors.New("executor request timed out")

	// ErrUnavailable indicates the backend is temporarily unavailable.
	ErrUnavailable = errors.New("executor temporarily unavailable")

	// ErrUnauthorized indicates invalid backend credentials.
	ErrUnauthorized = errors.New("executor authentication failed")

	// ErrNoSnapshot indicates no usable snapshot exists for the zone.
	ErrNoSnapshot = errors.New("no snapshot available for zone")

	// ErrUnknownZone indicates the zone is not present in the registry.
	ErrUnknownZone = errors.New("unknown zone")
)

// IsRetryable returns true for transient errors worth retrying within a
// single Execute call. The scheduler's own retry policy is separate and
// applies regardless.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable)
}

// WrapError wraps an error with context about the executor operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("executor %s: %w", operation, err)
}
