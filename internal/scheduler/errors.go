package scheduler

import "errors"

var (
	// ErrInvalidRequest is returned by QueueAnalysis for a malformed enqueue
	// call (empty zone name, unknown priority class). Never retried.
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrDrainTimeout is returned by Stop when in-flight analyses did not
	// finish within the configured drain timeout. The remaining work has
	// been cancelled and marked failed.
	ErrDrainTimeout = errors.New("drain timeout exceeded while stopping")
)
