// Package domain contains core business types shared across the application.
//
// This file defines the analysis request model: the priority classes used to
// order queued work, the lifecycle states recorded for every analysis, and
// the immutable AnalysisRequest value that travels from the queue to a
// worker.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Priority Classes
// =============================================================================

// Priority determines queue service order for analysis requests.
// Lower rank is served first; within a class, requests are served FIFO.
type Priority string

const (
	// PriorityManual is an explicit user-triggered analysis. Always served
	// before scheduled scans and retries.
	PriorityManual Priority = "manual"

	// PriorityScheduled is a periodic scan enqueued by the scheduler's
	// interval loop.
	PriorityScheduled Priority = "scheduled"

	// PriorityRetry is a re-attempt after a failed execution. Served last so
	// a flapping zone cannot starve fresh work.
	PriorityRetry Priority = "retry"
)

// priorityRanks maps each class to its queue rank. Exact values are an
// implementation detail; only the relative order matters.
var priorityRanks = map[Priority]int{
	PriorityManual:    0,
	PriorityScheduled: 10,
	PriorityRetry:     20,
}

// Rank returns the numeric queue rank for the priority class.
// Unknown classes rank after every known class.
func (p Priority) Rank() int {
	if r, ok := priorityRanks[p]; ok {
		return r
	}
	return 100
}

// Valid checks if the priority is one of the known classes.
func (p Priority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// =============================================================================
// Analysis Lifecycle States
// =============================================================================

// AnalysisState is the lifecycle state of an analysis request.
//
// Valid transitions:
//
//	QUEUED → RUNNING → COMPLETED
//	QUEUED → RUNNING → FAILED
//	FAILED → QUEUED (re-enqueue while retries remain)
type AnalysisState string

const (
	StateQueued    AnalysisState = "queued"
	StateRunning   AnalysisState = "running"
	StateCompleted AnalysisState = "completed"
	StateFailed    AnalysisState = "failed"
)

// Valid checks if the state is one of the known lifecycle states.
func (s AnalysisState) Valid() bool {
	switch s {
	case StateQueued, StateRunning, StateCompleted, StateFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the state ends the current attempt.
func (s AnalysisState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition. FAILED → QUEUED is legal because a retry re-enqueues under the
// same analysis ID.
func (s AnalysisState) CanTransitionTo(next AnalysisState) bool {
	switch s {
	case StateQueued:
		return next == StateRunning
	case StateRunning:
		return next == StateCompleted || next == StateFailed
	case StateFailed:
		return next == StateQueued
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s AnalysisState) String() string {
	return string(s)
}

// =============================================================================
// Analysis Request
// =============================================================================

// AnalysisRequest describes one ask to analyze a zone. It is immutable once
// enqueued: a retry is a new value with a fresh Sequence and an incremented
// RetryCount, never a mutation of the original.
type AnalysisRequest struct {
	ID         uuid.UUID // Correlation key with the lifecycle tracker
	Zone       string    // Zone to analyze; must be known to the registry
	Priority   Priority  // Queue service class
	Sequence   uint64    // Enqueue-order tie-breaker, strictly increasing
	RetryCount int       // Number of prior failed attempts
	EnqueuedAt time.Time // When this attempt entered the queue
}

// Retry builds the follow-up request for a failed attempt. The analysis ID is
// preserved so callers can correlate all attempts of one logical analysis;
// the new request carries retry priority and the next sequence number.
func (r AnalysisRequest) Retry(sequence uint64) AnalysisRequest {
	return AnalysisRequest{
		ID:         r.ID,
		Zone:       r.Zone,
		Priority:   PriorityRetry,
		Sequence:   sequence,
		RetryCount: r.RetryCount + 1,
		EnqueuedAt: time.Now(),
	}
}
