// Package tracker records the lifecycle state of analysis requests. The
// scheduler calls UpdateState at every transition point; callers read the
// current state back by analysis ID.
//
// Implementations:
//   - Memory: in-process map, used in development and tests
//   - Postgres: append-only transition log in PostgreSQL
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zonewatch/zonewatch/internal/domain"
)

// ErrNotFound is returned by GetState when no transition has been recorded
// for the given analysis ID.
var ErrNotFound = errors.New("analysis not found")

// Tracker persists lifecycle transitions for analysis requests.
//
// Each transition is a single call; the scheduler never assumes it can
// read-modify-write tracker state atomically across two calls.
// Implementations must be safe for concurrent use.
type Tracker interface {
	// UpdateState records a transition for the given analysis.
	// Detail is optional free text (an error message, a result summary).
	UpdateState(ctx context.Context, id uuid.UUID, state domain.AnalysisState, detail string) error

	// GetState returns the most recently recorded state for the analysis.
	// Returns ErrNotFound if no transition has been recorded.
	GetState(ctx context.Context, id uuid.UUID) (domain.AnalysisState, error)
}

// Transition is one recorded lifecycle change. Exposed by implementations
// that keep history (Memory, Postgres) for the HTTP status surface.
type Transition struct {
	AnalysisID uuid.UUID
	State      domain.AnalysisState
	Detail     string
	RecordedAt time.Time
}
