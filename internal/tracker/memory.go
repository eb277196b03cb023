package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zonewatch/zonewatch/internal/domain"
)

// Memory is an in-process Tracker that keeps the full transition history per
// analysis. Suitable for development, tests, and single-node deployments
// that do not need persistence across restarts.
type Memory struct {
	mu      sync.RWMutex
	history map[uuid.UUID][]Transition
}

// NewMemory creates an empty in-memory tracker.
func NewMemory() *Memory {
	return &Memory{
		history: make(map[uuid.UUID][]Transition),
	}
}

// UpdateState appends a transition for the analysis.
func (m *Memory) UpdateState(ctx context.Context, id uuid.UUID, state domain.AnalysisState, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history[id] = append(m.history[id], Transition{
		AnalysisID: id,
		State:      state,
		Detail:     detail,
		RecordedAt: time.Now(),
	})
	return nil
}

// GetState returns the most recently recorded state for the analysis.
func (m *Memory) GetState(ctx context.Context, id uuid.UUID) (domain.AnalysisState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.history[id]
	if !ok || len(h) == 0 {
		return "", ErrNotFound
	}
	return h[len(h)-1].State, nil
}

// History returns a copy of all recorded transitions for the analysis in
// recording order. Returns ErrNotFound if the analysis is unknown.
func (m *Memory) History(ctx context.Context, id uuid.UUID) ([]Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.history[id]
	if !ok || len(h) == 0 {
		return nil, ErrNotFound
	}
	out := make([]Transition, len(h))
	copy(out, h)
	return out, nil
}
