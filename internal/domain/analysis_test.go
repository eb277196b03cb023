package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPriority_Rank(t *testing.T) {
	// Only the relative order matters: manual < scheduled < retry.
	assert.Less(t, PriorityManual.Rank(), PriorityScheduled.Rank())
	assert.Less(t, PriorityScheduled.Rank(), PriorityRetry.Rank())

	// Unknown classes rank after every known class.
	assert.Greater(t, Priority("bogus").Rank(), PriorityRetry.Rank())
}

func TestPriority_Valid(t *testing.T) {
	tests := []struct {
		priority Priority
		want     bool
	}{
		{PriorityManual, true},
		{PriorityScheduled, true},
		{PriorityRetry, true},
		{Priority(""), false},
		{Priority("urgent"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.Valid())
		})
	}
}

func TestAnalysisState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from AnalysisState
		to   AnalysisState
		want bool
	}{
		{"queued to running", StateQueued, StateRunning, true},
		{"running to completed", StateRunning, StateCompleted, true},
		{"running to failed", StateRunning, StateFailed, true},
		{"failed to queued (retry)", StateFailed, StateQueued, true},
		{"queued to completed skips running", StateQueued, StateCompleted, false},
		{"completed is terminal", StateCompleted, StateQueued, false},
		{"running to queued", StateRunning, StateQueued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAnalysisState_Terminal(t *testing.T) {
	assert.False(t, StateQueued.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
}

func TestAnalysisRequest_Retry(t *testing.T) {
	original := AnalysisRequest{
		ID:       uuid.New(),
		Zone:     "Kitchen",
		Priority: PriorityManual,
		Sequence: 7,
	}

	retry := original.Retry(8)

	// Same logical analysis, new attempt.
	assert.Equal(t, original.ID, retry.ID)
	assert.Equal(t, original.Zone, retry.Zone)
	assert.Equal(t, PriorityRetry, retry.Priority)
	assert.Equal(t, uint64(8), retry.Sequence)
	assert.Equal(t, 1, retry.RetryCount)
	assert.False(t, retry.EnqueuedAt.IsZero())

	// The original is untouched.
	assert.Equal(t, PriorityManual, original.Priority)
	assert.Equal(t, 0, original.RetryCount)
}
