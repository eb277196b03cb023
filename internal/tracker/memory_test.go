package tracker

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonewatch/zonewatch/internal/domain"
)

func TestMemory_GetState_NotFound(t *testing.T) {
	m := NewMemory()

	_, err := m.GetState(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.History(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_RecordsTransitionsInOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, m.UpdateState(ctx, id, domain.StateQueued, ""))
	require.NoError(t, m.UpdateState(ctx, id, domain.StateRunning, ""))
	require.NoError(t, m.UpdateState(ctx, id, domain.StateFailed, "attempt 1: camera offline"))
	require.NoError(t, m.UpdateState(ctx, id, domain.StateQueued, "retry 1/2"))

	state, err := m.GetState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateQueued, state)

	history, err := m.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.StateQueued, history[0].State)
	assert.Equal(t, domain.StateRunning, history[1].State)
	assert.Equal(t, domain.StateFailed, history[2].State)
	assert.Equal(t, "attempt 1: camera offline", history[2].Detail)
	assert.Equal(t, "retry 1/2", history[3].Detail)

	for _, rec := range history {
		assert.Equal(t, id, rec.AnalysisID)
		assert.False(t, rec.RecordedAt.IsZero())
	}
}

func TestMemory_IsolatesAnalyses(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	require.NoError(t, m.UpdateState(ctx, a, domain.StateQueued, ""))
	require.NoError(t, m.UpdateState(ctx, b, domain.StateQueued, ""))
	require.NoError(t, m.UpdateState(ctx, a, domain.StateRunning, ""))

	stateA, err := m.GetState(ctx, a)
	require.NoError(t, err)
	stateB, err := m.GetState(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRunning, stateA)
	assert.Equal(t, domain.StateQueued, stateB)
}

func TestMemory_HistoryReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, m.UpdateState(ctx, id, domain.StateQueued, ""))

	history, err := m.History(ctx, id)
	require.NoError(t, err)
	history[0].Detail = "mutated"

	fresh, err := m.History(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, fresh[0].Detail)
}

func TestMemory_ConcurrentUpdates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
	}

	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.UpdateState(ctx, id, domain.StateRunning, fmt.Sprintf("pass %d", j))
				_, _ = m.GetState(ctx, id)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		history, err := m.History(ctx, id)
		require.NoError(t, err)
		assert.Len(t, history, 50)
	}
}
