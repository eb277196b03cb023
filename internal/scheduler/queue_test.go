package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonewatch/zonewatch/internal/domain"
)

func newRequest(zone string, priority domain.Priority, sequence uint64) domain.AnalysisRequest {
	return domain.AnalysisRequest{
		ID:         uuid.New(),
		Zone:       zone,
		Priority:   priority,
		Sequence:   sequence,
		EnqueuedAt: time.Now(),
	}
}

func TestQueue_PriorityOrder(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})

	// Enqueue in deliberately shuffled priority order.
	q.Push(newRequest("Garage", domain.PriorityRetry, 1))
	q.Push(newRequest("Kitchen", domain.PriorityScheduled, 2))
	q.Push(newRequest("Hallway", domain.PriorityManual, 3))
	q.Push(newRequest("Porch", domain.PriorityScheduled, 4))

	var got []string
	for i := 0; i < 4; i++ {
		req, ok := q.Pop(stop)
		require.True(t, ok)
		got = append(got, req.Zone)
	}

	// Manual first, then scheduled FIFO, then retry.
	assert.Equal(t, []string{"Hallway", "Kitchen", "Porch", "Garage"}, got)
}

func TestQueue_FIFOWithinPriority(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})

	for seq := uint64(1); seq <= 5; seq++ {
		q.Push(newRequest("Kitchen", domain.PriorityScheduled, seq))
	}

	for seq := uint64(1); seq <= 5; seq++ {
		req, ok := q.Pop(stop)
		require.True(t, ok)
		assert.Equal(t, seq, req.Sequence)
	}
}

func TestQueue_ManualBeatsEarlierRetry(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})

	// The retry is enqueued first but the manual request must win.
	q.Push(newRequest("Kitchen", domain.PriorityRetry, 1))
	q.Push(newRequest("Kitchen", domain.PriorityManual, 2))

	first, ok := q.Pop(stop)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityManual, first.Priority)

	second, ok := q.Pop(stop)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityRetry, second.Priority)
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})

	popped := make(chan domain.AnalysisRequest, 1)
	go func() {
		req, ok := q.Pop(stop)
		if ok {
			popped <- req
		}
	}()

	select {
	case <-popped:
		t.Fatal("Pop returned before anything was pushed")
	case <-time.After(50 * time.Millisecond):
	}

	want := newRequest("Kitchen", domain.PriorityManual, 1)
	q.Push(want)

	select {
	case got := <-popped:
		assert.Equal(t, want.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after push")
	}
}

func TestQueue_PopReturnsOnStop(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop(stop)
		done <- ok
	}()

	close(stop)
	q.Wake()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after stop")
	}
}

func TestQueue_StopLeavesItemsQueued(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})
	close(stop)

	q.Push(newRequest("Kitchen", domain.PriorityManual, 1))

	_, ok := q.Pop(stop)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ConcurrentPoppersReceiveDistinctItems(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})

	const n = 100
	for seq := uint64(1); seq <= n; seq++ {
		q.Push(newRequest("Kitchen", domain.PriorityScheduled, seq))
	}

	var mu sync.Mutex
	seen := make(map[uint64]int)
	var popped atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				req, ok := q.Pop(stop)
				if !ok {
					return
				}
				mu.Lock()
				seen[req.Sequence]++
				mu.Unlock()
				if popped.Add(1) == n {
					// Last item consumed; release the blocked poppers.
					close(stop)
					q.Wake()
				}
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for seq, count := range seen {
		assert.Equal(t, 1, count, "sequence %d popped %d times", seq, count)
	}
}

func TestQueue_Snapshot(t *testing.T) {
	q := NewQueue()

	q.Push(newRequest("Kitchen", domain.PriorityManual, 1))
	q.Push(newRequest("Garage", domain.PriorityRetry, 2))

	snap := q.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, 2, q.Len())
}
