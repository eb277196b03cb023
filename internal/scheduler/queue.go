package scheduler

import (
	"container/heap"
	"sync"

	"github.com/zonewatch/zonewatch/internal/domain"
)

// Queue is a concurrency-safe priority queue of analysis requests.
//
// Requests are ordered by (priority rank, sequence): manual work is served
// before scheduled scans and retries, and requests of equal priority are
// served FIFO by enqueue order. Push never blocks; Pop suspends the calling
// worker until a request is available or the stop channel closes. Exactly
// one popper receives each request.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items requestHeap
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{items: make(requestHeap, 0)}
	q.cond = sync.NewCond(&q.mu)
	heap.Init(&q.items)
	return q
}

// Push adds a request in priority order and wakes one waiting popper.
func (q *Queue) Push(req domain.AnalysisRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()

	heap.Push(&q.items, req)
	q.cond.Signal()
}

// Pop removes and returns the request with the lowest (priority rank,
// sequence) key. It blocks while the queue is empty. When the stop channel
// closes, Pop returns false without removing anything, even if requests
// remain queued; they survive for a later run.
func (q *Queue) Pop(stop <-chan struct{}) (domain.AnalysisRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		select {
		case <-stop:
			return domain.AnalysisRequest{}, false
		default:
		}

		if q.items.Len() > 0 {
			return heap.Pop(&q.items).(domain.AnalysisRequest), true
		}
		q.cond.Wait()
	}
}

// Wake unblocks all waiting poppers so they can observe a closed stop
// channel. Called once during scheduler shutdown, after the stop channel is
// closed.
func (q *Queue) Wake() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cond.Broadcast()
}

// Len returns the number of queued requests. Best-effort snapshot.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Snapshot returns a copy of all queued requests in no particular order.
// Intended for observability only.
func (q *Queue) Snapshot() []domain.AnalysisRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.AnalysisRequest, len(q.items))
	copy(out, q.items)
	return out
}

// requestHeap implements heap.Interface ordered by (priority rank, sequence)
// ascending, giving FIFO within each priority class.
type requestHeap []domain.AnalysisRequest

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].Priority.Rank() != h[j].Priority.Rank() {
		return h[i].Priority.Rank() < h[j].Priority.Rank()
	}
	return h[i].Sequence < h[j].Sequence
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) {
	*h = append(*h, x.(domain.AnalysisRequest))
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
