// Package scheduler implements the analysis scheduling core: a priority
// queue of analysis requests, a bounded pool of concurrent workers that
// execute them, lifecycle tracking for every request, and retry policy on
// failure.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zonewatch/zonewatch/internal/domain"
	"github.com/zonewatch/zonewatch/internal/executor"
	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/tracker"
)

// RunState is the lifecycle state of the scheduler itself.
type RunState string

const (
	RunStateStopped  RunState = "stopped"
	RunStateRunning  RunState = "running"
	RunStateStopping RunState = "stopping"
)

// Snapshot is a non-blocking view of scheduler activity.
type Snapshot struct {
	State      RunState `json:"state"`
	QueueDepth int      `json:"queue_depth"`
	Workers    int      `json:"workers"`
	InFlight   int      `json:"in_flight"`
	Completed  uint64   `json:"completed"`
	Failed     uint64   `json:"failed"`
}

// Scheduler accepts analysis requests, orders them by priority, and
// dispatches them to a bounded pool of workers. It owns the queue, the
// concurrency semaphore, and the worker goroutines; the executor and the
// lifecycle tracker are external collaborators.
type Scheduler struct {
	exec    executor.Executor
	tracker tracker.Tracker
	config  Config
	logger  *slog.Logger

	queue *Queue
	sem   chan struct{}
	seq   atomic.Uint64

	// Lifecycle state, guarded by mu. Start and Stop serialize through it;
	// QueueAnalysis never touches it.
	mu        sync.Mutex
	state     RunState
	stopCh    chan struct{}
	cancelRun context.CancelFunc
	wg        *sync.WaitGroup // per-run; replaced on Start so a timed-out drain cannot race a restart

	// Requests currently being executed, keyed by analysis ID. Used by Stop
	// to mark cancelled work failed after a drain timeout.
	inFlightMu sync.Mutex
	inFlight   map[uuid.UUID]domain.AnalysisRequest

	completed atomic.Uint64
	failed    atomic.Uint64
}

// New creates a stopped scheduler. Call Start to begin processing.
func New(exec executor.Executor, tr tracker.Tracker, config Config, logger *slog.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scheduler{
		exec:     exec,
		tracker:  tr,
		config:   config,
		logger:   logger,
		queue:    NewQueue(),
		sem:      make(chan struct{}, config.MaxConcurrent),
		state:    RunStateStopped,
		inFlight: make(map[uuid.UUID]domain.AnalysisRequest),
	}, nil
}

// QueueAnalysis allocates an analysis ID, builds the request, and pushes it
// onto the queue. It returns immediately; the analysis runs whenever a worker
// picks it up. Legal in any scheduler state; requests enqueued while stopped
// are processed after the next Start.
//
// Returns ErrInvalidRequest if the zone name is empty or the priority class
// is unknown.
func (s *Scheduler) QueueAnalysis(ctx context.Context, zoneName string, priority domain.Priority) (uuid.UUID, error) {
	if strings.TrimSpace(zoneName) == "" {
		return uuid.Nil, fmt.Errorf("%w: empty zone name", ErrInvalidRequest)
	}
	if !priority.Valid() {
		return uuid.Nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidRequest, priority)
	}

	req := domain.AnalysisRequest{
		ID:         uuid.New(),
		Zone:       zoneName,
		Priority:   priority,
		Sequence:   s.seq.Add(1),
		RetryCount: 0,
		EnqueuedAt: time.Now(),
	}

	// Record QUEUED before the request becomes visible to workers. A tracker
	// failure is logged and does not fail the enqueue.
	if err := s.tracker.UpdateState(ctx, req.ID, domain.StateQueued, ""); err != nil {
		s.logger.Error("Failed to record queued state", "analysis_id", req.ID, "error", err)
	}

	s.queue.Push(req)
	metrics.SetQueueDepth(s.queue.Len())

	s.logger.Debug("Queued analysis",
		"analysis_id", req.ID,
		"zone", req.Zone,
		"priority", req.Priority,
		"sequence", req.Sequence,
	)
	return req.ID, nil
}

// Start spawns the configured number of workers. Calling Start while already
// running is a no-op. Requests queued before Start are not dropped; workers
// begin draining the queue immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != RunStateStopped {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel
	s.stopCh = make(chan struct{})
	s.wg = &sync.WaitGroup{}
	s.state = RunStateRunning

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.runWorker(runCtx, s.stopCh, i+1, s.wg)
	}

	s.logger.Info("Scheduler started",
		"workers", s.config.Workers,
		"max_concurrent", s.config.MaxConcurrent,
		"queued", s.queue.Len(),
	)
}

// Stop signals all workers to stop taking new queue items, then waits for
// in-flight analyses to finish. Requests still queued when Stop returns
// remain queued; a subsequent Start resumes processing them.
//
// If the drain does not complete within the configured DrainTimeout, the run
// context is cancelled, each in-flight analysis is marked failed with a
// "cancelled" detail, and ErrDrainTimeout is returned.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.state != RunStateRunning {
		s.mu.Unlock()
		return nil
	}
	s.state = RunStateStopping
	stopCh := s.stopCh
	cancel := s.cancelRun
	wg := s.wg
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler...")
	close(stopCh)
	s.queue.Wake()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var stopErr error
	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully", "queued", s.queue.Len())
	case <-time.After(s.config.DrainTimeout):
		s.logger.Warn("Drain timeout exceeded, cancelling in-flight analyses")
		// Snapshot and record in-flight requests before cancelling so a
		// fast-returning executor cannot untrack them first.
		s.failCancelled()
		cancel()
		stopErr = ErrDrainTimeout
	}
	cancel()

	s.mu.Lock()
	s.state = RunStateStopped
	s.mu.Unlock()
	return stopErr
}

// Status returns a best-effort snapshot of scheduler activity. It never
// blocks on worker execution.
func (s *Scheduler) Status() Snapshot {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	s.inFlightMu.Lock()
	inFlight := len(s.inFlight)
	s.inFlightMu.Unlock()

	return Snapshot{
		State:      state,
		QueueDepth: s.queue.Len(),
		Workers:    s.config.Workers,
		InFlight:   inFlight,
		Completed:  s.completed.Load(),
		Failed:     s.failed.Load(),
	}
}

// runWorker is the main loop for one worker goroutine. It pops requests
// until the stop channel closes, processing one request to completion before
// popping again.
func (s *Scheduler) runWorker(ctx context.Context, stop <-chan struct{}, workerID int, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := s.logger.With("worker_id", workerID)
	logger.Debug("Worker started")

	for {
		req, ok := s.queue.Pop(stop)
		if !ok {
			logger.Debug("Worker stopping")
			return
		}
		metrics.SetQueueDepth(s.queue.Len())
		s.process(ctx, stop, req, logger)
	}
}

// process runs a single analysis: acquire a concurrency slot, mark the
// request running, invoke the executor, record the terminal state, and apply
// retry policy on failure.
func (s *Scheduler) process(ctx context.Context, stop <-chan struct{}, req domain.AnalysisRequest, logger *slog.Logger) {
	// The semaphore caps concurrent executions across all workers. If the
	// scheduler stops while waiting for a slot, the request goes back on the
	// queue untouched.
	select {
	case s.sem <- struct{}{}:
	case <-stop:
		s.queue.Push(req)
		return
	case <-ctx.Done():
		s.queue.Push(req)
		return
	}
	defer func() { <-s.sem }()

	logger = logger.With("analysis_id", req.ID, "zone", req.Zone, "attempt", req.RetryCount+1)
	logger.Info("Processing analysis", "priority", req.Priority)

	s.trackInFlight(req)
	defer s.untrackInFlight(req.ID)

	if err := s.tracker.UpdateState(ctx, req.ID, domain.StateRunning, ""); err != nil {
		logger.Error("Failed to record running state", "error", err)
	}
	metrics.AnalysisStarted()

	start := time.Now()
	result, err := s.exec.Execute(ctx, req.Zone)
	duration := time.Since(start)

	if err != nil {
		// A cancelled run context means Stop gave up waiting; the drain path
		// already recorded the terminal state for this request.
		if ctx.Err() != nil {
			logger.Warn("Analysis cancelled during shutdown", "error", err)
			metrics.AnalysisFailed(req.Priority)
			return
		}
		s.handleFailure(ctx, req, err, logger)
		metrics.AnalysisFailed(req.Priority)
		return
	}

	detail := fmt.Sprintf("%s: %s", result.Status, result.Summary)
	if err := s.tracker.UpdateState(ctx, req.ID, domain.StateCompleted, detail); err != nil {
		logger.Error("Failed to record completed state", "error", err)
	}
	s.completed.Add(1)
	metrics.AnalysisCompleted(req.Priority, duration)
	logger.Info("Analysis completed", "status", result.Status, "duration", duration)
}

// handleFailure records the failed attempt and re-enqueues the analysis with
// retry priority while retries remain. Past the retry budget the failure is
// terminal.
func (s *Scheduler) handleFailure(ctx context.Context, req domain.AnalysisRequest, execErr error, logger *slog.Logger) {
	detail := fmt.Sprintf("attempt %d: %v", req.RetryCount+1, execErr)
	if err := s.tracker.UpdateState(ctx, req.ID, domain.StateFailed, detail); err != nil {
		logger.Error("Failed to record failed state", "error", err)
	}

	if req.RetryCount >= s.config.MaxRetries {
		s.failed.Add(1)
		logger.Error("Analysis failed permanently",
			"error", execErr,
			"retries", req.RetryCount,
		)
		return
	}

	retry := req.Retry(s.seq.Add(1))
	if err := s.tracker.UpdateState(ctx, retry.ID, domain.StateQueued,
		fmt.Sprintf("retry %d/%d", retry.RetryCount, s.config.MaxRetries)); err != nil {
		logger.Error("Failed to record queued state for retry", "error", err)
	}
	s.queue.Push(retry)
	metrics.AnalysisRetried()
	metrics.SetQueueDepth(s.queue.Len())

	logger.Warn("Analysis failed, retrying",
		"error", execErr,
		"retry", retry.RetryCount,
		"max_retries", s.config.MaxRetries,
	)
}

// failCancelled marks every in-flight request failed after a drain timeout.
// Uses a background context because the run context is already cancelled.
func (s *Scheduler) failCancelled() {
	s.inFlightMu.Lock()
	cancelled := make([]domain.AnalysisRequest, 0, len(s.inFlight))
	for _, req := range s.inFlight {
		cancelled = append(cancelled, req)
	}
	s.inFlightMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, req := range cancelled {
		if err := s.tracker.UpdateState(ctx, req.ID, domain.StateFailed, "cancelled"); err != nil {
			s.logger.Error("Failed to record cancelled state", "analysis_id", req.ID, "error", err)
		}
		s.failed.Add(1)
	}
}

func (s *Scheduler) trackInFlight(req domain.AnalysisRequest) {
	s.inFlightMu.Lock()
	s.inFlight[req.ID] = req
	s.inFlightMu.Unlock()
}

func (s *Scheduler) untrackInFlight(id uuid.UUID) {
	s.inFlightMu.Lock()
	delete(s.inFlight, id)
	s.inFlightMu.Unlock()
}
