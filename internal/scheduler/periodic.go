package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zonewatch/zonewatch/internal/domain"
	"github.com/zonewatch/zonewatch/internal/registry"
)

// Periodic enqueues scheduled analyses for every enabled zone at its
// configured scan interval. It only touches the scheduler's enqueue surface,
// so it can run whether or not the worker pool is started; requests pile up
// in the queue until workers drain them.
type Periodic struct {
	sched    *Scheduler
	registry *registry.Registry
	logger   *slog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPeriodic creates a stopped periodic scan loop.
func NewPeriodic(sched *Scheduler, reg *registry.Registry, logger *slog.Logger) *Periodic {
	return &Periodic{
		sched:    sched,
		registry: reg,
		logger:   logger,
	}
}

// Start spawns one ticker loop per enabled zone with a non-zero scan
// interval. Calling Start while already started is a no-op.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopCh != nil {
		return
	}
	p.stopCh = make(chan struct{})

	zones := 0
	for _, zone := range p.registry.List() {
		if !zone.Enabled || zone.ScanInterval <= 0 {
			continue
		}
		zones++
		p.wg.Add(1)
		go p.runZone(ctx, zone, p.stopCh)
	}

	p.logger.Info("Periodic scans started", "zones", zones)
}

// Stop terminates all ticker loops and waits for them to exit.
func (p *Periodic) Stop() {
	p.mu.Lock()
	stopCh := p.stopCh
	p.stopCh = nil
	p.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	p.wg.Wait()
	p.logger.Info("Periodic scans stopped")
}

// runZone is the ticker loop for one zone.
func (p *Periodic) runZone(ctx context.Context, zone domain.Zone, stop <-chan struct{}) {
	defer p.wg.Done()

	logger := p.logger.With("zone", zone.Name)
	logger.Debug("Periodic scan loop started", "interval", zone.ScanInterval)

	ticker := time.NewTicker(zone.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			id, err := p.sched.QueueAnalysis(ctx, zone.Name, domain.PriorityScheduled)
			if err != nil {
				logger.Error("Failed to enqueue scheduled analysis", "error", err)
				continue
			}
			logger.Debug("Enqueued scheduled analysis", "analysis_id", id)
		}
	}
}
