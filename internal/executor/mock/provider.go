// Package mock provides an executor for development and tests with
// configurable responses and call tracking.
package mock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zonewatch/zonewatch/internal/executor"
)

// Provider is a mock executor. Responses and errors can be set per test;
// when nothing is configured a canned nominal analysis is returned.
type Provider struct {
	logger *slog.Logger

	mu sync.Mutex

	// ExecuteFunc, when set, fully replaces the mock behavior.
	ExecuteFunc func(ctx context.Context, zoneName string) (*executor.Analysis, error)

	// ExecuteResponse and ExecuteError configure a fixed outcome.
	ExecuteResponse *executor.Analysis
	ExecuteError    error

	calls []string
}

// New creates a new mock executor.
func New(logger *slog.Logger) *Provider {
	return &Provider{logger: logger}
}

// Execute returns the configured outcome, or a canned nominal analysis.
func (p *Provider) Execute(ctx context.Context, zoneName string) (*executor.Analysis, error) {
	p.mu.Lock()
	p.calls = append(p.calls, zoneName)
	fn := p.ExecuteFunc
	resp := p.ExecuteResponse
	err := p.ExecuteError
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, zoneName)
	}
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}

	return &executor.Analysis{
		Status:  executor.StatusNominal,
		Summary: "Zone appears quiet; nothing out of the ordinary.",
		Observations: []executor.Observation{
			{
				Label:      "lighting",
				Detail:     "Overhead lights are on",
				Confidence: executor.ConfidenceHigh,
			},
		},
		Usage: executor.UsageInfo{Model: "mock"},
	}, nil
}

// Calls returns the zone names passed to Execute, in call order.
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many times Execute has been invoked.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
