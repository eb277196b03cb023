package metrics

import (
	"time"

	"github.com/zonewatch/zonewatch/internal/domain"
)

// AnalysisStarted should be called when an analysis begins executing.
func AnalysisStarted() {
	AnalysesInFlight.Inc()
}

// AnalysisCompleted records a successful analysis.
func AnalysisCompleted(priority domain.Priority, duration time.Duration) {
	AnalysesInFlight.Dec()
	AnalysesTotal.WithLabelValues(priority.String(), "completed").Inc()
	AnalysisDuration.WithLabelValues(priority.String()).Observe(duration.Seconds())
}

// AnalysisFailed records a failed analysis attempt.
func AnalysisFailed(priority domain.Priority) {
	AnalysesInFlight.Dec()
	AnalysesTotal.WithLabelValues(priority.String(), "failed").Inc()
}

// AnalysisRetried records a retry re-enqueue after a failed attempt.
func AnalysisRetried() {
	AnalysisRetriesTotal.Inc()
}

// SetQueueDepth updates the queue depth gauge.
func SetQueueDepth(depth int) {
	QueueDepth.Set(float64(depth))
}
