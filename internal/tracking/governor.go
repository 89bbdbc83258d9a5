package tracking

import (
	"sync"

	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// EvictionReason tags why the governor dropped events.
type EvictionReason string

const (
	EvictCapacity         EvictionReason = "capacity"
	EvictFailureThreshold EvictionReason = "failure_threshold"
)

// Limits are the queue-bounding knobs, fixed at construction.
type Limits struct {
	// MaxBatchSize is the queue length that triggers a flush.
	MaxBatchSize int
	// MaxStored caps the pending queue.
	MaxStored int
	// MaxRetryAttempts is the consecutive-failure count at which the
	// queue is halved.
	MaxRetryAttempts int
}

// Governor bounds queue growth. It owns the hard storage cap, the
// consecutive-failure counter, and the flush trigger predicate. Growth
// is bounded at the cost of data loss, always favoring recency.
type Governor struct {
	queue   *Queue
	limits  Limits
	logger  logpkg.Logger
	metrics MetricsHook

	mu       sync.Mutex
	failures int
}

// NewGovernor returns a Governor over the given queue.
func NewGovernor(queue *Queue, limits Limits, logger logpkg.Logger, metrics MetricsHook) *Governor {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Governor{
		queue:   queue,
		limits:  limits,
		logger:  logger.WithComponent("governor"),
		metrics: metrics,
	}
}

// ShouldFlush reports whether n pending events warrant a flush.
func (g *Governor) ShouldFlush(n int) bool {
	return n >= g.limits.MaxBatchSize
}

// EnforceCap applies the hard storage cap, keeping the MaxStored most
// recent events. Runs after every insert and after startup load,
// independent of flush activity. Returns the number of events evicted.
func (g *Governor) EnforceCap() int {
	evicted := g.queue.RetainMostRecent(g.limits.MaxStored)
	if evicted > 0 {
		remaining := g.queue.Len()
		g.logger.Warn("pending queue over capacity, dropped oldest events",
			logpkg.Int("evicted", evicted),
			logpkg.Int("remaining", remaining))
		g.metrics.ObserveEviction(EvictCapacity, evicted, remaining)
	}
	return evicted
}

// RecordFailure counts one failed delivery attempt. On the
// MaxRetryAttempts-th consecutive failure the queue is cut to its
// floor(len/2) most recent events and the counter resets. Returns the
// number of events evicted, zero below the threshold.
func (g *Governor) RecordFailure() int {
	g.mu.Lock()
	g.failures++
	if g.failures < g.limits.MaxRetryAttempts {
		count := g.failures
		g.mu.Unlock()
		g.logger.Debug("delivery failure counted", logpkg.Int("consecutive", count))
		return 0
	}
	g.failures = 0
	g.mu.Unlock()

	evicted := g.queue.RetainMostRecent(g.queue.Len() / 2)
	remaining := g.queue.Len()
	g.logger.Warn("delivery failure threshold reached, halved pending queue",
		logpkg.Int("evicted", evicted),
		logpkg.Int("remaining", remaining))
	g.metrics.ObserveEviction(EvictFailureThreshold, evicted, remaining)
	return evicted
}

// ResetFailures clears the consecutive-failure counter. Called after a
// successful delivery.
func (g *Governor) ResetFailures() {
	g.mu.Lock()
	g.failures = 0
	g.mu.Unlock()
}

// Failures returns the current consecutive-failure count.
func (g *Governor) Failures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures
}
