package tracking

import (
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
)

// MetricsHook observes pipeline activity. Implementations must be safe
// for concurrent use; hooks run inline on recording and flush paths.
type MetricsHook interface {
	// ObserveRecord runs after an event is appended; queueLen is the
	// post-append, post-cap length.
	ObserveRecord(kind interaction.Kind, queueLen int)
	// ObserveFlush runs after a flush attempt settles. batchSize is the
	// snapshot size (zero for skips) and dur the delivery latency
	// (zero when nothing was transmitted).
	ObserveFlush(outcome FlushOutcome, batchSize int, dur time.Duration)
	// ObserveEviction runs when the governor drops events.
	ObserveEviction(reason EvictionReason, evicted, remaining int)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObserveRecord(interaction.Kind, int)           {}
func (NoopMetrics) ObserveFlush(FlushOutcome, int, time.Duration) {}
func (NoopMetrics) ObserveEviction(EvictionReason, int, int)      {}
