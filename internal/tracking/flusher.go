package tracking

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/session"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// FlushOutcome classifies how a flush attempt settled.
type FlushOutcome string

const (
	FlushDelivered       FlushOutcome = "delivered"
	FlushFailed          FlushOutcome = "failed"
	FlushSkippedInFlight FlushOutcome = "skipped_in_flight"
	FlushSkippedEmpty    FlushOutcome = "skipped_empty"
	FlushSkippedNoAuth   FlushOutcome = "skipped_unauthenticated"
)

// Deliverer performs one delivery attempt of a batch. It must not
// mutate the queue and must not retry.
type Deliverer interface {
	Deliver(ctx context.Context, batch interaction.Batch, accessToken string) error
}

// FlusherOptions wire a Flusher. Queue, Store, Governor, Sessions, and
// Deliverer are required.
type FlusherOptions struct {
	Queue     *Queue
	Store     *QueueStore
	Governor  *Governor
	Sessions  session.Provider
	Deliverer Deliverer
	Logger    logpkg.Logger
	Metrics   MetricsHook
}

// Flusher orchestrates flush attempts: the single in-flight slot, the
// session gate, batch snapshotting, delegation to the Deliverer, and
// post-attempt queue mutation.
type Flusher struct {
	queue    *Queue
	store    *QueueStore
	governor *Governor
	sessions session.Provider
	deliver  Deliverer
	logger   logpkg.Logger
	metrics  MetricsHook

	inFlight atomic.Bool
	wg       sync.WaitGroup
	nowFn    func() time.Time
}

// NewFlusher returns a Flusher wired from opts.
func NewFlusher(opts FlusherOptions) *Flusher {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Flusher{
		queue:    opts.Queue,
		store:    opts.Store,
		governor: opts.Governor,
		sessions: opts.Sessions,
		deliver:  opts.Deliverer,
		logger:   logger.WithComponent("flusher"),
		metrics:  metrics,
		nowFn:    time.Now,
	}
}

// FlushPending attempts one delivery of everything pending. At most one
// flush runs at a time; a call overlapping an in-flight flush returns
// immediately. Nothing is transmitted without a usable session, and a
// deferred flush costs no failure count: events stay queued until a
// session appears. The method never raises; failures are logged,
// counted, and retried on a later trigger.
func (f *Flusher) FlushPending(ctx context.Context) FlushOutcome {
	if !f.inFlight.CompareAndSwap(false, true) {
		f.logger.Debug("flush already in flight")
		f.metrics.ObserveFlush(FlushSkippedInFlight, 0, 0)
		return FlushSkippedInFlight
	}
	defer f.inFlight.Store(false)

	pending := f.queue.Snapshot()
	if len(pending) == 0 {
		f.metrics.ObserveFlush(FlushSkippedEmpty, 0, 0)
		return FlushSkippedEmpty
	}

	sess, ok := f.sessions.Current(ctx)
	if !ok {
		f.logger.Debug("flush deferred, no usable session", logpkg.Int("pending", len(pending)))
		f.metrics.ObserveFlush(FlushSkippedNoAuth, len(pending), 0)
		return FlushSkippedNoAuth
	}

	batch := interaction.NewBatch(pending, f.nowFn())
	start := time.Now()
	err := f.deliver.Deliver(ctx, batch, sess.AccessToken)
	dur := time.Since(start)

	if err != nil {
		f.logger.WithError(err).Warn("batch delivery failed",
			logpkg.String("batch_id", batch.ID),
			logpkg.Int("events", len(batch.Events)))
		if f.governor.RecordFailure() > 0 {
			// The threshold eviction changed the queue; persist the survivors.
			f.persist(ctx)
		}
		f.metrics.ObserveFlush(FlushFailed, len(batch.Events), dur)
		return FlushFailed
	}

	// Remove exactly the snapshotted events. Anything recorded while
	// the delivery was in flight stays queued for the next attempt.
	remaining := f.queue.Remove(batch.Events)
	f.persist(ctx)
	f.governor.ResetFailures()
	f.logger.Info("batch delivered",
		logpkg.String("batch_id", batch.ID),
		logpkg.Int("events", len(batch.Events)),
		logpkg.Int("still_pending", remaining))
	f.metrics.ObserveFlush(FlushDelivered, len(batch.Events), dur)
	return FlushDelivered
}

// FlushAsync runs FlushPending on its own goroutine, detached from any
// caller deadline; only the delivery timeout bounds the attempt. Wait
// blocks until every attempt so started has settled.
func (f *Flusher) FlushAsync() {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.FlushPending(context.Background())
	}()
}

// Wait blocks until all FlushAsync attempts have settled, including
// their post-delivery queue persistence. The store must stay open until
// Wait returns.
func (f *Flusher) Wait() {
	f.wg.Wait()
}

func (f *Flusher) persist(ctx context.Context) {
	if err := f.store.Save(ctx, f.queue.Snapshot()); err != nil {
		f.logger.WithError(err).Error("persist pending snapshot")
	}
}
