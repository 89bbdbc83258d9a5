package tracking

import (
	"context"
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
	"github.com/Mid-D-Man/SubashaVentures-sub003/pkg/id"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// RecorderOptions wire a Recorder. Queue, Store, Governor, and Flusher
// are required.
type RecorderOptions struct {
	Queue    *Queue
	Store    *QueueStore
	Governor *Governor
	Flusher  *Flusher
	Logger   logpkg.Logger
	Metrics  MetricsHook
}

// Recorder is the entry point for capturing user interactions. Its
// recording methods never return errors: recording is a best-effort
// side channel, and every internal failure is logged and swallowed.
type Recorder struct {
	queue    *Queue
	store    *QueueStore
	governor *Governor
	flusher  *Flusher
	logger   logpkg.Logger
	metrics  MetricsHook

	gen   *id.Generator
	nowFn func() time.Time
}

// NewRecorder returns a Recorder wired from opts.
func NewRecorder(opts RecorderOptions) *Recorder {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Recorder{
		queue:    opts.Queue,
		store:    opts.Store,
		governor: opts.Governor,
		flusher:  opts.Flusher,
		logger:   logger.WithComponent("recorder"),
		metrics:  metrics,
		gen:      id.NewGenerator(),
		nowFn:    time.Now,
	}
}

// Restore loads the persisted queue into memory and applies the storage
// cap. Called once before recording begins. Returns the number of
// pending events restored.
func (r *Recorder) Restore(ctx context.Context) int {
	r.queue.ReplaceAll(r.store.Load(ctx))
	if r.governor.EnforceCap() > 0 {
		r.persist(ctx)
	}
	n := r.queue.Len()
	if n > 0 {
		r.logger.Info("restored pending interactions", logpkg.Int("pending", n))
	}
	return n
}

// RecordView captures a view of the given subject by the given actor.
func (r *Recorder) RecordView(ctx context.Context, subjectID int64, actorID string) {
	r.record(ctx, interaction.KindView, subjectID, actorID)
}

// RecordClick captures a click on the given subject by the given actor.
func (r *Recorder) RecordClick(ctx context.Context, subjectID int64, actorID string) {
	r.record(ctx, interaction.KindClick, subjectID, actorID)
}

// Pending returns the current queue length.
func (r *Recorder) Pending() int {
	return r.queue.Len()
}

func (r *Recorder) record(ctx context.Context, kind interaction.Kind, subjectID int64, actorID string) {
	ev := interaction.New(r.gen.Next(), subjectID, actorID, kind, r.nowFn())
	n := r.queue.Append(ev)
	r.persist(ctx)
	if r.governor.EnforceCap() > 0 {
		r.persist(ctx)
		n = r.queue.Len()
	}
	r.metrics.ObserveRecord(kind, n)
	if r.governor.ShouldFlush(n) {
		r.flusher.FlushAsync()
	}
}

func (r *Recorder) persist(ctx context.Context) {
	if err := r.store.Save(ctx, r.queue.Snapshot()); err != nil {
		r.logger.WithError(err).Error("persist pending snapshot")
	}
}
