package tracking

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/session"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/storage"
	"github.com/Mid-D-Man/SubashaVentures-sub003/pkg/id"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

func discardLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(io.Discard)))
}

// testEvents builds n events with timestamps start, start+step, ...
func testEvents(t *testing.T, n int, start time.Time, step time.Duration) []interaction.Event {
	t.Helper()
	gen := id.NewGenerator()
	events := make([]interaction.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, interaction.New(gen.Next(), int64(i+1), "u1", interaction.KindView, start.Add(time.Duration(i)*step)))
	}
	return events
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

type fakeSessions struct {
	mu   sync.Mutex
	sess session.Session
	ok   bool
}

func (f *fakeSessions) set(s session.Session, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sess, f.ok = s, ok
}

func (f *fakeSessions) IsAuthenticated(ctx context.Context) bool {
	_, ok := f.Current(ctx)
	return ok
}

func (f *fakeSessions) Current(context.Context) (session.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess, f.ok
}

type fakeDeliverer struct {
	mu      sync.Mutex
	batches []interaction.Batch
	tokens  []string
	err     error
	block   chan struct{} // when non-nil, Deliver waits until closed
}

func (f *fakeDeliverer) Deliver(_ context.Context, batch interaction.Batch, accessToken string) error {
	f.mu.Lock()
	f.batches = append(f.batches, batch)
	f.tokens = append(f.tokens, accessToken)
	err := f.err
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeDeliverer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func (f *fakeDeliverer) lastBatch(t *testing.T) interaction.Batch {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		t.Fatalf("no deliveries recorded")
	}
	return f.batches[len(f.batches)-1]
}

func (f *fakeDeliverer) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type captureMetrics struct {
	mu        sync.Mutex
	records   int
	flushes   map[FlushOutcome]int
	evictions map[EvictionReason]int
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{
		flushes:   make(map[FlushOutcome]int),
		evictions: make(map[EvictionReason]int),
	}
}

func (m *captureMetrics) ObserveRecord(interaction.Kind, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records++
}

func (m *captureMetrics) ObserveFlush(outcome FlushOutcome, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes[outcome]++
}

func (m *captureMetrics) ObserveEviction(reason EvictionReason, _, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictions[reason]++
}

func (m *captureMetrics) flushCount(outcome FlushOutcome) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes[outcome]
}

func (m *captureMetrics) evictionCount(reason EvictionReason) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictions[reason]
}

// failKV rejects every operation.
type failKV struct{ err error }

func (f failKV) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failKV) Set(context.Context, string, []byte) error   { return f.err }
func (f failKV) Delete(context.Context, string) error        { return f.err }
func (f failKV) Close() error                                { return nil }

// testPipeline wires the full tracking core over an in-memory KV.
type testPipeline struct {
	kv       *storage.Memory
	queue    *Queue
	store    *QueueStore
	governor *Governor
	sessions *fakeSessions
	deliver  *fakeDeliverer
	flusher  *Flusher
	recorder *Recorder
	metrics  *captureMetrics
}

func newTestPipeline(t *testing.T, limits Limits) *testPipeline {
	t.Helper()
	if limits.MaxBatchSize == 0 {
		limits.MaxBatchSize = 75
	}
	if limits.MaxStored == 0 {
		limits.MaxStored = 500
	}
	if limits.MaxRetryAttempts == 0 {
		limits.MaxRetryAttempts = 3
	}

	logger := discardLogger()
	p := &testPipeline{
		kv:       storage.NewMemory(),
		queue:    NewQueue(),
		sessions: &fakeSessions{},
		deliver:  &fakeDeliverer{},
		metrics:  newCaptureMetrics(),
	}
	p.store = NewQueueStore(p.kv, logger)
	p.governor = NewGovernor(p.queue, limits, logger, p.metrics)
	p.flusher = NewFlusher(FlusherOptions{
		Queue:     p.queue,
		Store:     p.store,
		Governor:  p.governor,
		Sessions:  p.sessions,
		Deliverer: p.deliver,
		Logger:    logger,
		Metrics:   p.metrics,
	})
	p.recorder = NewRecorder(RecorderOptions{
		Queue:    p.queue,
		Store:    p.store,
		Governor: p.governor,
		Flusher:  p.flusher,
		Logger:   logger,
		Metrics:  p.metrics,
	})
	return p
}

// authenticate installs a non-expiring fake session.
func (p *testPipeline) authenticate() {
	p.sessions.set(session.Session{AccessToken: "test-token", RefreshToken: "r"}, true)
}

// persisted decodes the stored snapshot.
func (p *testPipeline) persisted(t *testing.T) []interaction.Event {
	t.Helper()
	return p.store.Load(context.Background())
}
