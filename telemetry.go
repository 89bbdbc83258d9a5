package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/config"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/delivery"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/session"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/storage"
	pebblestore "github.com/Mid-D-Man/SubashaVentures-sub003/internal/storage/pebble"
	redisstore "github.com/Mid-D-Man/SubashaVentures-sub003/internal/storage/redis"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/tracking"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// Aliases re-export the collaborator contracts hosts construct or
// implement themselves. Everything else stays internal.
type (
	// Config carries the pipeline knobs. Build it from DefaultConfig,
	// LoadConfig, or both plus ApplyEnv.
	Config = config.Config
	// Backend selects the durable store implementation.
	Backend = config.Backend
	// KV is the persistence contract a custom store must satisfy. Get
	// must return ErrNotFound for missing keys.
	KV = storage.KV
	// Session is an authenticated session snapshot.
	Session = session.Session
	// SessionProvider answers whether a usable session exists right now.
	SessionProvider = session.Provider
	// SessionManager persists sessions in the pipeline's store and
	// guards token refreshes.
	SessionManager = session.Manager
	// RefreshFunc obtains a fresh session from the auth backend.
	RefreshFunc = session.RefreshFunc
	// MetricsHook observes records, flush outcomes, and evictions.
	MetricsHook = tracking.MetricsHook
	// FlushOutcome classifies how a flush attempt settled.
	FlushOutcome = tracking.FlushOutcome
	// EvictionReason says why pending events were dropped.
	EvictionReason = tracking.EvictionReason
)

const (
	BackendPebble = config.BackendPebble
	BackendRedis  = config.BackendRedis

	FlushDelivered       = tracking.FlushDelivered
	FlushFailed          = tracking.FlushFailed
	FlushSkippedInFlight = tracking.FlushSkippedInFlight
	FlushSkippedEmpty    = tracking.FlushSkippedEmpty
	FlushSkippedNoAuth   = tracking.FlushSkippedNoAuth

	EvictCapacity         = tracking.EvictCapacity
	EvictFailureThreshold = tracking.EvictFailureThreshold
)

// ErrNotFound is what a KV Get must return for a missing key.
var ErrNotFound = storage.ErrNotFound

// DefaultConfig returns the built-in defaults. IngestURL must still be set.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a JSON or YAML config file overlaid on the defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// ApplyEnv overlays SUBASHA_* environment variables onto cfg.
func ApplyEnv(cfg *Config) { config.FromEnv(cfg) }

// NewSessionManager returns a session manager over the given store, for
// hosts that persist sessions outside a Pipeline.
func NewSessionManager(store KV, logger logpkg.Logger) *SessionManager {
	return session.NewManager(store, logger)
}

// Options wire a Pipeline. Only Config is required.
type Options struct {
	Config Config
	// Store overrides the backend selected by Config.StorageBackend.
	// The Pipeline does not close an injected store.
	Store KV
	// Sessions overrides the default store-backed session manager.
	Sessions SessionProvider
	Logger   logpkg.Logger
	Metrics  MetricsHook
}

// Pipeline is the host-facing entry point: it records interactions into
// a durable queue and ships them in authenticated batches. Recording
// and flushing never return errors to the host; internal failures are
// logged and swallowed. Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg      config.Config
	store    storage.KV
	ownStore bool
	manager  *session.Manager
	recorder *tracking.Recorder
	flusher  *tracking.Flusher
	logger   logpkg.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// Open validates the configuration, opens (or adopts) the durable
// store, wires the pipeline, and restores any pending events persisted
// by a previous run.
func Open(opts Options) (*Pipeline, error) {
	cfg := normalize(opts.Config)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		level, err := logpkg.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logpkg.InfoLevel
		}
		logger = logpkg.NewLogger(logpkg.WithLevel(level))
	}

	store := opts.Store
	ownStore := false
	if store == nil {
		var err error
		store, err = openStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		ownStore = true
	}

	sessions := opts.Sessions
	var manager *session.Manager
	if sessions == nil {
		manager = session.NewManager(store, logger)
		sessions = manager
	}

	client, err := delivery.New(delivery.Options{
		IngestURL: cfg.IngestURL,
		Timeout:   cfg.DeliveryTimeout,
		Logger:    logger,
	})
	if err != nil {
		if ownStore {
			store.Close()
		}
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	queue := tracking.NewQueue()
	queueStore := tracking.NewQueueStore(store, logger)
	governor := tracking.NewGovernor(queue, tracking.Limits{
		MaxBatchSize:     cfg.MaxBatchSize,
		MaxStored:        cfg.MaxStoredInteractions,
		MaxRetryAttempts: cfg.MaxRetryAttempts,
	}, logger, opts.Metrics)
	flusher := tracking.NewFlusher(tracking.FlusherOptions{
		Queue:     queue,
		Store:     queueStore,
		Governor:  governor,
		Sessions:  sessions,
		Deliverer: client,
		Logger:    logger,
		Metrics:   opts.Metrics,
	})
	recorder := tracking.NewRecorder(tracking.RecorderOptions{
		Queue:    queue,
		Store:    queueStore,
		Governor: governor,
		Flusher:  flusher,
		Logger:   logger,
		Metrics:  opts.Metrics,
	})

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		cfg:      cfg,
		store:    store,
		ownStore: ownStore,
		manager:  manager,
		recorder: recorder,
		flusher:  flusher,
		logger:   logger.WithComponent("telemetry"),
		ctx:      ctx,
		cancel:   cancel,
	}

	recorder.Restore(context.Background())
	return p, nil
}

// normalize fills zero knobs with defaults so a sparse Config works.
func normalize(cfg config.Config) config.Config {
	def := config.Default()
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = def.MaxBatchSize
	}
	if cfg.MaxStoredInteractions == 0 {
		cfg.MaxStoredInteractions = def.MaxStoredInteractions
	}
	if cfg.MaxRetryAttempts == 0 {
		cfg.MaxRetryAttempts = def.MaxRetryAttempts
	}
	if cfg.DeliveryTimeout == 0 {
		cfg.DeliveryTimeout = def.DeliveryTimeout
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = def.StorageBackend
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return cfg
}

func openStore(cfg config.Config, logger logpkg.Logger) (storage.KV, error) {
	switch cfg.StorageBackend {
	case config.BackendPebble:
		dir := cfg.DataDir
		if dir == "" {
			dir = config.DefaultDataDir()
		}
		store, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("telemetry: open pebble store: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		store, err := redisstore.Open(context.Background(), redisstore.Options{URL: cfg.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("telemetry: open redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("telemetry: unknown storage backend %q", cfg.StorageBackend)
	}
}

// RecordView captures a view of the given subject by the given actor.
// It never fails the caller.
func (p *Pipeline) RecordView(ctx context.Context, subjectID int64, actorID string) {
	p.recorder.RecordView(ctx, subjectID, actorID)
}

// RecordClick captures a click on the given subject by the given actor.
// It never fails the caller.
func (p *Pipeline) RecordClick(ctx context.Context, subjectID int64, actorID string) {
	p.recorder.RecordClick(ctx, subjectID, actorID)
}

// FlushPending attempts one delivery of everything pending. It returns
// once the attempt settles and never fails the caller; overlapping
// calls beyond the first return immediately.
func (p *Pipeline) FlushPending(ctx context.Context) {
	p.flusher.FlushPending(ctx)
}

// Pending returns the number of interactions waiting for delivery.
func (p *Pipeline) Pending() int { return p.recorder.Pending() }

// SessionManager returns the pipeline's store-backed session manager,
// or nil when Options.Sessions injected a custom provider.
func (p *Pipeline) SessionManager() *SessionManager { return p.manager }

// Config returns the normalized configuration the pipeline runs with.
func (p *Pipeline) Config() Config { return p.cfg }

// Start begins the periodic flush loop when FlushInterval > 0. With a
// zero interval flushes happen only on the size trigger and manual
// calls. Start is a no-op when already started or closed, and the
// lifecycle is one-way: once Stop or Close has run, the loop cannot be
// started again.
func (p *Pipeline) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed || p.cfg.FlushInterval <= 0 {
		return
	}
	p.started = true
	p.wg.Add(1)
	go p.run()
}

// Stop halts the periodic flush loop for good; a later Start will not
// revive it. Recording and manual flushes keep working after Stop.
func (p *Pipeline) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Close stops the flush loop, waits for any in-flight flush to settle,
// makes one final best-effort delivery attempt, and closes the store
// when the pipeline owns it. Close is idempotent.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.Stop()
	// A size-triggered flush may still be mid-delivery; it must settle
	// and persist before the final attempt and before the store closes.
	p.flusher.Wait()
	// The loop context is gone; the final attempt gets a fresh one.
	p.flusher.FlushPending(context.Background())

	var err error
	if p.ownStore {
		err = p.store.Close()
	}
	p.logger.Info("pipeline closed", logpkg.Int("pending", p.Pending()))
	return err
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	p.logger.Debug("periodic flush started",
		logpkg.String("interval", p.cfg.FlushInterval.String()))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("periodic flush stopped")
			return
		case <-ticker.C:
			p.flusher.FlushPending(p.ctx)
		}
	}
}
