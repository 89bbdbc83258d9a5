package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/storage"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each write.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs within FsyncInterval.
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the adapter.
	FsyncModeNever
)

// MetricsHook observes read/write latencies and sizes. Optional.
type MetricsHook interface {
	ObserveRead(elapsed time.Duration, bytes int)
	ObserveWrite(elapsed time.Duration, bytes int)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveRead(time.Duration, int)  {}
func (NoopMetrics) ObserveWrite(time.Duration, int) {}

// Options configures the Pebble-backed store.
type Options struct {
	// DataDir is the path to the Pebble database directory. Required.
	DataDir string
	// Fsync determines when to sync the WAL. Defaults to FsyncModeAlways.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// Logger receives Pebble's internal log output. Optional.
	Logger logpkg.Logger
	// Metrics observes read/write operations. Optional.
	Metrics MetricsHook
}

// Store is a Pebble-backed KV.
type Store struct {
	inner     *pebble.DB
	writeOpts *pebble.WriteOptions
	metrics   MetricsHook
}

var _ storage.KV = (*Store)(nil)

// Open creates or opens the Pebble database at opts.DataDir.
func Open(opts Options) (*Store, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebblestore: Options.DataDir is required")
	}

	po := &pebble.Options{}
	if opts.Logger != nil {
		po.Logger = pebbleLogger{logger: opts.Logger.WithComponent("pebble")}
	}

	writeOpts := pebble.Sync
	switch opts.Fsync {
	case FsyncModeInterval:
		interval := opts.FsyncInterval
		if interval <= 0 {
			interval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return interval }
		writeOpts = pebble.NoSync
	case FsyncModeNever:
		writeOpts = pebble.NoSync
	case FsyncModeAlways, FsyncModeUnspecified:
		// keep pebble.Sync
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Store{inner: inner, writeOpts: writeOpts, metrics: metrics}, nil
}

// Get implements storage.KV.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	start := time.Now()
	val, closer, err := s.inner.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	out := append([]byte(nil), val...)
	s.metrics.ObserveRead(time.Since(start), len(out))
	return out, nil
}

// Set implements storage.KV.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	start := time.Now()
	if err := s.inner.Set([]byte(key), value, s.writeOpts); err != nil {
		return err
	}
	s.metrics.ObserveWrite(time.Since(start), len(value))
	return nil
}

// Delete implements storage.KV.
func (s *Store) Delete(_ context.Context, key string) error {
	return s.inner.Delete([]byte(key), s.writeOpts)
}

// Close implements storage.KV.
func (s *Store) Close() error {
	if s == nil || s.inner == nil {
		return nil
	}
	return s.inner.Close()
}

// pebbleLogger routes Pebble's internal logging through the pipeline logger.
type pebbleLogger struct {
	logger logpkg.Logger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
