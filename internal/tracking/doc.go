// Package tracking implements the interaction batching core: the
// in-memory pending queue, its durable snapshot, the backpressure
// governor, the flush controller, and the recording entry point.
//
// # Overview
//
// Events flow through one path:
//
//	Recorder.RecordView/RecordClick
//	  -> Queue.Append             (in-memory tail append)
//	  -> QueueStore.Save          (full-snapshot overwrite, key pending_interactions)
//	  -> Governor.EnforceCap      (keep the most recent MaxStored, persist again on eviction)
//	  -> Governor.ShouldFlush     (length >= MaxBatchSize)
//	  -> Flusher.FlushAsync       (detached goroutine when triggered)
//
// Flusher.FlushPending holds the only in-flight slot (atomic
// compare-and-swap), defers when no usable session exists, snapshots
// the queue into an immutable batch, and hands it to the Deliverer for
// exactly one attempt. Success removes precisely the snapshotted
// events, so anything recorded during the network call stays queued.
// Failure feeds the governor, which halves the queue to its most
// recent events after MaxRetryAttempts consecutive failures.
//
// # Failure policy
//
// Recording never raises: storage and delivery failures are logged and
// swallowed so instrumentation cannot break the host application.
// Persistence is best-effort; the in-memory queue advances even when a
// save fails, and a corrupt snapshot on disk is discarded at startup.
//
// Observability runs through the MetricsHook seam; the default
// NoopMetrics discards everything.
package tracking
