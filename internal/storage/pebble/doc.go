// Package pebblestore adapts a Pebble database to the pipeline's KV contract.
//
// Pebble commits every write through its WAL, so a snapshot overwrite is
// atomic at the key level: a crash mid-write replays or discards the whole
// value, never exposing a torn snapshot. This closes the corruption window a
// plain overwrite-a-file store would have.
//
// # Durability modes
//
// FsyncMode controls when the WAL is synced:
//
//   - FsyncModeAlways: sync on every write. Safest; the default, since queue
//     writes are small and infrequent relative to storage throughput.
//   - FsyncModeInterval: group-commit via WALMinSyncInterval, trading a small
//     durability window for less write amplification under bursts.
//   - FsyncModeNever: never force a sync; Pebble's own policies still apply.
package pebblestore
