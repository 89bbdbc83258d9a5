// Package storage defines the key-value collaborator contract the telemetry
// pipeline persists through.
//
// The pipeline serializes its own state (the pending-interaction snapshot and
// the stored session) and asks a KV for nothing more than Get/Set/Delete on
// opaque byte values, mirroring the local-storage collaborator of the original
// client. Three adapters exist:
//
//   - Memory: process-local map, used in tests and as an explicit opt-out of
//     durability.
//   - pebble (internal/storage/pebble): embedded, crash-safe store; the
//     default backend.
//   - redis (internal/storage/redis): remote store for hosts that already run
//     Redis and want telemetry state off the local disk.
//
// Get returns ErrNotFound (compare with errors.Is) for absent keys.
package storage
