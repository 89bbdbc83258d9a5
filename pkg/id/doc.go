// Package id provides 128-bit, time-sortable identifiers for recorded
// interaction events.
//
// # Format
//
// An ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence].
// Byte-wise comparison therefore preserves creation order, and IDs minted
// within the same millisecond remain strictly increasing by sequence. The
// pipeline relies on both properties: eviction breaks recency ties by ID,
// and flush reconciliation removes delivered events by ID identity.
//
// # Encoding
//
// IDs round-trip through the persisted queue snapshot as 32-character hex
// strings via encoding.TextMarshaler/TextUnmarshaler. An empty string decodes
// to the zero ID so snapshots written before identifiers existed still load.
//
// # Monotonicity
//
// A Generator is monotonic per process: a regressing system clock pins the
// timestamp to the last observed millisecond, and a sequence that would wrap
// within one millisecond advances the pinned millisecond instead.
//
// Usage:
//
//	g := id.NewGenerator()
//	eventID := g.Next()
//	s := eventID.String() // 32 hex chars
package id
