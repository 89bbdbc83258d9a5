// Package interaction defines the domain types carried through the
// batching pipeline: the Event recorded for each user action, the Kind
// enum distinguishing views from clicks, and the immutable Batch
// snapshot handed to the delivery client.
//
// Events are immutable once created. Each carries a time-sortable ID
// assigned at creation; the ID gives events an identity independent of
// their payload, which the flush controller relies on to remove exactly
// the delivered events from the pending queue, and it breaks timestamp
// ties when eviction orders events by recency.
package interaction
