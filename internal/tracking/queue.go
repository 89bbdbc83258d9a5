package tracking

import (
	"sort"
	"sync"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
	"github.com/Mid-D-Man/SubashaVentures-sub003/pkg/id"
)

// Queue is the in-memory pending-event queue. Events sit at the tail in
// insertion order; eviction favors recency, not arrival. All access is
// mutex guarded. Durability is QueueStore's job, not Queue's.
type Queue struct {
	mu     sync.Mutex
	events []interaction.Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Append adds an event at the tail and returns the new length.
func (q *Queue) Append(ev interaction.Event) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, ev)
	return len(q.events)
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Snapshot returns a copy of the pending events in insertion order.
func (q *Queue) Snapshot() []interaction.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]interaction.Event(nil), q.events...)
}

// ReplaceAll swaps the queue contents, copying the input.
func (q *Queue) ReplaceAll(events []interaction.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append([]interaction.Event(nil), events...)
}

// Remove deletes the given events by ID, preserving the order of the
// remainder, and returns the new length. Events appended after the
// caller snapshotted are untouched.
func (q *Queue) Remove(delivered []interaction.Event) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(delivered) == 0 || len(q.events) == 0 {
		return len(q.events)
	}
	drop := make(map[id.ID]struct{}, len(delivered))
	for _, ev := range delivered {
		drop[ev.ID] = struct{}{}
	}
	kept := q.events[:0]
	for _, ev := range q.events {
		if _, ok := drop[ev.ID]; ok {
			continue
		}
		kept = append(kept, ev)
	}
	q.events = kept
	return len(q.events)
}

// RetainMostRecent keeps the n most recent events, ranked by occurrence
// time with ID as the tiebreaker, preserving the insertion order of the
// survivors. Returns the number of events evicted.
func (q *Queue) RetainMostRecent(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if len(q.events) <= n {
		return 0
	}

	// Rank positions by recency without disturbing insertion order.
	ranked := make([]int, len(q.events))
	for i := range ranked {
		ranked[i] = i
	}
	sort.Slice(ranked, func(a, b int) bool {
		return q.events[ranked[b]].Less(q.events[ranked[a]])
	})
	keep := make(map[int]struct{}, n)
	for _, pos := range ranked[:n] {
		keep[pos] = struct{}{}
	}

	kept := make([]interaction.Event, 0, n)
	for pos, ev := range q.events {
		if _, ok := keep[pos]; ok {
			kept = append(kept, ev)
		}
	}
	evicted := len(q.events) - len(kept)
	q.events = kept
	return evicted
}
