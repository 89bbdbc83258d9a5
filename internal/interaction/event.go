package interaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mid-D-Man/SubashaVentures-sub003/pkg/id"
)

// Kind identifies the user action an Event records.
type Kind string

const (
	KindView  Kind = "view"
	KindClick Kind = "click"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindView, KindClick:
		return true
	}
	return false
}

// Event is a single recorded user action destined for ingestion.
// Field names on the wire match the ingestion contract.
type Event struct {
	ID         id.ID     `json:"id"`
	SubjectID  int64     `json:"subjectId"`
	ActorID    string    `json:"actorId"`
	Kind       Kind      `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New builds an Event stamped with the given occurrence time, normalized to UTC.
func New(eventID id.ID, subjectID int64, actorID string, kind Kind, occurredAt time.Time) Event {
	return Event{
		ID:         eventID,
		SubjectID:  subjectID,
		ActorID:    actorID,
		Kind:       kind,
		OccurredAt: occurredAt.UTC(),
	}
}

// Less orders events by occurrence time, breaking ties by ID. It is a
// total order: two events compare equal only when they are the same event.
func (e Event) Less(other Event) bool {
	if !e.OccurredAt.Equal(other.OccurredAt) {
		return e.OccurredAt.Before(other.OccurredAt)
	}
	return e.ID.Compare(other.ID) < 0
}

// Batch is an immutable snapshot of pending events taken at flush time
// and used for exactly one delivery attempt.
type Batch struct {
	ID         string
	SnapshotAt time.Time
	Events     []Event
}

// NewBatch copies events into a Batch with a fresh identifier. The copy
// keeps the snapshot stable regardless of later queue mutation.
func NewBatch(events []Event, snapshotAt time.Time) Batch {
	cp := make([]Event, len(events))
	copy(cp, events)
	return Batch{
		ID:         uuid.NewString(),
		SnapshotAt: snapshotAt.UTC(),
		Events:     cp,
	}
}
