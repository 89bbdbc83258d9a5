package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/storage"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// pendingKey is the storage key holding the serialized pending queue.
const pendingKey = "pending_interactions"

// QueueStore persists the pending queue as a full JSON snapshot under a
// single key. Every save overwrites the previous snapshot; there is no
// append log. Whether the write is crash-atomic is the adapter's
// concern (the pebble adapter commits through a WAL, the redis adapter
// through a single SET).
type QueueStore struct {
	kv     storage.KV
	logger logpkg.Logger
}

// NewQueueStore returns a QueueStore over the given KV.
func NewQueueStore(kv storage.KV, logger logpkg.Logger) *QueueStore {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &QueueStore{kv: kv, logger: logger.WithComponent("queuestore")}
}

// Load reads the persisted snapshot. A missing snapshot is an empty
// queue; an unreadable one is logged and discarded so recording keeps
// working after a bad shutdown. Events whose kind this build does not
// know (a snapshot written by another version) are dropped rather than
// shipped. Load never fails the caller.
func (s *QueueStore) Load(ctx context.Context) []interaction.Event {
	raw, err := s.kv.Get(ctx, pendingKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.WithError(err).Error("load pending snapshot")
		return nil
	}
	var events []interaction.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		s.logger.WithError(err).Error("pending snapshot unreadable, starting empty")
		return nil
	}
	kept := events[:0]
	for _, ev := range events {
		if !ev.Kind.Valid() {
			continue
		}
		kept = append(kept, ev)
	}
	if dropped := len(events) - len(kept); dropped > 0 {
		s.logger.Warn("dropped restored events with unknown kinds",
			logpkg.Int("dropped", dropped), logpkg.Int("kept", len(kept)))
	}
	return kept
}

// Save overwrites the persisted snapshot with the full queue contents.
func (s *QueueStore) Save(ctx context.Context, events []interaction.Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode pending snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, pendingKey, raw); err != nil {
		return fmt.Errorf("persist pending snapshot: %w", err)
	}
	return nil
}
