package id

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
	"time"
)

// ID is a 128-bit, time-sortable identifier encoded as 16 bytes big-endian:
// [8 bytes ms_timestamp][8 bytes sequence].
type ID [16]byte

// Zero is the all-zero ID, used for events loaded from snapshots that predate
// per-event identifiers.
var Zero ID

// IsZero reports whether the ID is the zero value.
func (i ID) IsZero() bool { return i == Zero }

// Time returns the millisecond timestamp component as a UTC time.
func (i ID) Time() time.Time {
	ms := int64(binary.BigEndian.Uint64(i[0:8]))
	return time.UnixMilli(ms).UTC()
}

// Compare returns -1, 0, or 1 ordering IDs byte-wise, which matches
// chronological order of creation.
func (i ID) Compare(other ID) int { return bytes.Compare(i[:], other[:]) }

// String returns the 32-character lowercase hex form.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// MarshalText implements encoding.TextMarshaler. The zero ID marshals to the
// empty string.
func (i ID) MarshalText() ([]byte, error) {
	if i.IsZero() {
		return []byte(""), nil
	}
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// zero ID.
func (i *ID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*i = Zero
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Parse decodes a 32-character hex string into an ID.
func Parse(s string) (ID, error) {
	var out ID
	if len(s) != 32 {
		return out, fmt.Errorf("id: want 32 hex chars, got %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("id: %w", err)
	}
	copy(out[:], raw)
	return out, nil
}

// Generator mints monotonically increasing IDs for one process.
type Generator struct {
	mu       sync.Mutex
	lastMS   int64
	sequence uint64
	nowMS    func() int64
}

// NewGenerator returns a Generator backed by the wall clock.
func NewGenerator() *Generator {
	return &Generator{nowMS: func() int64 { return time.Now().UnixMilli() }}
}

// Next returns a fresh ID strictly greater than every ID this Generator has
// returned before. A regressing clock pins to the last observed millisecond;
// sequence exhaustion within one millisecond advances that millisecond.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.nowMS()
	if ms < g.lastMS {
		ms = g.lastMS
	}
	if ms == g.lastMS {
		if g.sequence == math.MaxUint64 {
			ms++
			g.sequence = 0
		} else {
			g.sequence++
		}
	} else {
		g.sequence = 0
	}
	g.lastMS = ms

	var out ID
	binary.BigEndian.PutUint64(out[0:8], uint64(ms))
	binary.BigEndian.PutUint64(out[8:16], g.sequence)
	return out
}
