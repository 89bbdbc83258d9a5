package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// KV is the persistence collaborator consumed by the pipeline. Implementations
// must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases underlying resources.
	Close() error
}
