package app

import (
	"context"
	"time"
)

// KVStore is the durable byte store snapshots live in. Get returns
// ErrNotFound when key has never been written.
type KVStore interface {
	Get(context.Context, string) ([]byte, error)
	Put(context.Context, string, []byte) error
	Delete(context.Context, string) error
}

// SnapshotPersister loads and saves the serialized board.
type SnapshotPersister interface {
	Load(context.Context) ([]byte, bool, error)
	Save(context.Context, []byte) error
	Clear(context.Context) error
}

// KeyLister is implemented by stores that can enumerate keys by prefix.
type KeyLister interface {
	Keys(ctx context.Context, prefixes ...string) ([]string, error)
}

// Timestamper is implemented by stores that record when a key was last written.
type Timestamper interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
