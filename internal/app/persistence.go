package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultSnapshotKey is the KV key the board snapshot is stored under.
const DefaultSnapshotKey = "tablero.board"

// SnapshotStore adapts a KVStore to the single-key snapshot contract.
type SnapshotStore struct {
	kv  KVStore
	key string
}

// NewSnapshotStore constructs a snapshot store over kv.
func NewSnapshotStore(kv KVStore, key string) *SnapshotStore {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotStore{kv: kv, key: key}
}

// Key returns the storage key.
func (s *SnapshotStore) Key() string {
	return s.key
}

// Load returns the stored snapshot bytes. A missing key is reported as
// found=false without an error.
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %q: %w", s.key, err)
	}
	return data, true, nil
}

// Save overwrites the stored snapshot.
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save snapshot %q: %w", s.key, err)
	}
	return nil
}

// Clear removes the stored snapshot so the next load falls back to seed data.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear snapshot %q: %w", s.key, err)
	}
	return nil
}

// Purge removes the snapshot key and any keys nested under "<key>.". It
// returns the keys it deleted. Stores without key listing only drop the
// snapshot key itself.
func (s *SnapshotStore) Purge(ctx context.Context) ([]string, error) {
	lister, ok := s.kv.(KeyLister)
	if !ok {
		if _, found, err := s.Load(ctx); err != nil || !found {
			return nil, err
		}
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
		return []string{s.key}, nil
	}
	keys, err := lister.Keys(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("list keys under %q: %w", s.key, err)
	}
	sort.Strings(keys)
	removed := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != s.key && !strings.HasPrefix(key, s.key+".") {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, fmt.Errorf("purge %q: %w", key, err)
		}
		removed = append(removed, key)
	}
	return removed, nil
}

// SavedAt reports when the snapshot was last written. ok is false when the
// store does not track write times or nothing has been saved.
func (s *SnapshotStore) SavedAt(ctx context.Context) (time.Time, bool, error) {
	stamper, ok := s.kv.(Timestamper)
	if !ok {
		return time.Time{}, false, nil
	}
	at, err := stamper.UpdatedAt(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("snapshot %q timestamp: %w", s.key, err)
	}
	return at, true, nil
}
