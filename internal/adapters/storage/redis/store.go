package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hylla/tablero/internal/app"
)

// DefaultPrefix namespaces every key this store writes.
const DefaultPrefix = "tablero:"

// Store is a key/value store over a Redis client.
type Store struct {
	client *goredis.Client
	prefix string
	owned  bool
}

// New wraps an existing client. The caller keeps ownership of client.
func New(client *goredis.Client, prefix string) *Store {
	if client == nil {
		panic("redis.New: client is nil")
	}
	return &Store{client: client, prefix: prefix}
}

// Open dials addr and verifies the connection with PING.
func Open(ctx context.Context, addr string) (*Store, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	s := New(client, DefaultPrefix)
	s.owned = true
	return s, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Put stores value under key without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key, reporting app.ErrNotFound when it was absent.
func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	if n == 0 {
		return app.ErrNotFound
	}
	return nil
}

// Keys lists stored keys starting with any of prefixes, or every key when
// none are given. Keys come back without the store prefix.
func (s *Store) Keys(ctx context.Context, prefixes ...string) ([]string, error) {
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}
	seen := map[string]struct{}{}
	var keys []string
	for _, p := range prefixes {
		iter := s.client.Scan(ctx, 0, globEscaper.Replace(s.prefix+p)+"*", 100).Iterator()
		for iter.Next(ctx) {
			key := strings.TrimPrefix(iter.Val(), s.prefix)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("redis scan %q: %w", p, err)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// globEscaper quotes SCAN MATCH metacharacters.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// Close releases the client when Open created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
