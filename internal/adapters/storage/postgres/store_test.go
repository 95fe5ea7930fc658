package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/hylla/tablero/internal/app"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TABLERO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TABLERO_TEST_POSTGRES_DSN not set")
	}
	store, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`a_b%c\`); got != `a\_b\%c\\` {
		t.Fatalf("escapeLike() = %q", got)
	}
}

func TestStoreGetPutDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := "test." + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), key) })

	if _, err := store.Get(ctx, key); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Put(ctx, key, []byte("v1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, key, []byte("v2")); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil || string(got) != "v2" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
	keys, err := store.Keys(ctx, key)
	if err != nil || len(keys) != 1 || keys[0] != key {
		t.Fatalf("Keys() = %v, %v", keys, err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, key); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
