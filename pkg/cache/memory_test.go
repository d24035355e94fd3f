package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "repos:1", []byte(`[{"id":1}]`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "repos:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"id":1}]` {
		t.Errorf("Get = %s", got)
	}
}

func TestMemoryStore_MissOnAbsentKey(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "repos:404"); err != ErrMiss {
		t.Errorf("Get absent key: err = %v, want ErrMiss", err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	if err := store.Set(ctx, "rate_limit:1", []byte("4999"), TTLRateLimit); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := store.Get(ctx, "rate_limit:1"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	store.SetClock(func() time.Time { return now.Add(TTLRateLimit + time.Second) })
	if _, err := store.Get(ctx, "rate_limit:1"); err != ErrMiss {
		t.Errorf("Get after expiry: err = %v, want ErrMiss", err)
	}
}

func TestMemoryStore_NonPositiveTTLNotCached(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "repos:1", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := store.Get(ctx, "repos:1"); err != ErrMiss {
		t.Error("zero-TTL value was cached")
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "repos:1", []byte("abc"), time.Minute)

	first, _ := store.Get(ctx, "repos:1")
	first[0] = 'X'

	second, _ := store.Get(ctx, "repos:1")
	if string(second) != "abc" {
		t.Error("mutating a returned value corrupted the stored entry")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "repos:1", []byte("x"), time.Minute)
	if err := store.Delete(ctx, "repos:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "repos:1"); err != ErrMiss {
		t.Error("deleted key still present")
	}

	// Deleting an absent key is not an error.
	if err := store.Delete(ctx, "repos:404"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, UserKey(PrefixRepositories, 1), []byte("x"), time.Minute)
	store.Set(ctx, UserKey(PrefixGists, 2), []byte("x"), time.Minute)
	store.Set(ctx, SessionKey("token"), []byte("x"), time.Minute)
	store.Set(ctx, "unrelated:key", []byte("x"), time.Minute)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, err := store.Get(ctx, UserKey(PrefixRepositories, 1)); err != ErrMiss {
		t.Error("repos key survived Clear")
	}
	if _, err := store.Get(ctx, UserKey(PrefixGists, 2)); err != ErrMiss {
		t.Error("gists key survived Clear")
	}
	if _, err := store.Get(ctx, SessionKey("token")); err != ErrMiss {
		t.Error("session key survived Clear")
	}
	if _, err := store.Get(ctx, "unrelated:key"); err != nil {
		t.Error("Clear removed a key outside the known namespaces")
	}
}
