package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUserKey(t *testing.T) {
	tests := []struct {
		prefix string
		userID int64
		want   string
	}{
		{PrefixRepositories, 42, "repos:42"},
		{PrefixGists, 42, "gists:42"},
		{PrefixPullRequests, 7, "pulls:7"},
		{PrefixRateLimit, 1, "rate_limit:1"},
	}

	for _, tt := range tests {
		if got := UserKey(tt.prefix, tt.userID); got != tt.want {
			t.Errorf("UserKey(%s, %d) = %s, want %s", tt.prefix, tt.userID, got, tt.want)
		}
	}
}

func TestUserKey_Deterministic(t *testing.T) {
	if UserKey(PrefixProfile, 99) != UserKey(PrefixProfile, 99) {
		t.Error("UserKey is not deterministic")
	}
}

func TestSessionKey(t *testing.T) {
	key := SessionKey("gho_secret_token")

	if key == SessionKey("gho_other_token") {
		t.Error("different tokens produced the same session key")
	}
	if key != SessionKey("gho_secret_token") {
		t.Error("SessionKey is not deterministic")
	}
	// The raw token must never appear in the key.
	if len(key) != len(PrefixSession)+1+16 {
		t.Errorf("unexpected session key shape: %s", key)
	}
}

func TestInvalidateUser_AllPrefixes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, prefix := range UserPrefixes {
		if err := store.Set(ctx, UserKey(prefix, 1), []byte("x"), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	// Another user's data must survive.
	if err := store.Set(ctx, UserKey(PrefixRepositories, 2), []byte("x"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := InvalidateUser(ctx, store, 1); err != nil {
		t.Fatalf("InvalidateUser: %v", err)
	}

	for _, prefix := range UserPrefixes {
		if _, err := store.Get(ctx, UserKey(prefix, 1)); err != ErrMiss {
			t.Errorf("key %s survived invalidation", UserKey(prefix, 1))
		}
	}
	if _, err := store.Get(ctx, UserKey(PrefixRepositories, 2)); err != nil {
		t.Error("unrelated user's key was invalidated")
	}
}

func TestInvalidateUser_SelectedPrefixes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, UserKey(PrefixRepositories, 1), []byte("x"), time.Minute)
	store.Set(ctx, UserKey(PrefixGists, 1), []byte("x"), time.Minute)

	if err := InvalidateUser(ctx, store, 1, PrefixRepositories); err != nil {
		t.Fatalf("InvalidateUser: %v", err)
	}

	if _, err := store.Get(ctx, UserKey(PrefixRepositories, 1)); err != ErrMiss {
		t.Error("selected prefix survived invalidation")
	}
	if _, err := store.Get(ctx, UserKey(PrefixGists, 1)); err != nil {
		t.Error("unselected prefix was invalidated")
	}
}

// failingStore fails deletes for one key but keeps working for the rest.
type failingStore struct {
	*MemoryStore
	failKey string
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if key == s.failKey {
		return errors.New("backend down")
	}
	return s.MemoryStore.Delete(ctx, key)
}

func TestInvalidateUser_ContinuesPastErrors(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore(), failKey: UserKey(PrefixRepositories, 1)}

	for _, prefix := range UserPrefixes {
		store.Set(ctx, UserKey(prefix, 1), []byte("x"), time.Minute)
	}

	err := InvalidateUser(ctx, store, 1)
	if err == nil {
		t.Fatal("expected the delete error to surface")
	}

	// Every other prefix must still have been deleted.
	for _, prefix := range UserPrefixes {
		if prefix == PrefixRepositories {
			continue
		}
		if _, err := store.Get(ctx, UserKey(prefix, 1)); err != ErrMiss {
			t.Errorf("key %s survived after a sibling delete failed", UserKey(prefix, 1))
		}
	}
}
