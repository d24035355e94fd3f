package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memoryEntry is a value with its expiry deadline.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryStore is an in-memory Store for tests and single-process use.
// Expiry is checked on read; there is no background janitor.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the value for key, or ErrMiss if absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || entry.expired(s.now()) {
		cacheMisses.Inc()
		return nil, ErrMiss
	}

	cacheHits.WithLabelValues("memory").Inc()
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores value under key for ttl. Non-positive TTLs are not cached.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.entries[key] = memoryEntry{value: stored, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Clear removes every key in the known prefix namespaces.
func (s *MemoryStore) Clear(_ context.Context) error {
	prefixes := append(append([]string{}, UserPrefixes...), PrefixSession)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix+":") {
				delete(s.entries, key)
				break
			}
		}
	}
	return nil
}

// SetClock overrides the store's clock (for TTL tests).
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}
