package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMiss indicates the requested key was not found in cache.
	ErrMiss = errors.New("cache miss")
)

// Cache key prefixes, one per resource kind or auxiliary data family.
const (
	PrefixRepositories = "repos"
	PrefixGists        = "gists"
	PrefixPullRequests = "pulls"
	PrefixFollowers    = "followers"
	PrefixFollowing    = "following"
	PrefixProfile      = "profile"
	PrefixRateLimit    = "rate_limit"
	PrefixSession      = "session"
)

// TTL tiers by data family.
const (
	// TTLCollection is the lifetime of a merged collection (repos, gists,
	// pull requests).
	TTLCollection = 1 * time.Hour

	// TTLProfile is the lifetime of profile, followers, and following data.
	TTLProfile = 30 * time.Minute

	// TTLRateLimit is the lifetime of the cached rate limit status.
	TTLRateLimit = 60 * time.Second

	// TTLSession is the lifetime of a bearer-token-to-user resolution.
	TTLSession = 5 * time.Minute
)

// UserPrefixes is the full set of per-user key prefixes cleared by a
// prefix-less InvalidateUser (logout, admin clear).
var UserPrefixes = []string{
	PrefixRepositories,
	PrefixGists,
	PrefixPullRequests,
	PrefixFollowers,
	PrefixFollowing,
	PrefixProfile,
	PrefixRateLimit,
}

// Store is the cache backend contract. All operations are best-effort:
// callers degrade a Get error to a miss and log-and-continue on write
// errors.
type Store interface {
	// Get returns the value for key, or ErrMiss if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key in the known prefix namespaces, across all
	// users.
	Clear(ctx context.Context) error
}

// UserKey derives the cache key for a user-scoped data family.
// Derivation is pure and deterministic: "{prefix}:{user_id}".
func UserKey(prefix string, userID int64) string {
	return fmt.Sprintf("%s:%d", prefix, userID)
}

// SessionKey derives the cache key for a bearer-token resolution. The
// token never appears in the key; a truncated digest does.
func SessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return PrefixSession + ":" + hex.EncodeToString(sum[:8])
}

// InvalidateUser removes cached data for one user. With prefixes given it
// deletes exactly those keys; without, it deletes every known per-user
// prefix. The first backend error is returned but deletion continues, so
// one failing key does not leave the rest stale.
func InvalidateUser(ctx context.Context, store Store, userID int64, prefixes ...string) error {
	if len(prefixes) == 0 {
		prefixes = UserPrefixes
	}

	var firstErr error
	for _, prefix := range prefixes {
		if err := store.Delete(ctx, UserKey(prefix, userID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
