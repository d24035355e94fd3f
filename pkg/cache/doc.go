// Package cache provides the per-user keyed cache store that shields the
// GitHub API from redundant calls.
//
// Keys follow the scheme "{prefix}:{user_id}", one prefix per resource
// kind plus auxiliary data (profile, followers, following, rate limit
// status, session resolution). Each prefix carries its own TTL tier:
// merged collections live for an hour, social/profile data for thirty
// minutes, rate limit status for a minute.
//
// Two implementations satisfy Store: a Redis-backed store for production
// and an in-memory store for tests. Callers treat every backend failure
// as a cache miss (Get) or a no-op (Set/Delete/Clear); the cache is an
// optimization, never a source of truth.
//
// Concurrent misses for the same key are not coalesced: two requests may
// both fetch and both write equivalent data. This is an accepted
// efficiency cost, not a correctness issue.
package cache
