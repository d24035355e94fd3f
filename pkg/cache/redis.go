package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the production Store backed by Redis.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// Get retrieves the value for key. Returns ErrMiss if the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.Inc()
			return nil, ErrMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	cacheHits.WithLabelValues("redis").Inc()
	return data, nil
}

// Set stores value under key with ttl. Non-positive TTLs are not cached.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	cacheSize.WithLabelValues("redis").Add(float64(len(value)))
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every key in the known prefix namespaces by scanning each
// prefix pattern. SCAN keeps this safe against large keyspaces.
func (s *RedisStore) Clear(ctx context.Context) error {
	prefixes := append(append([]string{}, UserPrefixes...), PrefixSession)

	for _, prefix := range prefixes {
		iter := s.redis.Scan(ctx, 0, prefix+":*", 0).Iterator()
		for iter.Next(ctx) {
			if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
				cacheErrors.WithLabelValues("clear").Inc()
				return fmt.Errorf("redis del %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			cacheErrors.WithLabelValues("clear").Inc()
			return fmt.Errorf("redis scan %s: %w", prefix, err)
		}
	}
	return nil
}
