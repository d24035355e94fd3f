package ratelimit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/models"
)

func staticStatus(remaining int) StatusFunc {
	return func(ctx context.Context, token string) (models.RateLimitStatus, error) {
		return models.RateLimitStatus{Limit: 5000, Remaining: remaining}, nil
	}
}

func TestAllow_HealthyBudget(t *testing.T) {
	gate := NewGate(cache.NewMemoryStore(), staticStatus(4000))

	if !gate.Allow(context.Background(), "token", 1, ThresholdRepositories) {
		t.Error("healthy budget was blocked")
	}
}

func TestAllow_BlocksBelowThreshold(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		threshold int
		want      bool
	}{
		{"well above threshold", 500, ThresholdRepositories, true},
		{"exactly at threshold blocks", 100, ThresholdRepositories, false},
		{"below threshold blocks", 40, ThresholdPullRequests, false},
		{"light call site passes where heavy blocks", 40, ThresholdGists, true},
		{"zero budget blocks everything", 0, ThresholdProfile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(cache.NewMemoryStore(), staticStatus(tt.remaining))
			if got := gate.Allow(context.Background(), "token", 1, tt.threshold); got != tt.want {
				t.Errorf("Allow(remaining=%d, threshold=%d) = %v, want %v",
					tt.remaining, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestAllow_FailOpen(t *testing.T) {
	status := func(ctx context.Context, token string) (models.RateLimitStatus, error) {
		return models.RateLimitStatus{}, errors.New("rate limit endpoint down")
	}
	gate := NewGate(cache.NewMemoryStore(), status)

	if !gate.Allow(context.Background(), "token", 1, ThresholdRepositories) {
		t.Error("failed check blocked the request; the gate must fail open")
	}
}

func TestAllow_CachedAcrossCalls(t *testing.T) {
	var calls int32
	status := func(ctx context.Context, token string) (models.RateLimitStatus, error) {
		atomic.AddInt32(&calls, 1)
		return models.RateLimitStatus{Limit: 5000, Remaining: 4000}, nil
	}
	gate := NewGate(cache.NewMemoryStore(), status)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		gate.Allow(ctx, "token", 1, ThresholdRepositories)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("status fetched %d times within the cache window, want 1", got)
	}
}

func TestAllow_OneCacheEntryServesAllThresholds(t *testing.T) {
	var calls int32
	status := func(ctx context.Context, token string) (models.RateLimitStatus, error) {
		atomic.AddInt32(&calls, 1)
		return models.RateLimitStatus{Limit: 5000, Remaining: 60}, nil
	}
	gate := NewGate(cache.NewMemoryStore(), status)
	ctx := context.Background()

	if gate.Allow(ctx, "token", 1, ThresholdRepositories) {
		t.Error("60 remaining must block the repositories threshold")
	}
	if !gate.Allow(ctx, "token", 1, ThresholdGists) {
		t.Error("60 remaining must pass the gists threshold")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("status fetched %d times, want 1 (shared cache entry)", got)
	}
}

func TestAllow_PerUserCache(t *testing.T) {
	var calls int32
	status := func(ctx context.Context, token string) (models.RateLimitStatus, error) {
		atomic.AddInt32(&calls, 1)
		return models.RateLimitStatus{Limit: 5000, Remaining: 4000}, nil
	}
	gate := NewGate(cache.NewMemoryStore(), status)
	ctx := context.Background()

	gate.Allow(ctx, "token-a", 1, ThresholdProfile)
	gate.Allow(ctx, "token-b", 2, ThresholdProfile)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("status fetched %d times for two users, want 2", got)
	}
}
