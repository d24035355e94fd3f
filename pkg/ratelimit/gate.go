// Package ratelimit implements the advisory rate-limit gate that stands
// before every collection fetch. The gate checks the upstream call budget
// through a short-lived per-user cache and fails open: an unavailable
// monitoring endpoint must never block the dashboard itself.
package ratelimit

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/logging"
	"github.com/hubdeck/hubdeck/pkg/models"
)

// Prometheus metrics for rate limit gating.
var (
	gateAllowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hubdeck_ratelimit_allows_total",
		Help: "Total requests allowed by the rate limit gate",
	})

	gateBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hubdeck_ratelimit_blocks_total",
		Help: "Total requests blocked due to low remaining budget",
	})

	gateFailOpenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hubdeck_ratelimit_fail_open_total",
		Help: "Total checks that failed and were treated as allowed",
	})

	budgetRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hubdeck_ratelimit_remaining",
		Help: "Remaining upstream call budget at last check",
	})
)

// Thresholds by call-site weight: heavier aggregations demand more
// remaining budget before they start.
const (
	ThresholdRepositories = 100
	ThresholdPullRequests = 50
	ThresholdGists        = 20
	ThresholdProfile      = 10
)

// StatusFunc fetches the upstream rate limit budget for a credential.
type StatusFunc func(ctx context.Context, token string) (models.RateLimitStatus, error)

// Gate is the cached advisory rate limit check.
type Gate struct {
	store  cache.Store
	status StatusFunc
	logger zerolog.Logger
}

// NewGate creates a rate limit gate backed by the given cache store.
func NewGate(store cache.Store, status StatusFunc) *Gate {
	return &Gate{
		store:  store,
		status: status,
		logger: logging.NewLogger("ratelimit"),
	}
}

// Allow reports whether a fetch may proceed for this user. On any check
// failure the gate logs and returns true; a monitoring failure must not
// block usage. The cached value is the raw remaining budget so one cache
// entry serves call sites with different thresholds.
func (g *Gate) Allow(ctx context.Context, token string, userID int64, threshold int) bool {
	key := cache.UserKey(cache.PrefixRateLimit, userID)

	remaining, ok := g.cachedRemaining(ctx, key)
	if !ok {
		status, err := g.status(ctx, token)
		if err != nil {
			gateFailOpenTotal.Inc()
			g.logger.Warn().Err(err).Int64("user_id", userID).
				Msg("Rate limit check failed - allowing request (fail-open)")
			return true
		}

		remaining = status.Remaining
		budgetRemaining.Set(float64(remaining))
		g.logger.Debug().
			Int("remaining", remaining).
			Int("limit", status.Limit).
			Int64("user_id", userID).
			Msg("Rate limit state refreshed")

		if err := g.store.Set(ctx, key, []byte(strconv.Itoa(remaining)), cache.TTLRateLimit); err != nil {
			g.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache rate limit state")
		}
	}

	if remaining <= threshold {
		gateBlocksTotal.Inc()
		g.logger.Warn().
			Int("remaining", remaining).
			Int("threshold", threshold).
			Int64("user_id", userID).
			Msg("Rate limit budget too low - blocking request")
		return false
	}

	gateAllowsTotal.Inc()
	return true
}

// cachedRemaining reads the cached budget; any cache error is a miss.
func (g *Gate) cachedRemaining(ctx context.Context, key string) (int, bool) {
	data, err := g.store.Get(ctx, key)
	if err != nil {
		if err != cache.ErrMiss {
			g.logger.Warn().Err(err).Str("key", key).Msg("Rate limit cache read failed")
		}
		return 0, false
	}
	remaining, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, false
	}
	return remaining, true
}
