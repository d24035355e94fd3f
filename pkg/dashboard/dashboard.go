// Package dashboard wires the fetch-aggregate-cache-serve pipeline for
// each resource kind: rate limit gate, per-user cache-aside load through
// the parallel collector, and the query pipeline over the cached
// collection. One Collection service exists per kind; they differ only in
// field schema and fetch endpoints.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/collector"
	"github.com/hubdeck/hubdeck/pkg/logging"
	"github.com/hubdeck/hubdeck/pkg/query"
)

var (
	// ErrRateLimited indicates the gate refused the fetch because the
	// remaining upstream budget is below the call site's threshold.
	ErrRateLimited = errors.New("rate limit too low, please try again later")
)

// Identity is the authenticated caller: the dashboard user and the
// bearer credential issued by the auth collaborator.
type Identity struct {
	UserID int64
	Login  string
	Token  string
}

// DebugInfo exposes degradation transparently: how long the request
// took, how much of it was fetching, and how many items survived.
type DebugInfo struct {
	ProcessingTime float64 `json:"processing_time"`
	FetchTime      float64 `json:"fetch_time"`
	ItemsTotal     int     `json:"items_total"`
	ItemsReturned  int     `json:"items_returned"`
	CacheHit       bool    `json:"cache_hit"`
}

// Result is the response envelope for one collection query.
type Result[T any] struct {
	Items []T `json:"items"`
	query.Pagination
	SearchQuery        string    `json:"search_query"`
	TableSort          string    `json:"table_sort,omitempty"`
	TableSortDirection string    `json:"table_sort_direction,omitempty"`
	DebugInfo          DebugInfo `json:"debug_info"`
}

// PageFetchFunc fetches one raw page for a credential.
type PageFetchFunc func(ctx context.Context, token string, page, perPage int) ([]json.RawMessage, error)

// CountFunc estimates the total collection size for a credential.
type CountFunc func(ctx context.Context, token string) int

// AllowFunc is the rate limit gate check.
type AllowFunc func(ctx context.Context, token string, userID int64, threshold int) bool

// EnrichFunc optionally augments merged raw records before conversion.
type EnrichFunc func(ctx context.Context, token string, raws []json.RawMessage) []json.RawMessage

// Collection is the cache-aside aggregation service for one resource
// kind.
type Collection[T any] struct {
	kind      string
	prefix    string
	threshold int

	perPage  int
	maxPages int

	store    cache.Store
	allow    AllowFunc
	count    CountFunc
	fetch    PageFetchFunc
	enrich   EnrichFunc
	convert  collector.ConvertFunc[json.RawMessage, T]
	pipeline *query.Pipeline[T]
	colCfg   collector.Config

	logger zerolog.Logger
}

// CollectionConfig assembles a Collection service.
type CollectionConfig[T any] struct {
	Kind      string // metric/log label
	Prefix    string // cache key prefix
	Threshold int    // rate limit gate threshold

	PerPage  int // upstream page size (max 100)
	MaxPages int // hard ceiling on fetched pages

	Store     cache.Store
	Allow     AllowFunc
	Count     CountFunc
	Fetch     PageFetchFunc
	Enrich    EnrichFunc // optional
	Convert   collector.ConvertFunc[json.RawMessage, T]
	Pipeline  *query.Pipeline[T]
	Collector collector.Config
}

// NewCollection creates the aggregation service for one resource kind.
func NewCollection[T any](cfg CollectionConfig[T]) *Collection[T] {
	if cfg.PerPage <= 0 || cfg.PerPage > 100 {
		cfg.PerPage = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 20
	}

	return &Collection[T]{
		kind:      cfg.Kind,
		prefix:    cfg.Prefix,
		threshold: cfg.Threshold,
		perPage:   cfg.PerPage,
		maxPages:  cfg.MaxPages,
		store:     cfg.Store,
		allow:     cfg.Allow,
		count:     cfg.Count,
		fetch:     cfg.Fetch,
		enrich:    cfg.Enrich,
		convert:   cfg.Convert,
		pipeline:  cfg.Pipeline,
		colCfg:    cfg.Collector,
		logger:    logging.NewLogger("dashboard").With().Str("kind", cfg.Kind).Logger(),
	}
}

// Query serves one filtered/sorted/paginated view of the user's
// collection. The merged collection comes from cache when fresh;
// otherwise it is fetched, merged, and cached. Sorting and filtering
// never trigger a refetch.
func (s *Collection[T]) Query(ctx context.Context, id Identity, params query.Params) (*Result[T], error) {
	start := time.Now()

	if !s.allow(ctx, id.Token, id.UserID, s.threshold) {
		return nil, ErrRateLimited
	}

	fetchStart := time.Now()
	items, cacheHit, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	fetchTime := time.Since(fetchStart)

	pageItems, pagination := s.pipeline.Run(items, params)

	s.logger.Debug().
		Int64("user_id", id.UserID).
		Int("items_total", pagination.TotalCount).
		Int("items_returned", len(pageItems)).
		Bool("cache_hit", cacheHit).
		Dur("duration", time.Since(start)).
		Msg("Collection query served")

	return &Result[T]{
		Items:              pageItems,
		Pagination:         pagination,
		SearchQuery:        params.Search,
		TableSort:          params.TableSort,
		TableSortDirection: params.TableSortDirection,
		DebugInfo: DebugInfo{
			ProcessingTime: time.Since(start).Seconds(),
			FetchTime:      fetchTime.Seconds(),
			ItemsTotal:     pagination.TotalCount,
			ItemsReturned:  len(pageItems),
			CacheHit:       cacheHit,
		},
	}, nil
}

// Invalidate drops the user's cached collection for this kind.
func (s *Collection[T]) Invalidate(ctx context.Context, userID int64) error {
	return cache.InvalidateUser(ctx, s.store, userID, s.prefix)
}

// load implements cache-aside: cached collection when present, otherwise
// a full parallel fetch followed by a best-effort cache write. Concurrent
// misses may both fetch; both write equivalent data.
func (s *Collection[T]) load(ctx context.Context, id Identity) ([]T, bool, error) {
	key := cache.UserKey(s.prefix, id.UserID)

	if data, err := s.store.Get(ctx, key); err == nil {
		var items []T
		if err := json.Unmarshal(data, &items); err == nil {
			return items, true, nil
		}
		// Corrupt entry: treat as a miss and overwrite below.
		s.logger.Warn().Str("key", key).Msg("Discarding corrupt cache entry")
	} else if err != cache.ErrMiss {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed - treating as miss")
	}

	total := s.count(ctx, id.Token)

	col := collector.New(s.kind, func(ctx context.Context, page, perPage int) ([]json.RawMessage, error) {
		return s.fetch(ctx, id.Token, page, perPage)
	}, s.convert, s.colCfg)
	if s.enrich != nil {
		col.SetEnrich(func(ctx context.Context, raws []json.RawMessage) []json.RawMessage {
			return s.enrich(ctx, id.Token, raws)
		})
	}

	items, err := col.Collect(ctx, total, s.perPage, s.maxPages)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := s.store.Set(ctx, key, data, cache.TTLCollection); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed - serving uncached")
		}
	}

	return items, false, nil
}
