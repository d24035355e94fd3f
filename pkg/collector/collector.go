// Package collector provides the generic parallel fetch-and-convert
// pipeline behind every resource kind: bounded-concurrency page fetching,
// a second bounded fan-out for per-item conversion, and a tolerant merge
// that prefers partial data over failing the whole request.
package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/pkg/logging"
)

// Prometheus metrics for collection runs.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubdeck_collector_pages_total",
		Help: "Total pages processed by outcome",
	}, []string{"kind", "outcome"}) // "ok", "failed"

	itemsConvertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubdeck_collector_items_total",
		Help: "Total items processed by outcome",
	}, []string{"kind", "outcome"}) // "ok", "dropped"

	collectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hubdeck_collector_duration_seconds",
		Help:    "Collection run duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"kind"})
)

// ErrAllPagesFailed is returned when items were expected but every page
// or item failed, leaving nothing to serve.
var ErrAllPagesFailed = errors.New("all pages failed")

// PageFunc fetches one page of raw records. A returned error drops the
// page; sibling pages are unaffected.
type PageFunc[R any] func(ctx context.Context, page, perPage int) ([]R, error)

// ConvertFunc converts one raw record into a domain item. A returned
// error drops only that item.
type ConvertFunc[R, T any] func(raw R) (T, error)

// EnrichFunc optionally augments the merged raw records before
// conversion (e.g. per-item detail fetches). It must return a record for
// every input; enrichment failures keep the original record.
type EnrichFunc[R any] func(ctx context.Context, raw []R) []R

// Config holds collector limits.
type Config struct {
	// MaxFetchWorkers caps the page fetch pool (network-bound).
	MaxFetchWorkers int

	// MaxConvertWorkers caps the conversion pool (CPU-bound).
	MaxConvertWorkers int

	// PageTimeout bounds each page fetch; a timed-out page is dropped
	// like a failed one.
	PageTimeout time.Duration
}

// DefaultConfig returns safe default limits.
func DefaultConfig() Config {
	return Config{
		MaxFetchWorkers:   10,
		MaxConvertWorkers: 200,
		PageTimeout:       30 * time.Second,
	}
}

// Collector fans out page fetches and item conversions for one resource
// kind. Merged output carries no ordering guarantee; presentation order
// belongs to the query pipeline.
type Collector[R, T any] struct {
	kind    string
	fetch   PageFunc[R]
	convert ConvertFunc[R, T]
	enrich  EnrichFunc[R]
	config  Config
	logger  zerolog.Logger
}

// SetEnrich installs an enrichment stage between merge and conversion.
func (c *Collector[R, T]) SetEnrich(enrich EnrichFunc[R]) {
	c.enrich = enrich
}

// New creates a collector for one resource kind.
func New[R, T any](kind string, fetch PageFunc[R], convert ConvertFunc[R, T], cfg Config) *Collector[R, T] {
	if cfg.MaxFetchWorkers <= 0 {
		cfg.MaxFetchWorkers = 10
	}
	if cfg.MaxConvertWorkers <= 0 {
		cfg.MaxConvertWorkers = 200
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}

	return &Collector[R, T]{
		kind:    kind,
		fetch:   fetch,
		convert: convert,
		config:  cfg,
		logger:  logging.NewLogger("collector").With().Str("kind", kind).Logger(),
	}
}

// Collect fetches ceil(total/perPage) pages (bounded by maxPages) on a
// worker pool, converts the merged raw records on a second pool, and
// returns the merged collection. Pages and items fail independently;
// ErrAllPagesFailed is returned only when items were expected and none
// survived.
func (c *Collector[R, T]) Collect(ctx context.Context, total, perPage, maxPages int) ([]T, error) {
	start := time.Now()
	defer func() {
		collectDuration.WithLabelValues(c.kind).Observe(time.Since(start).Seconds())
	}()

	if perPage <= 0 {
		perPage = 100
	}
	pageCount := (total + perPage - 1) / perPage
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}
	if pageCount < 1 {
		pageCount = 1
	}

	c.logger.Info().
		Int("total_estimate", total).
		Int("pages", pageCount).
		Msg("Starting parallel page fetch")

	raw := c.fetchPages(ctx, pageCount, perPage)
	if c.enrich != nil && len(raw) > 0 {
		raw = c.enrich(ctx, raw)
	}
	items := c.convertItems(ctx, raw)

	if len(items) == 0 && total > 0 {
		c.logger.Error().
			Int("total_estimate", total).
			Int("pages", pageCount).
			Msg("Collection empty where items were expected")
		return nil, ErrAllPagesFailed
	}

	c.logger.Info().
		Int("items", len(items)).
		Int("pages", pageCount).
		Dur("duration", time.Since(start)).
		Msg("Collection fetch complete")

	return items, nil
}

// fetchPages runs the page fetch worker pool and concatenates raw records
// in completion order.
func (c *Collector[R, T]) fetchPages(ctx context.Context, pageCount, perPage int) []R {
	workers := c.config.MaxFetchWorkers
	if pageCount < workers {
		workers = pageCount
	}

	pageQueue := make(chan int, pageCount)
	results := make(chan []R, pageCount)

	for page := 1; page <= pageCount; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pageQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pageCtx, cancel := context.WithTimeout(ctx, c.config.PageTimeout)
				records, err := c.fetch(pageCtx, page, perPage)
				cancel()

				if err != nil {
					pagesFetchedTotal.WithLabelValues(c.kind, "failed").Inc()
					c.logger.Warn().Err(err).Int("page", page).Msg("Page fetch failed")
					continue
				}

				pagesFetchedTotal.WithLabelValues(c.kind, "ok").Inc()
				results <- records
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var merged []R
	for records := range results {
		merged = append(merged, records...)
	}
	return merged
}

// convertItems runs the conversion fan-out and keeps successfully
// converted items, dropping failures individually.
func (c *Collector[R, T]) convertItems(ctx context.Context, raw []R) []T {
	if len(raw) == 0 {
		return nil
	}

	workers := c.config.MaxConvertWorkers
	if len(raw) < workers {
		workers = len(raw)
	}

	queue := make(chan R, len(raw))
	results := make(chan T, len(raw))

	for _, record := range raw {
		queue <- record
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range queue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				item, err := c.convert(record)
				if err != nil {
					itemsConvertedTotal.WithLabelValues(c.kind, "dropped").Inc()
					c.logger.Warn().Err(err).Msg("Dropping item that failed conversion")
					continue
				}

				itemsConvertedTotal.WithLabelValues(c.kind, "ok").Inc()
				results <- item
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	items := make([]T, 0, len(raw))
	for item := range results {
		items = append(items, item)
	}
	return items
}
