package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks cache hits by backend (redis, memory).
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubdeck_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"},
	)

	// cacheMisses tracks cache misses.
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hubdeck_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// cacheSize tracks bytes written to the cache by backend.
	cacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hubdeck_cache_written_bytes",
			Help: "Bytes written to the cache",
		},
		[]string{"backend"},
	)

	// cacheErrors tracks cache operation errors.
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubdeck_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear"
	)
)
