// Package metrics provides the centralized Prometheus registry reference
// for the dashboard service. All metrics are defined in their respective
// packages (github, cache, collector, ratelimit) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their
// respective packages and exposed on /metrics.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Upstream Request Metrics (pkg/github):
//   - hubdeck_github_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - hubdeck_github_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - hubdeck_github_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Cache Metrics (pkg/cache):
//   - hubdeck_cache_hits_total{backend} (Counter): Cache hits by backend (redis, memory)
//   - hubdeck_cache_misses_total (Counter): Cache misses
//   - hubdeck_cache_written_bytes{backend} (Counter): Bytes written to cache
//   - hubdeck_cache_errors_total{operation} (Counter): Cache operation errors
//
// Collection Metrics (pkg/collector):
//   - hubdeck_collector_pages_total{kind, outcome} (Counter): Pages processed by outcome (ok, failed)
//   - hubdeck_collector_items_total{kind, outcome} (Counter): Items processed by outcome (ok, dropped)
//   - hubdeck_collector_duration_seconds{kind} (Histogram): Collection run duration
//
// Rate Limit Gate Metrics (pkg/ratelimit):
//   - hubdeck_ratelimit_allows_total (Counter): Requests allowed by the gate
//   - hubdeck_ratelimit_blocks_total (Counter): Requests blocked on low budget
//   - hubdeck_ratelimit_fail_open_total (Counter): Failed checks treated as allowed
//   - hubdeck_ratelimit_remaining (Gauge): Remaining upstream budget at last check
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(hubdeck_cache_hits_total[5m])) /
//   (sum(rate(hubdeck_cache_hits_total[5m])) + sum(rate(hubdeck_cache_misses_total[5m])))
//
//   # Dropped Page Ratio
//   sum(rate(hubdeck_collector_pages_total{outcome="failed"}[5m])) /
//   sum(rate(hubdeck_collector_pages_total[5m]))
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(hubdeck_github_request_duration_seconds_bucket[5m]))
//
//   # Gate Block Rate
//   rate(hubdeck_ratelimit_blocks_total[5m])
