// Package github provides the upstream GitHub REST client: single-page
// collection fetchers, rate limit status, and user endpoints. Every call
// is bearer-authenticated and bounded by a timeout; callers decide what a
// failure means (the collection pipeline drops failed pages).
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/pkg/logging"
)

// Prometheus metrics for upstream API operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubdeck_github_requests_total",
		Help: "Total GitHub API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hubdeck_github_request_duration_seconds",
		Help:    "GitHub API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubdeck_github_errors_total",
		Help: "Total GitHub API errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the production GitHub API origin.
const DefaultBaseURL = "https://api.github.com"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API origin (overridden in tests).
	BaseURL string

	// UserAgent identifies this service to GitHub.
	UserAgent string

	// Timeout bounds every request.
	Timeout time.Duration

	// DetailTimeout bounds per-item enrichment requests, which are
	// cheaper and more numerous than page fetches.
	DetailTimeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		UserAgent:     "hubdeck/1.0",
		Timeout:       30 * time.Second,
		DetailTimeout: 10 * time.Second,
	}
}

// Client is the GitHub API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a GitHub API client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "hubdeck/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DetailTimeout <= 0 {
		cfg.DetailTimeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     logging.NewLogger("github-client"),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// get performs an authenticated GET against an API path and returns the
// response body. Non-2xx statuses become an *APIError.
func (c *Client) get(ctx context.Context, token, path string, query url.Values) ([]byte, error) {
	start := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		apiRequestsTotal.WithLabelValues(path, "network_error").Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		class := classifyStatus(resp.StatusCode)
		apiErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("GitHub API request error")
		return nil, &APIError{StatusCode: resp.StatusCode, Class: class, Message: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "read response body", Err: err}
	}
	return body, nil
}

// getPage fetches one page of a paginated JSON-array endpoint.
func (c *Client) getPage(ctx context.Context, token, path string, query url.Values, page, perPage int) ([]json.RawMessage, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("per_page", fmt.Sprintf("%d", perPage))

	body, err := c.get(ctx, token, path, query)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &APIError{Class: ErrorClassDecode, Message: "malformed page body", Err: err}
	}
	return items, nil
}
