// Package httpserver exposes the dashboard over HTTP: the collection and
// profile endpoints under /api, cache administration, health, and
// Prometheus metrics.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/internal/config"
	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/dashboard"
	"github.com/hubdeck/hubdeck/pkg/logging"
	"github.com/hubdeck/hubdeck/pkg/models"
)

// Deps are the services the HTTP layer serves.
type Deps struct {
	Auth         *dashboard.Authenticator
	Repositories *dashboard.Collection[models.Repository]
	Gists        *dashboard.Collection[models.Gist]
	PullRequests *dashboard.Collection[models.PullRequest]
	Profile      *dashboard.ProfileService
	Store        cache.Store
	RateLimit    func(ctx context.Context, token string) (models.RateLimitStatus, error)
}

// Server wraps the HTTP server and its routing.
type Server struct {
	http   *http.Server
	logger zerolog.Logger
}

// New builds the HTTP server: router, middleware stack, and routes.
func New(cfg *config.Config, d Deps) *Server {
	logger := logging.NewLogger("httpserver")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(accessLog(logger))

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(authenticate(d.Auth, logger))

		r.Get("/repositories", handleCollection(d.Repositories))
		r.Get("/gists", handleCollection(d.Gists))
		r.Get("/pull-requests", handleCollection(d.PullRequests))
		r.Get("/profile", handleProfile(d.Profile))
		r.Get("/user", handleUser(d.Profile))
		r.Get("/rate-limit", handleRateLimit(d.RateLimit))
		r.Post("/logout", handleLogout(d.Profile))
		r.Post("/cache/clear", handleCacheClear(d.Store))
		r.Post("/cache/clear-all", handleCacheClearAll(d.Store))
	})

	return &Server{
		http: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      90 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the configured root handler (for tests).
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start runs the server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
	if err := s.http.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests until the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
