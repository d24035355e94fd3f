package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/hubdeck/hubdeck/internal/config"
	"github.com/hubdeck/hubdeck/internal/httpserver"
	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/collector"
	"github.com/hubdeck/hubdeck/pkg/dashboard"
	"github.com/hubdeck/hubdeck/pkg/github"
	"github.com/hubdeck/hubdeck/pkg/logging"
	"github.com/hubdeck/hubdeck/pkg/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		logger := logging.NewLogger("main")
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{Level: logging.LogLevel(cfg.LogLevel), Pretty: cfg.PrettyLog})
	logger := logging.NewLogger("main")

	store, cleanup, err := newStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cache backend unavailable")
	}
	defer cleanup()

	client := github.New(github.Config{
		BaseURL:       cfg.GitHub.BaseURL,
		UserAgent:     cfg.GitHub.UserAgent,
		Timeout:       cfg.GitHub.Timeout,
		DetailTimeout: cfg.GitHub.DetailTimeout,
	})

	gate := ratelimit.NewGate(store, client.RateLimit)
	colCfg := collector.Config{
		MaxFetchWorkers:   cfg.Collector.MaxFetchWorkers,
		MaxConvertWorkers: cfg.Collector.MaxConvertWorkers,
		PageTimeout:       cfg.Collector.PageTimeout,
	}

	server := httpserver.New(cfg, httpserver.Deps{
		Auth:         dashboard.NewAuthenticator(store, client),
		Repositories: dashboard.NewRepositories(store, gate, client, colCfg),
		Gists:        dashboard.NewGists(store, gate, client, colCfg),
		PullRequests: dashboard.NewPullRequests(store, gate, client, colCfg),
		Profile:      dashboard.NewProfileService(store, gate, client),
		Store:        store,
		RateLimit:    client.RateLimit,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Graceful shutdown failed")
			os.Exit(1)
		}
		logger.Info().Msg("Shutdown complete")
	}
}

// newStore connects the configured cache backend. An empty Redis address
// selects the in-process memory store.
func newStore(cfg *config.Config) (cache.Store, func(), error) {
	logger := logging.NewLogger("main")

	if cfg.Redis.Addr == "" {
		logger.Warn().Msg("No Redis address configured - using in-process cache")
		return cache.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

	return cache.NewRedisStore(client), func() { _ = client.Close() }, nil
}
