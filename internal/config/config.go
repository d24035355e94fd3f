// Package config loads service configuration from the environment, with
// an optional YAML file (HUBDECK_CONFIG) layered underneath. Environment
// variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	LogLevel  string `yaml:"log_level"`
	PrettyLog bool   `yaml:"pretty_log"`

	GitHub    GitHubConfig    `yaml:"github"`
	Redis     RedisConfig     `yaml:"redis"`
	Collector CollectorConfig `yaml:"collector"`
}

// GitHubConfig configures the upstream API client.
type GitHubConfig struct {
	BaseURL       string        `yaml:"base_url"`
	UserAgent     string        `yaml:"user_agent"`
	Timeout       time.Duration `yaml:"timeout"`
	DetailTimeout time.Duration `yaml:"detail_timeout"`
}

// RedisConfig configures the cache backend. An empty Addr selects the
// in-process memory store.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
}

// CollectorConfig bounds the parallel fetch pipeline.
type CollectorConfig struct {
	MaxFetchWorkers   int           `yaml:"max_fetch_workers"`
	MaxConvertWorkers int           `yaml:"max_convert_workers"`
	PageTimeout       time.Duration `yaml:"page_timeout"`
	PerPage           int           `yaml:"per_page"`
	MaxPages          int           `yaml:"max_pages"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		ListenAddr:      ":8080",
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		PrettyLog:       false,
		GitHub: GitHubConfig{
			BaseURL:       "https://api.github.com",
			UserAgent:     "hubdeck/1.0",
			Timeout:       30 * time.Second,
			DetailTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			DB:           0,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		},
		Collector: CollectorConfig{
			MaxFetchWorkers:   10,
			MaxConvertWorkers: 200,
			PageTimeout:       30 * time.Second,
			PerPage:           100,
			MaxPages:          20,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// HUBDECK_CONFIG (if set), then HUBDECK_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("HUBDECK_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.ListenAddr = getenv("HUBDECK_LISTEN_ADDR", cfg.ListenAddr)
	cfg.ShutdownTimeout = getenvDuration("HUBDECK_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.LogLevel = getenv("HUBDECK_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = getenvBool("HUBDECK_PRETTY_LOG", cfg.PrettyLog)

	cfg.GitHub.BaseURL = getenv("HUBDECK_GITHUB_BASE_URL", cfg.GitHub.BaseURL)
	cfg.GitHub.UserAgent = getenv("HUBDECK_GITHUB_USER_AGENT", cfg.GitHub.UserAgent)
	cfg.GitHub.Timeout = getenvDuration("HUBDECK_GITHUB_TIMEOUT", cfg.GitHub.Timeout)
	cfg.GitHub.DetailTimeout = getenvDuration("HUBDECK_GITHUB_DETAIL_TIMEOUT", cfg.GitHub.DetailTimeout)

	cfg.Redis.Addr = getenv("HUBDECK_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenv("HUBDECK_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getenvInt("HUBDECK_REDIS_DB", cfg.Redis.DB)
	cfg.Redis.DialTimeout = getenvDuration("HUBDECK_REDIS_DIAL_TIMEOUT", cfg.Redis.DialTimeout)
	cfg.Redis.ReadTimeout = getenvDuration("HUBDECK_REDIS_READ_TIMEOUT", cfg.Redis.ReadTimeout)
	cfg.Redis.WriteTimeout = getenvDuration("HUBDECK_REDIS_WRITE_TIMEOUT", cfg.Redis.WriteTimeout)
	cfg.Redis.PoolSize = getenvInt("HUBDECK_REDIS_POOL_SIZE", cfg.Redis.PoolSize)

	cfg.Collector.MaxFetchWorkers = getenvInt("HUBDECK_MAX_FETCH_WORKERS", cfg.Collector.MaxFetchWorkers)
	cfg.Collector.MaxConvertWorkers = getenvInt("HUBDECK_MAX_CONVERT_WORKERS", cfg.Collector.MaxConvertWorkers)
	cfg.Collector.PageTimeout = getenvDuration("HUBDECK_PAGE_TIMEOUT", cfg.Collector.PageTimeout)
	cfg.Collector.PerPage = getenvInt("HUBDECK_PER_PAGE", cfg.Collector.PerPage)
	cfg.Collector.MaxPages = getenvInt("HUBDECK_MAX_PAGES", cfg.Collector.MaxPages)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.GitHub.BaseURL == "" {
		return fmt.Errorf("github.base_url must not be empty")
	}
	if c.Collector.PerPage < 1 || c.Collector.PerPage > 100 {
		return fmt.Errorf("collector.per_page must be in [1,100], got %d", c.Collector.PerPage)
	}
	if c.Collector.MaxPages < 1 {
		return fmt.Errorf("collector.max_pages must be >= 1, got %d", c.Collector.MaxPages)
	}
	if c.Collector.MaxFetchWorkers < 1 {
		return fmt.Errorf("collector.max_fetch_workers must be >= 1, got %d", c.Collector.MaxFetchWorkers)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
