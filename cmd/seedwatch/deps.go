package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/FranksOps/seedwatch/internal/config"
	"github.com/FranksOps/seedwatch/internal/fetcher"
	"github.com/FranksOps/seedwatch/internal/fingerprint"
	"github.com/FranksOps/seedwatch/internal/storage"
	"github.com/FranksOps/seedwatch/internal/storage/postgres"
	"github.com/FranksOps/seedwatch/internal/storage/sqlite"
	"github.com/FranksOps/seedwatch/pkg/doccache"
	"github.com/FranksOps/seedwatch/pkg/proxy"
	"github.com/FranksOps/seedwatch/pkg/ratelimit"
)

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newCache(cfg config.Cache) (doccache.Store, error) {
	switch cfg.Backend {
	case "redis":
		return doccache.NewRedis(doccache.RedisConfig{
			Address:  cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return doccache.NewMemory(), nil
	}
}

func newStore(ctx context.Context, cfg config.Store) (storage.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.New(ctx, cfg.DSN)
	default:
		return sqlite.New(cfg.DSN)
	}
}

func newFetcher(cfg *config.Config, cache doccache.Store, logger *slog.Logger) (*fetcher.Fetcher, error) {
	var pool *proxy.Pool
	if len(cfg.Fetch.Proxies) > 0 {
		pool = proxy.NewPool(proxy.Config{})
		if err := pool.Add(cfg.Fetch.Proxies...); err != nil {
			return nil, fmt.Errorf("proxy config: %w", err)
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.Fetch.RatePerSecond > 0 {
		limiter = ratelimit.NewLimiter(cfg.Fetch.RatePerSecond, cfg.Fetch.RateJitter)
	}

	return fetcher.New(fetcher.Config{
		Timeout:      time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		Cache:        cache,
		Fingerprint:  fingerprint.Profile(cfg.Fetch.Fingerprint),
		Limiter:      limiter,
		ProxyPool:    pool,
		Logger:       logger,
	})
}
