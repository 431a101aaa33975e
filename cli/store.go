package main

import (
	"fmt"
	"path/filepath"

	"github.com/mwantia/cmdkit/cache"
	"github.com/mwantia/cmdkit/cache/consul"
	"github.com/mwantia/cmdkit/cache/memory"
	"github.com/mwantia/cmdkit/cache/postgres"
	"github.com/mwantia/cmdkit/cache/s3"
	"github.com/mwantia/cmdkit/cache/sqlite"
	"github.com/mwantia/cmdkit/log"
)

// openCache builds the cache on the store the config selects. A store whose
// constructor fails is a config error and aborts startup; a store that
// merely fails to open still degrades the cache to a no-op as usual.
func openCache(cfg *Config, logger *log.Logger) (*cache.Cache, error) {
	opts := []cache.Option{cache.WithLogger(logger.Named("cache"))}

	switch cfg.CacheStore {
	case "", "local":
		return cache.New(cfg.CacheDir, cfg.CacheTTL, cfg.CacheMaxSize, opts...), nil

	case "memory":
		return cache.NewWithStore(memory.NewStore(), cfg.CacheTTL, cfg.CacheMaxSize, opts...), nil

	case "sqlite":
		path := cfg.SqlitePath
		if path == "" {
			path = filepath.Join(cfg.CacheDir, "cache.db")
		}
		store, err := sqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		return cache.NewWithStore(store, cfg.CacheTTL, cfg.CacheMaxSize, opts...), nil

	case "postgres":
		store, err := postgres.NewStore(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return cache.NewWithStore(store, cfg.CacheTTL, cfg.CacheMaxSize, opts...), nil

	case "s3":
		store, err := s3.NewStore(cfg.S3Endpoint, cfg.S3Bucket, cfg.S3Prefix,
			cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return cache.NewWithStore(store, cfg.CacheTTL, cfg.CacheMaxSize, opts...), nil

	case "consul":
		store, err := consul.NewStore(cfg.ConsulAddress, cfg.ConsulPrefix)
		if err != nil {
			return nil, fmt.Errorf("consul store: %w", err)
		}
		return cache.NewWithStore(store, cfg.CacheTTL, cfg.CacheMaxSize, opts...), nil

	default:
		return nil, fmt.Errorf("unknown cache store %q", cfg.CacheStore)
	}
}
