package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	corecfg "github.com/aevon-lab/folio-analytics/internal/core/config"
	"github.com/aevon-lab/folio-analytics/internal/core/storage"
	"github.com/aevon-lab/folio-analytics/internal/core/storage/badger"
	"github.com/aevon-lab/folio-analytics/internal/core/storage/file"
	"github.com/aevon-lab/folio-analytics/internal/core/storage/postgres"
	"github.com/aevon-lab/folio-analytics/internal/core/storage/redis"
	"github.com/aevon-lab/folio-analytics/internal/migrations"
	"github.com/aevon-lab/folio-analytics/internal/server"
)

// openStore builds the slot store selected by cfg.Driver. The health checker
// is nil for stores without a remote connection.
func openStore(cfg corecfg.StorageConfig) (storage.SnapshotStore, server.HealthChecker, error) {
	switch cfg.Driver {
	case corecfg.DriverMemory:
		slog.Warn("[Storage] Using in-memory slots; sessions are lost on restart")
		return storage.NewMemoryStore(), nil, nil

	case corecfg.DriverFile:
		store, err := file.NewStore(cfg.File.Dir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("[Storage] Using file slots", "dir", cfg.File.Dir)
		return store, nil, nil

	case corecfg.DriverBadger:
		dir := cfg.Badger.Dir
		if cfg.Badger.InMemory {
			dir = ""
		}
		store, err := badger.Open(dir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("[Storage] Using badger slots", "dir", dir, "in_memory", cfg.Badger.InMemory)
		return store, nil, nil

	case corecfg.DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redis.NewStore(client, cfg.Redis.KeyPrefix)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		slog.Info("[Storage] Using redis slots", "addr", cfg.Redis.Addr, "key_prefix", cfg.Redis.KeyPrefix)
		return store, store, nil

	case corecfg.DriverPostgres:
		adapter, err := postgres.NewAdapter(cfg.Postgres.DSN, cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunMigrations(adapter.DB(), cfg.Postgres.AutoMigrate); err != nil {
			adapter.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		if err := adapter.Prepare(); err != nil {
			adapter.Close()
			return nil, nil, err
		}
		slog.Info("[Storage] Using postgres slots")
		return adapter, adapter, nil
	}

	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}
