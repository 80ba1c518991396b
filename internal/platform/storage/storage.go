// Package storage opens the durable medium selected by configuration and
// exposes it as a durable.Factory.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/genflow/internal/config"
	"github.com/phrazzld/genflow/internal/durable"
	"github.com/phrazzld/genflow/internal/platform/postgres"
	"github.com/phrazzld/genflow/internal/platform/redisstore"
)

// Backend is an opened durable medium.
type Backend struct {
	Name    string
	Factory durable.Factory

	// DB is set for the postgres backend.
	DB *sql.DB

	// Redis is set for the redis backend.
	Redis *redisstore.Client

	closers []func() error
}

// Open connects to the backend named by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "storage", "backend", cfg.Store.Backend)

	b := &Backend{Name: cfg.Store.Backend}
	capacity := cfg.Store.MaxSnapshotBytes

	switch cfg.Store.Backend {
	case config.BackendMemory:
		b.Factory = durable.NewMemoryBackend(capacity).Store

	case config.BackendFile:
		b.Factory = durable.FileFactory(cfg.Store.Dir, capacity)

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		b.DB = db
		b.closers = append(b.closers, db.Close)
		b.Factory = postgres.SnapshotFactory(db, postgres.SnapshotStoreOptions{
			Timeout:  cfg.Store.Timeout,
			Capacity: capacity,
			Logger:   logger,
		})

	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisstore.Options{
			TTL:      cfg.Redis.TTL,
			Timeout:  cfg.Store.Timeout,
			Capacity: capacity,
		})
		if err != nil {
			return nil, err
		}
		b.Redis = client
		b.closers = append(b.closers, client.Close)
		b.Factory = client.Store

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	log.Info("durable store opened", "max_snapshot_bytes", capacity)
	return b, nil
}

// Close releases connections held by the backend.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
