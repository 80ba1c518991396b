package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/genflow/internal/api"
	"github.com/phrazzld/genflow/internal/config"
	"github.com/phrazzld/genflow/internal/events"
	"github.com/phrazzld/genflow/internal/generate"
	"github.com/phrazzld/genflow/internal/platform/postgres"
	"github.com/phrazzld/genflow/internal/platform/storage"
	"github.com/phrazzld/genflow/internal/service/auth"
	"github.com/phrazzld/genflow/internal/session"
)

// application holds the wired dependencies of the server.
type application struct {
	config     *config.Config
	logger     *slog.Logger
	backend    *storage.Backend
	registry   *session.Registry
	jwtService auth.JWTService
}

// newApplication opens the durable store, applies migrations when the store
// is PostgreSQL and builds the per-context manager registry.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	if backend.DB != nil {
		if err := postgres.Migrate(ctx, backend.DB, postgres.MigrateUp, logger); err != nil {
			_ = backend.Close()
			return nil, err
		}
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))

	registry := session.NewRegistry(
		backend.Factory,
		emitter,
		logger,
		generate.WithHistoryLimit(cfg.Manager.HistoryLimit),
	)

	return &application{
		config:     cfg,
		logger:     logger,
		backend:    backend,
		registry:   registry,
		jwtService: jwtService,
	}, nil
}

// router builds the HTTP handler of the application.
func (app *application) router() http.Handler {
	return api.NewRouter(app.registry, app.jwtService, app.logger)
}

// cleanup releases the durable store.
func (app *application) cleanup() {
	if err := app.backend.Close(); err != nil {
		app.logger.Error("failed to close store", "error", err)
	}
}
