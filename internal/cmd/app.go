package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/quayside/dockhand/internal/api"
	"github.com/quayside/dockhand/internal/config"
	"github.com/quayside/dockhand/internal/search"
	"github.com/quayside/dockhand/internal/storage"
)

// app bundles the collaborators every subcommand needs: config, logger,
// local store, backend client, and the search engine.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *storage.Store
	client   *api.Client
	registry *search.MemRegistry
	engine   *search.Engine
}

// newApp loads config and wires the engine. The local store is optional: a
// failure to open it degrades to in-memory state with a warning.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log.Level)

	client, err := api.New(api.Config{
		BaseURL: cfg.Server.URL,
		Timeout: time.Duration(cfg.Server.TimeoutMs) * time.Millisecond,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	var kv search.KV
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("local store unavailable, state will not persist", "error", err)
	} else {
		kv = store
	}

	registry := search.NewMemRegistry()
	registry.Publish(search.HelpArticles())

	engine, err := search.NewEngine(search.EngineConfig{
		Backend:   client,
		Directory: search.NewResolver(client, kv, registry, logger),
		Ledger:    search.OpenLedger(kv, logger),
		Recent:    search.OpenRecentSearches(kv, logger),
		Logger:    logger,
	})
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		client:   client,
		registry: registry,
		engine:   engine,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	a.engine.Directory().Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing store", "error", err)
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
