package main

import (
	"fmt"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	eventstorage "github.com/aletheon/eleutherios-mvp-sub002/pkg/events/storage"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
)

// loadConfig reads the configured file with ELEU_* environment overrides
// applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildStore opens the configured document store backend.
func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Store.SQLite.Path,
			MaxOpenConns: cfg.Store.SQLite.MaxOpenConns,
			BusyTimeout:  cfg.Store.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// buildEventStorage opens the configured audit storage backend.
func buildEventStorage(cfg *config.Config) (events.Storage, error) {
	switch cfg.Events.Backend {
	case "memory":
		return eventstorage.NewMemoryStorage(), nil
	case "sqlite":
		return eventstorage.NewSQLiteStorage(&eventstorage.SQLiteConfig{
			Path:         cfg.Events.SQLite.Path,
			MaxOpenConns: cfg.Events.SQLite.MaxOpenConns,
			WALMode:      cfg.Events.SQLite.WALMode,
			BusyTimeout:  cfg.Events.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported events backend: %s", cfg.Events.Backend)
	}
}

// buildEmitter creates the audit emitter over the given storage.
func buildEmitter(cfg *config.Config, storage events.Storage) *events.Emitter {
	return events.NewEmitter(storage, &events.EmitterConfig{
		MaxAttempts:  cfg.Events.Emitter.MaxAttempts,
		RetryBackoff: cfg.Events.Emitter.RetryBackoff,
	})
}

// archiveMaxAge converts the configured day count to a duration.
func archiveMaxAge(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
