package config

import (
	"fmt"
	"net"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns the first error found.
func Validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("store.backend: unknown backend %q (expected \"memory\" or \"sqlite\")", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "sqlite" && cfg.Store.SQLite.Path == "" {
		return fmt.Errorf("store.sqlite.path: required when store.backend is \"sqlite\"")
	}

	switch cfg.Events.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("events.backend: unknown backend %q (expected \"memory\" or \"sqlite\")", cfg.Events.Backend)
	}
	if cfg.Events.Backend == "sqlite" && cfg.Events.SQLite.Path == "" {
		return fmt.Errorf("events.sqlite.path: required when events.backend is \"sqlite\"")
	}
	if cfg.Events.Emitter.MaxAttempts < 1 {
		return fmt.Errorf("events.emitter.max_attempts: must be at least 1, got %d", cfg.Events.Emitter.MaxAttempts)
	}

	if cfg.Engine.UpdateAttempts < 1 {
		return fmt.Errorf("engine.update_attempts: must be at least 1, got %d", cfg.Engine.UpdateAttempts)
	}

	switch cfg.Source.Mode {
	case "dir":
		if cfg.Source.Dir.Path == "" {
			return fmt.Errorf("source.dir.path: required when source.mode is \"dir\"")
		}
	case "git":
		if cfg.Source.Git.URL == "" {
			return fmt.Errorf("source.git.url: required when source.mode is \"git\"")
		}
	default:
		return fmt.Errorf("source.mode: unknown mode %q (expected \"dir\" or \"git\")", cfg.Source.Mode)
	}

	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address: invalid address %q: %w", cfg.Server.ListenAddress, err)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}

	return nil
}
