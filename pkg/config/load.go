package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	SetBoolDefaults(&cfg)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// ELEU_SECTION_FIELD (e.g. ELEU_SERVER_LISTEN_ADDRESS) and always take
// precedence over file values.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies ELEU_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Store.Backend, "ELEU_STORE_BACKEND")
	setString(&cfg.Store.SQLite.Path, "ELEU_STORE_SQLITE_PATH")
	setInt(&cfg.Store.SQLite.MaxOpenConns, "ELEU_STORE_SQLITE_MAX_OPEN_CONNS")
	setDuration(&cfg.Store.SQLite.BusyTimeout, "ELEU_STORE_SQLITE_BUSY_TIMEOUT")

	setString(&cfg.Events.Backend, "ELEU_EVENTS_BACKEND")
	setString(&cfg.Events.SQLite.Path, "ELEU_EVENTS_SQLITE_PATH")
	setInt(&cfg.Events.Emitter.MaxAttempts, "ELEU_EVENTS_EMITTER_MAX_ATTEMPTS")
	setDuration(&cfg.Events.Emitter.RetryBackoff, "ELEU_EVENTS_EMITTER_RETRY_BACKOFF")
	setString(&cfg.Events.Archive.Schedule, "ELEU_EVENTS_ARCHIVE_SCHEDULE")
	setString(&cfg.Events.Archive.Dir, "ELEU_EVENTS_ARCHIVE_DIR")
	setInt(&cfg.Events.Archive.MaxAgeDays, "ELEU_EVENTS_ARCHIVE_MAX_AGE_DAYS")

	setInt(&cfg.Engine.UpdateAttempts, "ELEU_ENGINE_UPDATE_ATTEMPTS")
	setInt(&cfg.Engine.MaxLineLength, "ELEU_ENGINE_MAX_LINE_LENGTH")
	setInt(&cfg.Engine.MaxArgs, "ELEU_ENGINE_MAX_ARGS")

	setString(&cfg.Source.Mode, "ELEU_SOURCE_MODE")
	setString(&cfg.Source.Dir.Path, "ELEU_SOURCE_DIR_PATH")
	setBool(&cfg.Source.Dir.Watch, "ELEU_SOURCE_DIR_WATCH")
	setString(&cfg.Source.Git.URL, "ELEU_SOURCE_GIT_URL")
	setString(&cfg.Source.Git.Branch, "ELEU_SOURCE_GIT_BRANCH")
	setString(&cfg.Source.Git.Path, "ELEU_SOURCE_GIT_PATH")
	setString(&cfg.Source.Git.CloneDir, "ELEU_SOURCE_GIT_CLONE_DIR")
	setDuration(&cfg.Source.Git.PollInterval, "ELEU_SOURCE_GIT_POLL_INTERVAL")
	setString(&cfg.Source.Git.Token, "ELEU_SOURCE_GIT_TOKEN")

	setString(&cfg.Server.ListenAddress, "ELEU_SERVER_LISTEN_ADDRESS")
	setDuration(&cfg.Server.ReadTimeout, "ELEU_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "ELEU_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "ELEU_SERVER_IDLE_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "ELEU_SERVER_SHUTDOWN_TIMEOUT")

	setString(&cfg.Logging.Level, "ELEU_LOGGING_LEVEL")
	setString(&cfg.Logging.Format, "ELEU_LOGGING_FORMAT")
	setBool(&cfg.Logging.RedactPII, "ELEU_LOGGING_REDACT_PII")

	setBool(&cfg.Metrics.Enabled, "ELEU_METRICS_ENABLED")
	setString(&cfg.Metrics.Namespace, "ELEU_METRICS_NAMESPACE")
	setString(&cfg.Metrics.Path, "ELEU_METRICS_PATH")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
