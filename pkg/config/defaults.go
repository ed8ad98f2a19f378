package config

import "time"

// Default values for configuration fields.
const (
	// Store defaults
	DefaultStoreBackend      = "sqlite"
	DefaultStoreSQLitePath   = "data/eleutherios.db"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second

	// Events defaults
	DefaultEventsBackend     = "sqlite"
	DefaultEventsSQLitePath  = "data/audit.db"
	DefaultEmitterMaxAttempts = 3
	DefaultEmitterRetryBackoff = 50 * time.Millisecond
	DefaultArchiveDir        = "data/archive"
	DefaultArchiveMaxAgeDays = 90
	DefaultArchiveBatchSize  = 1000

	// Engine defaults
	DefaultEngineUpdateAttempts = 3
	DefaultEngineMaxLineLength  = 4096
	DefaultEngineMaxArgs        = 32

	// Source defaults
	DefaultSourceMode   = "dir"
	DefaultSourceDir    = "./policies"
	DefaultGitBranch    = "main"
	DefaultGitPath      = "policies"
	DefaultGitCloneDir  = "data/policy-repo"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "eleu"
	DefaultMetricsSubsystem = "engine"
	DefaultMetricsPath      = "/metrics"
)

// NewDefault returns a Config populated with every default.
func NewDefault() *Config {
	cfg := &Config{}
	SetBoolDefaults(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// SetBoolDefaults sets booleans whose default is true. It must run before
// YAML unmarshaling so an explicit "false" in the file survives.
func SetBoolDefaults(cfg *Config) {
	cfg.Store.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Events.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Logging.RedactPII = true
	cfg.Metrics.Enabled = DefaultMetricsEnabled
}

// ApplyDefaults fills in zero-valued fields with their defaults.
// Booleans that default to true are handled in LoadConfig before
// unmarshaling so explicit "false" values survive.
func ApplyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultStoreSQLitePath
	}
	applySQLiteDefaults(&cfg.Store.SQLite)

	if cfg.Events.Backend == "" {
		cfg.Events.Backend = DefaultEventsBackend
	}
	if cfg.Events.SQLite.Path == "" {
		cfg.Events.SQLite.Path = DefaultEventsSQLitePath
	}
	applySQLiteDefaults(&cfg.Events.SQLite)
	if cfg.Events.Emitter.MaxAttempts <= 0 {
		cfg.Events.Emitter.MaxAttempts = DefaultEmitterMaxAttempts
	}
	if cfg.Events.Emitter.RetryBackoff <= 0 {
		cfg.Events.Emitter.RetryBackoff = DefaultEmitterRetryBackoff
	}
	if cfg.Events.Archive.Dir == "" {
		cfg.Events.Archive.Dir = DefaultArchiveDir
	}
	if cfg.Events.Archive.MaxAgeDays <= 0 {
		cfg.Events.Archive.MaxAgeDays = DefaultArchiveMaxAgeDays
	}
	if cfg.Events.Archive.BatchSize <= 0 {
		cfg.Events.Archive.BatchSize = DefaultArchiveBatchSize
	}

	if cfg.Engine.UpdateAttempts <= 0 {
		cfg.Engine.UpdateAttempts = DefaultEngineUpdateAttempts
	}
	if cfg.Engine.MaxLineLength <= 0 {
		cfg.Engine.MaxLineLength = DefaultEngineMaxLineLength
	}
	if cfg.Engine.MaxArgs <= 0 {
		cfg.Engine.MaxArgs = DefaultEngineMaxArgs
	}

	if cfg.Source.Mode == "" {
		cfg.Source.Mode = DefaultSourceMode
	}
	if cfg.Source.Dir.Path == "" {
		cfg.Source.Dir.Path = DefaultSourceDir
	}
	if cfg.Source.Git.Branch == "" {
		cfg.Source.Git.Branch = DefaultGitBranch
	}
	if cfg.Source.Git.Path == "" {
		cfg.Source.Git.Path = DefaultGitPath
	}
	if cfg.Source.Git.CloneDir == "" {
		cfg.Source.Git.CloneDir = DefaultGitCloneDir
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes <= 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

func applySQLiteDefaults(s *SQLiteConfig) {
	if s.MaxOpenConns <= 0 {
		s.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if s.BusyTimeout <= 0 {
		s.BusyTimeout = DefaultSQLiteBusyTimeout
	}
}
