package config

import "time"

// Config is the root configuration for the governance engine.
type Config struct {
	// Store configures the document store holding policies, forums, and
	// service activations.
	Store StoreConfig `yaml:"store"`

	// Events configures the append-only audit trail.
	Events EventsConfig `yaml:"events"`

	// Engine configures execution behavior.
	Engine EngineConfig `yaml:"engine"`

	// Source configures where policy rule documents are loaded from.
	Source SourceConfig `yaml:"source"`

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics collection.
	Metrics MetricsConfig `yaml:"metrics"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	// Backend selects the storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend. Ignored for "memory".
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains connection settings shared by the SQLite-backed
// stores.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// EventsConfig configures the audit trail: backend, emission retry, and
// scheduled archival.
type EventsConfig struct {
	// Backend selects the event storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend. Ignored for "memory".
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Emitter configures emission retry behavior.
	Emitter EmitterConfig `yaml:"emitter"`

	// Archive configures scheduled export of old events.
	Archive ArchiveConfig `yaml:"archive"`
}

// EmitterConfig bounds the retry loop around event emission.
type EmitterConfig struct {
	// MaxAttempts is the total number of append attempts per event.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// RetryBackoff is the pause between attempts.
	// Default: 50ms
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// ArchiveConfig configures scheduled JSONL export of old audit events.
// Archival copies events out; it never deletes from primary storage.
type ArchiveConfig struct {
	// Schedule is a standard cron expression. Empty disables archival.
	// Default: "" (disabled)
	Schedule string `yaml:"schedule"`

	// Dir is the directory archive files are written to.
	// Default: "data/archive"
	Dir string `yaml:"dir"`

	// MaxAgeDays is the minimum event age, in days, to qualify for export.
	// Default: 90
	MaxAgeDays int `yaml:"max_age_days"`

	// BatchSize is the query page size during export.
	// Default: 1000
	BatchSize int `yaml:"batch_size"`
}

// EngineConfig configures rule execution.
type EngineConfig struct {
	// UpdateAttempts is the number of optimistic-concurrency retries per
	// conditional write.
	// Default: 3
	UpdateAttempts int `yaml:"update_attempts"`

	// MaxLineLength caps accepted rule statement length in bytes.
	// Default: 4096
	MaxLineLength int `yaml:"max_line_length"`

	// MaxArgs caps the number of arguments per rule statement.
	// Default: 32
	MaxArgs int `yaml:"max_args"`
}

// SourceConfig selects where policy rule documents come from.
type SourceConfig struct {
	// Mode selects the source.
	// Options: "dir", "git"
	// Default: "dir"
	Mode string `yaml:"mode"`

	// Dir configures the directory source. Used when Mode is "dir".
	Dir DirSourceConfig `yaml:"dir"`

	// Git configures the git source. Used when Mode is "git".
	Git GitSourceConfig `yaml:"git"`
}

// DirSourceConfig configures loading rule documents from a local directory.
type DirSourceConfig struct {
	// Path is the directory containing *.rules documents.
	// Default: "./policies"
	Path string `yaml:"path"`

	// Watch reloads documents when files change.
	// Default: false
	Watch bool `yaml:"watch"`
}

// GitSourceConfig configures loading rule documents from a git repository.
type GitSourceConfig struct {
	// URL is the clone URL.
	URL string `yaml:"url"`

	// Branch is the branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path is the path inside the repository holding rule documents.
	// Default: "policies"
	Path string `yaml:"path"`

	// CloneDir is the local working directory for the clone.
	// Default: "data/policy-repo"
	CloneDir string `yaml:"clone_dir"`

	// PollInterval is how often the branch is polled for new commits.
	// Zero disables polling.
	// Default: 0
	PollInterval time.Duration `yaml:"poll_interval"`

	// Token is a bearer token for HTTPS authentication. Optional.
	Token string `yaml:"token"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the host:port to bind.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds request reads.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds response writes.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds idle keep-alive connections.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps request header size.
	// Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic redaction of personal data in log
	// values. Governance payloads carry stakeholder emails and payment
	// references.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns applied in
	// addition to the built-in set.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled toggles metric collection.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "eleu"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// Path is the HTTP path the exposition endpoint is mounted at.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
