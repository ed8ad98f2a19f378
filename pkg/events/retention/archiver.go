package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
)

// Config contains configuration for audit archival.
type Config struct {
	// Schedule is a cron expression ("0 3 * * *" for daily at 3 AM).
	// Empty disables scheduled archival.
	Schedule string

	// Dir is the directory archive files are written to.
	// Default: "data/archive"
	Dir string

	// MaxAge is the minimum age of events to archive.
	// Default: 90 days
	MaxAge time.Duration

	// BatchSize is the query page size.
	// Default: 1000
	BatchSize int
}

// DefaultConfig returns the default archival configuration.
func DefaultConfig() *Config {
	return &Config{
		Dir:       "data/archive",
		MaxAge:    90 * 24 * time.Hour,
		BatchSize: 1000,
	}
}

// Archiver exports old audit events to JSONL files.
// Exported events remain in primary storage; archival never deletes.
type Archiver struct {
	storage events.Storage
	config  *Config
	logger  *slog.Logger
}

// NewArchiver creates a new archiver over the given event storage.
func NewArchiver(storage events.Storage, config *Config) *Archiver {
	if config == nil {
		config = DefaultConfig()
	}
	return &Archiver{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "events.archiver"),
	}
}

// Run exports every event older than MaxAge to one timestamped JSONL file.
// It returns the number of events written and the file path (empty when
// nothing qualified).
func (a *Archiver) Run(ctx context.Context) (int64, string, error) {
	cutoff := time.Now().UTC().Add(-a.config.MaxAge)

	total, err := a.storage.Count(ctx, &events.Query{End: &cutoff})
	if err != nil {
		return 0, "", fmt.Errorf("count archivable events: %w", err)
	}
	if total == 0 {
		a.logger.Debug("no events to archive", "cutoff", cutoff)
		return 0, "", nil
	}

	if err := os.MkdirAll(a.config.Dir, 0o755); err != nil {
		return 0, "", fmt.Errorf("create archive directory: %w", err)
	}

	path := filepath.Join(a.config.Dir,
		fmt.Sprintf("audit-%s.jsonl", time.Now().UTC().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return 0, "", fmt.Errorf("create archive file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	var written int64

	for offset := 0; ; offset += a.config.BatchSize {
		batch, err := a.storage.Query(ctx, &events.Query{
			End:    &cutoff,
			Limit:  a.config.BatchSize,
			Offset: offset,
		})
		if err != nil {
			return written, path, fmt.Errorf("query archivable events: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, e := range batch {
			if err := enc.Encode(e); err != nil {
				return written, path, fmt.Errorf("write archive record: %w", err)
			}
			written++
		}
	}

	a.logger.Info("audit archive written",
		"path", path,
		"events", written,
		"cutoff", cutoff,
	)

	return written, path, nil
}
