package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
)

// SQLiteConfig contains configuration for the SQLite event store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements events.Storage using SQLite.
// The events table is append-only; no update or delete statement exists.
type SQLiteStorage struct {
	db         *sql.DB
	config     *SQLiteConfig
	appendStmt *sql.Stmt
	closeOnce  sync.Once
	logger     *slog.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS governance_events (
    id                TEXT PRIMARY KEY,
    type              TEXT NOT NULL,
    actor             TEXT NOT NULL,
    forum_id          TEXT NOT NULL DEFAULT '',
    policy_id         TEXT NOT NULL DEFAULT '',
    timestamp         TEXT NOT NULL,
    detail            TEXT NOT NULL DEFAULT '{}',
    corrects_event_id TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_events_type      ON governance_events(type);
CREATE INDEX IF NOT EXISTS idx_events_actor     ON governance_events(actor);
CREATE INDEX IF NOT EXISTS idx_events_forum     ON governance_events(forum_id);
CREATE INDEX IF NOT EXISTS idx_events_policy    ON governance_events(policy_id);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON governance_events(timestamp);
`

// NewSQLiteStorage creates a new SQLite event store.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "events.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, &events.StorageError{Backend: "sqlite", Operation: "open", Cause: err}
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite event store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return &events.StorageError{Backend: "sqlite", Operation: "enable_wal", Cause: err}
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return &events.StorageError{Backend: "sqlite", Operation: "set_busy_timeout", Cause: err}
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return &events.StorageError{Backend: "sqlite", Operation: "create_schema", Cause: err}
	}

	stmt, err := s.db.Prepare(
		`INSERT INTO governance_events (id, type, actor, forum_id, policy_id, timestamp, detail, corrects_event_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &events.StorageError{Backend: "sqlite", Operation: "prepare_append", Cause: err}
	}
	s.appendStmt = stmt

	return nil
}

// Append implements events.Storage.
func (s *SQLiteStorage) Append(ctx context.Context, e *events.Event) error {
	detail, err := json.Marshal(e.Detail)
	if err != nil {
		return &events.StorageError{Backend: "sqlite", Operation: "append", Cause: err}
	}

	_, err = s.appendStmt.ExecContext(ctx,
		e.ID,
		string(e.Type),
		e.Actor,
		e.ForumID,
		e.PolicyID,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		string(detail),
		e.CorrectsEventID,
	)
	if err != nil {
		return &events.StorageError{Backend: "sqlite", Operation: "append", Cause: err}
	}
	return nil
}

// Query implements events.Storage. Results are ordered oldest first.
func (s *SQLiteStorage) Query(ctx context.Context, q *events.Query) ([]*events.Event, error) {
	where, args := buildWhere(q)

	sqlText := `SELECT id, type, actor, forum_id, policy_id, timestamp, detail, corrects_event_id
		FROM governance_events` + where + ` ORDER BY timestamp ASC`
	if q != nil && q.Limit > 0 {
		sqlText += fmt.Sprintf(" LIMIT %d", q.Limit)
		if q.Offset > 0 {
			sqlText += fmt.Sprintf(" OFFSET %d", q.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &events.StorageError{Backend: "sqlite", Operation: "query", Cause: err}
	}
	defer rows.Close()

	var result []*events.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, &events.StorageError{Backend: "sqlite", Operation: "query", Cause: err}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &events.StorageError{Backend: "sqlite", Operation: "query", Cause: err}
	}
	return result, nil
}

// Count implements events.Storage.
func (s *SQLiteStorage) Count(ctx context.Context, q *events.Query) (int64, error) {
	where, args := buildWhere(q)

	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM governance_events`+where, args...).Scan(&n)
	if err != nil {
		return 0, &events.StorageError{Backend: "sqlite", Operation: "count", Cause: err}
	}
	return n, nil
}

// Close implements events.Storage.
func (s *SQLiteStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.appendStmt != nil {
			s.appendStmt.Close()
		}
		err = s.db.Close()
	})
	return err
}

// buildWhere translates query filters into a WHERE clause.
func buildWhere(q *events.Query) (string, []interface{}) {
	if q == nil {
		return "", nil
	}

	var (
		conds []string
		args  []interface{}
	)

	if len(q.Types) > 0 {
		placeholders := strings.Repeat("?,", len(q.Types))
		conds = append(conds, fmt.Sprintf("type IN (%s)", placeholders[:len(placeholders)-1]))
		for _, t := range q.Types {
			args = append(args, string(t))
		}
	}
	if q.Actor != "" {
		conds = append(conds, "actor = ?")
		args = append(args, q.Actor)
	}
	if q.ForumID != "" {
		conds = append(conds, "forum_id = ?")
		args = append(args, q.ForumID)
	}
	if q.PolicyID != "" {
		conds = append(conds, "policy_id = ?")
		args = append(args, q.PolicyID)
	}
	if q.Start != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, q.Start.UTC().Format(time.RFC3339Nano))
	}
	if q.End != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, q.End.UTC().Format(time.RFC3339Nano))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanEvent reads one row into an Event.
func scanEvent(rows *sql.Rows) (*events.Event, error) {
	var (
		e         events.Event
		typeText  string
		timestamp string
		detail    string
	)
	if err := rows.Scan(&e.ID, &typeText, &e.Actor, &e.ForumID, &e.PolicyID, &timestamp, &detail, &e.CorrectsEventID); err != nil {
		return nil, err
	}

	e.Type = events.EventType(typeText)

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("corrupt timestamp on event %q: %w", e.ID, err)
	}
	e.Timestamp = ts

	if detail != "" && detail != "{}" && detail != "null" {
		if err := json.Unmarshal([]byte(detail), &e.Detail); err != nil {
			return nil, fmt.Errorf("corrupt detail on event %q: %w", e.ID, err)
		}
	}

	return &e, nil
}
