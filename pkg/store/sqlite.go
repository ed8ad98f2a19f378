package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
)

// SQLiteConfig configures the SQLite document store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/governance.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite (modernc.org/sqlite).
// Documents are stored JSON-encoded with an explicit revision column;
// conditional writes compare-and-swap on that column, so concurrent writers
// see the same optimistic-concurrency semantics as the in-memory store.
type SQLiteStore struct {
	db        *sql.DB
	config    *SQLiteConfig
	logger    *slog.Logger
	closeOnce sync.Once

	getStmt    *sql.Stmt
	insertStmt *sql.Stmt
	updateStmt *sql.Stmt
	byNameStmt *sql.Stmt
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    kind     TEXT    NOT NULL,
    id       TEXT    NOT NULL,
    name     TEXT    NOT NULL DEFAULT '',
    revision INTEGER NOT NULL,
    data     TEXT    NOT NULL,
    updated  TEXT    NOT NULL,
    PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_kind_name ON documents(kind, name);
`

// NewSQLiteStore opens (and if needed initializes) a SQLite document store.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite document store initialized",
		"path", config.Path,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var err error
	if s.getStmt, err = s.db.Prepare(
		`SELECT revision, data FROM documents WHERE kind = ? AND id = ?`); err != nil {
		return fmt.Errorf("prepare get: %w", err)
	}
	if s.insertStmt, err = s.db.Prepare(
		`INSERT INTO documents (kind, id, name, revision, data, updated)
		 VALUES (?, ?, ?, 1, ?, ?)
		 ON CONFLICT (kind, id) DO NOTHING`); err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	if s.updateStmt, err = s.db.Prepare(
		`UPDATE documents SET name = ?, revision = revision + 1, data = ?, updated = ?
		 WHERE kind = ? AND id = ? AND revision = ?`); err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	if s.byNameStmt, err = s.db.Prepare(
		`SELECT revision, data FROM documents
		 WHERE kind = 'policy' AND name = ?
		 ORDER BY updated DESC LIMIT 1`); err != nil {
		return fmt.Errorf("prepare find-by-name: %w", err)
	}

	return nil
}

// GetPolicy implements Store.
func (s *SQLiteStore) GetPolicy(ctx context.Context, id string) (*governance.Policy, Revision, error) {
	var p governance.Policy
	rev, err := s.get(ctx, "policy", id, &p)
	if err != nil {
		return nil, 0, err
	}
	return &p, rev, nil
}

// PutPolicy implements Store.
func (s *SQLiteStore) PutPolicy(ctx context.Context, p *governance.Policy, expected Revision) (Revision, error) {
	return s.put(ctx, "policy", p.ID, p.Name, p, expected)
}

// FindPolicyByName implements Store.
func (s *SQLiteStore) FindPolicyByName(ctx context.Context, name string) (*governance.Policy, Revision, error) {
	var (
		rev  Revision
		data []byte
	)
	err := s.byNameStmt.QueryRowContext(ctx, name).Scan(&rev, &data)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("find policy by name %q: %w", name, err)
	}

	var p governance.Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, 0, fmt.Errorf("corrupt policy document named %q: %w", name, err)
	}
	return &p, rev, nil
}

// GetForum implements Store.
func (s *SQLiteStore) GetForum(ctx context.Context, id string) (*governance.Forum, Revision, error) {
	var f governance.Forum
	rev, err := s.get(ctx, "forum", id, &f)
	if err != nil {
		return nil, 0, err
	}
	return &f, rev, nil
}

// PutForum implements Store.
func (s *SQLiteStore) PutForum(ctx context.Context, f *governance.Forum, expected Revision) (Revision, error) {
	return s.put(ctx, "forum", f.ID, f.Title, f, expected)
}

// GetActivation implements Store.
func (s *SQLiteStore) GetActivation(ctx context.Context, id string) (*governance.ServiceActivation, Revision, error) {
	var a governance.ServiceActivation
	rev, err := s.get(ctx, "activation", id, &a)
	if err != nil {
		return nil, 0, err
	}
	return &a, rev, nil
}

// PutActivation implements Store.
func (s *SQLiteStore) PutActivation(ctx context.Context, a *governance.ServiceActivation, expected Revision) (Revision, error) {
	return s.put(ctx, "activation", a.ID, a.ServiceName, a, expected)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.getStmt, s.insertStmt, s.updateStmt, s.byNameStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteStore) get(ctx context.Context, kind, id string, out interface{}) (Revision, error) {
	var (
		rev  Revision
		data []byte
	)
	err := s.getStmt.QueryRowContext(ctx, kind, id).Scan(&rev, &data)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get %s %q: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return 0, fmt.Errorf("corrupt %s document %q: %w", kind, id, err)
	}
	return rev, nil
}

func (s *SQLiteStore) put(ctx context.Context, kind, id, name string, v interface{}, expected Revision) (Revision, error) {
	if id == "" {
		return 0, fmt.Errorf("%s document has no id", kind)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s document %q: %w", kind, id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if expected == 0 {
		res, err := s.insertStmt.ExecContext(ctx, kind, id, name, string(data), now)
		if err != nil {
			return 0, fmt.Errorf("create %s %q: %w", kind, id, err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return 0, ErrConflict
		}
		return 1, nil
	}

	res, err := s.updateStmt.ExecContext(ctx, name, string(data), now, kind, id, int64(expected))
	if err != nil {
		return 0, fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Either the document vanished or the revision moved on.
		var exists int
		if scanErr := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM documents WHERE kind = ? AND id = ?`, kind, id).Scan(&exists); scanErr == nil && exists == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrConflict
	}
	return expected + 1, nil
}
