package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/okian/glance/internal/snapshot"
)

const schema = `
CREATE TABLE IF NOT EXISTS widget_state (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);`

// SQLiteStore implements Store over a SQLite key-value table. The database
// file is the cross-process handoff point: the native renderer opens the
// same file read-only.
type SQLiteStore struct {
	db  *sqlx.DB
	key string
}

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithKey overrides the record key the snapshot is stored under.
func WithKey(key string) Option {
	return func(s *SQLiteStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewSQLiteStore opens (or creates) the snapshot database at path and
// ensures the schema exists. WAL mode keeps renderer reads from blocking
// producer writes.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenStore, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL: %v", ErrOpenStore, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrOpenStore, err)
	}

	s := &SQLiteStore{db: db, key: snapshot.Key}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save overwrites the snapshot record in a single upsert.
func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO widget_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Load returns the raw snapshot record, or nil when no record exists yet.
func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, "SELECT value FROM widget_state WHERE key = ?", s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return data, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
