package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/loopspot/loopspot/internal/domain"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS loops (id TEXT PRIMARY KEY, data TEXT NOT NULL, updated_at DATETIME NOT NULL)`

// sqliteLoopStore keeps records in a single-file SQLite database, the closest
// match to an on-device key-value store.
type sqliteLoopStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the SQLite database at path and makes
// sure the loops table exists.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := EnsureSQLiteSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSQLiteSchema creates the loops table if it does not exist.
func EnsureSQLiteSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("repo.EnsureSQLiteSchema: %w", err)
	}
	return nil
}

// NewSQLiteStore constructs a LoopStore backed by db.
// In production pass the handle from OpenSQLite; in tests wrap a sqlmock
// connection with sqlx.NewDb(db, "sqlite3").
func NewSQLiteStore(db *sqlx.DB) LoopStore {
	return &sqliteLoopStore{db: db, now: time.Now}
}

func (s *sqliteLoopStore) Get(ctx context.Context, id string) ([]byte, error) {
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT data FROM loops WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("repo.sqliteLoopStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.sqliteLoopStore.Get: %w", err)
	}
	return []byte(data), nil
}

func (s *sqliteLoopStore) Set(ctx context.Context, id string, data []byte) error {
	const q = `INSERT INTO loops (id, data, updated_at) VALUES (?, ?, ?) ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, q, id, string(data), s.now().UTC()); err != nil {
		return fmt.Errorf("repo.sqliteLoopStore.Set: %w", err)
	}
	return nil
}

func (s *sqliteLoopStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM loops WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("repo.sqliteLoopStore.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo.sqliteLoopStore.Delete: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repo.sqliteLoopStore.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (s *sqliteLoopStore) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	if err := s.db.SelectContext(ctx, &keys, `SELECT id FROM loops ORDER BY id`); err != nil {
		return nil, fmt.Errorf("repo.sqliteLoopStore.Keys: %w", err)
	}
	return keys, nil
}
