package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/loopspot/loopspot/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgLoopStore is the Postgres implementation of LoopStore. Records live in a
// JSONB column so they stay queryable with SQL.
type pgLoopStore struct {
	db db
}

// NewPostgresStore constructs a LoopStore backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresStore(db db) LoopStore {
	return &pgLoopStore{db: db}
}

func (r *pgLoopStore) Get(ctx context.Context, id string) ([]byte, error) {
	const q = `SELECT data FROM loops WHERE id = @id`

	var data []byte
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repo.pgLoopStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.pgLoopStore.Get: %w", err)
	}
	return data, nil
}

// Set upserts the record; updated_at tracks the last local write.
func (r *pgLoopStore) Set(ctx context.Context, id string, data []byte) error {
	const q = `
		INSERT INTO loops (id, data)
		VALUES (@id, @data)
		ON CONFLICT (id) DO UPDATE
		SET data       = EXCLUDED.data,
		    updated_at = now()`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "data": data}); err != nil {
		return fmt.Errorf("repo.pgLoopStore.Set: %w", err)
	}
	return nil
}

func (r *pgLoopStore) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM loops WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.pgLoopStore.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.pgLoopStore.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgLoopStore) Keys(ctx context.Context) ([]string, error) {
	const q = `SELECT id FROM loops ORDER BY id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.pgLoopStore.Keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.pgLoopStore.Keys: scan: %w", err)
		}
		keys = append(keys, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.pgLoopStore.Keys: rows: %w", err)
	}
	return keys, nil
}
