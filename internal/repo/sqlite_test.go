package repo_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/repo"
	"github.com/loopspot/loopspot/testutil"
)

// newMockSQLiteStore wraps a sqlmock connection in sqlx so the SQL issued by
// the SQLite store can be asserted without a database file.
func newMockSQLiteStore(t *testing.T) (repo.LoopStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})
	return repo.NewSQLiteStore(sqlx.NewDb(mockDB, "sqlite3")), mock
}

func TestSQLiteStore_Get(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM loops WHERE id = ?`)).
		WithArgs("loop_1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"id":"loop_1"}`))

	got, err := s.Get(context.Background(), "loop_1")

	require.NoError(t, err)
	assert.Equal(t, `{"id":"loop_1"}`, string(got))
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM loops WHERE id = ?`)).
		WithArgs("loop_missing").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	_, err := s.Get(context.Background(), "loop_missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_Get_DriverError(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM loops WHERE id = ?`)).
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.Get(context.Background(), "loop_1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "disk I/O error")
}

func TestSQLiteStore_Set_Upserts(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO loops (id, data, updated_at) VALUES (?, ?, ?) ON CONFLICT (id) DO UPDATE`)).
		WithArgs("loop_1", `{"v":2}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Set(context.Background(), "loop_1", []byte(`{"v":2}`))

	require.NoError(t, err)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM loops WHERE id = ?`)).
		WithArgs("loop_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "loop_1"))
}

func TestSQLiteStore_Delete_NotFound(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM loops WHERE id = ?`)).
		WithArgs("loop_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Delete(context.Background(), "loop_missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_Keys(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM loops ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("loop_a").AddRow("loop_b"))

	keys, err := s.Keys(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"loop_a", "loop_b"}, keys)
}

// TestSQLiteStore_File runs the shared contract against a real database file.
func TestSQLiteStore_File(t *testing.T) {
	runLoopStoreContract(t, func(t *testing.T) repo.LoopStore {
		return repo.NewSQLiteStore(testutil.NewSQLiteDB(t))
	})
}
