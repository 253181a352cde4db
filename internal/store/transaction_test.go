package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE tasks SET status = 'completed' WHERE id = 1")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	fnErr := errors.New("task vanished")
	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		return fnErr
	})

	assert.Same(t, fnErr, err, "the body's error is returned unchanged")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		expect   func(mock sqlmock.Sqlmock)
		fn       TxFn
		contains string
		is       error
	}{
		{
			name:     "begin fails",
			expect:   func(m sqlmock.Sqlmock) { m.ExpectBegin().WillReturnError(boom) },
			fn:       func(context.Context, *sql.Tx) error { return nil },
			contains: "failed to begin transaction",
			is:       boom,
		},
		{
			name: "commit fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit().WillReturnError(boom)
			},
			fn:       func(context.Context, *sql.Tx) error { return nil },
			contains: "failed to commit transaction",
			is:       boom,
		},
		{
			name: "rollback fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback().WillReturnError(errors.New("rollback failed"))
			},
			fn:       func(context.Context, *sql.Tx) error { return boom },
			contains: "error rolling back transaction",
			is:       boom,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.expect(mock)

			err := RunInTransaction(context.Background(), db, tc.fn)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
			assert.ErrorIs(t, err, tc.is)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			panic("handler bug")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewTxRunner(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var sawTx bool
	run := NewTxRunner(db)
	err := run(context.Background(), func(_ context.Context, tx *sql.Tx) error {
		sawTx = tx != nil
		return nil
	})

	require.NoError(t, err)
	assert.True(t, sawTx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(NewStoreError("task", "get", "lookup failed", ErrTaskNotFound)))
	assert.False(t, IsNotFoundError(ErrDuplicate))

	withCause := NewStoreError("task", "save", "insert failed", ErrInvalidEntity)
	assert.Equal(t, "save operation on task failed: insert failed: invalid entity", withCause.Error())
	assert.ErrorIs(t, withCause, ErrInvalidEntity)

	bare := NewStoreError("user", "exists", "no rows", nil)
	assert.Equal(t, "exists operation on user failed: no rows", bare.Error())
}
