package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskpulse/internal/platform/postgres"
	"github.com/phrazzld/taskpulse/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "tasks",
		ColumnName:     "title",
		ConstraintName: constraint,
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505", "users_username_key"), want: store.ErrDuplicate},
		{name: "dangling project", err: newPgError("23503", "tasks_project_id_fkey"), want: store.ErrProjectNotFound},
		{name: "dangling assignee", err: newPgError("23503", "tasks_assigned_to_id_fkey"), want: store.ErrUserNotFound},
		{name: "unknown foreign key", err: newPgError("23503", "other_fkey"), want: store.ErrInvalidEntity},
		{name: "check violation", err: newPgError("23514", "tasks_status_check"), want: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502", ""), want: store.ErrInvalidEntity},
		{name: "wrapped pg error", err: fmt.Errorf("exec: %w", newPgError("23505", "k")), want: store.ErrDuplicate},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mapped := postgres.MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.want)
			assert.ErrorIs(t, mapped, tc.err, "original error should stay in the chain")
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("unmapped passes through", func(t *testing.T) {
		plain := errors.New("connection reset")
		assert.Same(t, plain, postgres.MapError(plain))
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503", "")))
	assert.False(t, postgres.IsUniqueViolation(nil))

	assert.True(t, postgres.IsForeignKeyViolation(newPgError("23503", "")))
	assert.False(t, postgres.IsForeignKeyViolation(errors.New("generic")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	require.NoError(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrTaskNotFound))

	err := postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrTaskNotFound)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	err = postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), nil)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = postgres.CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), store.ErrTaskNotFound)
	assert.ErrorContains(t, err, "failed to get rows affected")

	err = postgres.CheckRowsAffected(nil, store.ErrTaskNotFound)
	assert.Error(t, err)
}
