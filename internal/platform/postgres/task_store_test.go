package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/phrazzld/taskpulse/internal/platform/postgres"
	"github.com/phrazzld/taskpulse/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskRowColumns = []string{
	"id", "title", "description", "status", "priority", "project_id",
	"assigned_to_id", "created_by_id", "due_date", "created_at", "updated_at",
}

func newTaskStore(t *testing.T) (*postgres.PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewPostgresTaskStore(db, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func TestPostgresTaskStore_Get(t *testing.T) {
	s, mock := newTaskStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(int64(42), "Write docs", "", "in_progress", "high", int64(7), int64(3), nil, nil, now, now))

	task, err := s.Get(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), task.ID)
	assert.Equal(t, domain.TaskStatusInProgress, task.Status)
	assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
	require.NotNil(t, task.AssignedToID)
	assert.Equal(t, int64(3), *task.AssignedToID)
	assert.Nil(t, task.CreatedByID)
	assert.Nil(t, task.DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_GetNotFound(t *testing.T) {
	s, mock := newTaskStore(t)
	mock.ExpectQuery(`FROM tasks WHERE id`).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	task, err := s.Get(context.Background(), 9)

	assert.Nil(t, task)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_SaveInsert(t *testing.T) {
	s, mock := newTaskStore(t)
	now := time.Now().UTC()

	task, err := domain.NewTask("Ship release", 7, domain.IDRef(3), nil)
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("Ship release", "", "todo", "medium", int64(7), int64(3), nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	require.NoError(t, s.Save(context.Background(), task))
	assert.Equal(t, int64(11), task.ID)
	assert.Equal(t, now, task.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_SaveUpdate(t *testing.T) {
	s, mock := newTaskStore(t)
	task := &domain.Task{
		ID: 5, Title: "Review", Status: domain.TaskStatusReview,
		Priority: domain.TaskPriorityLow, ProjectID: 2,
	}

	mock.ExpectExec(`UPDATE tasks SET`).
		WithArgs("Review", "", "review", "low", int64(2), nil, nil, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), task))
	assert.False(t, task.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_SaveUpdateMissing(t *testing.T) {
	s, mock := newTaskStore(t)
	task := &domain.Task{ID: 5, Title: "gone", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityLow, ProjectID: 2}

	mock.ExpectExec(`UPDATE tasks SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Save(context.Background(), task), store.ErrTaskNotFound)
}

func TestPostgresTaskStore_SaveRejectsInvalid(t *testing.T) {
	s, mock := newTaskStore(t)

	err := s.Save(context.Background(), &domain.Task{Title: " ", ProjectID: 1})

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query should run for an invalid task")
}

func TestPostgresTaskStore_SaveDanglingProject(t *testing.T) {
	s, mock := newTaskStore(t)
	task, err := domain.NewTask("Orphan", 99, nil, nil)
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO tasks`).WillReturnError(newPgError("23503", "tasks_project_id_fkey"))

	err = s.Save(context.Background(), task)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
	assert.Equal(t, int64(0), task.ID)
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	s, mock := newTaskStore(t)

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.Delete(context.Background(), 3))
	assert.ErrorIs(t, s.Delete(context.Background(), 4), store.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_GetSnapshot(t *testing.T) {
	s, mock := newTaskStore(t)

	mock.ExpectQuery(`JOIN projects p ON p.id = t.project_id`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "assigned_to_id", "project_id", "created_by_id"}).
			AddRow(int64(8), "Fix bug", "completed", nil, int64(2), int64(1)))

	snap, err := s.GetSnapshot(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, int64(8), snap.ID)
	assert.Equal(t, domain.TaskStatusCompleted, snap.Status)
	_, ok := snap.Assignee()
	assert.False(t, ok)
	owner, ok := snap.ProjectOwner()
	assert.True(t, ok)
	assert.Equal(t, int64(1), owner)
}

func TestPostgresTaskStore_WithTx(t *testing.T) {
	s, mock := newTaskStore(t)
	db, txMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	txMock.ExpectBegin()
	txMock.ExpectExec(`DELETE FROM tasks`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	txMock.ExpectCommit()

	err = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).Delete(ctx, 1)
	})

	require.NoError(t, err)
	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, mock.ExpectationsWereMet(), "the base connection should not be used")
}

func TestPostgresUserStore_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	users := postgres.NewPostgresUserStore(db, nil)

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := users.Exists(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = users.Exists(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollectMigrations(t *testing.T) {
	migrations, err := postgres.CollectMigrations()

	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, int64(3), migrations[2].Version)
}

func TestMigrateUnknownCommand(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = postgres.Migrate(context.Background(), db, "sideways", nil)
	assert.ErrorContains(t, err, "unknown migration command")
}

func TestPostgresTaskStore_SaveLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		dbErr     error
		wantErr   error
		wantLevel string
	}{
		{
			name:      "dangling project is a warning",
			dbErr:     newPgError("23503", "tasks_project_id_fkey"),
			wantErr:   store.ErrProjectNotFound,
			wantLevel: "WARN",
		},
		{
			name:      "connection failure is an error",
			dbErr:     errors.New("connection reset by peer"),
			wantLevel: "ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			logBuf, log := logger.NewTestLogger(t)
			s := postgres.NewPostgresTaskStore(db, log)

			task, err := domain.NewTask("Orphan", 404, nil, nil)
			require.NoError(t, err)
			mock.ExpectQuery(`INSERT INTO tasks`).WillReturnError(tc.dbErr)

			err = s.Save(context.Background(), task)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}

			entries, err := logBuf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "failed to insert task", entries[0]["msg"])
			assert.Equal(t, tc.wantLevel, entries[0]["level"])
		})
	}
}
