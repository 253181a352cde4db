package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/phrazzld/taskpulse/internal/store"
)

const taskColumns = `id, title, description, status, priority, project_id,
	assigned_to_id, created_by_id, due_date, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Get implements store.TaskStore.Get
func (s *PostgresTaskStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	return task, nil
}

// Save implements store.TaskStore.Save
func (s *PostgresTaskStore) Save(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	if task.ID == 0 {
		return s.insert(ctx, task)
	}
	return s.update(ctx, task)
}

func (s *PostgresTaskStore) insert(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (title, description, status, priority, project_id,
			assigned_to_id, created_by_id, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id, created_at, updated_at`,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.ProjectID,
		nullableID(task.AssignedToID),
		nullableID(task.CreatedByID),
		nullableTime(task.DueDate),
		now,
	)

	if err := row.Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		s.logWriteFailure(ctx, "failed to insert task", err,
			slog.Int64("project_id", task.ProjectID))
		return store.NewStoreError("task", "insert", "insert failed", MapError(err))
	}

	s.logger.DebugContext(ctx, "task inserted", slog.Int64("task_id", task.ID))
	return nil
}

func (s *PostgresTaskStore) update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, project_id = $5,
			assigned_to_id = $6, due_date = $7, updated_at = $8
		WHERE id = $9`,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.ProjectID,
		nullableID(task.AssignedToID),
		nullableTime(task.DueDate),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logWriteFailure(ctx, "failed to update task", err,
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "update", "update failed", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// logWriteFailure logs a failed write. Unique and foreign key violations come
// from bad references in the request and are logged at WARN.
func (s *PostgresTaskStore) logWriteFailure(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	level := slog.LevelError
	if IsForeignKeyViolation(err) || IsUniqueViolation(err) {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// GetSnapshot implements store.TaskStore.GetSnapshot
func (s *PostgresTaskStore) GetSnapshot(ctx context.Context, id int64) (domain.TaskSnapshot, error) {
	var (
		snap     domain.TaskSnapshot
		status   string
		assignee sql.NullInt64
		owner    sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.title, t.status, t.assigned_to_id, t.project_id, p.created_by_id
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = $1`, id).
		Scan(&snap.ID, &snap.Title, &status, &assignee, &snap.ProjectID, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TaskSnapshot{}, store.ErrTaskNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load task snapshot",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return domain.TaskSnapshot{}, store.NewStoreError("task", "snapshot", "query failed", MapError(err))
	}

	snap.Status = domain.TaskStatus(status)
	snap.AssignedToID = idFromNull(assignee)
	snap.ProjectCreatedByID = idFromNull(owner)
	return snap, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		status    string
		priority  string
		assignee  sql.NullInt64
		createdBy sql.NullInt64
		dueDate   sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.ProjectID,
		&assignee,
		&createdBy,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	task.AssignedToID = idFromNull(assignee)
	task.CreatedByID = idFromNull(createdBy)
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	return &task, nil
}

func idFromNull(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return domain.IDRef(v.Int64)
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
