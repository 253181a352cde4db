package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/phrazzld/taskpulse/internal/store"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskNotifier is told about every committed task mutation.
// events.Watcher is the production implementation.
type TaskNotifier interface {
	TaskStatusChanged(ctx context.Context, snap domain.TaskSnapshot)
	TaskSaved(ctx context.Context, snap domain.TaskSnapshot, created bool)
	TaskDeleted(ctx context.Context, snap domain.TaskSnapshot)
}

// CreateTaskInput holds the fields of a new task.
// Empty Status and Priority fall back to todo and medium.
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       domain.TaskStatus
	Priority     domain.TaskPriority
	ProjectID    int64
	AssignedToID *int64
	DueDate      *time.Time
	CreatedByID  int64
}

// UpdateTaskInput lists the fields to change; nil fields are left alone.
// The nullable AssignedToID and DueDate are applied only when their Set flag
// is true, so a nil value with the flag set clears the field.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *domain.TaskStatus
	Priority     *domain.TaskPriority
	ProjectID    *int64
	AssignedToID *int64
	SetAssignee  bool
	DueDate      *time.Time
	SetDueDate   bool
}

// TaskService applies task mutations and announces them once committed.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// UpdateStatus changes only the status of a task, as requested over the
	// realtime command protocol. Returns store.ErrTaskNotFound for unknown tasks.
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) (domain.TaskSnapshot, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks    store.TaskStore
	runTx    store.TxRunner
	notifier TaskNotifier
	logger   *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	runTx store.TxRunner,
	notifier TaskNotifier,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if runTx == nil {
		return nil, domain.NewValidationError("runTx", "cannot be nil", domain.ErrValidation)
	}
	if notifier == nil {
		return nil, domain.NewValidationError("notifier", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:    tasks,
		runTx:    runTx,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var createdBy *int64
	if input.CreatedByID > 0 {
		createdBy = domain.IDRef(input.CreatedByID)
	}

	task, err := domain.NewTask(strings.TrimSpace(input.Title), input.ProjectID, input.AssignedToID, createdBy)
	if err != nil {
		return nil, err
	}
	task.Description = input.Description
	task.DueDate = input.DueDate
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	var snap domain.TaskSnapshot
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		if err := txTasks.Save(ctx, task); err != nil {
			return err
		}
		snap, err = txTasks.GetSnapshot(ctx, task.ID)
		return err
	})
	if err != nil {
		log.Error("failed to create task",
			slog.Int64("project_id", input.ProjectID),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create", "failed to save task", err)
	}

	log.Info("task created", slog.Int64("task_id", task.ID))
	s.notifier.TaskSaved(ctx, snap, true)
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("get", "failed to load task", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, input UpdateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		task *domain.Task
		snap domain.TaskSnapshot
	)
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		task, err = txTasks.Get(ctx, id)
		if err != nil {
			return err
		}
		applyUpdate(task, input)
		if err := task.Validate(); err != nil {
			return err
		}
		if err := txTasks.Save(ctx, task); err != nil {
			return err
		}
		snap, err = txTasks.GetSnapshot(ctx, id)
		return err
	})
	if err != nil {
		log.Debug("task update failed",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("update", "failed to update task", err)
	}

	log.Info("task updated", slog.Int64("task_id", id))
	s.notifier.TaskSaved(ctx, snap, false)
	return task, nil
}

func applyUpdate(task *domain.Task, input UpdateTaskInput) {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ProjectID != nil {
		task.ProjectID = *input.ProjectID
	}
	if input.SetAssignee {
		task.AssignedToID = nil
		if input.AssignedToID != nil {
			task.AssignedToID = domain.IDRef(*input.AssignedToID)
		}
	}
	if input.SetDueDate {
		task.DueDate = nil
		if input.DueDate != nil {
			due := *input.DueDate
			task.DueDate = &due
		}
	}
	task.UpdatedAt = time.Now().UTC()
}

// DeleteTask implements TaskService.DeleteTask
// The notification is built from the snapshot read before the row is removed.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snap domain.TaskSnapshot
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		snap, err = txTasks.GetSnapshot(ctx, id)
		if err != nil {
			return err
		}
		return txTasks.Delete(ctx, id)
	})
	if err != nil {
		log.Debug("task delete failed",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return NewTaskServiceError("delete", "failed to delete task", err)
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	s.notifier.TaskDeleted(ctx, snap)
	return nil
}

// UpdateStatus implements TaskService.UpdateStatus
func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
) (domain.TaskSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snap domain.TaskSnapshot
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := task.UpdateStatus(status); err != nil {
			return err
		}
		if err := txTasks.Save(ctx, task); err != nil {
			return err
		}
		snap, err = txTasks.GetSnapshot(ctx, id)
		return err
	})
	if err != nil {
		return domain.TaskSnapshot{}, NewTaskServiceError("update_status", "failed to change task status", err)
	}

	log.Debug("task status changed",
		slog.Int64("task_id", id),
		slog.String("status", string(status)))
	s.notifier.TaskStatusChanged(ctx, snap)
	return snap, nil
}
