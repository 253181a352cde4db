package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskpulse/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Save inserts the task when its ID is zero and updates it otherwise.
	// On insert the generated ID and timestamps are written back to task.
	// Returns ErrTaskNotFound when updating a task that no longer exists,
	// and ErrProjectNotFound or ErrUserNotFound when a reference is dangling.
	Save(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// GetSnapshot reads the denormalized notification view of a task,
	// including the owner of its project.
	// Returns ErrTaskNotFound if the task does not exist.
	GetSnapshot(ctx context.Context, id int64) (domain.TaskSnapshot, error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
