package domain

import (
	"strings"
	"time"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

// Known task statuses.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority is how urgent a task is.
type TaskPriority string

// Known task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work inside a project, optionally assigned to a user.
// A zero ID means the task has not been persisted yet.
type Task struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	ProjectID    int64        `json:"project_id"`
	AssignedToID *int64       `json:"assigned_to_id"`
	CreatedByID  *int64       `json:"created_by_id"`
	DueDate      *time.Time   `json:"due_date"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewTask creates an unsaved task with default status and priority.
func NewTask(title string, projectID int64, assignedToID, createdByID *int64) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		Title:        title,
		Status:       TaskStatusTodo,
		Priority:     TaskPriorityMedium,
		ProjectID:    projectID,
		AssignedToID: copyID(assignedToID),
		CreatedByID:  copyID(createdByID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTitle)
	}
	if len(t.Title) > 200 {
		return NewValidationError("title", "must be at most 200 characters", ErrValidation)
	}
	if t.ProjectID <= 0 {
		return NewValidationError("project_id", "must be positive", ErrInvalidID)
	}
	if t.AssignedToID != nil && *t.AssignedToID <= 0 {
		return NewValidationError("assigned_to_id", "must be positive", ErrInvalidID)
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "is not a known status", ErrInvalidTaskStatus)
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "is not a known priority", ErrInvalidTaskPriority)
	}
	return nil
}

// UpdateStatus changes the task status and bumps UpdatedAt.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !status.Valid() {
		return NewValidationError("status", "is not a known status", ErrInvalidTaskStatus)
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// TaskSnapshot is the minimal denormalized view of a task taken at the moment
// of a mutation. It is a value type; NewTaskSnapshot copies the nullable
// identifiers so a snapshot never aliases the task it was built from.
type TaskSnapshot struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Status             TaskStatus `json:"status"`
	AssignedToID       *int64     `json:"assigned_to_id"`
	ProjectID          int64      `json:"project_id"`
	ProjectCreatedByID *int64     `json:"project_created_by_id"`
}

// NewTaskSnapshot builds a snapshot of task as owned by projectOwnerID.
func NewTaskSnapshot(task *Task, projectOwnerID *int64) TaskSnapshot {
	return TaskSnapshot{
		ID:                 task.ID,
		Title:              task.Title,
		Status:             task.Status,
		AssignedToID:       copyID(task.AssignedToID),
		ProjectID:          task.ProjectID,
		ProjectCreatedByID: copyID(projectOwnerID),
	}
}

// Assignee returns the assigned user id, if any.
func (s TaskSnapshot) Assignee() (int64, bool) {
	if s.AssignedToID == nil {
		return 0, false
	}
	return *s.AssignedToID, true
}

// ProjectOwner returns the project owner's user id, if any.
func (s TaskSnapshot) ProjectOwner() (int64, bool) {
	if s.ProjectCreatedByID == nil {
		return 0, false
	}
	return *s.ProjectCreatedByID, true
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// IDRef returns a pointer to a copy of id, for building nullable references.
func IDRef(id int64) *int64 {
	return &id
}
