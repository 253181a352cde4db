package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/phrazzld/taskpulse/internal/service"
)

// Optional is a JSON field that distinguishes "absent" from "null".
// Set is true whenever the key was present in the request body.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for keys that
// are present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title        string     `json:"title"          validate:"required,max=200"`
	Description  string     `json:"description"`
	Status       string     `json:"status"         validate:"omitempty,oneof=todo in_progress review completed cancelled"`
	Priority     string     `json:"priority"       validate:"omitempty,oneof=low medium high urgent"`
	ProjectID    int64      `json:"project_id"     validate:"required,gt=0"`
	AssignedToID *int64     `json:"assigned_to_id" validate:"omitempty,gt=0"`
	DueDate      *time.Time `json:"due_date"`
}

func (req CreateTaskRequest) toInput(userID int64) service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       domain.TaskStatus(req.Status),
		Priority:     domain.TaskPriority(req.Priority),
		ProjectID:    req.ProjectID,
		AssignedToID: req.AssignedToID,
		DueDate:      req.DueDate,
		CreatedByID:  userID,
	}
}

// ReplaceTaskRequest is the body of PUT /api/tasks/{id}. Omitted nullable
// fields are cleared.
type ReplaceTaskRequest struct {
	Title        string     `json:"title"          validate:"required,max=200"`
	Description  string     `json:"description"`
	Status       string     `json:"status"         validate:"required,oneof=todo in_progress review completed cancelled"`
	Priority     string     `json:"priority"       validate:"required,oneof=low medium high urgent"`
	ProjectID    int64      `json:"project_id"     validate:"required,gt=0"`
	AssignedToID *int64     `json:"assigned_to_id" validate:"omitempty,gt=0"`
	DueDate      *time.Time `json:"due_date"`
}

func (req ReplaceTaskRequest) toInput() service.UpdateTaskInput {
	status := domain.TaskStatus(req.Status)
	priority := domain.TaskPriority(req.Priority)
	return service.UpdateTaskInput{
		Title:        &req.Title,
		Description:  &req.Description,
		Status:       &status,
		Priority:     &priority,
		ProjectID:    &req.ProjectID,
		AssignedToID: req.AssignedToID,
		SetAssignee:  true,
		DueDate:      req.DueDate,
		SetDueDate:   true,
	}
}

// PatchTaskRequest is the body of PATCH /api/tasks/{id}. Only present keys
// are applied; assigned_to_id and due_date may be null to clear them.
type PatchTaskRequest struct {
	Title        *string             `json:"title"       validate:"omitempty,max=200"`
	Description  *string             `json:"description"`
	Status       *string             `json:"status"      validate:"omitempty,oneof=todo in_progress review completed cancelled"`
	Priority     *string             `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	ProjectID    *int64              `json:"project_id"  validate:"omitempty,gt=0"`
	AssignedToID Optional[int64]     `json:"assigned_to_id"`
	DueDate      Optional[time.Time] `json:"due_date"`
}

func (req PatchTaskRequest) toInput() service.UpdateTaskInput {
	input := service.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		ProjectID:    req.ProjectID,
		AssignedToID: req.AssignedToID.Value,
		SetAssignee:  req.AssignedToID.Set,
		DueDate:      req.DueDate.Value,
		SetDueDate:   req.DueDate.Set,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	return input
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	ProjectID    int64      `json:"project_id"`
	AssignedToID *int64     `json:"assigned_to_id"`
	CreatedByID  *int64     `json:"created_by_id"`
	DueDate      *time.Time `json:"due_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		ProjectID:    task.ProjectID,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		DueDate:      task.DueDate,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}
