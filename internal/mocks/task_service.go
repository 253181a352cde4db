package mocks

import (
	"context"

	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/phrazzld/taskpulse/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockTaskService is a testify mock of service.TaskService.
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask mocks service.TaskService.CreateTask
func (m *MockTaskService) CreateTask(ctx context.Context, input service.CreateTaskInput) (*domain.Task, error) {
	args := m.Called(ctx, input)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetTask mocks service.TaskService.GetTask
func (m *MockTaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateTask mocks service.TaskService.UpdateTask
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	id int64,
	input service.UpdateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, id, input)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteTask mocks service.TaskService.DeleteTask
func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// UpdateStatus mocks service.TaskService.UpdateStatus
func (m *MockTaskService) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
) (domain.TaskSnapshot, error) {
	args := m.Called(ctx, id, status)
	snap, _ := args.Get(0).(domain.TaskSnapshot)
	return snap, args.Error(1)
}
