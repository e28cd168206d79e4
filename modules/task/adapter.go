package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is the interface gateways use to reach the task services.
type TaskPort interface {
	ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error)
	GetTask(ctx context.Context, req GetTaskRequest) (*TaskView, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*UpdateTaskResponse, error)
	DeleteTask(ctx context.Context, req DeleteTaskRequest) error
	ToggleTask(ctx context.Context, req ToggleTaskRequest) (*TaskView, error)
}

// TaskAdapter implements TaskPort using the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{container: container}
}

// ListTasks returns one page of an owner's tasks.
func (a *TaskAdapter) ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTask creates a new task for the owner in the request.
func (a *TaskAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error) {
	var resp CreateTaskResponse
	if err := a.call(ctx, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask returns a single task, enforcing ownership.
func (a *TaskAdapter) GetTask(ctx context.Context, req GetTaskRequest) (*TaskView, error) {
	var resp TaskView
	if err := a.call(ctx, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTask applies an update to the caller's task.
func (a *TaskAdapter) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*UpdateTaskResponse, error) {
	var resp UpdateTaskResponse
	if err := a.call(ctx, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask removes the caller's task.
func (a *TaskAdapter) DeleteTask(ctx context.Context, req DeleteTaskRequest) error {
	var resp DeleteTaskResponse
	return a.call(ctx, "delete-task", &req, &resp)
}

// ToggleTask flips the completed flag of the caller's task.
func (a *TaskAdapter) ToggleTask(ctx context.Context, req ToggleTaskRequest) (*TaskView, error) {
	var resp TaskView
	if err := a.call(ctx, "toggle-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TaskAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}
