package task

import (
	"time"

	domain "github.com/example/taskboard/domain/task"
)

// TaskView is the task representation returned by the task services.
type TaskView struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskView(t *domain.Task) TaskView {
	return TaskView{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	OwnerID  string `json:"owner_id"`
	Search   string `json:"search,omitempty"`
	Ordering string `json:"ordering,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// ListTasksResponse is one page of an owner's tasks.
type ListTasksResponse struct {
	Tasks      []TaskView `json:"tasks"`
	PageNumber int        `json:"page_number"`
	PageSize   int        `json:"page_size"`
	TotalCount int64      `json:"total_count"`
}

// CreateTaskRequest is the request for creating a task. StrictDueDate
// turns on the past-due-date rule; the JSON API sets it, the web forms
// do not.
type CreateTaskRequest struct {
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Completed     bool       `json:"completed,omitempty"`
	StrictDueDate bool       `json:"strict_due_date,omitempty"`
}

// CreateTaskResponse carries either the created task or its
// field-level validation failures.
type CreateTaskResponse struct {
	Task   *TaskView         `json:"task,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// GetTaskRequest is the request for reading a single task.
type GetTaskRequest struct {
	CallerID string `json:"caller_id"`
	TaskID   string `json:"task_id"`
}

// UpdateTaskRequest is the request for updating a task. Nil fields are
// left unchanged when Partial is true; ClearDueDate removes the due
// date in a partial update.
type UpdateTaskRequest struct {
	CallerID      string     `json:"caller_id"`
	TaskID        string     `json:"task_id"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ClearDueDate  bool       `json:"clear_due_date,omitempty"`
	Completed     *bool      `json:"completed,omitempty"`
	Partial       bool       `json:"partial,omitempty"`
	StrictDueDate bool       `json:"strict_due_date,omitempty"`
}

// UpdateTaskResponse carries either the updated task or its
// field-level validation failures.
type UpdateTaskResponse struct {
	Task   *TaskView         `json:"task,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	CallerID string `json:"caller_id"`
	TaskID   string `json:"task_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// ToggleTaskRequest is the request for flipping a task's completed
// flag.
type ToggleTaskRequest struct {
	CallerID string `json:"caller_id"`
	TaskID   string `json:"task_id"`
}
