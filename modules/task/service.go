package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/google/uuid"
)

// TaskService enforces ownership and validation rules over the task
// store. It is the only path through which gateways read or mutate
// tasks.
type TaskService struct {
	repo *TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns one page of the owner's tasks.
func (s *TaskService) List(_ context.Context, q Query) (*Page, error) {
	return s.repo.List(q)
}

// Create validates the payload and persists a new task bound to
// ownerID. A *ValidationError return means no write happened.
func (s *TaskService) Create(_ context.Context, ownerID string, payload TaskPayload, strictDueDate bool) (*domain.Task, error) {
	if verr := Validate(&payload, rulesFor(strictDueDate)...); verr != nil {
		return nil, verr
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     payload.DueDate,
		Completed:   payload.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdatePayload carries the fields of an update. Nil pointers mean
// "leave unchanged" when Partial is true; when Partial is false every
// field is applied, so a nil DueDate clears the due date. ClearDueDate
// removes the due date in a partial update, where a nil pointer alone
// would leave it untouched.
type UpdatePayload struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	Partial      bool
}

// Update applies an update to the caller's task. Ownership mismatch is
// reported as ErrNotOwner, never disguised as ErrTaskNotFound.
func (s *TaskService) Update(_ context.Context, callerID, id string, payload UpdatePayload, strictDueDate bool) (*domain.Task, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !task.OwnedBy(callerID) {
		return nil, ErrNotOwner
	}

	if payload.Title != nil {
		task.Title = *payload.Title
	} else if !payload.Partial {
		task.Title = ""
	}
	if payload.Description != nil {
		task.Description = *payload.Description
	} else if !payload.Partial {
		task.Description = ""
	}
	if payload.DueDate != nil || !payload.Partial || payload.ClearDueDate {
		task.DueDate = payload.DueDate
	}
	if payload.Completed != nil {
		task.Completed = *payload.Completed
	} else if !payload.Partial {
		task.Completed = false
	}

	effective := TaskPayload{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Completed:   task.Completed,
	}
	// The due-date rule only judges a due date this request supplied. A
	// stored due date that has since passed never blocks other edits.
	strict := strictDueDate && payload.DueDate != nil
	if verr := Validate(&effective, rulesFor(strict)...); verr != nil {
		return nil, verr
	}

	task.UpdatedAt = time.Now()
	if err := s.repo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Get returns the caller's task by ID, enforcing ownership.
func (s *TaskService) Get(_ context.Context, callerID, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !task.OwnedBy(callerID) {
		return nil, ErrNotOwner
	}
	return task, nil
}

// Delete removes the caller's task permanently. Deleting an already
// deleted task reports ErrTaskNotFound, not success.
func (s *TaskService) Delete(_ context.Context, callerID, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !task.OwnedBy(callerID) {
		return nil, ErrNotOwner
	}
	if err := s.repo.Delete(id); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleComplete flips the completed flag of the caller's task and
// refreshes UpdatedAt. Toggling twice restores the original state.
func (s *TaskService) ToggleComplete(_ context.Context, callerID, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !task.OwnedBy(callerID) {
		return nil, ErrNotOwner
	}

	task.Completed = !task.Completed
	task.UpdatedAt = time.Now()
	if err := s.repo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	return task, nil
}
