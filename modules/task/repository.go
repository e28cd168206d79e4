package task

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/taskboard/domain/task"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound is returned when no task exists with the given ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNotOwner is returned when a caller addresses a task owned by
	// someone else.
	ErrNotOwner = errors.New("you don't have permission to access this task")
)

// TaskRepository handles task persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create saves a new task.
func (r *TaskRepository) Create(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID regardless of owner. Ownership
// is checked by the service so that "not mine" can be reported
// distinctly from "absent".
func (r *TaskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// Save persists every field of an existing task.
func (r *TaskRepository) Save(task *domain.Task) error {
	if err := r.db.Save(task).Error; err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// Delete removes a task permanently.
func (r *TaskRepository) Delete(id string) error {
	result := r.db.Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// List resolves a Query into one page of the owner's tasks. The sort
// key gets a secondary "id ASC" so pages are stable when the key is
// non-unique. A page past the end yields empty Items with the true
// total count.
func (r *TaskRepository) List(q Query) (*Page, error) {
	tx := r.db.Model(&domain.Task{}).Where("owner_id = ?", q.OwnerID)

	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		tx = tx.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			pattern, pattern,
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	pageNumber := q.Page
	if pageNumber < 1 {
		pageNumber = 1
	}

	items := []domain.Task{}
	offset := (pageNumber - 1) * PageSize
	if int64(offset) < total {
		err := tx.Order(q.Ordering.Clause()).
			Order("id ASC").
			Offset(offset).
			Limit(PageSize).
			Find(&items).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
	}

	return &Page{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   PageSize,
		TotalCount: total,
	}, nil
}

// escapeLike neutralizes LIKE metacharacters in a search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
