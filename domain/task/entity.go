package task

import (
	"time"
)

// Task is the core domain entity representing a single to-do item.
// A task belongs to exactly one owner for its entire lifetime; OwnerID
// is bound at creation and never changed by any later mutation.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	OwnerID     string     `gorm:"index;not null;type:text" json:"owner_id"`
	Title       string     `gorm:"not null;type:text" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// OwnedBy reports whether the task belongs to the given user. Both
// gateways authorize reads and mutations through this single predicate.
func (t *Task) OwnedBy(userID string) bool {
	return userID != "" && t.OwnerID == userID
}
