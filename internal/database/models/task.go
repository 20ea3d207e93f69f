package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	Base
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description *string      `json:"description"`
	SectionID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"section_id"`
	UserID      uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_id"` // copied from the work area
	Status      TaskStatus   `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Priority    TaskPriority `gorm:"size:20;not null;default:'MEDIUM'" json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at"`
	OrderIndex  int          `gorm:"not null;default:0" json:"order_index"`
}

func (Task) TableName() string {
	return "tasks"
}

// SyncCompletedAt keeps CompletedAt set exactly when the task is completed.
// An existing completion time survives repeated completion.
func (t *Task) SyncCompletedAt(now time.Time) {
	switch t.Status {
	case TaskStatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	default:
		t.CompletedAt = nil
	}
}
