package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

type TaskType string

const (
	TaskTypeTask        TaskType = "TASK"
	TaskTypeBug         TaskType = "BUG"
	TaskTypeFeature     TaskType = "FEATURE"
	TaskTypeImprovement TaskType = "IMPROVEMENT"
	TaskTypeOther       TaskType = "OTHER"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

type Task struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	ProjectID      uint64         `gorm:"not null;index" json:"project_id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Type           TaskType       `gorm:"type:varchar(20);not null;default:'TASK'" json:"type"`
	Priority       TaskPriority   `gorm:"type:varchar(20);not null;default:'LOW'" json:"priority"`
	AssigneeID     *uint64        `json:"assignee_id"`
	Status         TaskStatus     `gorm:"type:varchar(20);not null;default:'To Do'" json:"status"`
	DueDate        *time.Time     `json:"due_date"`
	Progress       int            `gorm:"not null;default:0" json:"progress"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project      Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Assignee     *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Comments     []Comment    `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}
