package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "Planning"
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusOnHold    ProjectStatus = "On Hold"
	ProjectStatusCancelled ProjectStatus = "Cancelled"
)

type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "Low"
	ProjectPriorityMedium ProjectPriority = "Medium"
	ProjectPriorityHigh   ProjectPriority = "High"
)

type Project struct {
	ID             uint64          `gorm:"primarykey" json:"id"`
	OrganizationID uint64          `gorm:"not null;index" json:"organization_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	Status         ProjectStatus   `gorm:"type:varchar(20);not null;default:'Planning'" json:"status"`
	Priority       ProjectPriority `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	StartDate      *time.Time      `json:"start_date"`
	EndDate        *time.Time      `json:"end_date"`
	LeadID         *uint64         `json:"lead_id"`
	Progress       int             `gorm:"not null;default:0" json:"progress"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Organization Organization    `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Lead         *User           `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Members      []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks        []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
