package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Logo      string         `gorm:"type:varchar(512)" json:"logo"`
	CreatedBy uint64         `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator     User                 `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Members     []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Projects    []Project            `gorm:"foreignKey:OrganizationID" json:"projects,omitempty"`
	Invitations []Invitation         `gorm:"foreignKey:OrganizationID" json:"-"`
}
