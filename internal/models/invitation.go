package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is a single-use admission ticket for an email address into
// an organization. The pending -> accepted transition happens at most
// once, guarded by a conditional update on the status column.
type Invitation struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	Email          string           `gorm:"type:varchar(255);not null;index" json:"email"`
	OrganizationID uint64           `gorm:"not null;index" json:"organization_id"`
	Role           OrganizationRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	InviterID      uint64           `gorm:"not null" json:"inviter_id"`
	Token          string           `gorm:"type:varchar(1024);uniqueIndex;not null" json:"-"`
	Status         InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ExpiresAt      time.Time        `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Inviter      User         `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}
