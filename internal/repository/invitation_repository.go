package repository

import (
	"errors"
	"time"

	"github.com/syncspace-dev/syncspace/internal/models"
	"gorm.io/gorm"
)

// ErrInvitationNotPending is returned when the pending -> accepted
// transition finds the invitation already consumed.
var ErrInvitationNotPending = errors.New("invitation repository: invitation is not pending")

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create persists a new pending invitation
func (r *GormInvitationRepository) Create(invitation *models.Invitation) error {
	return r.db.Create(invitation).Error
}

// FindByToken finds an invitation by its token
func (r *GormInvitationRepository) FindByToken(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.Where("token = ?", token).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// MarkExpired flips an invitation from pending to expired.
func (r *GormInvitationRepository) MarkExpired(token string) error {
	return r.db.Model(&models.Invitation{}).
		Where("token = ? AND status = ?", token, models.InvitationPending).
		Update("status", models.InvitationExpired).Error
}

// Accept consumes an invitation within a single transaction: the status
// flip is a conditional update guarded by the current status, so two
// concurrent accepts for the same token cannot both admit. When user.ID
// is zero the user row is created first; membership admission is
// idempotent and only ever promotes member to admin, never duplicates.
func (r *GormInvitationRepository) Accept(token string, user *models.User, role models.OrganizationRole) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Invitation{}).
			Where("token = ? AND status = ?", token, models.InvitationPending).
			Update("status", models.InvitationAccepted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvitationNotPending
		}

		var invitation models.Invitation
		if err := tx.Where("token = ?", token).First(&invitation).Error; err != nil {
			return err
		}

		if user.ID == 0 {
			if err := tx.Create(user).Error; err != nil {
				return err
			}
		}

		var member models.OrganizationMember
		err := tx.Where("organization_id = ? AND user_id = ?", invitation.OrganizationID, user.ID).
			First(&member).Error
		switch {
		case err == nil:
			if role == models.OrgRoleAdmin && member.Role != models.OrgRoleAdmin {
				return tx.Model(&models.OrganizationMember{}).
					Where("organization_id = ? AND user_id = ?", invitation.OrganizationID, user.ID).
					Update("role", models.OrgRoleAdmin).Error
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.OrganizationMember{
				OrganizationID: invitation.OrganizationID,
				UserID:         user.ID,
				Role:           role,
				JoinedAt:       time.Now(),
			}).Error
		default:
			return err
		}
	})
}
