package dto

import (
	"time"

	"github.com/syncspace-dev/syncspace/internal/auth"
	"github.com/syncspace-dev/syncspace/internal/models"
)

// InvitationDTO represents an invitation in API responses. The token is
// never echoed back; it only travels in the email deep link.
type InvitationDTO struct {
	ID             uint64                  `json:"id"`
	Email          string                  `json:"email"`
	OrganizationID uint64                  `json:"organization_id"`
	Role           models.OrganizationRole `json:"role"`
	Status         models.InvitationStatus `json:"status"`
	ExpiresAt      time.Time               `json:"expires_at"`
	CreatedAt      time.Time               `json:"created_at"`
}

// InvitationClaimsDTO is the verify response: enough to pre-fill a
// registration form.
type InvitationClaimsDTO struct {
	Email          string                  `json:"email"`
	OrganizationID uint64                  `json:"organization_id"`
	Role           models.OrganizationRole `json:"role"`
}

// AcceptInvitationResponse acknowledges a consumed invitation.
type AcceptInvitationResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    AcceptedUserDTO `json:"user"`
}

// AcceptedUserDTO is the public profile returned from the accept flow.
type AcceptedUserDTO struct {
	Name  string                  `json:"name"`
	Email string                  `json:"email"`
	Role  models.OrganizationRole `json:"role"`
}

// ToInvitationDTO converts an Invitation model to InvitationDTO
func ToInvitationDTO(invitation models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:             invitation.ID,
		Email:          invitation.Email,
		OrganizationID: invitation.OrganizationID,
		Role:           invitation.Role,
		Status:         invitation.Status,
		ExpiresAt:      invitation.ExpiresAt,
		CreatedAt:      invitation.CreatedAt,
	}
}

// ToInvitationClaimsDTO converts verified claims to the response shape
func ToInvitationClaimsDTO(claims auth.InvitationClaims) InvitationClaimsDTO {
	return InvitationClaimsDTO{
		Email:          claims.Email,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
	}
}
