package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syncspace-dev/syncspace/internal/dto"
	apperrors "github.com/syncspace-dev/syncspace/internal/errors"
	"github.com/syncspace-dev/syncspace/internal/middleware"
	"github.com/syncspace-dev/syncspace/internal/models"
	"github.com/syncspace-dev/syncspace/internal/services"
)

// InvitationHandler handles invitation endpoints
type InvitationHandler struct {
	invitationService *services.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
	}
}

// InviteRequest represents the invite request body
type InviteRequest struct {
	Email          string `json:"email" binding:"required,email"`
	OrganizationID uint64 `json:"organization_id" binding:"required"`
	Role           string `json:"role" binding:"omitempty,oneof=admin member"`
}

// AcceptInviteRequest represents the accept-invite request body. Name
// and password are only required when the invited email has no account
// yet.
type AcceptInviteRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Invite handles POST /api/organizationMember/invite
func (h *InvitationHandler) Invite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	role := models.OrganizationRole(req.Role)
	if role == "" {
		role = models.OrgRoleMember
	}

	invitation, err := h.invitationService.Invite(services.InviteInput{
		OrganizationID: req.OrganizationID,
		Email:          req.Email,
		Role:           role,
		InviterID:      userID,
	})
	if err != nil {
		h.respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Invitation sent",
		"invitation": dto.ToInvitationDTO(*invitation),
	})
}

// Verify handles GET /api/organizationMember/verify/:token. It reports
// whether an invitation is still actionable without consuming it.
func (h *InvitationHandler) Verify(c *gin.Context) {
	claims, err := h.invitationService.Verify(c.Param("token"))
	if err != nil {
		h.respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"invitation": dto.ToInvitationClaimsDTO(*claims),
	})
}

// Accept handles POST /api/organizationMember/accept-invite/:token
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	user, role, err := h.invitationService.Accept(services.AcceptInput{
		Token:    c.Param("token"),
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AcceptInvitationResponse{
		Success: true,
		Message: "Invitation accepted",
		User: dto.AcceptedUserDTO{
			Name:  user.Name,
			Email: user.Email,
			Role:  role,
		},
	})
}

func (h *InvitationHandler) respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound):
		apperrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrNotOrganizationAdmin):
		apperrors.Forbidden(c, "Only organization admins can send invitations")
	case errors.Is(err, services.ErrInvitationNotFound):
		apperrors.NotFound(c, "Invitation not found")
	case errors.Is(err, services.ErrInvitationInvalid):
		apperrors.BadRequest(c, "Invalid or expired invitation token")
	case errors.Is(err, services.ErrInvitationExpired):
		apperrors.BadRequest(c, "Invitation has expired")
	case errors.Is(err, services.ErrInvitationAlreadyAccepted):
		apperrors.Conflict(c, "Invitation has already been accepted")
	case errors.Is(err, services.ErrRegistrationRequired):
		apperrors.BadRequest(c, "Name and password are required to create an account")
	case errors.Is(err, services.ErrPasswordTooShort):
		apperrors.BadRequest(c, "Password must be at least 8 characters")
	case errors.Is(err, services.ErrMailDeliveryFailed):
		apperrors.UpstreamFailure(c, "Failed to deliver invitation email")
	default:
		apperrors.InternalError(c, "Something went wrong")
	}
}
