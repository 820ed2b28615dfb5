package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/syncspace-dev/syncspace/internal/dto"
	apperrors "github.com/syncspace-dev/syncspace/internal/errors"
	"github.com/syncspace-dev/syncspace/internal/middleware"
	"github.com/syncspace-dev/syncspace/internal/services"
)

// OrganizationHandler handles organization endpoints
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// CreateOrganizationRequest represents the create organization request body
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
	Logo string `json:"logo"`
}

// UpdateOrganizationRequest represents the update organization request body
type UpdateOrganizationRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
	Logo *string `json:"logo"`
}

// Create handles POST /api/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	org, err := h.orgService.CreateOrganization(services.CreateOrganizationInput{
		Name:      req.Name,
		Slug:      req.Slug,
		Logo:      req.Logo,
		CreatorID: userID,
	})
	if err != nil {
		h.respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"organization": dto.ToOrganizationDTO(*org)})
}

// List handles GET /api/organizations. By default it returns
// organizations created by the caller; with ?member=true it returns
// every organization the caller belongs to, along with their role.
func (h *OrganizationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	if c.Query("member") == "true" {
		memberships, err := h.orgService.ListOrganizationsForUser(userID)
		if err != nil {
			apperrors.InternalError(c, "Failed to list organizations")
			return
		}

		type organizationWithRole struct {
			dto.OrganizationDTO
			Role string `json:"role"`
		}

		result := make([]organizationWithRole, len(memberships))
		for i, membership := range memberships {
			result[i] = organizationWithRole{
				OrganizationDTO: dto.ToOrganizationDTO(membership.Organization),
				Role:            string(membership.Role),
			}
		}

		c.JSON(http.StatusOK, gin.H{"organizations": result})
		return
	}

	orgs, err := h.orgService.ListOrganizationsByCreator(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to list organizations")
		return
	}

	result := make([]dto.OrganizationDTO, len(orgs))
	for i, org := range orgs {
		result[i] = dto.ToOrganizationDTO(org)
	}

	c.JSON(http.StatusOK, gin.H{"organizations": result})
}

// Get handles GET /api/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apperrors.NotFound(c, "Organization not found")
		return
	}
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apperrors.NotFound(c, "Organization not found")
		return
	}

	loaded, members, err := h.orgService.GetOrganizationWithMembers(org.ID)
	if err != nil {
		h.respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization": dto.ToOrganizationDetailDTO(*loaded, members, member.Role),
	})
}

// Update handles PUT /api/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apperrors.NotFound(c, "Organization not found")
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.orgService.UpdateOrganization(org.ID, services.UpdateOrganizationInput{
		Name: req.Name,
		Slug: req.Slug,
		Logo: req.Logo,
	})
	if err != nil {
		h.respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": dto.ToOrganizationDTO(*updated)})
}

// Delete handles DELETE /api/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apperrors.NotFound(c, "Organization not found")
		return
	}

	if err := h.orgService.DeleteOrganization(org.ID); err != nil {
		h.respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// RemoveMember handles DELETE /api/organizations/:id/members/:user_id
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apperrors.NotFound(c, "Organization not found")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.orgService.RemoveMember(org.ID, actorID, targetID); err != nil {
		h.respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

func (h *OrganizationHandler) respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound):
		apperrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrOrganizationMemberNotFound):
		apperrors.NotFound(c, "Organization member not found")
	case errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidOrganizationSlug):
		apperrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrSlugTaken):
		apperrors.Conflict(c, "Organization slug already in use")
	case errors.Is(err, services.ErrCannotRemoveYourself):
		apperrors.BadRequest(c, "You cannot remove yourself from the organization")
	default:
		apperrors.InternalError(c, "Something went wrong")
	}
}
