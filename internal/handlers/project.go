package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/syncspace-dev/syncspace/internal/dto"
	apperrors "github.com/syncspace-dev/syncspace/internal/errors"
	"github.com/syncspace-dev/syncspace/internal/middleware"
	"github.com/syncspace-dev/syncspace/internal/models"
	"github.com/syncspace-dev/syncspace/internal/services"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProjectRequest represents the create project request body
type CreateProjectRequest struct {
	OrganizationID uint64     `json:"organization_id" binding:"required"`
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	Status         string     `json:"status" binding:"omitempty,oneof=Planning Active Completed 'On Hold' Cancelled"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	LeadID         *uint64    `json:"lead_id"`
	MemberIDs      []uint64   `json:"member_ids"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=Planning Active Completed 'On Hold' Cancelled"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	LeadID      *uint64    `json:"lead_id"`
	ClearLead   bool       `json:"clear_lead"`
	Progress    *int       `json:"progress"`
	MemberIDs   []uint64   `json:"member_ids"`
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		OrganizationID: req.OrganizationID,
		CreatorID:      userID,
		Name:           req.Name,
		Description:    req.Description,
		Status:         models.ProjectStatus(req.Status),
		Priority:       models.ProjectPriority(req.Priority),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		LeadID:         req.LeadID,
		MemberIDs:      req.MemberIDs,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": dto.ToProjectDTO(*project)})
}

// List handles GET /api/projects?workspace=:org_id
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	orgID, err := strconv.ParseUint(c.Query("workspace"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "A valid workspace query parameter is required")
		return
	}

	projects, err := h.projectService.ListProjects(orgID, userID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apperrors.NotFound(c, "Project not found")
		return
	}

	loaded, err := h.projectService.GetProject(project.ID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": dto.ToProjectDTO(*loaded)})
}

// Update handles PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apperrors.NotFound(c, "Project not found")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	input := services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		LeadID:      req.LeadID,
		ClearLead:   req.ClearLead,
		Progress:    req.Progress,
		MemberIDs:   req.MemberIDs,
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.ProjectPriority(*req.Priority)
		input.Priority = &priority
	}

	updated, err := h.projectService.UpdateProject(project.ID, userID, input)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": dto.ToProjectDTO(*updated)})
}

// Delete handles DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apperrors.NotFound(c, "Project not found")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.projectService.DeleteProject(project.ID, userID); err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apperrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrOrganizationNotFound):
		apperrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrInvalidProjectMember):
		apperrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotProjectLeadOrAdmin):
		apperrors.Forbidden(c, "Only the project lead or an organization admin can perform this action")
	case errors.Is(err, services.ErrNotOrganizationAdmin):
		apperrors.Forbidden(c, "Only organization admins can perform this action")
	case errors.Is(err, services.ErrNotOrganizationMember):
		apperrors.Forbidden(c, "You are not a member of this organization")
	default:
		apperrors.InternalError(c, "Something went wrong")
	}
}
