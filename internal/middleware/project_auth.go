package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/database"
	apierrors "github.com/syncspace-dev/syncspace/internal/errors"
	"github.com/syncspace-dev/syncspace/internal/models"
	"gorm.io/gorm"
)

// RequireProjectAccess checks if the user can see a project: project
// member, project lead, or admin of the owning organization.
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var project models.Project
		if err := database.GetDB().First(&project, projectID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		ok, err := canAccessProject(&project, userID)
		if err != nil {
			apierrors.InternalError(c, "Failed to verify project access")
			c.Abort()
			return
		}
		if !ok {
			// Return 404 instead of 403 to avoid leaking project existence
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// GetProject retrieves the project loaded by RequireProjectAccess
func GetProject(c *gin.Context) (models.Project, bool) {
	projectInterface, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return models.Project{}, false
	}

	project, ok := projectInterface.(models.Project)
	return project, ok
}

func canAccessProject(project *models.Project, userID uint64) (bool, error) {
	if project.LeadID != nil && *project.LeadID == userID {
		return true, nil
	}

	var projectMember models.ProjectMember
	err := database.GetDB().
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		First(&projectMember).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var orgMember models.OrganizationMember
	err = database.GetDB().
		Where("organization_id = ? AND user_id = ?", project.OrganizationID, userID).
		First(&orgMember).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return orgMember.Role == models.OrgRoleAdmin, nil
}
