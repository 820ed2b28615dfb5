package dto

import (
	"time"

	"github.com/syncspace-dev/syncspace/internal/models"
)

// ProjectMemberDTO represents a member in a project
type ProjectMemberDTO struct {
	User    UserDTO   `json:"user"`
	AddedAt time.Time `json:"added_at"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID             uint64                 `json:"id"`
	OrganizationID uint64                 `json:"organization_id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Status         models.ProjectStatus   `json:"status"`
	Priority       models.ProjectPriority `json:"priority"`
	StartDate      *time.Time             `json:"start_date"`
	EndDate        *time.Time             `json:"end_date"`
	Progress       int                    `json:"progress"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Lead           *UserDTO               `json:"lead,omitempty"`
	Organization   *OrganizationDTO       `json:"organization,omitempty"`
	Members        []ProjectMemberDTO     `json:"members,omitempty"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:             project.ID,
		OrganizationID: project.OrganizationID,
		Name:           project.Name,
		Description:    project.Description,
		Status:         project.Status,
		Priority:       project.Priority,
		StartDate:      project.StartDate,
		EndDate:        project.EndDate,
		Progress:       project.Progress,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}

	// Include lead if preloaded
	if project.Lead != nil && project.Lead.ID != 0 {
		lead := ToUserDTO(*project.Lead)
		dto.Lead = &lead
	}

	// Include organization if preloaded
	if project.Organization.ID != 0 {
		org := ToOrganizationDTO(project.Organization)
		dto.Organization = &org
	}

	// Include members if preloaded
	if len(project.Members) > 0 {
		dto.Members = make([]ProjectMemberDTO, len(project.Members))
		for i, member := range project.Members {
			dto.Members[i] = ProjectMemberDTO{
				User:    ToUserDTO(member.User),
				AddedAt: member.AddedAt,
			}
		}
	}

	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}
