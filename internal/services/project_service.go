package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syncspace-dev/syncspace/internal/models"
	"github.com/syncspace-dev/syncspace/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrInvalidProjectName    = errors.New("project name cannot be empty")
	ErrInvalidProgress       = errors.New("progress must be between 0 and 100")
	ErrNotProjectLeadOrAdmin = errors.New("only the project lead or an organization admin can perform this action")
	ErrNotOrganizationMember = errors.New("user is not a member of the organization")
	ErrInvalidProjectMember  = errors.New("one or more users are not members of the organization")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	orgRepo     repository.OrganizationRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, orgRepo repository.OrganizationRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	OrganizationID uint64
	CreatorID      uint64
	Name           string
	Description    string
	Status         models.ProjectStatus
	Priority       models.ProjectPriority
	StartDate      *time.Time
	EndDate        *time.Time
	LeadID         *uint64
	MemberIDs      []uint64
}

// CreateProject creates a new project in an organization.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	if _, err := s.orgRepo.FindByID(input.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if err := s.ensureOrganizationAdmin(input.OrganizationID, input.CreatorID); err != nil {
		return nil, err
	}

	if input.LeadID != nil {
		if err := s.ensureOrganizationMember(input.OrganizationID, *input.LeadID); err != nil {
			return nil, err
		}
	}
	for _, memberID := range input.MemberIDs {
		if err := s.ensureOrganizationMember(input.OrganizationID, memberID); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusPlanning
	}
	priority := input.Priority
	if priority == "" {
		priority = models.ProjectPriorityMedium
	}

	project := &models.Project{
		OrganizationID: input.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Status:         status,
		Priority:       priority,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		LeadID:         input.LeadID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if len(input.MemberIDs) > 0 {
		if err := s.projectRepo.ReplaceMembers(project.ID, uniqueUint64(input.MemberIDs)); err != nil {
			return nil, fmt.Errorf("failed to add project members: %w", err)
		}
	}

	return s.projectRepo.FindByID(project.ID, "Lead", "Members", "Members.User")
}

// ListProjects returns projects in an organization. Only members of
// the organization may list its projects.
func (s *ProjectService) ListProjects(organizationID, userID uint64) ([]models.Project, error) {
	if _, err := s.orgRepo.FindMember(organizationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	projects, err := s.projectRepo.ListByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project with related data.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Organization", "Lead", "Members", "Members.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput represents a partial project update.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	Priority    *models.ProjectPriority
	StartDate   *time.Time
	EndDate     *time.Time
	LeadID      *uint64
	ClearLead   bool
	Progress    *int
	MemberIDs   []uint64
}

// UpdateProject applies a partial update. Only the project lead or an
// organization admin may mutate a project.
func (s *ProjectService) UpdateProject(projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.ensureLeadOrAdmin(project, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.Priority != nil {
		project.Priority = *input.Priority
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.ClearLead {
		project.LeadID = nil
	} else if input.LeadID != nil {
		if err := s.ensureOrganizationMember(project.OrganizationID, *input.LeadID); err != nil {
			return nil, err
		}
		project.LeadID = input.LeadID
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return nil, ErrInvalidProgress
		}
		project.Progress = *input.Progress
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if input.MemberIDs != nil {
		memberIDs := uniqueUint64(input.MemberIDs)
		for _, memberID := range memberIDs {
			if err := s.ensureOrganizationMember(project.OrganizationID, memberID); err != nil {
				return nil, err
			}
		}
		if err := s.projectRepo.ReplaceMembers(project.ID, memberIDs); err != nil {
			return nil, fmt.Errorf("failed to update project members: %w", err)
		}
	}

	return s.projectRepo.FindByID(project.ID, "Organization", "Lead", "Members", "Members.User")
}

// DeleteProject removes a project and cascades to its tasks. Only an
// organization admin may delete a project.
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.ensureOrganizationAdmin(project.OrganizationID, actorID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// IsLeadOrAdmin reports whether the actor leads the project or
// administers its organization. This is the single membership predicate
// task mutations reuse for privileged fields.
func (s *ProjectService) IsLeadOrAdmin(project *models.Project, actorID uint64) (bool, error) {
	if project.LeadID != nil && *project.LeadID == actorID {
		return true, nil
	}

	member, err := s.orgRepo.FindMember(project.OrganizationID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return member.Role == models.OrgRoleAdmin, nil
}

func (s *ProjectService) ensureLeadOrAdmin(project *models.Project, actorID uint64) error {
	ok, err := s.IsLeadOrAdmin(project, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotProjectLeadOrAdmin
	}
	return nil
}

func (s *ProjectService) ensureOrganizationAdmin(orgID, userID uint64) error {
	member, err := s.orgRepo.FindMember(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotOrganizationAdmin
		}
		return fmt.Errorf("failed to verify organization membership: %w", err)
	}
	if member.Role != models.OrgRoleAdmin {
		return ErrNotOrganizationAdmin
	}
	return nil
}

func (s *ProjectService) ensureOrganizationMember(orgID, userID uint64) error {
	if _, err := s.orgRepo.FindMember(orgID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidProjectMember
		}
		return fmt.Errorf("failed to verify organization membership: %w", err)
	}
	return nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
