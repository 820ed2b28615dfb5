package repository

import (
	"time"

	"github.com/syncspace-dev/syncspace/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithAdmin creates an organization and admits the creator as
	// admin within a single transaction.
	CreateWithAdmin(org *models.Organization, creatorID uint64) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindBySlug finds an organization by slug
	FindBySlug(slug string) (*models.Organization, error)

	// ListByCreator lists organizations created by a user
	ListByCreator(userID uint64) ([]models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// Delete deletes an organization and all owned data
	Delete(id uint64) error

	// RemoveMember removes a member from an organization
	RemoveMember(organizationID, userID uint64) error

	// FindMember finds a specific organization member
	FindMember(organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(organizationID uint64) ([]models.OrganizationMember, error)

	// ListMembershipsByUserID lists all organizations a user belongs to
	ListMembershipsByUserID(userID uint64) ([]models.OrganizationMember, error)
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create persists a new pending invitation
	Create(invitation *models.Invitation) error

	// FindByToken finds an invitation by its token
	FindByToken(token string) (*models.Invitation, error)

	// MarkExpired transitions an invitation from pending to expired.
	MarkExpired(token string) error

	// Accept atomically consumes a pending invitation: conditional
	// pending -> accepted flip, user creation when user.ID is zero, and
	// idempotent membership admission, all in one transaction.
	Accept(token string, user *models.User, role models.OrganizationRole) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListByOrganization lists projects in an organization
	ListByOrganization(organizationID uint64) ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project, its tasks, and their comments
	Delete(id uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ReplaceMembers replaces the project's member list
	ReplaceMembers(projectID uint64, userIDs []uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID      *uint64
	OrganizationID *uint64
	AssigneeID     *uint64
	Status         *models.TaskStatus
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
	Page           int
	PageSize       int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task and its comments
	Delete(id uint64) error

	// AppendComment appends a comment to a task
	AppendComment(comment *models.Comment) error

	// ListComments lists a task's comments oldest first
	ListComments(taskID uint64) ([]models.Comment, error)
}
