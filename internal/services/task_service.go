package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/models"
	"github.com/syncspace-dev/syncspace/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrNotProjectMember       = errors.New("user is not a member of the project")
	ErrTaskPermissionDenied   = errors.New("only the project lead or an organization admin can change priority or assignee")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidAssignee        = errors.New("assignee is not a member of the organization")
	ErrEmptyComment           = errors.New("comment message cannot be empty")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	orgRepo     repository.OrganizationRepository
	aiService   *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	orgRepo repository.OrganizationRepository,
	aiService *AIService,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
		aiService:   aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	Type        models.TaskType
	Priority    models.TaskPriority
	AssigneeID  *uint64
	Status      models.TaskStatus
	DueDate     *time.Time
	CreatorID   uint64
}

// CreateTask creates a new task in a project.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.ensureProjectMember(project, input.CreatorID); err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		if _, err := s.orgRepo.FindMember(project.OrganizationID, *input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidAssignee
			}
			return nil, fmt.Errorf("failed to verify assignee: %w", err)
		}
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	taskType := input.Type
	if taskType == "" {
		taskType = models.TaskTypeTask
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityLow
	}

	task := &models.Task{
		ProjectID:      project.ID,
		OrganizationID: project.OrganizationID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Type:           taskType,
		Priority:       priority,
		AssigneeID:     input.AssigneeID,
		Status:         status,
		DueDate:        input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Project", "Assignee", "Comments", "Comments.User")
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID    uint64
	ProjectID *uint64
	Status    *models.TaskStatus
	DueToday  bool
	Page      int
	PageSize  int
}

// ListTasks returns tasks visible to the user. Without a project filter
// the listing is assignee-scoped: only tasks assigned to the caller.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	if input.ProjectID != nil {
		project, err := s.projectRepo.FindByID(*input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrProjectNotFound
			}
			return nil, 0, fmt.Errorf("failed to find project: %w", err)
		}
		if err := s.ensureProjectMember(project, input.UserID); err != nil {
			return nil, 0, err
		}
		filter.ProjectID = input.ProjectID
	} else {
		filter.AssigneeID = &input.UserID
	}

	if input.DueToday {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data. Only members of the
// task's project may view it.
func (s *TaskService) GetTask(taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Project", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.ensureProjectMember(&task.Project, userID); err != nil {
		return nil, err
	}

	// Comments are loaded separately to guarantee oldest-first order.
	comments, err := s.taskRepo.ListComments(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	task.Comments = comments

	return task, nil
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Type          *models.TaskType
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssigneeID    *uint64
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
	Progress      *int
}

// UpdateTask applies a partial update. Project members may change
// title, description, type, status, progress, and due date; priority
// and assignee are reserved to the project lead or an organization
// admin.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.projectRepo.FindByID(task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.ensureProjectMember(project, actorID); err != nil {
		return nil, err
	}

	if input.Priority != nil || input.AssigneeID != nil || input.ClearAssignee {
		lead, err := s.isLeadOrAdmin(project, actorID)
		if err != nil {
			return nil, err
		}
		if !lead {
			return nil, ErrTaskPermissionDenied
		}
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Type != nil {
		task.Type = *input.Type
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if _, err := s.orgRepo.FindMember(task.OrganizationID, *input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidAssignee
			}
			return nil, fmt.Errorf("failed to verify assignee: %w", err)
		}
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return nil, ErrInvalidProgress
		}
		task.Progress = *input.Progress
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Project", "Assignee", "Comments", "Comments.User")
}

// AddComment appends a comment to a task. Comments are never edited or
// removed afterwards.
func (s *TaskService) AddComment(taskID, actorID uint64, message string) (*models.Comment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyComment
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.projectRepo.FindByID(task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.ensureProjectMember(project, actorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID:  task.ID,
		UserID:  actorID,
		Message: message,
	}

	if err := s.taskRepo.AppendComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

// DeleteTask removes a task if the actor leads the project or
// administers the organization.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.projectRepo.FindByID(task.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}

	lead, err := s.isLeadOrAdmin(project, actorID)
	if err != nil {
		return err
	}
	if !lead {
		return ErrTaskPermissionDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text      string
	CreatorID uint64
}

// GenerateTasks uses AI to extract task suggestions from text.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// ensureProjectMember verifies the user belongs to the project, leads
// it, or administers its organization.
func (s *TaskService) ensureProjectMember(project *models.Project, userID uint64) error {
	if project.LeadID != nil && *project.LeadID == userID {
		return nil
	}

	if _, err := s.projectRepo.FindMember(project.ID, userID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to verify project membership: %w", err)
	}

	member, err := s.orgRepo.FindMember(project.OrganizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotProjectMember
		}
		return fmt.Errorf("failed to verify organization membership: %w", err)
	}
	if member.Role != models.OrgRoleAdmin {
		return ErrNotProjectMember
	}

	return nil
}

func (s *TaskService) isLeadOrAdmin(project *models.Project, userID uint64) (bool, error) {
	if project.LeadID != nil && *project.LeadID == userID {
		return true, nil
	}

	member, err := s.orgRepo.FindMember(project.OrganizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return member.Role == models.OrgRoleAdmin, nil
}
