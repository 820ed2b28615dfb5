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
	"github.com/syncspace-dev/syncspace/internal/utils"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTaskRequest represents the create task request body
type CreateTaskRequest struct {
	ProjectID   uint64     `json:"project_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Type        string     `json:"type" binding:"omitempty,oneof=TASK BUG FEATURE IMPROVEMENT OTHER"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      string     `json:"status" binding:"omitempty,oneof='To Do' 'In Progress' Done"`
	AssigneeID  *uint64    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Type          *string    `json:"type" binding:"omitempty,oneof=TASK BUG FEATURE IMPROVEMENT OTHER"`
	Status        *string    `json:"status" binding:"omitempty,oneof='To Do' 'In Progress' Done"`
	Priority      *string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssigneeID    *uint64    `json:"assignee_id"`
	ClearAssignee bool       `json:"clear_assignee"`
	DueDate       *time.Time `json:"due_date"`
	ClearDueDate  bool       `json:"clear_due_date"`
	Progress      *int       `json:"progress"`
}

// AddCommentRequest represents the comment request body
type AddCommentRequest struct {
	Message string `json:"message" binding:"required"`
}

// GenerateTasksRequest represents the AI generation request body
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        models.TaskType(req.Type),
		Priority:    models.TaskPriority(req.Priority),
		Status:      models.TaskStatus(req.Status),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		CreatorID:   userID,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": dto.ToTaskDTO(*task)})
}

// List handles GET /api/tasks. Without a project filter only tasks
// assigned to the caller are returned.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	pagination := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		UserID:   userID,
		DueToday: c.Query("due") == "today",
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	}

	if projectParam := c.Query("project"); projectParam != "" {
		projectID, err := strconv.ParseUint(projectParam, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, "Invalid project ID")
			return
		}
		input.ProjectID = &projectID
	}
	if statusParam := c.Query("status"); statusParam != "" {
		status := models.TaskStatus(statusParam)
		input.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, pagination.Page, pagination.Limit, total))
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": dto.ToTaskDTO(*task)})
}

// Update handles PATCH /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		Progress:      req.Progress,
	}
	if req.Type != nil {
		taskType := models.TaskType(*req.Type)
		input.Type = &taskType
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": dto.ToTaskDTO(*task)})
}

// AddComment handles PATCH /api/tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	comment, err := h.taskService.AddComment(taskID, userID, req.Message)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": dto.ToCommentDTO(*comment)})
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Generate handles POST /api/tasks/generate
func (h *TaskHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:      req.Text,
		CreatorID: userID,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apperrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apperrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrNotProjectMember):
		apperrors.Forbidden(c, "You are not a member of this project")
	case errors.Is(err, services.ErrTaskPermissionDenied),
		errors.Is(err, services.ErrNotProjectLeadOrAdmin):
		apperrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrEmptyComment):
		apperrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apperrors.BadRequest(c, "AI task generation is not configured")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apperrors.UpstreamFailure(c, err.Error())
	default:
		apperrors.InternalError(c, "Something went wrong")
	}
}
