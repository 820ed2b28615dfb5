package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/database"
	"github.com/syncspace-dev/syncspace/internal/dto"
	"github.com/syncspace-dev/syncspace/internal/models"
	"github.com/syncspace-dev/syncspace/internal/repository"
	"github.com/syncspace-dev/syncspace/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	// No AI service in tests
	taskService := services.NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		repository.NewOrganizationRepository(suite.db),
		nil,
	)
	suite.handler = NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) router(asUserID uint64) *gin.Engine {
	r := gin.New()
	asUser := func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, asUserID)
	}

	tasks := r.Group("/api/tasks")
	tasks.Use(asUser)
	{
		tasks.GET("", suite.handler.List)
		tasks.POST("", suite.handler.Create)
		tasks.POST("/generate", suite.handler.Generate)
		tasks.GET("/:id", suite.handler.Get)
		tasks.PATCH("/:id", suite.handler.Update)
		tasks.PATCH("/:id/comments", suite.handler.AddComment)
		tasks.DELETE("/:id", suite.handler.Delete)
	}
	return r
}

func (suite *TaskHandlerTestSuite) do(asUserID uint64, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	suite.router(asUserID).ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) createUser(email string) *models.User {
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "hashed"}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createOrganization(slug string, adminID uint64) *models.Organization {
	org := &models.Organization{Name: "Acme", Slug: slug, CreatedBy: adminID}
	suite.Require().NoError(suite.db.Create(org).Error)
	suite.addOrgMember(org.ID, adminID, models.OrgRoleAdmin)
	return org
}

func (suite *TaskHandlerTestSuite) addOrgMember(orgID, userID uint64, role models.OrganizationRole) {
	suite.Require().NoError(suite.db.Create(&models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		JoinedAt:       time.Now(),
	}).Error)
}

func (suite *TaskHandlerTestSuite) createProject(orgID uint64, leadID *uint64) *models.Project {
	project := &models.Project{
		OrganizationID: orgID,
		Name:           "Launch",
		Status:         models.ProjectStatusActive,
		Priority:       models.ProjectPriorityMedium,
		LeadID:         leadID,
	}
	suite.Require().NoError(suite.db.Create(project).Error)
	return project
}

func (suite *TaskHandlerTestSuite) addProjectMember(projectID, userID uint64) {
	suite.Require().NoError(suite.db.Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		AddedAt:   time.Now(),
	}).Error)
}

func (suite *TaskHandlerTestSuite) createTask(projectID, orgID uint64, title string, assigneeID *uint64) *models.Task {
	task := &models.Task{
		ProjectID:      projectID,
		OrganizationID: orgID,
		Title:          title,
		Type:           models.TaskTypeTask,
		Priority:       models.TaskPriorityLow,
		Status:         models.TaskStatusTodo,
		AssigneeID:     assigneeID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskHandlerTestSuite) TestCreateTask_AppliesDefaults() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	project := suite.createProject(org.ID, nil)

	w := suite.do(admin.ID, http.MethodPost, "/api/tasks", map[string]interface{}{
		"project_id": project.ID,
		"title":      "  Ship it  ",
	})

	suite.Equal(http.StatusCreated, w.Code)

	var task models.Task
	suite.Require().NoError(suite.db.Where("project_id = ?", project.ID).First(&task).Error)
	suite.Equal("Ship it", task.Title)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskTypeTask, task.Type)
	suite.Equal(models.TaskPriorityLow, task.Priority)
	suite.Equal(org.ID, task.OrganizationID)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_NonMemberForbidden() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	project := suite.createProject(org.ID, nil)
	outsider := suite.createUser("eve@example.com")

	w := suite.do(outsider.ID, http.MethodPost, "/api/tasks", map[string]interface{}{
		"project_id": project.ID,
		"title":      "Sneaky",
	})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_RejectsAssigneeOutsideOrg() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	project := suite.createProject(org.ID, nil)
	outsider := suite.createUser("eve@example.com")

	w := suite.do(admin.ID, http.MethodPost, "/api/tasks", map[string]interface{}{
		"project_id":  project.ID,
		"title":       "Task",
		"assignee_id": outsider.ID,
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_DefaultsToAssigneeScope() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	bob := suite.createUser("bob@example.com")
	suite.addOrgMember(org.ID, bob.ID, models.OrgRoleMember)
	project := suite.createProject(org.ID, nil)

	suite.createTask(project.ID, org.ID, "mine", &bob.ID)
	suite.createTask(project.ID, org.ID, "not mine", &admin.ID)
	suite.createTask(project.ID, org.ID, "unassigned", nil)

	w := suite.do(bob.ID, http.MethodGet, "/api/tasks", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("mine", response.Tasks[0].Title)
	suite.Equal(int64(1), response.TotalCount)
}

func (suite *TaskHandlerTestSuite) TestListTasks_ProjectFilterRequiresMembership() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	project := suite.createProject(org.ID, nil)
	suite.createTask(project.ID, org.ID, "task", nil)
	outsider := suite.createUser("eve@example.com")

	w := suite.do(outsider.ID, http.MethodGet, fmt.Sprintf("/api/tasks?project=%d", project.ID), nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(admin.ID, http.MethodGet, fmt.Sprintf("/api/tasks?project=%d", project.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Len(response.Tasks, 1)
}

func (suite *TaskHandlerTestSuite) TestListTasks_DueToday() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	project := suite.createProject(org.ID, nil)

	today := time.Now()
	tomorrow := today.Add(48 * time.Hour)
	dueToday := suite.createTask(project.ID, org.ID, "due today", &admin.ID)
	suite.Require().NoError(suite.db.Model(dueToday).Update("due_date", today).Error)
	dueLater := suite.createTask(project.ID, org.ID, "due later", &admin.ID)
	suite.Require().NoError(suite.db.Model(dueLater).Update("due_date", tomorrow).Error)

	w := suite.do(admin.ID, http.MethodGet, "/api/tasks?due=today", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("due today", response.Tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_MemberCanChangeStatus() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	bob := suite.createUser("bob@example.com")
	suite.addOrgMember(org.ID, bob.ID, models.OrgRoleMember)
	project := suite.createProject(org.ID, nil)
	suite.addProjectMember(project.ID, bob.ID)
	task := suite.createTask(project.ID, org.ID, "task", nil)

	w := suite.do(bob.ID, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]interface{}{
		"status":   "In Progress",
		"progress": 25,
	})

	suite.Equal(http.StatusOK, w.Code)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	suite.Equal(models.TaskStatusInProgress, reloaded.Status)
	suite.Equal(25, reloaded.Progress)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_PriorityReservedToLead() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	bob := suite.createUser("bob@example.com")
	suite.addOrgMember(org.ID, bob.ID, models.OrgRoleMember)
	lead := suite.createUser("lead@example.com")
	suite.addOrgMember(org.ID, lead.ID, models.OrgRoleMember)
	project := suite.createProject(org.ID, &lead.ID)
	suite.addProjectMember(project.ID, bob.ID)
	task := suite.createTask(project.ID, org.ID, "task", nil)

	payload := map[string]interface{}{"priority": "HIGH"}

	w := suite.do(bob.ID, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), payload)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(lead.ID, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), payload)
	suite.Equal(http.StatusOK, w.Code)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	suite.Equal(models.TaskPriorityHigh, reloaded.Priority)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_AssigneeReservedToLead() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	bob := suite.createUser("bob@example.com")
	suite.addOrgMember(org.ID, bob.ID, models.OrgRoleMember)
	project := suite.createProject(org.ID, nil)
	suite.addProjectMember(project.ID, bob.ID)
	task := suite.createTask(project.ID, org.ID, "task", nil)

	w := suite.do(bob.ID, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]interface{}{
		"assignee_id": bob.ID,
	})
	suite.Equal(http.StatusForbidden, w.Code)

	// An org admin may assign
	w = suite.do(admin.ID, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]interface{}{
		"assignee_id": bob.ID,
	})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *TaskHandlerTestSuite) TestAddComment_Appends() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	project := suite.createProject(org.ID, nil)
	task := suite.createTask(project.ID, org.ID, "task", nil)

	for _, message := range []string{"first", "second"} {
		w := suite.do(admin.ID, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/comments", task.ID), map[string]string{
			"message": message,
		})
		suite.Equal(http.StatusCreated, w.Code)
	}

	var comments []models.Comment
	suite.Require().NoError(suite.db.Where("task_id = ?", task.ID).Order("created_at").Find(&comments).Error)
	suite.Require().Len(comments, 2)
	suite.Equal("first", comments[0].Message)
	suite.Equal("second", comments[1].Message)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_ReservedToLeadOrAdmin() {
	admin := suite.createUser("alice@example.com")
	org := suite.createOrganization("acme", admin.ID)
	bob := suite.createUser("bob@example.com")
	suite.addOrgMember(org.ID, bob.ID, models.OrgRoleMember)
	project := suite.createProject(org.ID, nil)
	suite.addProjectMember(project.ID, bob.ID)
	task := suite.createTask(project.ID, org.ID, "task", nil)
	suite.Require().NoError(suite.db.Create(&models.Comment{TaskID: task.ID, UserID: bob.ID, Message: "note"}).Error)

	w := suite.do(bob.ID, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(admin.ID, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	var taskCount, commentCount int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&taskCount).Error)
	suite.Require().NoError(suite.db.Model(&models.Comment{}).Count(&commentCount).Error)
	suite.Zero(taskCount)
	suite.Zero(commentCount)
}

func (suite *TaskHandlerTestSuite) TestGenerate_WithoutAIService() {
	admin := suite.createUser("alice@example.com")

	w := suite.do(admin.ID, http.MethodPost, "/api/tasks/generate", map[string]string{
		"text": "Plan the launch and fix the login bug",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
