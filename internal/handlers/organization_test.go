package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/database"
	"github.com/syncspace-dev/syncspace/internal/middleware"
	"github.com/syncspace-dev/syncspace/internal/models"
	"github.com/syncspace-dev/syncspace/internal/repository"
	"github.com/syncspace-dev/syncspace/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type orgTestEnv struct {
	db      *gorm.DB
	handler *OrganizationHandler
}

func setupOrgTestEnv(t *testing.T) *orgTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Invitation{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	handler := NewOrganizationHandler(services.NewOrganizationService(repository.NewOrganizationRepository(db)))

	gin.SetMode(gin.TestMode)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &orgTestEnv{db: db, handler: handler}
}

// router builds the organization routes with a stand-in auth middleware
// acting as the given user.
func (env *orgTestEnv) router(asUserID uint64) *gin.Engine {
	r := gin.New()
	asUser := func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, asUserID)
	}

	orgs := r.Group("/api/organizations")
	orgs.Use(asUser)
	{
		orgs.POST("", env.handler.Create)
		orgs.GET("", env.handler.List)
		orgs.GET("/:id", middleware.RequireOrganizationAccess(), env.handler.Get)
		orgs.PUT("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), env.handler.Update)
		orgs.DELETE("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), env.handler.Delete)
		orgs.DELETE("/:id/members/:user_id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), env.handler.RemoveMember)
	}
	return r
}

func (env *orgTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "hashed"}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *orgTestEnv) createOrganization(t *testing.T, slug string, adminID uint64) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: "Acme", Slug: slug, CreatedBy: adminID}
	require.NoError(t, env.db.Create(org).Error)
	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         adminID,
		Role:           models.OrgRoleAdmin,
		JoinedAt:       time.Now(),
	}).Error)
	return org
}

func TestOrganizationHandler_Create(t *testing.T) {
	env := setupOrgTestEnv(t)
	user := env.createUser(t, "alice@example.com")

	w := httptest.NewRecorder()
	env.router(user.ID).ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/organizations", map[string]string{
		"name": "Acme Inc",
		"slug": "acme",
	}))

	require.Equal(t, http.StatusCreated, w.Code)

	// Creator gets a single admin membership row
	var member models.OrganizationMember
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&member).Error)
	require.Equal(t, models.OrgRoleAdmin, member.Role)
}

func TestOrganizationHandler_Create_DuplicateSlug(t *testing.T) {
	env := setupOrgTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	env.createOrganization(t, "acme", user.ID)

	w := httptest.NewRecorder()
	env.router(user.ID).ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/organizations", map[string]string{
		"name": "Another Acme",
		"slug": "acme",
	}))

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestOrganizationHandler_List_ReturnsCreatedOrganizations(t *testing.T) {
	env := setupOrgTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	env.createOrganization(t, "acme", alice.ID)
	env.createOrganization(t, "bobs", bob.ID)

	w := httptest.NewRecorder()
	env.router(alice.ID).ServeHTTP(w, jsonRequest(t, http.MethodGet, "/api/organizations", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Organizations []struct {
			Slug string `json:"slug"`
		} `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Organizations, 1)
	require.Equal(t, "acme", response.Organizations[0].Slug)
}

func TestOrganizationHandler_List_MemberScopeIncludesRole(t *testing.T) {
	env := setupOrgTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	org := env.createOrganization(t, "acme", alice.ID)
	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         bob.ID,
		Role:           models.OrgRoleMember,
		JoinedAt:       time.Now(),
	}).Error)
	env.createOrganization(t, "other", alice.ID)

	w := httptest.NewRecorder()
	env.router(bob.ID).ServeHTTP(w, jsonRequest(t, http.MethodGet, "/api/organizations?member=true", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Organizations []struct {
			Slug string `json:"slug"`
			Role string `json:"role"`
		} `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Organizations, 1)
	require.Equal(t, "acme", response.Organizations[0].Slug)
	require.Equal(t, "member", response.Organizations[0].Role)
}

func TestOrganizationHandler_Get_HidesOrgFromNonMembers(t *testing.T) {
	env := setupOrgTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	outsider := env.createUser(t, "eve@example.com")
	org := env.createOrganization(t, "acme", alice.ID)

	url := fmt.Sprintf("/api/organizations/%d", org.ID)

	w := httptest.NewRecorder()
	env.router(outsider.ID).ServeHTTP(w, jsonRequest(t, http.MethodGet, url, nil))
	// 404, not 403: existence stays hidden
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	env.router(alice.ID).ServeHTTP(w, jsonRequest(t, http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOrganizationHandler_Update_RequiresAdmin(t *testing.T) {
	env := setupOrgTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	org := env.createOrganization(t, "acme", alice.ID)
	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         bob.ID,
		Role:           models.OrgRoleMember,
		JoinedAt:       time.Now(),
	}).Error)

	url := fmt.Sprintf("/api/organizations/%d", org.ID)
	payload := map[string]string{"name": "Renamed"}

	w := httptest.NewRecorder()
	env.router(bob.ID).ServeHTTP(w, jsonRequest(t, http.MethodPut, url, payload))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	env.router(alice.ID).ServeHTTP(w, jsonRequest(t, http.MethodPut, url, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Organization
	require.NoError(t, env.db.First(&reloaded, org.ID).Error)
	require.Equal(t, "Renamed", reloaded.Name)
}

func TestOrganizationHandler_Delete_Cascades(t *testing.T) {
	env := setupOrgTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	org := env.createOrganization(t, "acme", alice.ID)

	project := &models.Project{OrganizationID: org.ID, Name: "Launch", Status: models.ProjectStatusPlanning, Priority: models.ProjectPriorityMedium}
	require.NoError(t, env.db.Create(project).Error)
	task := &models.Task{ProjectID: project.ID, OrganizationID: org.ID, Title: "Ship it", Type: models.TaskTypeTask, Priority: models.TaskPriorityLow, Status: models.TaskStatusTodo}
	require.NoError(t, env.db.Create(task).Error)
	require.NoError(t, env.db.Create(&models.Comment{TaskID: task.ID, UserID: alice.ID, Message: "soon"}).Error)
	require.NoError(t, env.db.Create(&models.Invitation{
		Email: "bob@example.com", OrganizationID: org.ID, Role: models.OrgRoleMember,
		InviterID: alice.ID, Token: "tok", Status: models.InvitationPending, ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	w := httptest.NewRecorder()
	env.router(alice.ID).ServeHTTP(w, jsonRequest(t, http.MethodDelete, fmt.Sprintf("/api/organizations/%d", org.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"projects", &models.Project{}},
		{"tasks", &models.Task{}},
		{"comments", &models.Comment{}},
		{"members", &models.OrganizationMember{}},
		{"invitations", &models.Invitation{}},
	} {
		var count int64
		require.NoError(t, env.db.Model(check.model).Count(&count).Error)
		require.Zero(t, count, "expected no %s to survive the cascade", check.name)
	}
}

func TestOrganizationHandler_RemoveMember(t *testing.T) {
	env := setupOrgTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	org := env.createOrganization(t, "acme", alice.ID)
	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         bob.ID,
		Role:           models.OrgRoleMember,
		JoinedAt:       time.Now(),
	}).Error)

	// Admins cannot remove themselves
	w := httptest.NewRecorder()
	env.router(alice.ID).ServeHTTP(w, jsonRequest(t, http.MethodDelete,
		fmt.Sprintf("/api/organizations/%d/members/%d", org.ID, alice.ID), nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	env.router(alice.ID).ServeHTTP(w, jsonRequest(t, http.MethodDelete,
		fmt.Sprintf("/api/organizations/%d/members/%d", org.ID, bob.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.OrganizationMember{}).
		Where("user_id = ?", bob.ID).Count(&count).Error)
	require.Zero(t, count)
}
