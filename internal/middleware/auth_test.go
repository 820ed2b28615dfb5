package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/syncspace-dev/syncspace/internal/auth"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/database"
	"github.com/syncspace-dev/syncspace/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authMiddlewareEnv struct {
	db    *gorm.DB
	codec *auth.Codec
}

func setupAuthMiddlewareEnv(t *testing.T) *authMiddlewareEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	database.SetDB(db)

	gin.SetMode(gin.TestMode)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &authMiddlewareEnv{
		db:    db,
		codec: auth.NewCodec("middleware-test-secret", time.Hour, time.Hour),
	}
}

func (env *authMiddlewareEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "hashed", Role: role}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *authMiddlewareEnv) router() *gin.Engine {
	r := gin.New()
	r.GET("/whoami", RequireAuth(env.codec), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/admin-only", RequireAuth(env.codec), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func (env *authMiddlewareEnv) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	env.router().ServeHTTP(w, req)
	return w
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)

	w := env.get(t, "/whoami", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)

	w := env.get(t, "/whoami", "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ResolvesUser(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	user := env.createUser(t, "alice@example.com", models.UserRoleMember)

	token, err := env.codec.IssueSession(user.ID)
	require.NoError(t, err)

	w := env.get(t, "/whoami", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"user_id"`)
}

func TestRequireAuth_DeletedUserRejected(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	user := env.createUser(t, "alice@example.com", models.UserRoleMember)

	token, err := env.codec.IssueSession(user.ID)
	require.NoError(t, err)
	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)

	// A valid token for a vanished user is still a 401, not a 500.
	w := env.get(t, "/whoami", token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_MemberGetsForbidden(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	member := env.createUser(t, "member@example.com", models.UserRoleMember)

	token, err := env.codec.IssueSession(member.ID)
	require.NoError(t, err)

	w := env.get(t, "/admin-only", token)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	admin := env.createUser(t, "admin@example.com", models.UserRoleAdmin)

	token, err := env.codec.IssueSession(admin.ID)
	require.NoError(t, err)

	w := env.get(t, "/admin-only", token)
	require.Equal(t, http.StatusOK, w.Code)
}
