package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/syncspace-dev/syncspace/internal/auth"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/database"
	apierrors "github.com/syncspace-dev/syncspace/internal/errors"
	"github.com/syncspace-dev/syncspace/internal/models"
)

// RequireAuth verifies the session token carried in the cookie and
// resolves the caller to a stored user. Verification happens on every
// request; nothing is persisted server-side.
func RequireAuth(codec *auth.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(constants.SessionCookieName)
		if err != nil || tokenString == "" {
			apierrors.Unauthorized(c, "Not authorized, token missing")
			c.Abort()
			return
		}

		claims, err := codec.VerifySession(tokenString)
		if err != nil {
			apierrors.Unauthorized(c, "Not authorized, token invalid")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
			apierrors.Unauthorized(c, "Not authorized, user not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin additionally requires the resolved user's global role to
// be admin. Authenticated callers without it get 403, not 401.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if user.Role != models.UserRoleAdmin {
			apierrors.Forbidden(c, "Administrator role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetCurrentUser retrieves the resolved user from context
func GetCurrentUser(c *gin.Context) (models.User, bool) {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return models.User{}, false
	}

	user, ok := userInterface.(models.User)
	return user, ok
}
