package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syncspace-dev/syncspace/internal/auth"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/dto"
	apperrors "github.com/syncspace-dev/syncspace/internal/errors"
	"github.com/syncspace-dev/syncspace/internal/middleware"
	"github.com/syncspace-dev/syncspace/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	codec       *auth.Codec
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, codec *auth.Codec) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		codec:       codec,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		apperrors.InternalError(c, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": dto.ToUserDTO(*user)})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		apperrors.InternalError(c, "Failed to create session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(constants.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(user)})
}

// startSession issues a signed session token and sets it as an
// HttpOnly cookie.
func (h *AuthHandler) startSession(c *gin.Context, userID uint64) error {
	token, err := h.codec.IssueSession(userID)
	if err != nil {
		return err
	}

	c.SetCookie(constants.SessionCookieName, token, int(constants.SessionTTL.Seconds()), "/", "", false, true)
	return nil
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apperrors.Conflict(c, "Email is already registered")
	case errors.Is(err, services.ErrPasswordTooShort):
		apperrors.BadRequest(c, "Password must be at least 8 characters")
	case errors.Is(err, services.ErrInvalidCredentials):
		apperrors.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, services.ErrUserNotFound):
		apperrors.NotFound(c, "User not found")
	default:
		apperrors.InternalError(c, "Something went wrong")
	}
}
