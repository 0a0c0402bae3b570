package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techcity/backoffice/internal/application/identity"
	"github.com/techcity/backoffice/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a signed token
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Register creates a user on a branch. Admin only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{
		"id":        user.ID,
		"branch_id": user.BranchID,
		"username":  user.Username,
		"full_name": user.FullName,
		"role":      user.Role,
	})
}

// ChangePassword changes the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}

	userID, err := middleware.UserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterPublicRoutes mounts the unauthenticated login endpoint
func (h *AuthHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
}

// RegisterRoutes mounts the authenticated account endpoints. Registration
// is restricted to administrators.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", middleware.RequireRole(), h.Register)
		auth.POST("/change-password", h.ChangePassword)
	}
}
