package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/infrastructure/auth"
	"github.com/techcity/backoffice/internal/interfaces/http/dto"
)

// Context keys set by the Auth middleware
const (
	ContextUserID   = "jwt_user_id"
	ContextBranchID = "jwt_branch_id"
	ContextUsername = "jwt_username"
	ContextRole     = "jwt_role"
)

// Auth validates the Bearer token and stores the authenticated identity in
// the gin context.
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Authorization header must be a Bearer token")
			return
		}

		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextBranchID, claims.BranchID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role is not in the allowed
// set. Admin always passes.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]bool, len(roles)+1)
	for _, role := range roles {
		allowed[role] = true
	}
	allowed[identity.RoleAdmin] = true

	return func(c *gin.Context) {
		role := identity.Role(c.GetString(ContextRole))
		if !allowed[role] {
			requestID := c.GetString("request_id")
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient role for this operation", requestID))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID from the context
func UserID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.GetString(ContextUserID))
}

// BranchID returns the authenticated user's branch ID from the context
func BranchID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.GetString(ContextBranchID))
}

func abortUnauthorized(c *gin.Context, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, requestID))
}
