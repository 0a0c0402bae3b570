package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/interfaces/http/dto"
	"github.com/techcity/backoffice/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// identity pulls the caller's branch and user from the JWT claims set by the
// auth middleware. On failure it writes a 401 and returns ok=false.
func (h *BaseHandler) identity(c *gin.Context) (branchID uuid.UUID, userID *uuid.UUID, ok bool) {
	branchID, err := middleware.BranchID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid branch identity")
		return uuid.Nil, nil, false
	}
	uid, err := middleware.UserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return uuid.Nil, nil, false
	}
	return branchID, &uid, true
}

// Success sends a 200 response wrapping data in the standard envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// InvalidBody sends a 400 for a request body that failed binding, with
// per-field details when the validator produced them
func (h *BaseHandler) InvalidBody(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, getRequestID(c)))
}

// HandleError maps an application error onto the API envelope. Domain errors
// keep their code; everything else becomes an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message, getRequestID(c)))
		return
	}
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An internal error occurred", getRequestID(c)))
}
