package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/interfaces/http/dto"
)

// parseFilter builds a repository filter from list query parameters
func parseFilter(c *gin.Context) (shared.Filter, error) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	filter.DateFrom = req.DateFrom
	filter.DateTo = req.DateTo
	return filter, nil
}

/// parseIDParam parses the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}
