package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techcity/backoffice/internal/application/company"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/interfaces/http/middleware"
)

// BranchHandler handles trading location administration
type BranchHandler struct {
	BaseHandler
	branchService *company.BranchService
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *company.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// Create opens a new trading location
func (h *BranchHandler) Create(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	branch, err := h.branchService.CreateBranch(c.Request.Context(), req.Name, req.Address, req.Phone)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, branch)
}

// Get returns a single branch
func (h *BranchHandler) Get(c *gin.Context) {
	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}
	branch, err := h.branchService.GetBranch(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// List returns all active branches
func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.branchService.ListBranches(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branches)
}

// Deactivate closes a branch to new activity
func (h *BranchHandler) Deactivate(c *gin.Context) {
	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}
	if err := h.branchService.DeactivateBranch(c.Request.Context(), branchID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes mounts the branch administration endpoints. Opening and
// closing branches is restricted to directors.
func (h *BranchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	branches := rg.Group("/branches")
	{
		branches.POST("", middleware.RequireRole(identity.RoleDirector), h.Create)
		branches.GET("", h.List)
		branches.GET("/:id", h.Get)
		branches.POST("/:id/deactivate", middleware.RequireRole(identity.RoleDirector), h.Deactivate)
	}
}
