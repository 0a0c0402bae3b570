package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techcity/backoffice/internal/application/sales"
)

// QuotationHandler handles quotation requests
type QuotationHandler struct {
	BaseHandler
	quotationService *sales.QuotationService
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(quotationService *sales.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// Create prices and stores an open quotation
func (h *QuotationHandler) Create(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req sales.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.UserID = userID

	quotation, err := h.quotationService.CreateQuotation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quotation)
}

// Get returns a single quotation
func (h *QuotationHandler) Get(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	quotationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}
	quotation, err := h.quotationService.GetQuotation(c.Request.Context(), branchID, quotationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// List returns the branch's quotations
func (h *QuotationHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	quotations, err := h.quotationService.ListQuotations(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotations)
}

// Convert invoices an open quotation
func (h *QuotationHandler) Convert(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	quotationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}
	var req sales.ConvertQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.QuotationID = quotationID
	req.UserID = userID

	invoice, err := h.quotationService.ConvertQuotation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// RegisterRoutes mounts the quotation endpoints
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotations := rg.Group("/quotations")
	{
		quotations.POST("", h.Create)
		quotations.GET("", h.List)
		quotations.GET("/:id", h.Get)
		quotations.POST("/:id/convert", h.Convert)
	}
}
