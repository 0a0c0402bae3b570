package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techcity/backoffice/internal/application/sales"
)

// InvoiceHandler handles invoicing requests
type InvoiceHandler struct {
	BaseHandler
	invoiceService *sales.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *sales.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create creates an invoice, optionally taking an upfront payment
func (h *InvoiceHandler) Create(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req sales.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.UserID = userID

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Get returns a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	invoiceID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), branchID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List returns the branch's invoices, paginated
func (h *InvoiceHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AddPayment records a payment against an invoice
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	invoiceID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req sales.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.InvoiceID = invoiceID
	req.UserID = userID

	invoice, err := h.invoiceService.AddPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListPayments returns the payment history of an invoice
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	invoiceID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.invoiceService.ListPayments(c.Request.Context(), branchID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Cancel reverses an invoice and every posting it made
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	invoiceID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), branchID, invoiceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Return marks an invoice returned, reversing its postings and restocking
func (h *InvoiceHandler) Return(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	invoiceID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.ReturnInvoice(c.Request.Context(), branchID, invoiceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RegisterRoutes mounts the invoicing endpoints
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.POST("/:id/payments", h.AddPayment)
		invoices.GET("/:id/payments", h.ListPayments)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.POST("/:id/return", h.Return)
	}
}
