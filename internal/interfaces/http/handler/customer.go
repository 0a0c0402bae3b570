package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techcity/backoffice/internal/application/partner"
)

// CustomerHandler handles the branch customer register
type CustomerHandler struct {
	BaseHandler
	customerService *partner.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *partner.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Register adds a customer to the caller's branch
func (h *CustomerHandler) Register(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name" binding:"required"`
		Phone   string `json:"phone"`
		Email   string `json:"email" binding:"omitempty,email"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	customer, err := h.customerService.RegisterCustomer(c.Request.Context(), branchID, req.Name, req.Phone, req.Email, req.Address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// Get returns a single customer
func (h *CustomerHandler) Get(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), branchID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List searches the branch's customers
func (h *CustomerHandler) List(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	customers, err := h.customerService.ListCustomers(c.Request.Context(), branchID, filter.Search, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customers)
}

// UpdateContact changes a customer's contact details
func (h *CustomerHandler) UpdateContact(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	var req struct {
		Phone   string `json:"phone"`
		Email   string `json:"email" binding:"omitempty,email"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	customer, err := h.customerService.UpdateContact(c.Request.Context(), branchID, customerID, req.Phone, req.Email, req.Address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// RegisterRoutes mounts the customer register endpoints
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.Register)
		customers.GET("", h.List)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id/contact", h.UpdateContact)
	}
}
