package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/techcity/backoffice/internal/application/inventory"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/interfaces/http/middleware"
)

// StockHandler handles catalogue and stock requests
type StockHandler struct {
	BaseHandler
	catalogService *inventory.CatalogService
	stockService   *inventory.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(catalogService *inventory.CatalogService, stockService *inventory.StockService) *StockHandler {
	return &StockHandler{
		catalogService: catalogService,
		stockService:   stockService,
	}
}

// CreateProduct adds a product to the catalogue
func (h *StockHandler) CreateProduct(c *gin.Context) {
	var req inventory.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetProduct returns a single catalogue entry
func (h *StockHandler) GetProduct(c *gin.Context) {
	productID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListProducts returns active products, optionally filtered by a search term
func (h *StockHandler) ListProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// UpdateProductPricing changes a product's cost and sell prices
func (h *StockHandler) UpdateProductPricing(c *gin.Context) {
	productID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var req struct {
		CostPrice decimal.Decimal `json:"cost_price" binding:"required"`
		SellPrice decimal.Decimal `json:"sell_price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	product, err := h.catalogService.UpdatePricing(c.Request.Context(), productID, req.CostPrice, req.SellPrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DeactivateProduct removes a product from sale
func (h *StockHandler) DeactivateProduct(c *gin.Context) {
	productID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	if err := h.catalogService.DeactivateProduct(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateProductCategory adds a product category
func (h *StockHandler) CreateProductCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// ListProductCategories returns all product categories
func (h *StockHandler) ListProductCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// ReceiveStock books purchased goods into the caller's branch
func (h *StockHandler) ReceiveStock(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	item, err := h.stockService.ReceiveStock(c.Request.Context(), branchID, req.ProductID, req.Quantity, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// AdjustStock records a stock take count
func (h *StockHandler) AdjustStock(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Counted   int       `json:"counted" binding:"min=0"`
		Note      string    `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	item, err := h.stockService.AdjustStock(c.Request.Context(), branchID, req.ProductID, req.Counted, userID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListStock returns the branch's stock levels
func (h *StockHandler) ListStock(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	items, err := h.stockService.BranchStock(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// LowStock returns stock items at or below their reorder level
func (h *StockHandler) LowStock(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	items, err := h.stockService.LowStock(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// StockHistory returns a product's movement history at the branch
func (h *StockHandler) StockHistory(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	productID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	transactions, err := h.stockService.StockHistory(c.Request.Context(), branchID, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transactions)
}

// SendStockTransfer sends goods to another branch
func (h *StockHandler) SendStockTransfer(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req struct {
		ToBranchID uuid.UUID         `json:"to_branch_id" binding:"required"`
		Lines      map[uuid.UUID]int `json:"lines" binding:"required"`
		Note       string            `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	transfer, err := h.stockService.SendStockTransfer(c.Request.Context(), branchID, req.ToBranchID, req.Lines, req.Note, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// ReceiveStockTransfer confirms receipt of an incoming transfer
func (h *StockHandler) ReceiveStockTransfer(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	transferID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}
	transfer, err := h.stockService.ReceiveStockTransfer(c.Request.Context(), branchID, transferID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// ListIncomingStockTransfers returns transfers pending receipt at the branch
func (h *StockHandler) ListIncomingStockTransfers(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	transfers, err := h.stockService.IncomingTransfers(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfers)
}

// ListActivity returns the branch's audit trail
func (h *StockHandler) ListActivity(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	entries, err := h.stockService.Activity(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// RegisterRoutes mounts the catalogue and stock endpoints. Catalogue writes
// are restricted to managers and directors.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalogRole := middleware.RequireRole(identity.RoleManager, identity.RoleDirector)

	products := rg.Group("/products")
	{
		products.POST("", catalogRole, h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id/pricing", catalogRole, h.UpdateProductPricing)
		products.POST("/:id/deactivate", catalogRole, h.DeactivateProduct)
	}

	categories := rg.Group("/product-categories")
	{
		categories.POST("", catalogRole, h.CreateProductCategory)
		categories.GET("", h.ListProductCategories)
	}

	stock := rg.Group("/stock")
	{
		stock.GET("", h.ListStock)
		stock.GET("/low", h.LowStock)
		stock.POST("/receipts", h.ReceiveStock)
		stock.POST("/adjustments", h.AdjustStock)
		stock.GET("/movements/:id", h.StockHistory)
		stock.GET("/activity", h.ListActivity)
	}

	transfers := rg.Group("/stock-transfers")
	{
		transfers.POST("", h.SendStockTransfer)
		transfers.GET("/incoming", h.ListIncomingStockTransfers)
		transfers.POST("/:id/receive", h.ReceiveStockTransfer)
	}
}
