package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CatalogService manages the shared product catalogue
type CatalogService struct {
	productRepo inventory.ProductRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(productRepo inventory.ProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProductRequest carries the fields for a new catalogue entry
type CreateProductRequest struct {
	SKU         string     `json:"sku" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	CostPrice   string     `json:"cost_price" binding:"required"`
	SellPrice   string     `json:"sell_price" binding:"required"`
	Currency    string     `json:"currency" binding:"required"`
}

// CreateProduct adds a product to the catalogue
func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*inventory.Product, error) {
	currency := valueobject.Currency(req.Currency)
	cost, err := valueobject.NewMoneyFromString(req.CostPrice, currency)
	if err != nil {
		return nil, err
	}
	sell, err := valueobject.NewMoneyFromString(req.SellPrice, currency)
	if err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindBySKU(ctx, req.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to check SKU: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
	}

	product, err := inventory.NewProduct(req.SKU, req.Name, cost, sell, req.CategoryID)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

// UpdatePricing changes a product's cost and sell prices
func (s *CatalogService) UpdatePricing(ctx context.Context, productID uuid.UUID, costPrice, sellPrice decimal.Decimal) (*inventory.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}

	cost, err := valueobject.NewMoney(costPrice, product.Currency)
	if err != nil {
		return nil, err
	}
	sell, err := valueobject.NewMoney(sellPrice, product.Currency)
	if err != nil {
		return nil, err
	}
	if err := product.UpdatePricing(cost, sell); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return product, nil
}

// DeactivateProduct removes a product from sale
func (s *CatalogService) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	product.Deactivate()
	if err := s.productRepo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// GetProduct loads a single catalogue entry
func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*inventory.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	return product, nil
}

// ListProducts pages through active products, optionally filtered by a
// name or SKU search term
func (s *CatalogService) ListProducts(ctx context.Context, filter shared.Filter) ([]inventory.Product, error) {
	products, err := s.productRepo.FindActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CreateCategory adds a product category
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*inventory.ProductCategory, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	category := &inventory.ProductCategory{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
	}
	if err := s.productRepo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return category, nil
}

// ListCategories returns all product categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]inventory.ProductCategory, error) {
	categories, err := s.productRepo.FindCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
