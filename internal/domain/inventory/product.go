package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// ProductCategory groups products in the catalogue
type ProductCategory struct {
	shared.BaseEntity
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ProductCategory) TableName() string {
	return "product_categories"
}

// Product is a catalogue entry shared across branches. Per-branch quantities
// live on StockItem; the product only carries pricing and identity.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string               `gorm:"type:varchar(40);not null;uniqueIndex"`
	Name        string               `gorm:"type:varchar(120);not null;index"`
	Description string               `gorm:"type:text"`
	CategoryID  *uuid.UUID           `gorm:"type:uuid;index"`
	CostPrice   decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	SellPrice   decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	Active      bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a catalogue entry
func NewProduct(sku, name string, costPrice, sellPrice valueobject.Money, categoryID *uuid.UUID) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if costPrice.IsNegative() || sellPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if costPrice.Currency() != sellPrice.Currency() {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Cost is %s but sell price is %s", costPrice.Currency(), sellPrice.Currency()))
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		CategoryID:        categoryID,
		CostPrice:         costPrice.Amount(),
		SellPrice:         sellPrice.Amount(),
		Currency:          costPrice.Currency(),
		Active:            true,
	}, nil
}

// UpdatePricing changes the cost and sell prices
func (p *Product) UpdatePricing(costPrice, sellPrice valueobject.Money) error {
	if costPrice.IsNegative() || sellPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if costPrice.Currency() != p.Currency || sellPrice.Currency() != p.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH", "Prices must be in the product currency")
	}
	p.CostPrice = costPrice.Amount()
	p.SellPrice = sellPrice.Amount()
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from sale without deleting its history
func (p *Product) Deactivate() {
	p.Active = false
	p.IncrementVersion()
}

// SellPriceMoney returns the sell price as Money
func (p *Product) SellPriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.SellPrice, p.Currency)
	return m
}

// CostPriceMoney returns the cost price as Money
func (p *Product) CostPriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.CostPrice, p.Currency)
	return m
}
