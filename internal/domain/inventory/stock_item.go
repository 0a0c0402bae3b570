package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// StockItem is the quantity a branch holds of one product. One row exists per
// branch and product; all movements go through Deduct and Restock so the
// transaction log stays complete.
type StockItem struct {
	shared.BaseAggregateRoot
	BranchID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_branch_product,priority:1"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_branch_product,priority:2"`
	Quantity     int       `gorm:"not null;default:0"`
	ReorderLevel int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates an empty stock record for a product at a branch
func NewStockItem(branchID, productID uuid.UUID, reorderLevel int) (*StockItem, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if reorderLevel < 0 {
		return nil, shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		ProductID:         productID,
		ReorderLevel:      reorderLevel,
	}, nil
}

// Deduct removes quantity from stock. With allowNegative false the deduction
// fails rather than taking the quantity below zero; true lets a branch sell
// ahead of a delivery that is already on the floor.
func (s *StockItem) Deduct(quantity int, allowNegative bool) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if !allowNegative && s.Quantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Only %d in stock, cannot deduct %d", s.Quantity, quantity))
	}
	s.Quantity -= quantity
	s.IncrementVersion()
	return nil
}

// Restock adds quantity back, from a purchase, a return or a transfer in
func (s *StockItem) Restock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}
	s.Quantity += quantity
	s.IncrementVersion()
	return nil
}

// Adjust sets the quantity to an absolute count after a stock take and
// returns the signed difference applied
func (s *StockItem) Adjust(counted int) (int, error) {
	if counted < 0 {
		return 0, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	diff := counted - s.Quantity
	s.Quantity = counted
	s.IncrementVersion()
	return diff, nil
}

// BelowReorderLevel reports whether the branch should restock
func (s *StockItem) BelowReorderLevel() bool {
	return s.Quantity <= s.ReorderLevel
}
