package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// ProductRepository manages the product catalogue
type ProductRepository interface {
	shared.Repository[Product]
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)
	SaveCategory(ctx context.Context, category *ProductCategory) error
	FindCategories(ctx context.Context) ([]ProductCategory, error)
}

// StockRepository manages per-branch stock levels and movement history
type StockRepository interface {
	// FindForUpdate loads the stock row for a branch and product under a row
	// lock so concurrent sales serialise
	FindForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*StockItem, error)
	GetOrCreate(ctx context.Context, branchID, productID uuid.UUID) (*StockItem, error)
	Save(ctx context.Context, item *StockItem) error
	FindForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]StockItem, error)
	FindBelowReorderLevel(ctx context.Context, branchID uuid.UUID) ([]StockItem, error)
	RecordTransaction(ctx context.Context, tx *StockTransaction) error
	FindTransactions(ctx context.Context, branchID, productID uuid.UUID, filter shared.Filter) ([]StockTransaction, error)
}

// StockTransferRepository manages inter-branch goods transfers
type StockTransferRepository interface {
	shared.BranchRepository[StockTransfer]
	FindIncoming(ctx context.Context, toBranchID uuid.UUID, status StockTransferStatus, filter shared.Filter) ([]StockTransfer, error)
}

// ActivityLogRepository appends audit lines
type ActivityLogRepository interface {
	Append(ctx context.Context, log *ActivityLog) error
	FindForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]ActivityLog, error)
}
