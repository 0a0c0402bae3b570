package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	repo[inventory.Product]
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *Database) *GormProductRepository {
	return &GormProductRepository{repo: newRepo[inventory.Product](db.DB, "name ASC")}
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*inventory.Product, error) {
	var product inventory.Product
	if err := r.session(ctx).
		Where("sku = ?", strings.TrimSpace(sku)).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindActive lists active products, optionally filtered by name search
func (r *GormProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]inventory.Product, error) {
	query := r.session(ctx).Model(&inventory.Product{}).Where("active = ?", true)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	var products []inventory.Product
	if err := r.applyFilter(query, filter).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SaveCategory creates or updates a product category
func (r *GormProductRepository) SaveCategory(ctx context.Context, category *inventory.ProductCategory) error {
	return r.session(ctx).Save(category).Error
}

// FindCategories lists all product categories
func (r *GormProductRepository) FindCategories(ctx context.Context) ([]inventory.ProductCategory, error) {
	var categories []inventory.ProductCategory
	if err := r.session(ctx).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *Database) *GormStockRepository {
	return &GormStockRepository{db: db.DB}
}

func (r *GormStockRepository) session(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// FindForUpdate loads the stock row for a branch and product under a FOR
// UPDATE lock so concurrent sales serialise. A missing row is (nil, nil).
func (r *GormStockRepository) FindForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetOrCreate returns the stock row for a branch and product, creating a zero
// row on first use.
func (r *GormStockRepository) GetOrCreate(ctx context.Context, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	item, err := r.FindForUpdate(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}

	fresh, err := inventory.NewStockItem(branchID, productID, 0)
	if err != nil {
		return nil, err
	}
	if err := r.session(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.FindForUpdate(ctx, branchID, productID)
}

// Save persists a stock row
func (r *GormStockRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.session(ctx).Save(item).Error
}

// FindForBranch lists the stock rows held by a branch
func (r *GormStockRepository) FindForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	query := r.session(ctx).Model(&inventory.StockItem{}).
		Where("branch_id = ?", branchID).
		Order("created_at ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var items []inventory.StockItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBelowReorderLevel lists stock rows at or below their reorder level
func (r *GormStockRepository) FindBelowReorderLevel(ctx context.Context, branchID uuid.UUID) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	if err := r.session(ctx).
		Where("branch_id = ? AND reorder_level > 0 AND quantity <= reorder_level", branchID).
		Order("quantity ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// RecordTransaction appends a stock movement row
func (r *GormStockRepository) RecordTransaction(ctx context.Context, tx *inventory.StockTransaction) error {
	return r.session(ctx).Create(tx).Error
}

// FindTransactions lists the movement history for a branch and product
func (r *GormStockRepository) FindTransactions(ctx context.Context, branchID, productID uuid.UUID, filter shared.Filter) ([]inventory.StockTransaction, error) {
	query := r.session(ctx).Model(&inventory.StockTransaction{}).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		Order("occurred_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var txs []inventory.StockTransaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// GormStockTransferRepository implements inventory.StockTransferRepository
type GormStockTransferRepository struct {
	branchRepo[inventory.StockTransfer]
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *Database) *GormStockTransferRepository {
	return &GormStockTransferRepository{branchRepo: newBranchRepo[inventory.StockTransfer](db.DB, "sent_at DESC")}
}

// FindByID finds a goods transfer with its items preloaded
func (r *GormStockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.session(ctx).
		Preload("Items").
		First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// FindIncoming lists goods transfers addressed to the branch
func (r *GormStockTransferRepository) FindIncoming(ctx context.Context, toBranchID uuid.UUID, status inventory.StockTransferStatus, filter shared.Filter) ([]inventory.StockTransfer, error) {
	query := r.session(ctx).Model(&inventory.StockTransfer{}).
		Preload("Items").
		Where("to_branch_id = ?", toBranchID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var transfers []inventory.StockTransfer
	if err := r.applyFilter(query, filter).Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// GormActivityLogRepository implements inventory.ActivityLogRepository
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *Database) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db.DB}
}

// Append inserts an audit line
func (r *GormActivityLogRepository) Append(ctx context.Context, log *inventory.ActivityLog) error {
	return dbFrom(ctx, r.db).Create(log).Error
}

// FindForBranch lists audit lines for a branch, newest first
func (r *GormActivityLogRepository) FindForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]inventory.ActivityLog, error) {
	query := dbFrom(ctx, r.db).Model(&inventory.ActivityLog{}).
		Where("branch_id = ?", branchID).
		Order("occurred_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var logs []inventory.ActivityLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

var _ inventory.ProductRepository = (*GormProductRepository)(nil)
var _ inventory.StockRepository = (*GormStockRepository)(nil)
var _ inventory.StockTransferRepository = (*GormStockTransferRepository)(nil)
var _ inventory.ActivityLogRepository = (*GormActivityLogRepository)(nil)
