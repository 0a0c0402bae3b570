package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// GormCashbookRepository implements finance.CashbookRepository using GORM
type GormCashbookRepository struct {
	branchRepo[finance.CashbookEntry]
}

// NewGormCashbookRepository creates a new GormCashbookRepository
func NewGormCashbookRepository(db *Database) *GormCashbookRepository {
	return &GormCashbookRepository{branchRepo: newBranchRepo[finance.CashbookEntry](db.DB, "issue_date DESC, created_at DESC")}
}

// FindByID finds an entry with its notes preloaded
func (r *GormCashbookRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CashbookEntry, error) {
	var entry finance.CashbookEntry
	if err := r.session(ctx).
		Preload("Notes").
		First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByIDForBranch finds an entry within a branch with its notes preloaded
func (r *GormCashbookRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*finance.CashbookEntry, error) {
	var entry finance.CashbookEntry
	if err := r.session(ctx).
		Preload("Notes").
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindAllForBranch lists a branch's journal entries, optionally bounded by
// issue date.
func (r *GormCashbookRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]finance.CashbookEntry, error) {
	var entries []finance.CashbookEntry
	query := r.applyFilter(
		r.issueDateRange(
			r.session(ctx).Model(&finance.CashbookEntry{}).Where("branch_id = ?", branchID),
			filter,
		),
		filter,
	)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts journal entries matching the filter
func (r *GormCashbookRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.issueDateRange(r.session(ctx).Model(&finance.CashbookEntry{}), filter)
	if err := r.applyConditions(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCashbookRepository) issueDateRange(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.DateFrom != nil {
		query = query.Where("issue_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("issue_date < ?", filter.DateTo.AddDate(0, 0, 1))
	}
	return query
}

// FindBySource lists the journal entries posted for an originating record
func (r *GormCashbookRepository) FindBySource(ctx context.Context, sourceType finance.EntrySourceType, sourceID uuid.UUID) ([]finance.CashbookEntry, error) {
	var entries []finance.CashbookEntry
	if err := r.session(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// AddNote appends a note to an entry
func (r *GormCashbookRepository) AddNote(ctx context.Context, note *finance.CashbookNote) error {
	return r.session(ctx).Create(note).Error
}

var _ finance.CashbookRepository = (*GormCashbookRepository)(nil)
