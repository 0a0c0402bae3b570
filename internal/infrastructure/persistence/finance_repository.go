package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// GormDepositRepository implements finance.DepositRepository using GORM
type GormDepositRepository struct {
	branchRepo[finance.CustomerDeposit]
}

// NewGormDepositRepository creates a new GormDepositRepository
func NewGormDepositRepository(db *Database) *GormDepositRepository {
	return &GormDepositRepository{branchRepo: newBranchRepo[finance.CustomerDeposit](db.DB, "deposit_date DESC, created_at DESC")}
}

// FindByCustomer lists a customer's deposits within a branch
func (r *GormDepositRepository) FindByCustomer(ctx context.Context, branchID, customerID uuid.UUID, filter shared.Filter) ([]finance.CustomerDeposit, error) {
	var deposits []finance.CustomerDeposit
	query := r.applyFilter(
		r.session(ctx).Model(&finance.CustomerDeposit{}).
			Where("branch_id = ? AND customer_id = ?", branchID, customerID),
		filter,
	)
	if err := query.Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}

// FindByPaymentReference looks a deposit up by its receipt number. A missing
// row is (nil, nil).
func (r *GormDepositRepository) FindByPaymentReference(ctx context.Context, reference string) (*finance.CustomerDeposit, error) {
	var deposit finance.CustomerDeposit
	err := r.session(ctx).Where("payment_reference = ?", reference).First(&deposit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

// GormTransferRepository implements finance.TransferRepository using GORM
type GormTransferRepository struct {
	branchRepo[finance.CashTransfer]
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *Database) *GormTransferRepository {
	return &GormTransferRepository{branchRepo: newBranchRepo[finance.CashTransfer](db.DB, "sent_at DESC")}
}

// FindIncoming lists transfers addressed to the branch, optionally by status
func (r *GormTransferRepository) FindIncoming(ctx context.Context, toBranchID uuid.UUID, status finance.TransferStatus, filter shared.Filter) ([]finance.CashTransfer, error) {
	query := r.session(ctx).Model(&finance.CashTransfer{}).
		Where("to_branch_id = ?", toBranchID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var transfers []finance.CashTransfer
	if err := r.applyFilter(query, filter).Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// GormWithdrawalRepository implements finance.WithdrawalRepository using GORM
type GormWithdrawalRepository struct {
	branchRepo[finance.CashWithdrawal]
}

// NewGormWithdrawalRepository creates a new GormWithdrawalRepository
func NewGormWithdrawalRepository(db *Database) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{branchRepo: newBranchRepo[finance.CashWithdrawal](db.DB, "withdrawn_at DESC")}
}

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	branchRepo[finance.Expense]
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *Database) *GormExpenseRepository {
	return &GormExpenseRepository{branchRepo: newBranchRepo[finance.Expense](db.DB, "expense_date DESC")}
}

// SaveCategory creates or updates an expense category
func (r *GormExpenseRepository) SaveCategory(ctx context.Context, category *finance.ExpenseCategory) error {
	return r.session(ctx).Save(category).Error
}

// FindCategories lists the categories defined for a branch
func (r *GormExpenseRepository) FindCategories(ctx context.Context, branchID uuid.UUID) ([]finance.ExpenseCategory, error) {
	var categories []finance.ExpenseCategory
	if err := r.session(ctx).
		Where("branch_id = ?", branchID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindCategoryByID finds an expense category by its ID
func (r *GormExpenseRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*finance.ExpenseCategory, error) {
	var category finance.ExpenseCategory
	if err := r.session(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GormLedgerRepository implements finance.LedgerRepository using GORM. The
// trail is append-only; rows are never updated or deleted.
type GormLedgerRepository struct {
	repo[finance.LedgerTransaction]
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *Database) *GormLedgerRepository {
	return &GormLedgerRepository{repo: newRepo[finance.LedgerTransaction](db.DB, "posted_at DESC")}
}

// Append inserts a new ledger transaction
func (r *GormLedgerRepository) Append(ctx context.Context, tx *finance.LedgerTransaction) error {
	return r.session(ctx).Create(tx).Error
}

// FindByAccount lists the transactions posted against an account
func (r *GormLedgerRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]finance.LedgerTransaction, error) {
	var txs []finance.LedgerTransaction
	query := r.applyFilter(
		r.session(ctx).Model(&finance.LedgerTransaction{}).
			Where("account_id = ?", accountID),
		filter,
	)
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByReference finds a transaction by its short reference
func (r *GormLedgerRepository) FindByReference(ctx context.Context, reference string) (*finance.LedgerTransaction, error) {
	var tx finance.LedgerTransaction
	if err := r.session(ctx).
		Where("reference = ?", reference).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// GormVATRepository implements finance.VATRepository using GORM
type GormVATRepository struct {
	repo[finance.VATTransaction]
}

// NewGormVATRepository creates a new GormVATRepository
func NewGormVATRepository(db *Database) *GormVATRepository {
	return &GormVATRepository{repo: newRepo[finance.VATTransaction](db.DB, "recorded_at DESC")}
}

// ActiveRate returns the branch's currently active VAT rate, or (nil, nil)
// when none is configured.
func (r *GormVATRepository) ActiveRate(ctx context.Context, branchID uuid.UUID) (*finance.VATRate, error) {
	var rate finance.VATRate
	if err := r.session(ctx).
		Where("branch_id = ? AND active = ? AND effective_from <= ?", branchID, true, time.Now()).
		Order("effective_from DESC").
		First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// SaveRate persists a VAT rate, deactivating any previously active rate for
// the branch.
func (r *GormVATRepository) SaveRate(ctx context.Context, rate *finance.VATRate) error {
	session := r.session(ctx)
	if rate.Active {
		if err := session.Model(&finance.VATRate{}).
			Where("branch_id = ? AND active = ? AND id <> ?", rate.BranchID, true, rate.ID).
			Update("active", false).Error; err != nil {
			return err
		}
	}
	return session.Save(rate).Error
}

// RecordTransaction appends a captured VAT transaction
func (r *GormVATRepository) RecordTransaction(ctx context.Context, tx *finance.VATTransaction) error {
	return r.session(ctx).Create(tx).Error
}

// DeleteBySource removes the VAT captured for a reversed originating record
func (r *GormVATRepository) DeleteBySource(ctx context.Context, sourceType finance.EntrySourceType, sourceID uuid.UUID) error {
	return r.session(ctx).
		Delete(&finance.VATTransaction{}, "source_type = ? AND source_id = ?", sourceType, sourceID).Error
}

// FindTransactions lists captured VAT for a branch and direction
func (r *GormVATRepository) FindTransactions(ctx context.Context, branchID uuid.UUID, vatType finance.VATType, filter shared.Filter) ([]finance.VATTransaction, error) {
	var txs []finance.VATTransaction
	query := r.applyFilter(
		r.session(ctx).Model(&finance.VATTransaction{}).
			Where("branch_id = ? AND type = ?", branchID, vatType),
		filter,
	)
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

var _ finance.DepositRepository = (*GormDepositRepository)(nil)
var _ finance.TransferRepository = (*GormTransferRepository)(nil)
var _ finance.WithdrawalRepository = (*GormWithdrawalRepository)(nil)
var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
var _ finance.LedgerRepository = (*GormLedgerRepository)(nil)
var _ finance.VATRepository = (*GormVATRepository)(nil)
