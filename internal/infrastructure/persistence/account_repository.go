package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// GormAccountRepository implements finance.AccountRepository using GORM
type GormAccountRepository struct {
	branchRepo[finance.Account]
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *Database) *GormAccountRepository {
	return &GormAccountRepository{branchRepo: newBranchRepo[finance.Account](db.DB, "name ASC")}
}

// FindByKey finds the account for the structural key. A missing account is
// (nil, nil).
func (r *GormAccountRepository) FindByKey(ctx context.Context, key finance.AccountKey) (*finance.Account, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var account finance.Account
	if err := r.session(ctx).
		Where("branch_id = ? AND currency = ? AND payment_method = ?",
			key.BranchID, key.Currency, key.PaymentMethod).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetOrCreate returns the account for the key, creating it together with a
// zero balance row on first use.
func (r *GormAccountRepository) GetOrCreate(ctx context.Context, key finance.AccountKey, branchName string) (*finance.Account, error) {
	account, err := r.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account, err = finance.NewAccount(key, branchName)
	if err != nil {
		return nil, err
	}
	// A concurrent creator may win the race; the unique index on the key
	// makes the insert a no-op and the reload returns the winner's row.
	if err := r.session(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(account).Error; err != nil {
		return nil, err
	}
	created, err := r.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, shared.ErrNotFound
	}
	if created.ID == account.ID {
		balance := finance.NewAccountBalance(created)
		if err := r.session(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(balance).Error; err != nil {
			return nil, err
		}
	}
	return created, nil
}

// BalanceForUpdate loads the account's balance row under a FOR UPDATE lock
func (r *GormAccountRepository) BalanceForUpdate(ctx context.Context, accountID uuid.UUID) (*finance.AccountBalance, error) {
	var balance finance.AccountBalance
	if err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ?", accountID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// SaveBalance persists a balance row
func (r *GormAccountRepository) SaveBalance(ctx context.Context, balance *finance.AccountBalance) error {
	return r.session(ctx).Save(balance).Error
}

// BalancesForBranch lists every account balance for a branch
func (r *GormAccountRepository) BalancesForBranch(ctx context.Context, branchID uuid.UUID) ([]finance.AccountBalance, error) {
	var balances []finance.AccountBalance
	if err := r.session(ctx).
		Where("branch_id = ?", branchID).
		Order("currency ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// GormCustomerAccountRepository implements finance.CustomerAccountRepository
type GormCustomerAccountRepository struct {
	db *gorm.DB
}

// NewGormCustomerAccountRepository creates a new GormCustomerAccountRepository
func NewGormCustomerAccountRepository(db *Database) *GormCustomerAccountRepository {
	return &GormCustomerAccountRepository{db: db.DB}
}

func (r *GormCustomerAccountRepository) session(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// FindByCustomerID finds the account record for a customer. A missing account
// is (nil, nil).
func (r *GormCustomerAccountRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*finance.CustomerAccount, error) {
	var account finance.CustomerAccount
	if err := r.session(ctx).
		Where("customer_id = ?", customerID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetOrCreate returns the customer's account, creating it on first use
func (r *GormCustomerAccountRepository) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*finance.CustomerAccount, error) {
	account, err := r.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account, err = finance.NewCustomerAccount(customerID)
	if err != nil {
		return nil, err
	}
	if err := r.session(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(account).Error; err != nil {
		return nil, err
	}
	return r.FindByCustomerID(ctx, customerID)
}

// BalanceForUpdate loads the balance row for the account and currency under a
// FOR UPDATE lock, creating a zero row on first use.
func (r *GormCustomerAccountRepository) BalanceForUpdate(ctx context.Context, customerAccountID uuid.UUID, currency valueobject.Currency) (*finance.CustomerAccountBalance, error) {
	var balance finance.CustomerAccountBalance
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_account_id = ? AND currency = ?", customerAccountID, currency).
		First(&balance).Error
	if err == nil {
		return &balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh, err := finance.NewCustomerAccountBalance(customerAccountID, currency)
	if err != nil {
		return nil, err
	}
	if err := r.session(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh).Error; err != nil {
		return nil, err
	}
	if err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_account_id = ? AND currency = ?", customerAccountID, currency).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

// SaveBalance persists a customer balance row
func (r *GormCustomerAccountRepository) SaveBalance(ctx context.Context, balance *finance.CustomerAccountBalance) error {
	return r.session(ctx).Save(balance).Error
}

// Balances lists every currency balance for a customer account
func (r *GormCustomerAccountRepository) Balances(ctx context.Context, customerAccountID uuid.UUID) ([]finance.CustomerAccountBalance, error) {
	var balances []finance.CustomerAccountBalance
	if err := r.session(ctx).
		Where("customer_account_id = ?", customerAccountID).
		Order("currency ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

var _ finance.AccountRepository = (*GormAccountRepository)(nil)
var _ finance.CustomerAccountRepository = (*GormCustomerAccountRepository)(nil)
