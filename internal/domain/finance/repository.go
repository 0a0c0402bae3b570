package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// AccountRepository manages branch accounts and their balances. Lookup is
// always by the structural key, never by display name.
type AccountRepository interface {
	shared.BranchRepository[Account]
	FindByKey(ctx context.Context, key AccountKey) (*Account, error)
	// GetOrCreate returns the account for the key, creating it with a zero
	// balance on first use
	GetOrCreate(ctx context.Context, key AccountKey, branchName string) (*Account, error)
	// BalanceForUpdate loads the account's balance row under a row lock
	BalanceForUpdate(ctx context.Context, accountID uuid.UUID) (*AccountBalance, error)
	SaveBalance(ctx context.Context, balance *AccountBalance) error
	BalancesForBranch(ctx context.Context, branchID uuid.UUID) ([]AccountBalance, error)
}

// CustomerAccountRepository manages per-customer running balances
type CustomerAccountRepository interface {
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*CustomerAccount, error)
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*CustomerAccount, error)
	// BalanceForUpdate loads the balance row for the customer account and
	// currency under a row lock, creating a zero row on first use
	BalanceForUpdate(ctx context.Context, customerAccountID uuid.UUID, currency valueobject.Currency) (*CustomerAccountBalance, error)
	SaveBalance(ctx context.Context, balance *CustomerAccountBalance) error
	Balances(ctx context.Context, customerAccountID uuid.UUID) ([]CustomerAccountBalance, error)
}

// CashbookRepository manages the branch journal
type CashbookRepository interface {
	shared.BranchRepository[CashbookEntry]
	FindBySource(ctx context.Context, sourceType EntrySourceType, sourceID uuid.UUID) ([]CashbookEntry, error)
	AddNote(ctx context.Context, note *CashbookNote) error
}

// DepositRepository manages customer deposits
type DepositRepository interface {
	shared.BranchRepository[CustomerDeposit]
	FindByCustomer(ctx context.Context, branchID, customerID uuid.UUID, filter shared.Filter) ([]CustomerDeposit, error)
	// FindByPaymentReference looks a deposit up by its receipt number, which
	// is unique across all branches
	FindByPaymentReference(ctx context.Context, reference string) (*CustomerDeposit, error)
}

// TransferRepository manages cash transfers between branches
type TransferRepository interface {
	shared.BranchRepository[CashTransfer]
	// FindIncoming lists transfers addressed to the branch
	FindIncoming(ctx context.Context, toBranchID uuid.UUID, status TransferStatus, filter shared.Filter) ([]CashTransfer, error)
}

// WithdrawalRepository manages cash withdrawals
type WithdrawalRepository interface {
	shared.BranchRepository[CashWithdrawal]
}

// ExpenseRepository manages expenses and their categories
type ExpenseRepository interface {
	shared.BranchRepository[Expense]
	SaveCategory(ctx context.Context, category *ExpenseCategory) error
	FindCategories(ctx context.Context, branchID uuid.UUID) ([]ExpenseCategory, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*ExpenseCategory, error)
}

// LedgerRepository appends to the immutable transaction trail
type LedgerRepository interface {
	Append(ctx context.Context, tx *LedgerTransaction) error
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]LedgerTransaction, error)
	FindByReference(ctx context.Context, reference string) (*LedgerTransaction, error)
}

// VATRepository manages VAT rates and captured tax
type VATRepository interface {
	ActiveRate(ctx context.Context, branchID uuid.UUID) (*VATRate, error)
	SaveRate(ctx context.Context, rate *VATRate) error
	RecordTransaction(ctx context.Context, tx *VATTransaction) error
	DeleteBySource(ctx context.Context, sourceType EntrySourceType, sourceID uuid.UUID) error
	FindTransactions(ctx context.Context, branchID uuid.UUID, vatType VATType, filter shared.Filter) ([]VATTransaction, error)
}
