package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// PaymentMethod represents how money moved: over the counter, through a bank
// account, or through the Ecocash mobile wallet.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodBank    PaymentMethod = "bank"
	PaymentMethodEcocash PaymentMethod = "ecocash"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodEcocash:
		return true
	}
	return false
}

// String returns the string representation of the payment method
func (m PaymentMethod) String() string {
	return string(m)
}

// AccountType mirrors the payment method on the account record
type AccountType string

const (
	AccountTypeCash    AccountType = "CASH"
	AccountTypeBank    AccountType = "BANK"
	AccountTypeEcocash AccountType = "ECOCASH"
)

// AccountTypeFor returns the account type backing a payment method
func AccountTypeFor(method PaymentMethod) AccountType {
	switch method {
	case PaymentMethodBank:
		return AccountTypeBank
	case PaymentMethodEcocash:
		return AccountTypeEcocash
	default:
		return AccountTypeCash
	}
}

// AccountKey is the structural identity of a system account. Accounts are
// never looked up by display name; the (branch, currency, payment method)
// triple is the key and carries a unique index.
type AccountKey struct {
	BranchID      uuid.UUID
	Currency      valueobject.Currency
	PaymentMethod PaymentMethod
}

// Validate checks that every component of the key is present and valid
func (k AccountKey) Validate() error {
	if k.BranchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !k.Currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency %q is not supported", k.Currency))
	}
	if !k.PaymentMethod.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not supported", k.PaymentMethod))
	}
	return nil
}

// DisplayName renders the human-readable account name for reports
func (k AccountKey) DisplayName(branchName string) string {
	return fmt.Sprintf("%s %s %s Account", branchName, k.Currency, k.PaymentMethod)
}

// Account is a system ledger bucket for one branch, currency and payment
// method. The running balance lives on the associated AccountBalance row.
type Account struct {
	shared.BaseAggregateRoot
	BranchID      uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_account_branch_currency_method,priority:1"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null;uniqueIndex:idx_account_branch_currency_method,priority:2"`
	PaymentMethod PaymentMethod        `gorm:"type:varchar(10);not null;uniqueIndex:idx_account_branch_currency_method,priority:3"`
	Type          AccountType          `gorm:"type:varchar(10);not null"`
	Name          string               `gorm:"type:varchar(120);not null"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new system account for the given key
func NewAccount(key AccountKey, branchName string) (*Account, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          key.BranchID,
		Currency:          key.Currency,
		PaymentMethod:     key.PaymentMethod,
		Type:              AccountTypeFor(key.PaymentMethod),
		Name:              key.DisplayName(branchName),
	}, nil
}

// Key returns the structural identity of the account
func (a *Account) Key() AccountKey {
	return AccountKey{
		BranchID:      a.BranchID,
		Currency:      a.Currency,
		PaymentMethod: a.PaymentMethod,
	}
}

// AccountBalance is the running monetary total for one account. It only ever
// changes inside the same transaction as the posting that moves it.
type AccountBalance struct {
	shared.BaseAggregateRoot
	AccountID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	BranchID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null"`
	Balance   decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (AccountBalance) TableName() string {
	return "account_balances"
}

// NewAccountBalance creates a zero balance for an account
func NewAccountBalance(account *Account) *AccountBalance {
	return &AccountBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         account.ID,
		BranchID:          account.BranchID,
		Currency:          account.Currency,
		Balance:           decimal.Zero,
	}
}

// Credit increases the balance by the given amount
func (b *AccountBalance) Credit(amount valueobject.Money) error {
	if amount.Currency() != b.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Cannot post %s to a %s account", amount.Currency(), b.Currency))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Posting amount must be positive")
	}
	b.Balance = b.Balance.Add(amount.Amount())
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Debit decreases the balance by the given amount. The balance is allowed to
// go negative; callers that must not overdraw check HasFunds under a row lock
// before debiting.
func (b *AccountBalance) Debit(amount valueobject.Money) error {
	if amount.Currency() != b.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Cannot post %s to a %s account", amount.Currency(), b.Currency))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Posting amount must be positive")
	}
	b.Balance = b.Balance.Sub(amount.Amount())
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// HasFunds reports whether the balance covers the given amount
func (b *AccountBalance) HasFunds(amount valueobject.Money) bool {
	return b.Balance.GreaterThanOrEqual(amount.Amount())
}

// BalanceMoney returns the balance as Money
func (b *AccountBalance) BalanceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(b.Balance, b.Currency)
	return m
}
