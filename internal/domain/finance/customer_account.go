package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// CustomerAccount is the per-customer mirror of the system ledger. One exists
// per customer; balances hang off it per currency.
type CustomerAccount struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (CustomerAccount) TableName() string {
	return "customer_accounts"
}

// NewCustomerAccount creates the account record for a customer
func NewCustomerAccount(customerID uuid.UUID) (*CustomerAccount, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &CustomerAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
	}, nil
}

// CustomerAccountBalance tracks what one customer owes or has on credit in a
// single currency. Negative means the customer owes the business (a
// receivable); positive means credit/overpayment.
type CustomerAccountBalance struct {
	shared.BaseAggregateRoot
	CustomerAccountID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_customer_balance_account_currency,priority:1"`
	Currency          valueobject.Currency `gorm:"type:varchar(3);not null;uniqueIndex:idx_customer_balance_account_currency,priority:2"`
	Balance           decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerAccountBalance) TableName() string {
	return "customer_account_balances"
}

// NewCustomerAccountBalance creates a zero balance in the given currency
func NewCustomerAccountBalance(accountID uuid.UUID, currency valueobject.Currency) (*CustomerAccountBalance, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Customer account ID cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency %q is not supported", currency))
	}
	return &CustomerAccountBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerAccountID: accountID,
		Currency:          currency,
	}, nil
}

// Charge records money the customer now owes: the balance moves down by the
// outstanding amount. Used when an invoice is created with an amount due.
func (b *CustomerAccountBalance) Charge(amount valueobject.Money) error {
	return b.post(amount, decimal.NewFromInt(-1))
}

// Credit records money received from or owed to the customer: the balance
// moves up. Used for deposits and for releasing a cancelled invoice's debt.
func (b *CustomerAccountBalance) Credit(amount valueobject.Money) error {
	return b.post(amount, decimal.NewFromInt(1))
}

// Debit moves the balance down, e.g. when a deposit is refunded
func (b *CustomerAccountBalance) Debit(amount valueobject.Money) error {
	return b.post(amount, decimal.NewFromInt(-1))
}

func (b *CustomerAccountBalance) post(amount valueobject.Money, sign decimal.Decimal) error {
	if amount.Currency() != b.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Cannot post %s to a %s customer balance", amount.Currency(), b.Currency))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Posting amount must be positive")
	}
	b.Balance = b.Balance.Add(amount.Amount().Mul(sign))
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Owed returns the amount the customer owes (zero when in credit)
func (b *CustomerAccountBalance) Owed() decimal.Decimal {
	if b.Balance.IsNegative() {
		return b.Balance.Neg()
	}
	return decimal.Zero
}

// InCredit reports whether the customer has overpaid
func (b *CustomerAccountBalance) InCredit() bool {
	return b.Balance.IsPositive()
}
