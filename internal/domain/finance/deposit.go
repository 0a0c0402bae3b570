package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// CustomerDeposit is money a customer lodged ahead of purchases. The paid-in
// amount credits both the branch account and the customer's account balance;
// later invoices draw the credit down.
type CustomerDeposit struct {
	shared.BranchAggregateRoot
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	PaymentReference string               `gorm:"type:varchar(60);not null;uniqueIndex"`
	Amount           decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency         valueobject.Currency `gorm:"type:varchar(3);not null"`
	PaymentMethod    PaymentMethod        `gorm:"type:varchar(10);not null"`
	Description      string               `gorm:"type:varchar(255)"`
	DepositDate      time.Time            `gorm:"not null;index"`
	Refunded         bool                 `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CustomerDeposit) TableName() string {
	return "customer_deposits"
}

// NewCustomerDeposit creates a deposit record. The payment reference is the
// receipt number handed to the customer and must be unique across branches.
func NewCustomerDeposit(
	branchID, customerID uuid.UUID,
	paymentReference string,
	amount valueobject.Money,
	method PaymentMethod,
	description string,
) (*CustomerDeposit, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(paymentReference) == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deposit amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}

	deposit := &CustomerDeposit{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		CustomerID:          customerID,
		PaymentReference:    strings.TrimSpace(paymentReference),
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		PaymentMethod:       method,
		Description:         description,
		DepositDate:         time.Now(),
	}

	deposit.AddDomainEvent(NewDepositCreatedEvent(deposit))
	return deposit, nil
}

// Edit replaces the deposit amount and returns the signed difference between
// the new and old amounts. Callers apply exactly that delta to the branch and
// customer balances so the deposit is never double counted.
func (d *CustomerDeposit) Edit(newAmount valueobject.Money) (valueobject.Money, error) {
	var zero valueobject.Money
	if d.Refunded {
		return zero, shared.NewDomainError("INVALID_STATE", "Cannot edit a refunded deposit")
	}
	if !newAmount.IsPositive() {
		return zero, shared.NewDomainError("INVALID_AMOUNT", "Deposit amount must be positive")
	}
	if newAmount.Currency() != d.Currency {
		return zero, shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Cannot change deposit currency from %s to %s", d.Currency, newAmount.Currency()))
	}

	old := d.Amount
	d.Amount = newAmount.Amount()
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	delta, err := valueobject.NewMoney(newAmount.Amount().Sub(old), d.Currency)
	if err != nil {
		return zero, err
	}
	d.AddDomainEvent(NewDepositEditedEvent(d, delta))
	return delta, nil
}

// Refund takes the given amount back out of the deposit. Refunding the full
// remaining amount marks the deposit refunded and returns full=true, telling
// the caller to remove the row. The caller reverses exactly this amount out
// of the branch and customer balances.
func (d *CustomerDeposit) Refund(amount valueobject.Money) (full bool, err error) {
	if d.Refunded {
		return false, shared.NewDomainError("INVALID_STATE", "Deposit is already refunded")
	}
	if !amount.IsPositive() {
		return false, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if amount.Currency() != d.Currency {
		return false, shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Cannot refund a %s deposit in %s", d.Currency, amount.Currency()))
	}
	if amount.Amount().GreaterThan(d.Amount) {
		return false, shared.NewDomainError("INVALID_AMOUNT", "Refund cannot exceed the deposit amount")
	}

	full = amount.Amount().Equal(d.Amount)
	if full {
		d.Refunded = true
	}
	d.Amount = d.Amount.Sub(amount.Amount())
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	d.AddDomainEvent(NewDepositRefundedEvent(d))
	return full, nil
}

// AmountMoney returns the deposit amount as Money
func (d *CustomerDeposit) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(d.Amount, d.Currency)
	return m
}

// AccountKey returns the branch account the deposit settles into
func (d *CustomerDeposit) AccountKey() AccountKey {
	return AccountKey{
		BranchID:      d.BranchID,
		Currency:      d.Currency,
		PaymentMethod: d.PaymentMethod,
	}
}
