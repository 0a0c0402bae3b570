package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// ExpenseStatus is the lifecycle state of an expense
type ExpenseStatus string

const (
	ExpensePending   ExpenseStatus = "PENDING"
	ExpenseConfirmed ExpenseStatus = "CONFIRMED"
	ExpenseCancelled ExpenseStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpensePending, ExpenseConfirmed, ExpenseCancelled:
		return true
	}
	return false
}

// ExpenseCategory groups expenses for reporting
type ExpenseCategory struct {
	shared.BaseEntity
	BranchID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_expense_category_branch_name,priority:1"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_expense_category_branch_name,priority:2"`
	Description string    `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

// NewExpenseCategory creates an expense category
func NewExpenseCategory(branchID uuid.UUID, name, description string) (*ExpenseCategory, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	return &ExpenseCategory{
		BaseEntity:  shared.NewBaseEntity(),
		BranchID:    branchID,
		Name:        name,
		Description: description,
	}, nil
}

// Expense is money paid out of a branch account for operating costs. Paying
// it debits the branch account; only a confirmed expense has been paid.
type Expense struct {
	shared.BranchAggregateRoot
	CategoryID    *uuid.UUID           `gorm:"type:uuid;index"`
	Description   string               `gorm:"type:varchar(255);not null"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	PaymentMethod PaymentMethod        `gorm:"type:varchar(10);not null"`
	Status        ExpenseStatus        `gorm:"type:varchar(10);not null;index"`
	ExpenseDate   time.Time            `gorm:"not null;index"`
	ConfirmedAt   *time.Time           `gorm:""`
	ConfirmedBy   *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense creates a pending expense
func NewExpense(
	branchID uuid.UUID,
	categoryID *uuid.UUID,
	description string,
	amount valueobject.Money,
	method PaymentMethod,
) (*Expense, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}

	return &Expense{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		CategoryID:          categoryID,
		Description:         description,
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		PaymentMethod:       method,
		Status:              ExpensePending,
		ExpenseDate:         time.Now(),
	}, nil
}

// Confirm marks the expense as paid. The caller debits the branch account and
// writes the cashbook entry in the same transaction.
func (e *Expense) Confirm(userID uuid.UUID) error {
	if e.Status != ExpensePending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm an expense in status %s", e.Status))
	}
	now := time.Now()
	e.Status = ExpenseConfirmed
	e.ConfirmedAt = &now
	e.ConfirmedBy = &userID
	e.UpdatedAt = now
	e.IncrementVersion()
	e.AddDomainEvent(NewExpenseConfirmedEvent(e))
	return nil
}

// Cancel voids a pending expense before it was paid
func (e *Expense) Cancel() error {
	if e.Status != ExpensePending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel an expense in status %s", e.Status))
	}
	e.Status = ExpenseCancelled
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// AmountMoney returns the expense amount as Money
func (e *Expense) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(e.Amount, e.Currency)
	return m
}

// AccountKey returns the account the expense draws from
func (e *Expense) AccountKey() AccountKey {
	return AccountKey{BranchID: e.BranchID, Currency: e.Currency, PaymentMethod: e.PaymentMethod}
}
