package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// Payment is one settlement against an invoice. AmountDue snapshots the
// remainder after this payment was applied, read under the invoice row lock,
// so the payment history replays without recomputation.
type Payment struct {
	shared.BranchAggregateRoot
	InvoiceID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	AmountDue     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Currency      valueobject.Currency  `gorm:"type:varchar(3);not null"`
	PaymentMethod finance.PaymentMethod `gorm:"type:varchar(10);not null"`
	ReceivedBy    *uuid.UUID            `gorm:"type:uuid"`
	PaidAt        time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment records one settlement. The invoice must already have had the
// amount applied; amountDue is its remainder at that moment.
func NewPayment(
	invoice *Invoice,
	applied valueobject.Money,
	method finance.PaymentMethod,
	receivedBy *uuid.UUID,
) (*Payment, error) {
	if invoice == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice cannot be nil")
	}
	if !applied.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	return &Payment{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(invoice.BranchID),
		InvoiceID:           invoice.ID,
		Amount:              applied.Amount(),
		AmountDue:           invoice.AmountDue(),
		Currency:            applied.Currency(),
		PaymentMethod:       method,
		ReceivedBy:          receivedBy,
		PaidAt:              time.Now(),
	}, nil
}

// AmountMoney returns the payment amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Amount, p.Currency)
	return m
}
