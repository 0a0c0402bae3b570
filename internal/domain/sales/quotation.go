package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// QuotationStatus is the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationOpen      QuotationStatus = "OPEN"
	QuotationConverted QuotationStatus = "CONVERTED"
	QuotationExpired   QuotationStatus = "EXPIRED"
)

// QuotationItem is one quoted line
type QuotationItem struct {
	shared.BaseEntity
	QuotationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	Description string          `gorm:"type:varchar(255);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (QuotationItem) TableName() string {
	return "quotation_items"
}

// Quotation is a priced offer that can later be converted into an invoice.
// No money or stock moves until conversion.
type Quotation struct {
	shared.BranchAggregateRoot
	QuoteNumber string               `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	Status      QuotationStatus      `gorm:"type:varchar(10);not null;index"`
	ValidUntil  time.Time            `gorm:"not null"`
	Total       decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	InvoiceID   *uuid.UUID           `gorm:"type:uuid"`
	Items       []QuotationItem      `gorm:"foreignKey:QuotationID;references:ID"`
}

// TableName returns the table name for GORM
func (Quotation) TableName() string {
	return "quotations"
}

// NewQuotation creates an open quotation
func NewQuotation(
	branchID, customerID uuid.UUID,
	quoteNumber string,
	currency valueobject.Currency,
	validUntil time.Time,
	items []QuotationItem,
) (*Quotation, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if quoteNumber == "" {
		return nil, shared.NewDomainError("INVALID_QUOTE_NUMBER", "Quote number cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency %q is not supported", currency))
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_QUOTATION", "Quotation must have at least one item")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	q := &Quotation{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		QuoteNumber:         quoteNumber,
		CustomerID:          customerID,
		Currency:            currency,
		Status:              QuotationOpen,
		ValidUntil:          validUntil,
		Total:               total,
		Items:               items,
	}
	for i := range q.Items {
		q.Items[i].QuotationID = q.ID
	}
	return q, nil
}

// MarkConverted links the quotation to the invoice created from it
func (q *Quotation) MarkConverted(invoiceID uuid.UUID) error {
	if q.Status != QuotationOpen {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot convert a quotation in status %s", q.Status))
	}
	if time.Now().After(q.ValidUntil) {
		return shared.NewDomainError("QUOTE_EXPIRED", "Quotation has expired")
	}
	q.Status = QuotationConverted
	q.InvoiceID = &invoiceID
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

// MarkExpired closes a quotation past its validity date
func (q *Quotation) MarkExpired() error {
	if q.Status != QuotationOpen {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot expire a quotation in status %s", q.Status))
	}
	q.Status = QuotationExpired
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

// FormatQuoteNumber builds the branch-scoped sequential quote number,
// for example QUOH-0042 for the 42nd quotation of a branch named Harare
func FormatQuoteNumber(branchName string, sequence int64) string {
	initial := "X"
	for _, r := range branchName {
		initial = string(r)
		break
	}
	return fmt.Sprintf("QUO%s-%04d", initial, sequence)
}
