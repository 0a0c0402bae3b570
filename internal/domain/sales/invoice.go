package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// PaymentStatus tracks how much of an invoice has been settled
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// InvoiceStatus is the lifecycle state of the invoice document itself
type InvoiceStatus string

const (
	InvoiceActive    InvoiceStatus = "ACTIVE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
	InvoiceReturned  InvoiceStatus = "RETURNED"
)

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceActive, InvoiceCancelled, InvoiceReturned:
		return true
	}
	return false
}

// IsTerminal reports whether the document can no longer change
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceCancelled || s == InvoiceReturned
}

// PaymentTerms is how the customer agreed to settle
type PaymentTerms string

const (
	TermsCash        PaymentTerms = "cash"
	TermsLayby       PaymentTerms = "layby"
	TermsInstallment PaymentTerms = "installment"
)

// IsValid checks if the payment terms are recognised
func (t PaymentTerms) IsValid() bool {
	switch t {
	case TermsCash, TermsLayby, TermsInstallment:
		return true
	}
	return false
}

// InvoiceItem is one line of an invoice. The VAT amount is computed once at
// creation from the rate in force; later rate changes never touch it.
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	VATAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoiceItem creates an invoice line with VAT captured at the given rate
func NewInvoiceItem(productID uuid.UUID, description string, quantity int, unitPrice valueobject.Money, vatRate decimal.Decimal) (*InvoiceItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	lineTotal := unitPrice.MultiplyByInt(int64(quantity))
	vat := lineTotal.CalculatePercentage(vatRate).Round(2)

	return &InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		VATAmount:   vat.Amount(),
		LineTotal:   lineTotal.Amount(),
	}, nil
}

// Invoice is a sale document with line items and a running paid amount.
// Balance movements always happen in the service that records the payment,
// in the same transaction as the invoice update.
type Invoice struct {
	shared.BranchAggregateRoot
	InvoiceNumber string                `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Currency      valueobject.Currency  `gorm:"type:varchar(3);not null"`
	PaymentMethod finance.PaymentMethod `gorm:"type:varchar(10);not null"`
	Terms         PaymentTerms          `gorm:"type:varchar(12);not null"`
	Status        InvoiceStatus         `gorm:"type:varchar(10);not null;index"`
	PaymentStatus PaymentStatus         `gorm:"type:varchar(10);not null;index"`
	IssueDate     time.Time             `gorm:"not null;index"`
	DueDate       *time.Time            `gorm:""`
	Recurring     bool                  `gorm:"not null;default:false"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	VATTotal      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Discount      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryCost  decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Total         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	AmountPaid    decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Items         []InvoiceItem         `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// FormatInvoiceNumber builds the branch-scoped sequential invoice number,
// for example INVH-0042 for the 42nd invoice of a branch named Harare
func FormatInvoiceNumber(branchName string, sequence int64) string {
	initial := "X"
	for _, r := range branchName {
		initial = string(r)
		break
	}
	return fmt.Sprintf("INV%s-%04d", initial, sequence)
}

// NewInvoice creates an invoice from its line items
func NewInvoice(
	branchID, customerID uuid.UUID,
	invoiceNumber string,
	currency valueobject.Currency,
	method finance.PaymentMethod,
	terms PaymentTerms,
	dueDate *time.Time,
	discount, deliveryCost decimal.Decimal,
	recurring bool,
	items []InvoiceItem,
) (*Invoice, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency %q is not supported", currency))
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}
	if !terms.IsValid() {
		return nil, shared.NewDomainError("INVALID_TERMS", fmt.Sprintf("Payment terms %q are not valid", terms))
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_INVOICE", "Invoice must have at least one item")
	}

	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if deliveryCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_COST", "Delivery cost cannot be negative")
	}

	subtotal := decimal.Zero
	vatTotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
		vatTotal = vatTotal.Add(item.VATAmount)
	}
	if discount.GreaterThan(subtotal.Add(vatTotal)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the invoice value")
	}

	invoice := &Invoice{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		Currency:            currency,
		PaymentMethod:       method,
		Terms:               terms,
		Status:              InvoiceActive,
		PaymentStatus:       PaymentStatusPending,
		IssueDate:           time.Now(),
		DueDate:             dueDate,
		Recurring:           recurring,
		Subtotal:            subtotal,
		VATTotal:            vatTotal,
		Discount:            discount,
		DeliveryCost:        deliveryCost,
		Total:               subtotal.Add(vatTotal).Sub(discount).Add(deliveryCost),
		AmountPaid:          decimal.Zero,
		Items:               items,
	}
	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))
	return invoice, nil
}

// AmountDue returns the unpaid remainder of the invoice total
func (inv *Invoice) AmountDue() decimal.Decimal {
	return inv.Total.Sub(inv.AmountPaid)
}

// AmountDueMoney returns the unpaid remainder as Money
func (inv *Invoice) AmountDueMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.AmountDue(), inv.Currency)
	return m
}

// TotalMoney returns the invoice total as Money
func (inv *Invoice) TotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.Total, inv.Currency)
	return m
}

// ApplyPayment records a payment against the invoice and returns the amount
// actually applied. Payments larger than the amount due are clamped so the
// invoice can never be overpaid.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) (valueobject.Money, error) {
	var zero valueobject.Money
	if inv.Status != InvoiceActive {
		return zero, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot pay an invoice in status %s", inv.Status))
	}
	if inv.PaymentStatus == PaymentStatusPaid {
		return zero, shared.NewDomainError("ALREADY_PAID", "Invoice is already fully paid")
	}
	if amount.Currency() != inv.Currency {
		return zero, shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Cannot pay a %s invoice with %s", inv.Currency, amount.Currency()))
	}
	if !amount.IsPositive() {
		return zero, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	applied := amount.Amount()
	if applied.GreaterThan(inv.AmountDue()) {
		applied = inv.AmountDue()
	}

	inv.AmountPaid = inv.AmountPaid.Add(applied)
	if inv.AmountDue().IsZero() {
		inv.PaymentStatus = PaymentStatusPaid
	} else {
		inv.PaymentStatus = PaymentStatusPartial
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	appliedMoney, err := valueobject.NewMoney(applied, inv.Currency)
	if err != nil {
		return zero, err
	}
	inv.AddDomainEvent(NewInvoicePaymentAppliedEvent(inv, appliedMoney))
	return appliedMoney, nil
}

// Cancel voids the invoice. The paid and charged amounts must be reversed out
// of the branch and customer balances by the caller.
func (inv *Invoice) Cancel() error {
	if inv.Status != InvoiceActive {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel an invoice in status %s", inv.Status))
	}
	inv.Status = InvoiceCancelled
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))
	return nil
}

// MarkReturned records a full goods return on a settled invoice
func (inv *Invoice) MarkReturned() error {
	if inv.Status != InvoiceActive {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot return an invoice in status %s", inv.Status))
	}
	inv.Status = InvoiceReturned
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceReturnedEvent(inv))
	return nil
}

// Overdue reports whether an unpaid invoice is past its due date
func (inv *Invoice) Overdue(now time.Time) bool {
	return inv.Status == InvoiceActive &&
		inv.PaymentStatus != PaymentStatusPaid &&
		inv.DueDate != nil && now.After(*inv.DueDate)
}

// PaidMoney returns the amount paid so far as Money
func (inv *Invoice) PaidMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.AmountPaid, inv.Currency)
	return m
}

// AccountKey returns the branch account invoice payments settle into
func (inv *Invoice) AccountKey() finance.AccountKey {
	return finance.AccountKey{
		BranchID:      inv.BranchID,
		Currency:      inv.Currency,
		PaymentMethod: inv.PaymentMethod,
	}
}
