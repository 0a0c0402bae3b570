package sales

import (
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// Event type constants for the sales domain
const (
	EventInvoiceCreated        = "sales.invoice.created"
	EventInvoicePaymentApplied = "sales.invoice.payment_applied"
	EventInvoiceCancelled      = "sales.invoice.cancelled"
	EventInvoiceReturned       = "sales.invoice.returned"
)

// InvoiceCreatedEvent is raised when a new invoice is issued
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string               `json:"invoice_number"`
	CustomerID    string               `json:"customer_id"`
	Total         decimal.Decimal      `json:"total"`
	Currency      valueobject.Currency `json:"currency"`
}

// NewInvoiceCreatedEvent creates an invoice created event
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCreated, "Invoice", invoice.ID, invoice.BranchID),
		InvoiceNumber:   invoice.InvoiceNumber,
		CustomerID:      invoice.CustomerID.String(),
		Total:           invoice.Total,
		Currency:        invoice.Currency,
	}
}

// InvoicePaymentAppliedEvent is raised when a payment lands on an invoice
type InvoicePaymentAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Applied       decimal.Decimal `json:"applied"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewInvoicePaymentAppliedEvent creates a payment applied event
func NewInvoicePaymentAppliedEvent(invoice *Invoice, applied valueobject.Money) *InvoicePaymentAppliedEvent {
	return &InvoicePaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePaymentApplied, "Invoice", invoice.ID, invoice.BranchID),
		InvoiceNumber:   invoice.InvoiceNumber,
		Applied:         applied.Amount(),
		AmountDue:       invoice.AmountDue(),
		PaymentStatus:   invoice.PaymentStatus,
	}
}

// InvoiceCancelledEvent is raised when an invoice is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// NewInvoiceCancelledEvent creates an invoice cancelled event
func NewInvoiceCancelledEvent(invoice *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCancelled, "Invoice", invoice.ID, invoice.BranchID),
		InvoiceNumber:   invoice.InvoiceNumber,
	}
}

// InvoiceReturnedEvent is raised on a full goods return
type InvoiceReturnedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// NewInvoiceReturnedEvent creates an invoice returned event
func NewInvoiceReturnedEvent(invoice *Invoice) *InvoiceReturnedEvent {
	return &InvoiceReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceReturned, "Invoice", invoice.ID, invoice.BranchID),
		InvoiceNumber:   invoice.InvoiceNumber,
	}
}
