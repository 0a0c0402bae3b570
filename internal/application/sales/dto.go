package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/sales"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// InvoiceLineRequest is one requested invoice line. UnitPrice overrides the
// catalogue sell price when set.
type InvoiceLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateInvoiceRequest creates an invoice, optionally with an upfront payment
type CreateInvoiceRequest struct {
	BranchID      uuid.UUID             `json:"-"`
	CustomerID    uuid.UUID             `json:"customer_id" binding:"required"`
	Currency      valueobject.Currency  `json:"currency" binding:"required"`
	PaymentMethod finance.PaymentMethod `json:"payment_method" binding:"required"`
	Terms         sales.PaymentTerms    `json:"terms" binding:"required"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Lines         []InvoiceLineRequest  `json:"lines" binding:"required,min=1,dive"`
	Discount      decimal.Decimal       `json:"discount"`
	DeliveryCost  decimal.Decimal       `json:"delivery_cost"`
	Recurring     bool                  `json:"recurring"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	UserID        *uuid.UUID            `json:"-"`
}

// AddPaymentRequest records a payment against an existing invoice
type AddPaymentRequest struct {
	BranchID      uuid.UUID             `json:"-"`
	InvoiceID     uuid.UUID             `json:"-"`
	Amount        decimal.Decimal       `json:"amount" binding:"required"`
	PaymentMethod finance.PaymentMethod `json:"payment_method" binding:"required"`
	UserID        *uuid.UUID            `json:"-"`
}

// InvoiceItemResponse is one invoice line in API responses
type InvoiceItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the API shape of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	BranchID      uuid.UUID             `json:"branch_id"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	Currency      valueobject.Currency  `json:"currency"`
	PaymentMethod finance.PaymentMethod `json:"payment_method"`
	Terms         sales.PaymentTerms    `json:"terms"`
	Status        sales.InvoiceStatus   `json:"status"`
	PaymentStatus sales.PaymentStatus   `json:"payment_status"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Recurring     bool                  `json:"recurring"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	VATTotal      decimal.Decimal       `json:"vat_total"`
	Discount      decimal.Decimal       `json:"discount"`
	DeliveryCost  decimal.Decimal       `json:"delivery_cost"`
	Total         decimal.Decimal       `json:"total"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	AmountDue     decimal.Decimal       `json:"amount_due"`
	Items         []InvoiceItemResponse `json:"items"`
}

// PaymentResponse is the API shape of a payment history row
type PaymentResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceID     uuid.UUID             `json:"invoice_id"`
	Amount        decimal.Decimal       `json:"amount"`
	AmountDue     decimal.Decimal       `json:"amount_due"`
	Currency      valueobject.Currency  `json:"currency"`
	PaymentMethod finance.PaymentMethod `json:"payment_method"`
	PaidAt        time.Time             `json:"paid_at"`
}

// ToInvoiceResponse maps an invoice aggregate to its API shape
func ToInvoiceResponse(inv *sales.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, InvoiceItemResponse{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			VATAmount:   item.VATAmount,
			LineTotal:   item.LineTotal,
		})
	}
	return &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		BranchID:      inv.BranchID,
		CustomerID:    inv.CustomerID,
		Currency:      inv.Currency,
		PaymentMethod: inv.PaymentMethod,
		Terms:         inv.Terms,
		Status:        inv.Status,
		PaymentStatus: inv.PaymentStatus,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Recurring:     inv.Recurring,
		Subtotal:      inv.Subtotal,
		VATTotal:      inv.VATTotal,
		Discount:      inv.Discount,
		DeliveryCost:  inv.DeliveryCost,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue(),
		Items:         items,
	}
}

// ToPaymentResponse maps a payment row to its API shape
func ToPaymentResponse(p *sales.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		AmountDue:     p.AmountDue,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		PaidAt:        p.PaidAt,
	}
}
