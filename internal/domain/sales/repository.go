package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// InvoiceRepository manages invoices and their line items
type InvoiceRepository interface {
	shared.BranchRepository[Invoice]
	// FindByIDForUpdate loads the invoice under a row lock so concurrent
	// payments serialise
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindByCustomer(ctx context.Context, branchID, customerID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	// FindLatestPartialForUpdate loads the customer's most recent partially
	// paid invoice in the given currency under a row lock, or nil when the
	// customer has none outstanding
	FindLatestPartialForUpdate(ctx context.Context, branchID, customerID uuid.UUID, currency valueobject.Currency) (*Invoice, error)
	// NextSequence returns the next invoice sequence number for the branch
	NextSequence(ctx context.Context, branchID uuid.UUID) (int64, error)
	// SaveWithLock persists the invoice with an optimistic version check
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository manages payment history rows
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
}

// SaleTotal is a per-currency sum of sales over a period
type SaleTotal struct {
	Currency string
	Total    string
}

// SaleRepository manages sale reporting rows and cost entries
type SaleRepository interface {
	Save(ctx context.Context, sale *Sale) error
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
	SaveCOGS(ctx context.Context, entry *COGSEntry) error
	DeleteCOGSByInvoice(ctx context.Context, invoiceID uuid.UUID) error
	// TotalsForPeriod sums sale totals per currency for the branch between
	// two instants
	TotalsForPeriod(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]SaleTotal, error)
}

// QuotationRepository manages quotations
type QuotationRepository interface {
	shared.BranchRepository[Quotation]
	FindByNumber(ctx context.Context, quoteNumber string) (*Quotation, error)
	NextSequence(ctx context.Context, branchID uuid.UUID) (int64, error)
}
