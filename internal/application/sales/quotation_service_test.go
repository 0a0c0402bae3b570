package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/sales"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// quotationFixture reuses the invoice fixture and layers the quotation
// service on top of the same database.
type quotationFixture struct {
	*invoiceFixture
	quotations *QuotationService
}

func newQuotationFixture(t *testing.T) *quotationFixture {
	t.Helper()

	inv := newInvoiceFixture(t, false)
	return &quotationFixture{
		invoiceFixture: inv,
		quotations: NewQuotationService(
			inv.quotationRepo,
			inv.productRepo,
			inv.branchRepo,
			inv.service,
			inv.txManager,
			zap.NewNop(),
		),
	}
}

func (f *quotationFixture) createRequest(quantity int) CreateQuotationRequest {
	return CreateQuotationRequest{
		BranchID:   f.branch.ID,
		CustomerID: f.customer.ID,
		Currency:   valueobject.USD,
		ValidUntil: time.Now().Add(7 * 24 * time.Hour),
		Lines: []QuotationLineRequest{
			{ProductID: f.product.ID, Quantity: quantity},
		},
	}
}

func TestQuotationService_CreateQuotation(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()

	quotation, err := f.quotations.CreateQuotation(ctx, f.createRequest(2))
	require.NoError(t, err)

	assert.Equal(t, sales.QuotationOpen, quotation.Status)
	assert.Equal(t, "QUOH-0001", quotation.QuoteNumber)
	assert.True(t, quotation.Total.Equal(decimal.NewFromInt(100)))

	// quoting moves no stock and no money
	assert.Equal(t, 10, f.stockQuantity(t))

	found, err := f.quotations.GetQuotation(ctx, f.branch.ID, quotation.ID)
	require.NoError(t, err)
	assert.Equal(t, quotation.ID, found.ID)

	list, err := f.quotations.ListQuotations(ctx, f.branch.ID, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestQuotationService_ConvertQuotation(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()

	quotation, err := f.quotations.CreateQuotation(ctx, f.createRequest(2))
	require.NoError(t, err)

	invoice, err := f.quotations.ConvertQuotation(ctx, ConvertQuotationRequest{
		BranchID:      f.branch.ID,
		QuotationID:   quotation.ID,
		PaymentMethod: finance.PaymentMethodCash,
		Terms:         sales.TermsLayby,
		AmountPaid:    decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	// the invoice carries the quoted prices and the sale side effects land
	assert.True(t, invoice.Total.Equal(quotation.Total))
	assert.Equal(t, 8, f.stockQuantity(t))
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(40)))

	converted, err := f.quotations.GetQuotation(ctx, f.branch.ID, quotation.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.QuotationConverted, converted.Status)
	require.NotNil(t, converted.InvoiceID)
	assert.Equal(t, invoice.ID, *converted.InvoiceID)

	// a converted quotation cannot be converted again
	_, err = f.quotations.ConvertQuotation(ctx, ConvertQuotationRequest{
		BranchID:      f.branch.ID,
		QuotationID:   quotation.ID,
		PaymentMethod: finance.PaymentMethodCash,
		Terms:         sales.TermsCash,
	})
	require.Error(t, err)
}

func TestQuotationService_ConvertQuotation_FailedInvoiceLeavesQuotationOpen(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()

	// more than the branch has in stock
	quotation, err := f.quotations.CreateQuotation(ctx, f.createRequest(11))
	require.NoError(t, err)

	_, err = f.quotations.ConvertQuotation(ctx, ConvertQuotationRequest{
		BranchID:      f.branch.ID,
		QuotationID:   quotation.ID,
		PaymentMethod: finance.PaymentMethodCash,
		Terms:         sales.TermsCash,
	})
	require.Error(t, err)

	still, err := f.quotations.GetQuotation(ctx, f.branch.ID, quotation.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.QuotationOpen, still.Status)
	assert.Equal(t, 10, f.stockQuantity(t))
}
