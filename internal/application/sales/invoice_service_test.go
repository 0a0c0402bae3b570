package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/partner"
	"github.com/techcity/backoffice/internal/domain/sales"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"github.com/techcity/backoffice/internal/infrastructure/event"
	"github.com/techcity/backoffice/internal/infrastructure/persistence"
)

// invoiceFixture wires an InvoiceService over an in-memory database with one
// branch, one customer and one stocked product.
type invoiceFixture struct {
	service       *InvoiceService
	accountRepo   *persistence.GormAccountRepository
	custAcctRepo  *persistence.GormCustomerAccountRepository
	stockRepo     *persistence.GormStockRepository
	cashbookRepo  *persistence.GormCashbookRepository
	activityRepo  *persistence.GormActivityLogRepository
	vatRepo       *persistence.GormVATRepository
	saleRepo      *persistence.GormSaleRepository
	quotationRepo *persistence.GormQuotationRepository
	productRepo   *persistence.GormProductRepository
	branchRepo    *persistence.GormBranchRepository
	txManager     *persistence.TxManager
	branch        *company.Branch
	customer      *partner.Customer
	product       *inventory.Product
}

func newInvoiceFixture(t *testing.T, allowNegativeStock bool) *invoiceFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(gormDB))
	db := &persistence.Database{DB: gormDB}

	ctx := context.Background()
	branchRepo := persistence.NewGormBranchRepository(db)
	branch, err := company.NewBranch("Harare", "1 Samora Machel Ave", "+263 242 700000")
	require.NoError(t, err)
	require.NoError(t, branchRepo.Save(ctx, branch))

	customerRepo := persistence.NewGormCustomerRepository(db)
	customer, err := partner.NewCustomer(branch.ID, "Rudo Chikafu", "+263 771 000000", "", "")
	require.NoError(t, err)
	require.NoError(t, customerRepo.Save(ctx, customer))

	productRepo := persistence.NewGormProductRepository(db)
	product, err := inventory.NewProduct(
		"LAP-001", "Laptop 14in",
		valueobject.NewMoneyUSDFromFloat(30),
		valueobject.NewMoneyUSDFromFloat(50),
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, productRepo.Save(ctx, product))

	stockRepo := persistence.NewGormStockRepository(db)
	item, err := stockRepo.GetOrCreate(ctx, branch.ID, product.ID)
	require.NoError(t, err)
	require.NoError(t, item.Restock(10))
	require.NoError(t, stockRepo.Save(ctx, item))

	f := &invoiceFixture{
		accountRepo:   persistence.NewGormAccountRepository(db),
		custAcctRepo:  persistence.NewGormCustomerAccountRepository(db),
		stockRepo:     stockRepo,
		cashbookRepo:  persistence.NewGormCashbookRepository(db),
		activityRepo:  persistence.NewGormActivityLogRepository(db),
		vatRepo:       persistence.NewGormVATRepository(db),
		saleRepo:      persistence.NewGormSaleRepository(db),
		quotationRepo: persistence.NewGormQuotationRepository(db),
		productRepo:   productRepo,
		branchRepo:    branchRepo,
		txManager:     persistence.NewTxManager(db),
		branch:        branch,
		customer:      customer,
		product:       product,
	}
	f.service = NewInvoiceService(
		persistence.NewGormInvoiceRepository(db),
		persistence.NewGormPaymentRepository(db),
		f.saleRepo,
		f.accountRepo,
		f.custAcctRepo,
		f.cashbookRepo,
		persistence.NewGormLedgerRepository(db),
		f.vatRepo,
		productRepo,
		stockRepo,
		f.activityRepo,
		customerRepo,
		branchRepo,
		f.txManager,
		event.NewInMemoryEventBus(zap.NewNop()),
		zap.NewNop(),
		allowNegativeStock,
	)
	return f
}

func (f *invoiceFixture) createRequest(quantity int, amountPaid decimal.Decimal) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		BranchID:      f.branch.ID,
		CustomerID:    f.customer.ID,
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
		Terms:         sales.TermsLayby,
		Lines: []InvoiceLineRequest{
			{ProductID: f.product.ID, Quantity: quantity},
		},
		AmountPaid: amountPaid,
	}
}

func (f *invoiceFixture) cashBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	ctx := context.Background()
	account, err := f.accountRepo.FindByKey(ctx, finance.AccountKey{
		BranchID:      f.branch.ID,
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
	})
	require.NoError(t, err)
	balance, err := f.accountRepo.BalanceForUpdate(ctx, account.ID)
	require.NoError(t, err)
	return balance.Balance
}

func (f *invoiceFixture) customerBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	ctx := context.Background()
	acct, err := f.custAcctRepo.GetOrCreate(ctx, f.customer.ID)
	require.NoError(t, err)
	balance, err := f.custAcctRepo.BalanceForUpdate(ctx, acct.ID, valueobject.USD)
	require.NoError(t, err)
	return balance.Balance
}

func (f *invoiceFixture) stockQuantity(t *testing.T) int {
	t.Helper()
	item, err := f.stockRepo.FindForUpdate(context.Background(), f.branch.ID, f.product.ID)
	require.NoError(t, err)
	return item.Quantity
}

func TestInvoiceService_CreateInvoice_PartThenFullPayment(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	// A 100 invoice paid 40 upfront
	resp, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.NewFromInt(40)))
	require.NoError(t, err)

	assert.Equal(t, sales.InvoiceActive, resp.Status)
	assert.Equal(t, sales.PaymentStatusPartial, resp.PaymentStatus)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(100)))
	assert.True(t, resp.AmountPaid.Equal(decimal.NewFromInt(40)))
	assert.True(t, resp.AmountDue.Equal(decimal.NewFromInt(60)))

	assert.Equal(t, 8, f.stockQuantity(t))
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(40)))
	// customer owes the unpaid remainder
	assert.True(t, f.customerBalance(t).Equal(decimal.NewFromInt(-60)))

	// Settling the remaining 60 marks the invoice paid
	paid, err := f.service.AddPayment(ctx, AddPaymentRequest{
		BranchID:      f.branch.ID,
		InvoiceID:     resp.ID,
		Amount:        decimal.NewFromInt(60),
		PaymentMethod: finance.PaymentMethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, sales.PaymentStatusPaid, paid.PaymentStatus)
	assert.True(t, paid.AmountDue.IsZero())
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(100)))
	assert.True(t, f.customerBalance(t).IsZero())

	payments, err := f.service.ListPayments(ctx, f.branch.ID, resp.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
}

func TestInvoiceService_CreateInvoice_SettlesOutstandingFirst(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	// The customer still owes 60 on an earlier invoice
	first, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.NewFromInt(40)))
	require.NoError(t, err)
	require.Equal(t, sales.PaymentStatusPartial, first.PaymentStatus)

	// A new 100 sale paid in full: 60 clears the old debt, 40 remains for it
	second, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.NewFromInt(100)))
	require.NoError(t, err)

	assert.Equal(t, sales.PaymentStatusPartial, second.PaymentStatus)
	assert.True(t, second.AmountPaid.Equal(decimal.NewFromInt(40)))
	assert.True(t, second.AmountDue.Equal(decimal.NewFromInt(60)))

	settled, err := f.service.GetInvoice(ctx, f.branch.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.PaymentStatusPaid, settled.PaymentStatus)
	assert.True(t, settled.AmountDue.IsZero())

	// all cash taken lands in the branch account
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(140)))
	// the customer owes only the new invoice's remainder
	assert.True(t, f.customerBalance(t).Equal(decimal.NewFromInt(-60)))

	payments, err := f.service.ListPayments(ctx, f.branch.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.True(t, payments[len(payments)-1].Amount.Equal(decimal.NewFromInt(60)))
}

func TestInvoiceService_AddPayment_ClampsOverpayment(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	resp, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.NewFromInt(40)))
	require.NoError(t, err)

	paid, err := f.service.AddPayment(ctx, AddPaymentRequest{
		BranchID:      f.branch.ID,
		InvoiceID:     resp.ID,
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: finance.PaymentMethodCash,
	})
	require.NoError(t, err)

	// only the 60 due is taken
	assert.True(t, paid.AmountPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(100)))
}

func TestInvoiceService_CreateInvoice_InsufficientStock(t *testing.T) {
	t.Run("fails when stock would go negative", func(t *testing.T) {
		f := newInvoiceFixture(t, false)

		_, err := f.service.CreateInvoice(context.Background(), f.createRequest(11, decimal.Zero))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

		// the failed transaction left nothing behind
		assert.Equal(t, 10, f.stockQuantity(t))
		page, err := f.service.ListInvoices(context.Background(), f.branch.ID, shared.Filter{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("allowed when the branch policy permits negative stock", func(t *testing.T) {
		f := newInvoiceFixture(t, true)

		_, err := f.service.CreateInvoice(context.Background(), f.createRequest(11, decimal.Zero))
		require.NoError(t, err)
		assert.Equal(t, -1, f.stockQuantity(t))
	})
}

func TestInvoiceService_CancelInvoice_ReversesEverything(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	resp, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.NewFromInt(40)))
	require.NoError(t, err)

	cancelled, err := f.service.CancelInvoice(ctx, f.branch.ID, resp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, sales.InvoiceCancelled, cancelled.Status)

	// stock back, money back, customer square
	assert.Equal(t, 10, f.stockQuantity(t))
	assert.True(t, f.cashBalance(t).IsZero())
	assert.True(t, f.customerBalance(t).IsZero())

	// the refund shows in the cashbook
	entries, err := f.cashbookRepo.FindBySource(ctx, finance.EntrySourceInvoice, resp.ID)
	require.NoError(t, err)
	var refunds int
	for _, entry := range entries {
		if entry.Side == finance.EntryCredit {
			refunds++
		}
	}
	assert.Equal(t, 1, refunds)

	// cancelling twice fails
	_, err = f.service.CancelInvoice(ctx, f.branch.ID, resp.ID, nil)
	require.Error(t, err)
}

func TestInvoiceService_CancelInvoice_ClearsOutputVAT(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	rate, err := finance.NewVATRate(f.branch.ID, decimal.NewFromInt(15))
	require.NoError(t, err)
	require.NoError(t, f.vatRepo.SaveRate(ctx, rate))

	resp, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.Zero))
	require.NoError(t, err)

	recorded, err := f.vatRepo.FindTransactions(ctx, f.branch.ID, finance.VATOutput, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, recorded, 1)

	_, err = f.service.CancelInvoice(ctx, f.branch.ID, resp.ID, nil)
	require.NoError(t, err)

	// the output VAT captured at sale time goes with the invoice
	remaining, err := f.vatRepo.FindTransactions(ctx, f.branch.ID, finance.VATOutput, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestInvoiceService_ActivityTrail(t *testing.T) {
	actions := func(t *testing.T, f *invoiceFixture) []string {
		t.Helper()
		logs, err := f.activityRepo.FindForBranch(context.Background(), f.branch.ID, shared.DefaultFilter())
		require.NoError(t, err)
		out := make([]string, 0, len(logs))
		for _, log := range logs {
			out = append(out, log.Action)
		}
		return out
	}

	t.Run("sale and cancellation are logged", func(t *testing.T) {
		f := newInvoiceFixture(t, false)
		ctx := context.Background()

		resp, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.Zero))
		require.NoError(t, err)
		assert.Contains(t, actions(t, f), "sale")

		_, err = f.service.CancelInvoice(ctx, f.branch.ID, resp.ID, nil)
		require.NoError(t, err)
		assert.Contains(t, actions(t, f), "sale cancelled")
	})

	t.Run("returns are logged", func(t *testing.T) {
		f := newInvoiceFixture(t, false)
		ctx := context.Background()

		resp, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.NewFromInt(100)))
		require.NoError(t, err)

		_, err = f.service.ReturnInvoice(ctx, f.branch.ID, resp.ID, nil)
		require.NoError(t, err)
		assert.Contains(t, actions(t, f), "returns")
	})
}

func TestInvoiceService_ReturnInvoice(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	resp, err := f.service.CreateInvoice(ctx, f.createRequest(2, decimal.NewFromInt(100)))
	require.NoError(t, err)
	assert.Equal(t, sales.PaymentStatusPaid, resp.PaymentStatus)

	returned, err := f.service.ReturnInvoice(ctx, f.branch.ID, resp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, sales.InvoiceReturned, returned.Status)

	assert.Equal(t, 10, f.stockQuantity(t))
	assert.True(t, f.cashBalance(t).IsZero())
	assert.True(t, f.customerBalance(t).IsZero())
}

func TestInvoiceService_CreateInvoice_DiscountAndDelivery(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	req := f.createRequest(2, decimal.Zero)
	req.Discount = decimal.NewFromInt(10)
	req.DeliveryCost = decimal.NewFromInt(15)
	req.Recurring = true

	resp, err := f.service.CreateInvoice(ctx, req)
	require.NoError(t, err)

	// 100 in goods less 10 discount plus 15 delivery
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(105)))
	assert.True(t, resp.Discount.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.DeliveryCost.Equal(decimal.NewFromInt(15)))
	assert.True(t, resp.Recurring)

	// the customer owes the adjusted total
	assert.True(t, f.customerBalance(t).Equal(decimal.NewFromInt(-105)))
}

func TestInvoiceService_CreateInvoice_Validation(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()

	t.Run("unknown customer", func(t *testing.T) {
		req := f.createRequest(1, decimal.Zero)
		req.CustomerID = uuid.New()
		_, err := f.service.CreateInvoice(ctx, req)
		require.Error(t, err)
	})

	t.Run("negative upfront payment", func(t *testing.T) {
		req := f.createRequest(1, decimal.NewFromInt(-5))
		_, err := f.service.CreateInvoice(ctx, req)
		require.Error(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		req := f.createRequest(1, decimal.Zero)
		req.Lines[0].ProductID = uuid.New()
		_, err := f.service.CreateInvoice(ctx, req)
		require.Error(t, err)
	})

	t.Run("line price override is used", func(t *testing.T) {
		price := decimal.NewFromInt(45)
		req := f.createRequest(2, decimal.Zero)
		req.Lines[0].UnitPrice = &price

		resp, err := f.service.CreateInvoice(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(90)))
	})
}
