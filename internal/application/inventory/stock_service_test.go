package inventory

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

	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"github.com/techcity/backoffice/internal/infrastructure/persistence"
)

// stockFixture wires a StockService over an in-memory database with one
// product in the catalogue.
type stockFixture struct {
	service   *StockService
	stockRepo *persistence.GormStockRepository
	vatRepo   *persistence.GormVATRepository
	product   *inventory.Product
	branchA   uuid.UUID
	branchB   uuid.UUID
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(gormDB))
	db := &persistence.Database{DB: gormDB}

	productRepo := persistence.NewGormProductRepository(db)
	product, err := inventory.NewProduct(
		"PHN-001", "Smartphone",
		valueobject.NewMoneyUSDFromFloat(120),
		valueobject.NewMoneyUSDFromFloat(180),
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, productRepo.Save(context.Background(), product))

	stockRepo := persistence.NewGormStockRepository(db)
	vatRepo := persistence.NewGormVATRepository(db)
	return &stockFixture{
		service: NewStockService(
			productRepo,
			stockRepo,
			persistence.NewGormStockTransferRepository(db),
			persistence.NewGormActivityLogRepository(db),
			vatRepo,
			persistence.NewTxManager(db),
			zap.NewNop(),
		),
		stockRepo: stockRepo,
		vatRepo:   vatRepo,
		product:   product,
		branchA:   uuid.New(),
		branchB:   uuid.New(),
	}
}

func TestStockService_ReceiveStock(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	item, err := f.service.ReceiveStock(ctx, f.branchA, f.product.ID, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, item.Quantity)

	// receipts accumulate on the same row
	item, err = f.service.ReceiveStock(ctx, f.branchA, f.product.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, item.Quantity)

	history, err := f.service.StockHistory(ctx, f.branchA, f.product.ID, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.service.ReceiveStock(ctx, f.branchA, uuid.New(), 5, nil)
		require.Error(t, err)
	})

	// no active VAT rate, so no input VAT was captured
	vat, err := f.vatRepo.FindTransactions(ctx, f.branchA, finance.VATInput, shared.Filter{})
	require.NoError(t, err)
	assert.Empty(t, vat)
}

func TestStockService_ReceiveStock_CapturesInputVAT(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	rate, err := finance.NewVATRate(f.branchA, decimal.NewFromFloat(15))
	require.NoError(t, err)
	require.NoError(t, f.vatRepo.SaveRate(ctx, rate))

	// 20 units at a VAT-inclusive cost of 120 carry 2400 * 15/115 in tax
	_, err = f.service.ReceiveStock(ctx, f.branchA, f.product.ID, 20, nil)
	require.NoError(t, err)

	vat, err := f.vatRepo.FindTransactions(ctx, f.branchA, finance.VATInput, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, vat, 1)
	assert.Equal(t, finance.EntrySourcePurchase, vat[0].SourceType)
	assert.True(t, vat[0].Amount.Equal(decimal.NewFromFloat(313.04)), vat[0].Amount.String())
	assert.True(t, vat[0].Rate.Equal(decimal.NewFromFloat(15)))
}

func TestStockService_AdjustStock(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	_, err := f.service.ReceiveStock(ctx, f.branchA, f.product.ID, 20, nil)
	require.NoError(t, err)

	// a stock take found 17, not 20
	item, err := f.service.AdjustStock(ctx, f.branchA, f.product.ID, 17, nil, "quarterly count")
	require.NoError(t, err)
	assert.Equal(t, 17, item.Quantity)

	// the adjustment is on the audit trail
	activity, err := f.service.Activity(ctx, f.branchA, shared.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, activity)
	assert.Equal(t, "stock_take", activity[0].Action)

	t.Run("unstocked product", func(t *testing.T) {
		_, err := f.service.AdjustStock(ctx, f.branchB, f.product.ID, 5, nil, "")
		require.Error(t, err)
	})
}

func TestStockService_StockTransfer(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	_, err := f.service.ReceiveStock(ctx, f.branchA, f.product.ID, 20, nil)
	require.NoError(t, err)

	transfer, err := f.service.SendStockTransfer(ctx, f.branchA, f.branchB,
		map[uuid.UUID]int{f.product.ID: 8}, "restocking town branch", nil)
	require.NoError(t, err)
	assert.Equal(t, inventory.StockTransferPending, transfer.Status)

	// stock leaves the source immediately
	source, err := f.stockRepo.FindForUpdate(ctx, f.branchA, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, source.Quantity)

	// nothing lands at the destination until receipt
	destBefore, err := f.stockRepo.FindForUpdate(ctx, f.branchB, f.product.ID)
	require.NoError(t, err)
	assert.Nil(t, destBefore)

	incoming, err := f.service.IncomingTransfers(ctx, f.branchB, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	received, err := f.service.ReceiveStockTransfer(ctx, f.branchB, transfer.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, inventory.StockTransferReceived, received.Status)

	dest, err := f.stockRepo.FindForUpdate(ctx, f.branchB, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, dest.Quantity)

	// received transfers leave the incoming queue
	incoming, err = f.service.IncomingTransfers(ctx, f.branchB, shared.Filter{})
	require.NoError(t, err)
	assert.Empty(t, incoming)

	t.Run("cannot receive twice", func(t *testing.T) {
		_, err := f.service.ReceiveStockTransfer(ctx, f.branchB, transfer.ID, nil)
		require.Error(t, err)
	})

	t.Run("only the destination can receive", func(t *testing.T) {
		fresh, err := f.service.SendStockTransfer(ctx, f.branchA, f.branchB,
			map[uuid.UUID]int{f.product.ID: 1}, "", nil)
		require.NoError(t, err)

		_, err = f.service.ReceiveStockTransfer(ctx, f.branchA, fresh.ID, nil)
		require.Error(t, err)
	})

	t.Run("sending more than on hand fails", func(t *testing.T) {
		_, err := f.service.SendStockTransfer(ctx, f.branchA, f.branchB,
			map[uuid.UUID]int{f.product.ID: 999}, "", nil)
		require.Error(t, err)
	})
}

func TestStockService_LowStock(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	item, err := f.stockRepo.GetOrCreate(ctx, f.branchA, f.product.ID)
	require.NoError(t, err)
	item.ReorderLevel = 10
	require.NoError(t, item.Restock(5))
	require.NoError(t, f.stockRepo.Save(ctx, item))

	low, err := f.service.LowStock(ctx, f.branchA)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, f.product.ID, low[0].ProductID)
}
