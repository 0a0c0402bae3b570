package finance

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
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"github.com/techcity/backoffice/internal/infrastructure/event"
	"github.com/techcity/backoffice/internal/infrastructure/persistence"
)

// transferFixture wires a TransferService over an in-memory database with
// two branches, Harare holding cash and Bulawayo holding nothing.
type transferFixture struct {
	service      *TransferService
	accountRepo  *persistence.GormAccountRepository
	cashbookRepo *persistence.GormCashbookRepository
	ledgerRepo   *persistence.GormLedgerRepository
	harare       *company.Branch
	bulawayo     *company.Branch
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(gormDB))
	db := &persistence.Database{DB: gormDB}

	ctx := context.Background()
	branchRepo := persistence.NewGormBranchRepository(db)
	harare, err := company.NewBranch("Harare", "1 Samora Machel Ave", "+263 242 700000")
	require.NoError(t, err)
	require.NoError(t, branchRepo.Save(ctx, harare))
	bulawayo, err := company.NewBranch("Bulawayo", "12 Fife Street", "+263 292 880000")
	require.NoError(t, err)
	require.NoError(t, branchRepo.Save(ctx, bulawayo))

	f := &transferFixture{
		accountRepo:  persistence.NewGormAccountRepository(db),
		cashbookRepo: persistence.NewGormCashbookRepository(db),
		ledgerRepo:   persistence.NewGormLedgerRepository(db),
		harare:       harare,
		bulawayo:     bulawayo,
	}
	f.service = NewTransferService(
		persistence.NewGormTransferRepository(db),
		persistence.NewGormWithdrawalRepository(db),
		f.accountRepo,
		f.cashbookRepo,
		f.ledgerRepo,
		branchRepo,
		persistence.NewTxManager(db),
		event.NewInMemoryEventBus(zap.NewNop()),
		zap.NewNop(),
	)
	return f
}

// fund credits a branch cash account directly, standing in for prior takings.
func (f *transferFixture) fund(t *testing.T, branch *company.Branch, amount int64) {
	t.Helper()
	ctx := context.Background()
	account, err := f.accountRepo.GetOrCreate(ctx, finance.AccountKey{
		BranchID:      branch.ID,
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
	}, branch.Name)
	require.NoError(t, err)
	balance, err := f.accountRepo.BalanceForUpdate(ctx, account.ID)
	require.NoError(t, err)
	money, err := valueobject.NewMoney(decimal.NewFromInt(amount), valueobject.USD)
	require.NoError(t, err)
	require.NoError(t, balance.Credit(money))
	require.NoError(t, f.accountRepo.SaveBalance(ctx, balance))
}

func (f *transferFixture) cashBalance(t *testing.T, branch *company.Branch) decimal.Decimal {
	t.Helper()
	ctx := context.Background()
	account, err := f.accountRepo.GetOrCreate(ctx, finance.AccountKey{
		BranchID:      branch.ID,
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
	}, branch.Name)
	require.NoError(t, err)
	balance, err := f.accountRepo.BalanceForUpdate(ctx, account.ID)
	require.NoError(t, err)
	return balance.Balance
}

func TestTransferService_SendAndReceive(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()
	f.fund(t, f.harare, 200)

	resp, err := f.service.SendTransfer(ctx, SendTransferRequest{
		FromBranchID:  f.harare.ID,
		ToBranchID:    f.bulawayo.ID,
		Amount:        decimal.NewFromInt(80),
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
		Description:   "Float top-up",
	})
	require.NoError(t, err)
	assert.Equal(t, finance.TransferPending, resp.Status)

	// source debited immediately, destination untouched while pending
	assert.True(t, f.cashBalance(t, f.harare).Equal(decimal.NewFromInt(120)))
	assert.True(t, f.cashBalance(t, f.bulawayo).IsZero())

	incoming, err := f.service.ListIncoming(ctx, f.bulawayo.ID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, resp.ID, incoming[0].ID)

	received, err := f.service.ReceiveTransfer(ctx, f.bulawayo.ID, resp.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, finance.TransferReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)

	assert.True(t, f.cashBalance(t, f.bulawayo).Equal(decimal.NewFromInt(80)))

	incoming, err = f.service.ListIncoming(ctx, f.bulawayo.ID, shared.Filter{})
	require.NoError(t, err)
	assert.Empty(t, incoming)

	// both legs journalled
	entries, err := f.cashbookRepo.FindBySource(ctx, finance.EntrySourceTransfer, resp.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = f.service.ReceiveTransfer(ctx, f.bulawayo.ID, resp.ID, uuid.New())
	require.Error(t, err)
}

func TestTransferService_SendTransfer_Rejections(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()
	f.fund(t, f.harare, 50)

	t.Run("insufficient funds", func(t *testing.T) {
		_, err := f.service.SendTransfer(ctx, SendTransferRequest{
			FromBranchID:  f.harare.ID,
			ToBranchID:    f.bulawayo.ID,
			Amount:        decimal.NewFromInt(60),
			Currency:      valueobject.USD,
			PaymentMethod: finance.PaymentMethodCash,
		})
		require.ErrorIs(t, err, shared.ErrInsufficientFunds)
		assert.True(t, f.cashBalance(t, f.harare).Equal(decimal.NewFromInt(50)))
	})

	t.Run("unknown destination branch", func(t *testing.T) {
		_, err := f.service.SendTransfer(ctx, SendTransferRequest{
			FromBranchID:  f.harare.ID,
			ToBranchID:    uuid.New(),
			Amount:        decimal.NewFromInt(10),
			Currency:      valueobject.USD,
			PaymentMethod: finance.PaymentMethodCash,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BRANCH_NOT_FOUND", domainErr.Code)
	})
}

func TestTransferService_ReceiveTransfer_WrongBranch(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()
	f.fund(t, f.harare, 100)

	resp, err := f.service.SendTransfer(ctx, SendTransferRequest{
		FromBranchID:  f.harare.ID,
		ToBranchID:    f.bulawayo.ID,
		Amount:        decimal.NewFromInt(40),
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
	})
	require.NoError(t, err)

	// only the destination branch can confirm receipt
	_, err = f.service.ReceiveTransfer(ctx, f.harare.ID, resp.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, f.cashBalance(t, f.bulawayo).IsZero())
}

func TestTransferService_Withdraw(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()
	f.fund(t, f.harare, 100)

	withdrawal, err := f.service.Withdraw(ctx, WithdrawRequest{
		BranchID:      f.harare.ID,
		Amount:        decimal.NewFromInt(30),
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
		Reason:        "Banking run",
	})
	require.NoError(t, err)
	assert.True(t, f.cashBalance(t, f.harare).Equal(decimal.NewFromInt(70)))

	entries, err := f.cashbookRepo.FindBySource(ctx, finance.EntrySourceWithdrawal, withdrawal.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, finance.EntryCredit, entries[0].Side)

	_, err = f.service.Withdraw(ctx, WithdrawRequest{
		BranchID:      f.harare.ID,
		Amount:        decimal.NewFromInt(500),
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
		Reason:        "Too much",
	})
	require.ErrorIs(t, err, shared.ErrInsufficientFunds)
	assert.True(t, f.cashBalance(t, f.harare).Equal(decimal.NewFromInt(70)))
}
