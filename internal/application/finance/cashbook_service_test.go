package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"github.com/techcity/backoffice/internal/infrastructure/event"
	"github.com/techcity/backoffice/internal/infrastructure/persistence"
)

type cashbookFixture struct {
	service      *CashbookService
	cashbookRepo *persistence.GormCashbookRepository
	userRepo     *persistence.GormUserRepository
	branchID     uuid.UUID
}

func newCashbookFixture(t *testing.T) *cashbookFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(gormDB))
	db := &persistence.Database{DB: gormDB}

	userRepo := persistence.NewGormUserRepository(db)
	cashbookRepo := persistence.NewGormCashbookRepository(db)
	return &cashbookFixture{
		service: NewCashbookService(
			cashbookRepo,
			userRepo,
			persistence.NewTxManager(db),
			event.NewInMemoryEventBus(zap.NewNop()),
			zap.NewNop(),
		),
		cashbookRepo: cashbookRepo,
		userRepo:     userRepo,
		branchID:     uuid.New(),
	}
}

func (f *cashbookFixture) seedUser(t *testing.T, username string, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser(f.branchID, username, "s3cret-pass", "Tindo Moyo", role)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Save(context.Background(), user))
	return user
}

func (f *cashbookFixture) recordEntry(t *testing.T) *EntryResponse {
	t.Helper()
	entry, err := f.service.RecordEntry(context.Background(), RecordEntryRequest{
		BranchID:    f.branchID,
		Description: "Till float correction",
		Side:        finance.EntryDebit,
		Amount:      decimal.NewFromInt(25),
		Currency:    valueobject.USD,
	})
	require.NoError(t, err)
	return entry
}

func TestCashbookService_RecordEntry(t *testing.T) {
	f := newCashbookFixture(t)

	entry := f.recordEntry(t)
	assert.Equal(t, finance.EntrySourceManual, entry.SourceType)
	assert.False(t, entry.AccountantApproved)
	assert.False(t, entry.Cancelled)

	page, err := f.service.ListEntries(context.Background(), f.branchID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.EqualValues(t, 1, page.Total)
}

func TestCashbookService_ListEntries_DateRange(t *testing.T) {
	f := newCashbookFixture(t)
	ctx := context.Background()

	recent := f.recordEntry(t)

	old := f.recordEntry(t)
	entry, err := f.cashbookRepo.FindByIDForBranch(ctx, f.branchID, old.ID)
	require.NoError(t, err)
	entry.IssueDate = time.Now().AddDate(0, 0, -30)
	require.NoError(t, f.cashbookRepo.Save(ctx, entry))

	from := time.Now().AddDate(0, 0, -7)
	filter := shared.DefaultFilter()
	filter.DateFrom = &from

	page, err := f.service.ListEntries(ctx, f.branchID, filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, recent.ID, page.Items[0].ID)
	assert.EqualValues(t, 1, page.Total)
}

func TestCashbookService_ApprovalChain(t *testing.T) {
	f := newCashbookFixture(t)
	ctx := context.Background()
	entry := f.recordEntry(t)

	accountant := f.seedUser(t, "acc", identity.RoleAccountant)
	manager := f.seedUser(t, "mgr", identity.RoleManager)
	director := f.seedUser(t, "dir", identity.RoleDirector)

	resp, err := f.service.ApproveEntry(ctx, f.branchID, entry.ID, accountant.ID)
	require.NoError(t, err)
	assert.True(t, resp.AccountantApproved)
	assert.False(t, resp.ManagerApproved)

	resp, err = f.service.ApproveEntry(ctx, f.branchID, entry.ID, manager.ID)
	require.NoError(t, err)
	assert.True(t, resp.ManagerApproved)

	resp, err = f.service.ApproveEntry(ctx, f.branchID, entry.ID, director.ID)
	require.NoError(t, err)
	assert.True(t, resp.DirectorApproved)

	// approving twice for the same role fails
	_, err = f.service.ApproveEntry(ctx, f.branchID, entry.ID, accountant.ID)
	require.Error(t, err)
}

func TestCashbookService_ApproveEntry_AdminSignsAsDirector(t *testing.T) {
	f := newCashbookFixture(t)
	entry := f.recordEntry(t)
	admin := f.seedUser(t, "admin", identity.RoleAdmin)

	resp, err := f.service.ApproveEntry(context.Background(), f.branchID, entry.ID, admin.ID)
	require.NoError(t, err)
	assert.True(t, resp.DirectorApproved)
	assert.False(t, resp.AccountantApproved)
}

func TestCashbookService_ApproveEntry_RejectsCashier(t *testing.T) {
	f := newCashbookFixture(t)
	entry := f.recordEntry(t)
	cashier := f.seedUser(t, "till1", identity.RoleCashier)

	_, err := f.service.ApproveEntry(context.Background(), f.branchID, entry.ID, cashier.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCashbookService_CancelEntry(t *testing.T) {
	f := newCashbookFixture(t)
	ctx := context.Background()
	entry := f.recordEntry(t)
	accountant := f.seedUser(t, "acc", identity.RoleAccountant)

	_, err := f.service.ApproveEntry(ctx, f.branchID, entry.ID, accountant.ID)
	require.NoError(t, err)

	cancelled, err := f.service.CancelEntry(ctx, f.branchID, entry.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	// cancellation withdraws the approval already granted
	assert.False(t, cancelled.AccountantApproved)

	_, err = f.service.CancelEntry(ctx, f.branchID, entry.ID)
	require.Error(t, err)
}

func TestCashbookService_AddNote(t *testing.T) {
	f := newCashbookFixture(t)
	ctx := context.Background()
	entry := f.recordEntry(t)
	accountant := f.seedUser(t, "acc", identity.RoleAccountant)

	resp, err := f.service.AddNote(ctx, f.branchID, entry.ID, accountant.ID, "verified against till slip")
	require.NoError(t, err)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "verified against till slip", resp.Notes[0].Note)

	_, err = f.service.AddNote(ctx, f.branchID, entry.ID, accountant.ID, "")
	require.Error(t, err)
}