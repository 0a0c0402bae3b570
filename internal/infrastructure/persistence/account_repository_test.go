package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

func TestGormAccountRepository_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	key := finance.AccountKey{
		BranchID:      uuid.New(),
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
	}

	t.Run("creates account and zero balance on first use", func(t *testing.T) {
		account, err := repo.GetOrCreate(ctx, key, "Harare")
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, key.BranchID, account.BranchID)
		assert.Equal(t, valueobject.USD, account.Currency)
		assert.Equal(t, finance.PaymentMethodCash, account.PaymentMethod)
		assert.Equal(t, finance.AccountTypeCash, account.Type)
		assert.Equal(t, "Harare USD cash Account", account.Name)

		balance, err := repo.BalanceForUpdate(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, balance.Balance.IsZero())
		assert.Equal(t, account.BranchID, balance.BranchID)
	})

	t.Run("returns the existing account on repeat calls", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, key, "Harare")
		require.NoError(t, err)

		second, err := repo.GetOrCreate(ctx, key, "Harare")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("rejects an invalid key", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, finance.AccountKey{}, "Harare")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_BRANCH", domainErr.Code)
	})
}

func TestGormAccountRepository_FindByKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	key := finance.AccountKey{
		BranchID:      uuid.New(),
		Currency:      valueobject.ZWG,
		PaymentMethod: finance.PaymentMethodBank,
	}

	t.Run("is nil before creation", func(t *testing.T) {
		account, err := repo.FindByKey(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("finds the account after creation", func(t *testing.T) {
		created, err := repo.GetOrCreate(ctx, key, "Bulawayo")
		require.NoError(t, err)

		found, err := repo.FindByKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, finance.AccountTypeBank, found.Type)
	})

	t.Run("does not match a different payment method", func(t *testing.T) {
		other := key
		other.PaymentMethod = finance.PaymentMethodEcocash
		account, err := repo.FindByKey(ctx, other)
		require.NoError(t, err)
		assert.Nil(t, account)
	})
}

func TestGormAccountRepository_SaveBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	key := finance.AccountKey{
		BranchID:      uuid.New(),
		Currency:      valueobject.USD,
		PaymentMethod: finance.PaymentMethodCash,
	}
	account, err := repo.GetOrCreate(ctx, key, "Gweru")
	require.NoError(t, err)

	balance, err := repo.BalanceForUpdate(ctx, account.ID)
	require.NoError(t, err)

	amount, err := valueobject.NewMoneyFromString("125.50", valueobject.USD)
	require.NoError(t, err)
	require.NoError(t, balance.Credit(amount))
	require.NoError(t, repo.SaveBalance(ctx, balance))

	reloaded, err := repo.BalanceForUpdate(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.Equal(decimal.RequireFromString("125.50")))
	assert.Equal(t, balance.Version, reloaded.Version)
}

func TestGormAccountRepository_BalancesForBranch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	for _, key := range []finance.AccountKey{
		{BranchID: branchID, Currency: valueobject.USD, PaymentMethod: finance.PaymentMethodCash},
		{BranchID: branchID, Currency: valueobject.USD, PaymentMethod: finance.PaymentMethodBank},
		{BranchID: branchID, Currency: valueobject.ZWG, PaymentMethod: finance.PaymentMethodCash},
		{BranchID: uuid.New(), Currency: valueobject.USD, PaymentMethod: finance.PaymentMethodCash},
	} {
		_, err := repo.GetOrCreate(ctx, key, "Mutare")
		require.NoError(t, err)
	}

	balances, err := repo.BalancesForBranch(ctx, branchID)
	require.NoError(t, err)
	assert.Len(t, balances, 3)
	for _, b := range balances {
		assert.Equal(t, branchID, b.BranchID)
	}
}

func TestGormCustomerAccountRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerAccountRepository(db)
	ctx := context.Background()

	customerID := uuid.New()

	t.Run("GetOrCreate is idempotent per customer", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, customerID)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, customerID, first.CustomerID)

		second, err := repo.GetOrCreate(ctx, customerID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("BalanceForUpdate creates a zero row per currency", func(t *testing.T) {
		account, err := repo.GetOrCreate(ctx, customerID)
		require.NoError(t, err)

		usd, err := repo.BalanceForUpdate(ctx, account.ID, valueobject.USD)
		require.NoError(t, err)
		assert.True(t, usd.Balance.IsZero())

		zwg, err := repo.BalanceForUpdate(ctx, account.ID, valueobject.ZWG)
		require.NoError(t, err)
		assert.NotEqual(t, usd.ID, zwg.ID)

		again, err := repo.BalanceForUpdate(ctx, account.ID, valueobject.USD)
		require.NoError(t, err)
		assert.Equal(t, usd.ID, again.ID)
	})

	t.Run("Balances lists every currency for the account", func(t *testing.T) {
		account, err := repo.GetOrCreate(ctx, customerID)
		require.NoError(t, err)

		balance, err := repo.BalanceForUpdate(ctx, account.ID, valueobject.USD)
		require.NoError(t, err)

		amount, err := valueobject.NewMoneyFromString("40.00", valueobject.USD)
		require.NoError(t, err)
		require.NoError(t, balance.Credit(amount))
		require.NoError(t, repo.SaveBalance(ctx, balance))

		balances, err := repo.Balances(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, balances, 2)
		// ordered by currency: USD before ZWG
		assert.Equal(t, valueobject.USD, balances[0].Currency)
		assert.True(t, balances[0].Balance.Equal(decimal.RequireFromString("40")))
		assert.Equal(t, valueobject.ZWG, balances[1].Currency)
		assert.True(t, balances[1].Balance.IsZero())
	})

	t.Run("rejects a nil customer", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, uuid.Nil)
		require.Error(t, err)
	})
}
