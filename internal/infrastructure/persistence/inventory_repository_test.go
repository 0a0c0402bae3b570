package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/shared"
)

func TestGormStockRepository_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	productID := uuid.New()

	t.Run("creates a zero stock row on first use", func(t *testing.T) {
		item, err := repo.GetOrCreate(ctx, branchID, productID)
		require.NoError(t, err)
		assert.Equal(t, 0, item.Quantity)
		assert.Equal(t, branchID, item.BranchID)
		assert.Equal(t, productID, item.ProductID)
	})

	t.Run("returns the same row on repeat calls", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, branchID, productID)
		require.NoError(t, err)

		second, err := repo.GetOrCreate(ctx, branchID, productID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestGormStockRepository_FindForUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	productID := uuid.New()

	t.Run("missing row is nil without error", func(t *testing.T) {
		item, err := repo.FindForUpdate(ctx, branchID, productID)
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("finds and saves stock movements", func(t *testing.T) {
		item, err := repo.GetOrCreate(ctx, branchID, productID)
		require.NoError(t, err)
		require.NoError(t, item.Restock(25))
		require.NoError(t, repo.Save(ctx, item))

		locked, err := repo.FindForUpdate(ctx, branchID, productID)
		require.NoError(t, err)
		assert.Equal(t, 25, locked.Quantity)
	})
}

func TestGormStockRepository_FindBelowReorderLevel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	branchID := uuid.New()

	low, err := inventory.NewStockItem(branchID, uuid.New(), 10)
	require.NoError(t, err)
	require.NoError(t, low.Restock(5))
	require.NoError(t, repo.Save(ctx, low))

	healthy, err := inventory.NewStockItem(branchID, uuid.New(), 10)
	require.NoError(t, err)
	require.NoError(t, healthy.Restock(50))
	require.NoError(t, repo.Save(ctx, healthy))

	otherBranch, err := inventory.NewStockItem(uuid.New(), uuid.New(), 10)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, otherBranch))

	items, err := repo.FindBelowReorderLevel(ctx, branchID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)
}

func TestGormStockRepository_Transactions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	productID := uuid.New()

	item, err := inventory.NewStockItem(branchID, productID, 0)
	require.NoError(t, err)
	require.NoError(t, item.Restock(30))

	first, err := inventory.NewStockTransaction(item, inventory.MovementPurchase, 30, nil, nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.RecordTransaction(ctx, first))

	require.NoError(t, item.Deduct(2, false))
	second, err := inventory.NewStockTransaction(item, inventory.MovementSale, -2, nil, nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.RecordTransaction(ctx, second))

	history, err := repo.FindTransactions(ctx, branchID, productID, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	other, err := repo.FindTransactions(ctx, branchID, uuid.New(), shared.Filter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}
