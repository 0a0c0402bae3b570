package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStockItem(t *testing.T, quantity int) *StockItem {
	t.Helper()
	item, err := NewStockItem(uuid.New(), uuid.New(), 5)
	require.NoError(t, err)
	if quantity > 0 {
		require.NoError(t, item.Restock(quantity))
	}
	return item
}

func TestStockItem_DeductWithinStock(t *testing.T) {
	item := newTestStockItem(t, 10)

	require.NoError(t, item.Deduct(4, false))
	assert.Equal(t, 6, item.Quantity)
}

func TestStockItem_DeductBeyondStockRejected(t *testing.T) {
	item := newTestStockItem(t, 3)

	err := item.Deduct(4, false)
	assert.Error(t, err)
	assert.Equal(t, 3, item.Quantity, "failed deduction must not change the count")
}

func TestStockItem_DeductBeyondStockAllowedWhenPolicySet(t *testing.T) {
	item := newTestStockItem(t, 3)

	require.NoError(t, item.Deduct(5, true))
	assert.Equal(t, -2, item.Quantity)
}

func TestStockItem_DeductRejectsNonPositive(t *testing.T) {
	item := newTestStockItem(t, 10)

	assert.Error(t, item.Deduct(0, false))
	assert.Error(t, item.Deduct(-1, true))
}

func TestStockItem_Restock(t *testing.T) {
	item := newTestStockItem(t, 0)

	require.NoError(t, item.Restock(12))
	assert.Equal(t, 12, item.Quantity)
	assert.Error(t, item.Restock(0))
}

func TestStockItem_Adjust(t *testing.T) {
	item := newTestStockItem(t, 10)

	diff, err := item.Adjust(7)
	require.NoError(t, err)
	assert.Equal(t, -3, diff)
	assert.Equal(t, 7, item.Quantity)

	diff, err = item.Adjust(15)
	require.NoError(t, err)
	assert.Equal(t, 8, diff)

	_, err = item.Adjust(-1)
	assert.Error(t, err)
}

func TestStockItem_BelowReorderLevel(t *testing.T) {
	item := newTestStockItem(t, 10) // reorder level 5

	assert.False(t, item.BelowReorderLevel())
	require.NoError(t, item.Deduct(5, false))
	assert.True(t, item.BelowReorderLevel())
}

func TestNewStockTransaction_SnapshotsQuantityAfter(t *testing.T) {
	item := newTestStockItem(t, 10)
	require.NoError(t, item.Deduct(4, false))

	tx, err := NewStockTransaction(item, MovementSale, -4, nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, -4, tx.Quantity)
	assert.Equal(t, 6, tx.QuantityAfter)
	assert.Equal(t, item.BranchID, tx.BranchID)
	assert.Equal(t, item.ProductID, tx.ProductID)
}

func TestNewStockTransfer_Validation(t *testing.T) {
	from := uuid.New()
	items := []StockTransferItem{{ProductID: uuid.New(), Quantity: 2}}

	_, err := NewStockTransfer(from, from, items, "")
	assert.Error(t, err)

	_, err = NewStockTransfer(from, uuid.New(), nil, "")
	assert.Error(t, err)

	_, err = NewStockTransfer(from, uuid.New(), []StockTransferItem{{ProductID: uuid.New(), Quantity: 0}}, "")
	assert.Error(t, err)

	transfer, err := NewStockTransfer(from, uuid.New(), items, "weekly replenishment")
	require.NoError(t, err)
	assert.Equal(t, StockTransferPending, transfer.Status)

	require.NoError(t, transfer.MarkReceived())
	assert.Error(t, transfer.MarkReceived())
	assert.Error(t, transfer.Void())
}
