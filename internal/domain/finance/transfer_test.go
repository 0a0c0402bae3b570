package finance

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

func TestNewCashTransfer_Validation(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	amount := valueobject.NewMoneyUSDFromFloat(500)

	_, err := NewCashTransfer(from, from, amount, PaymentMethodCash, "")
	assert.Error(t, err, "transfer to the same branch must be rejected")

	_, err = NewCashTransfer(uuid.Nil, to, amount, PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewCashTransfer(from, to, valueobject.Zero(valueobject.USD), PaymentMethodCash, "")
	assert.Error(t, err)

	transfer, err := NewCashTransfer(from, to, amount, PaymentMethodBank, "weekly float")
	require.NoError(t, err)
	assert.Equal(t, TransferPending, transfer.Status)
	assert.Equal(t, from, transfer.BranchID)
	assert.Equal(t, to, transfer.ToBranchID)
}

func TestCashTransfer_MarkReceived(t *testing.T) {
	transfer, err := NewCashTransfer(uuid.New(), uuid.New(), valueobject.NewMoneyUSDFromFloat(200), PaymentMethodCash, "")
	require.NoError(t, err)

	receiver := uuid.New()
	require.NoError(t, transfer.MarkReceived(receiver))

	assert.Equal(t, TransferReceived, transfer.Status)
	require.NotNil(t, transfer.ReceivedBy)
	assert.Equal(t, receiver, *transfer.ReceivedBy)
	assert.NotNil(t, transfer.ReceivedAt)

	assert.Error(t, transfer.MarkReceived(receiver))
	assert.Error(t, transfer.Void())
}

func TestCashTransfer_Void(t *testing.T) {
	transfer, err := NewCashTransfer(uuid.New(), uuid.New(), valueobject.NewMoneyUSDFromFloat(200), PaymentMethodCash, "")
	require.NoError(t, err)

	require.NoError(t, transfer.Void())
	assert.Equal(t, TransferVoided, transfer.Status)
	assert.Error(t, transfer.MarkReceived(uuid.New()))
}

func TestCashTransfer_AccountKeys(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	transfer, err := NewCashTransfer(from, to, valueobject.NewMoneyUSDFromFloat(200), PaymentMethodEcocash, "")
	require.NoError(t, err)

	src := transfer.SourceAccountKey()
	dst := transfer.DestinationAccountKey()

	assert.Equal(t, from, src.BranchID)
	assert.Equal(t, to, dst.BranchID)
	assert.Equal(t, src.Currency, dst.Currency)
	assert.Equal(t, src.PaymentMethod, dst.PaymentMethod)
}

func TestNewCashWithdrawal(t *testing.T) {
	_, err := NewCashWithdrawal(uuid.New(), valueobject.NewMoneyUSDFromFloat(300), PaymentMethodCash, "")
	assert.Error(t, err, "withdrawal needs a reason")

	w, err := NewCashWithdrawal(uuid.New(), valueobject.NewMoneyUSDFromFloat(300), PaymentMethodCash, "banked takings")
	require.NoError(t, err)
	assert.Equal(t, "banked takings", w.Reason)
	assert.NoError(t, w.AccountKey().Validate())
}

func TestNewTransactionReference(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewTransactionReference()
		assert.Len(t, ref, 10)
		assert.Equal(t, strings.ToUpper(ref), ref)
		assert.False(t, seen[ref], "references must not repeat")
		seen[ref] = true
	}
}
