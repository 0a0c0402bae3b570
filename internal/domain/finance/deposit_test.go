package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

func newTestDeposit(t *testing.T, amount float64) *CustomerDeposit {
	t.Helper()
	deposit, err := NewCustomerDeposit(
		uuid.New(),
		uuid.New(),
		"RCPT-"+uuid.NewString()[:8],
		valueobject.NewMoneyUSDFromFloat(amount),
		PaymentMethodCash,
		"layby deposit",
	)
	require.NoError(t, err)
	return deposit
}

func TestNewCustomerDeposit_Validation(t *testing.T) {
	_, err := NewCustomerDeposit(uuid.Nil, uuid.New(), "RCPT-1", valueobject.NewMoneyUSDFromFloat(10), PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewCustomerDeposit(uuid.New(), uuid.Nil, "RCPT-1", valueobject.NewMoneyUSDFromFloat(10), PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewCustomerDeposit(uuid.New(), uuid.New(), "  ", valueobject.NewMoneyUSDFromFloat(10), PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewCustomerDeposit(uuid.New(), uuid.New(), "RCPT-1", valueobject.Zero(valueobject.USD), PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewCustomerDeposit(uuid.New(), uuid.New(), "RCPT-1", valueobject.NewMoneyUSDFromFloat(10), PaymentMethod("voucher"), "")
	assert.Error(t, err)
}

func TestCustomerDeposit_EditReturnsDelta(t *testing.T) {
	deposit := newTestDeposit(t, 100)

	delta, err := deposit.Edit(valueobject.NewMoneyUSDFromFloat(150))
	require.NoError(t, err)

	assert.True(t, delta.Amount().Equal(decimal.NewFromInt(50)))
	assert.True(t, deposit.Amount.Equal(decimal.NewFromInt(150)))
}

func TestCustomerDeposit_EditDownwardGivesNegativeDelta(t *testing.T) {
	deposit := newTestDeposit(t, 100)

	delta, err := deposit.Edit(valueobject.NewMoneyUSDFromFloat(80))
	require.NoError(t, err)

	assert.True(t, delta.IsNegative())
	assert.True(t, delta.Amount().Equal(decimal.NewFromInt(-20)))
}

func TestCustomerDeposit_EditRejectsCurrencyChange(t *testing.T) {
	deposit := newTestDeposit(t, 100)

	zwg, err := valueobject.NewMoneyFromFloat(150, valueobject.ZWG)
	require.NoError(t, err)

	_, err = deposit.Edit(zwg)
	assert.Error(t, err)
}

func TestCustomerDeposit_RefundInFull(t *testing.T) {
	deposit := newTestDeposit(t, 100)

	full, err := deposit.Refund(valueobject.NewMoneyUSDFromFloat(100))
	require.NoError(t, err)
	assert.True(t, full)
	assert.True(t, deposit.Refunded)
	assert.True(t, deposit.Amount.IsZero())

	_, err = deposit.Refund(valueobject.NewMoneyUSDFromFloat(1))
	assert.Error(t, err)

	_, err = deposit.Edit(valueobject.NewMoneyUSDFromFloat(200))
	assert.Error(t, err)
}

func TestCustomerDeposit_PartialRefundReducesAmount(t *testing.T) {
	deposit := newTestDeposit(t, 100)

	full, err := deposit.Refund(valueobject.NewMoneyUSDFromFloat(30))
	require.NoError(t, err)
	assert.False(t, full)
	assert.False(t, deposit.Refunded)
	assert.True(t, deposit.Amount.Equal(decimal.NewFromInt(70)))

	// refunding the remainder closes the deposit out
	full, err = deposit.Refund(valueobject.NewMoneyUSDFromFloat(70))
	require.NoError(t, err)
	assert.True(t, full)
}

func TestCustomerDeposit_RefundValidation(t *testing.T) {
	deposit := newTestDeposit(t, 100)

	_, err := deposit.Refund(valueobject.Zero(valueobject.USD))
	assert.Error(t, err)

	_, err = deposit.Refund(valueobject.NewMoneyUSDFromFloat(101))
	assert.Error(t, err)

	zwg, err := valueobject.NewMoneyFromFloat(50, valueobject.ZWG)
	require.NoError(t, err)
	_, err = deposit.Refund(zwg)
	assert.Error(t, err)
}

func TestCustomerDeposit_AccountKey(t *testing.T) {
	deposit := newTestDeposit(t, 100)

	key := deposit.AccountKey()
	assert.Equal(t, deposit.BranchID, key.BranchID)
	assert.Equal(t, valueobject.USD, key.Currency)
	assert.Equal(t, PaymentMethodCash, key.PaymentMethod)
	assert.NoError(t, key.Validate())
}
