package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

func newTestEntry(t *testing.T, side EntrySide) *CashbookEntry {
	t.Helper()
	entry, err := NewCashbookEntry(
		uuid.New(),
		"Invoice INVH-0001 settled",
		side,
		valueobject.NewMoneyUSDFromFloat(250),
		EntrySourceInvoice,
		nil,
	)
	require.NoError(t, err)
	return entry
}

func TestNewCashbookEntry_Validation(t *testing.T) {
	branchID := uuid.New()
	amount := valueobject.NewMoneyUSDFromFloat(50)

	tests := []struct {
		name        string
		branchID    uuid.UUID
		description string
		side        EntrySide
		amount      valueobject.Money
		sourceType  EntrySourceType
		wantErr     bool
	}{
		{"valid debit", branchID, "cash sale", EntryDebit, amount, EntrySourceInvoice, false},
		{"valid credit", branchID, "rent paid", EntryCredit, amount, EntrySourceExpense, false},
		{"missing branch", uuid.Nil, "cash sale", EntryDebit, amount, EntrySourceInvoice, true},
		{"empty description", branchID, "", EntryDebit, amount, EntrySourceInvoice, true},
		{"bad side", branchID, "cash sale", EntrySide("BOTH"), amount, EntrySourceInvoice, true},
		{"zero amount", branchID, "cash sale", EntryDebit, valueobject.Zero(valueobject.USD), EntrySourceInvoice, true},
		{"bad source type", branchID, "cash sale", EntryDebit, amount, EntrySourceType("OTHER"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCashbookEntry(tt.branchID, tt.description, tt.side, tt.amount, tt.sourceType, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCashbookEntry_SignedAmount(t *testing.T) {
	debit := newTestEntry(t, EntryDebit)
	credit := newTestEntry(t, EntryCredit)

	assert.True(t, debit.SignedAmount().IsPositive())
	assert.True(t, credit.SignedAmount().IsNegative())
	assert.True(t, debit.SignedAmount().Equal(credit.SignedAmount().Neg()))
}

func TestCashbookEntry_ApproveEachRoleOnce(t *testing.T) {
	entry := newTestEntry(t, EntryDebit)

	require.NoError(t, entry.Approve(RoleAccountant))
	require.NoError(t, entry.Approve(RoleManager))
	require.NoError(t, entry.Approve(RoleDirector))
	assert.True(t, entry.FullyApproved())

	assert.Error(t, entry.Approve(RoleAccountant))
	assert.Error(t, entry.Approve(ApprovalRole("auditor")))
}

func TestCashbookEntry_CancelClearsMostRecentGrant(t *testing.T) {
	entry := newTestEntry(t, EntryDebit)
	require.NoError(t, entry.Approve(RoleAccountant))
	require.NoError(t, entry.Approve(RoleManager))

	require.NoError(t, entry.Cancel())

	assert.True(t, entry.Cancelled)
	assert.True(t, entry.AccountantApproved)
	assert.False(t, entry.ManagerApproved)
	assert.False(t, entry.FullyApproved())
}

func TestCashbookEntry_CancelIsFinal(t *testing.T) {
	entry := newTestEntry(t, EntryCredit)
	require.NoError(t, entry.Cancel())

	assert.Error(t, entry.Cancel())
	assert.Error(t, entry.Approve(RoleManager))
}

func TestCashbookEntry_CancelledNeverFullyApproved(t *testing.T) {
	entry := newTestEntry(t, EntryDebit)
	require.NoError(t, entry.Approve(RoleAccountant))
	require.NoError(t, entry.Approve(RoleManager))
	require.NoError(t, entry.Approve(RoleDirector))

	require.NoError(t, entry.Cancel())

	assert.False(t, entry.FullyApproved())
}

func TestCashbookEntry_AddNote(t *testing.T) {
	entry := newTestEntry(t, EntryDebit)
	userID := uuid.New()

	note, err := entry.AddNote(userID, "queried with branch manager")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, note.EntryID)
	assert.Equal(t, userID, note.UserID)
	assert.Len(t, entry.Notes, 1)

	_, err = entry.AddNote(userID, "")
	assert.Error(t, err)
	_, err = entry.AddNote(uuid.Nil, "missing author")
	assert.Error(t, err)
}
