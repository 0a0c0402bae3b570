package finance

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// LedgerTransaction is the immutable audit trail behind every balance
// movement. One row is written per posting, carrying the account touched,
// the side, the amount and a unique human-quotable reference.
type LedgerTransaction struct {
	shared.BranchAggregateRoot
	Reference  string               `gorm:"type:varchar(10);not null;uniqueIndex"`
	AccountID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Side       EntrySide            `gorm:"type:varchar(6);not null"`
	Amount     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency   valueobject.Currency `gorm:"type:varchar(3);not null"`
	SourceType EntrySourceType      `gorm:"type:varchar(12);not null"`
	SourceID   *uuid.UUID           `gorm:"type:uuid;index"`
	Narration  string               `gorm:"type:varchar(255)"`
	PostedAt   time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}

// NewTransactionReference generates a 10 character uppercase hex reference
func NewTransactionReference() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// fall back to uuid entropy, rand.Read on crypto/rand does not fail in practice
		return strings.ToUpper(uuid.NewString()[:10])
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}

// NewLedgerTransaction posts one signed movement against an account
func NewLedgerTransaction(
	branchID, accountID uuid.UUID,
	side EntrySide,
	amount valueobject.Money,
	sourceType EntrySourceType,
	sourceID *uuid.UUID,
	narration string,
) (*LedgerTransaction, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if !side.IsValid() {
		return nil, shared.NewDomainError("INVALID_SIDE", "Transaction side must be DEBIT or CREDIT")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Transaction source type is not valid")
	}

	return &LedgerTransaction{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		Reference:           NewTransactionReference(),
		AccountID:           accountID,
		Side:                side,
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		SourceType:          sourceType,
		SourceID:            sourceID,
		Narration:           narration,
		PostedAt:            time.Now(),
	}, nil
}

// SignedAmount returns the amount with the transaction side applied
func (t *LedgerTransaction) SignedAmount() decimal.Decimal {
	return t.Amount.Mul(t.Side.Sign())
}
