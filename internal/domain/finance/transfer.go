package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// TransferStatus is the lifecycle state of a branch-to-branch cash transfer
type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferReceived TransferStatus = "RECEIVED"
	TransferVoided   TransferStatus = "VOIDED"
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferPending, TransferReceived, TransferVoided:
		return true
	}
	return false
}

// CashTransfer moves money between two branch accounts of the same currency
// and payment method. Sending debits the source immediately; the destination
// is only credited when the receiving branch confirms.
type CashTransfer struct {
	shared.BranchAggregateRoot
	ToBranchID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	PaymentMethod PaymentMethod        `gorm:"type:varchar(10);not null"`
	Status        TransferStatus       `gorm:"type:varchar(10);not null;index"`
	Description   string               `gorm:"type:varchar(255)"`
	SentAt        time.Time            `gorm:"not null"`
	ReceivedAt    *time.Time           `gorm:""`
	ReceivedBy    *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CashTransfer) TableName() string {
	return "cash_transfers"
}

// NewCashTransfer creates a pending transfer out of the source branch
func NewCashTransfer(
	fromBranchID, toBranchID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	description string,
) (*CashTransfer, error) {
	if fromBranchID == uuid.Nil || toBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if fromBranchID == toBranchID {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Cannot transfer to the same branch")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transfer amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}

	transfer := &CashTransfer{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(fromBranchID),
		ToBranchID:          toBranchID,
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		PaymentMethod:       method,
		Status:              TransferPending,
		Description:         description,
		SentAt:              time.Now(),
	}

	transfer.AddDomainEvent(NewTransferSentEvent(transfer))
	return transfer, nil
}

// MarkReceived confirms arrival at the destination branch
func (t *CashTransfer) MarkReceived(userID uuid.UUID) error {
	if t.Status != TransferPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot receive a transfer in status %s", t.Status))
	}
	now := time.Now()
	t.Status = TransferReceived
	t.ReceivedAt = &now
	t.ReceivedBy = &userID
	t.UpdatedAt = now
	t.IncrementVersion()
	t.AddDomainEvent(NewTransferReceivedEvent(t))
	return nil
}

// Void cancels a transfer that was never received. The sender's debit must be
// reversed by the caller.
func (t *CashTransfer) Void() error {
	if t.Status != TransferPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot void a transfer in status %s", t.Status))
	}
	t.Status = TransferVoided
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// AmountMoney returns the transfer amount as Money
func (t *CashTransfer) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(t.Amount, t.Currency)
	return m
}

// SourceAccountKey returns the account debited when the transfer is sent
func (t *CashTransfer) SourceAccountKey() AccountKey {
	return AccountKey{BranchID: t.BranchID, Currency: t.Currency, PaymentMethod: t.PaymentMethod}
}

// DestinationAccountKey returns the account credited on receipt
func (t *CashTransfer) DestinationAccountKey() AccountKey {
	return AccountKey{BranchID: t.ToBranchID, Currency: t.Currency, PaymentMethod: t.PaymentMethod}
}

// CashWithdrawal takes money out of a branch account for an external purpose,
// for example banking the day's takings or a director drawing
type CashWithdrawal struct {
	shared.BranchAggregateRoot
	Amount        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	PaymentMethod PaymentMethod        `gorm:"type:varchar(10);not null"`
	Reason        string               `gorm:"type:varchar(255);not null"`
	WithdrawnAt   time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CashWithdrawal) TableName() string {
	return "cash_withdrawals"
}

// NewCashWithdrawal creates a withdrawal record
func NewCashWithdrawal(
	branchID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	reason string,
) (*CashWithdrawal, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Withdrawal amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Withdrawal reason cannot be empty")
	}

	w := &CashWithdrawal{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		PaymentMethod:       method,
		Reason:              reason,
		WithdrawnAt:         time.Now(),
	}
	return w, nil
}

// AmountMoney returns the withdrawal amount as Money
func (w *CashWithdrawal) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(w.Amount, w.Currency)
	return m
}

// AccountKey returns the account the withdrawal draws from
func (w *CashWithdrawal) AccountKey() AccountKey {
	return AccountKey{BranchID: w.BranchID, Currency: w.Currency, PaymentMethod: w.PaymentMethod}
}
