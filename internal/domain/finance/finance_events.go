package finance

import (
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// Event type constants for the finance domain
const (
	EventCashbookEntryRecorded  = "finance.cashbook_entry.recorded"
	EventCashbookEntryApproved  = "finance.cashbook_entry.approved"
	EventCashbookEntryCancelled = "finance.cashbook_entry.cancelled"
	EventDepositCreated         = "finance.deposit.created"
	EventDepositEdited          = "finance.deposit.edited"
	EventDepositRefunded        = "finance.deposit.refunded"
	EventTransferSent           = "finance.transfer.sent"
	EventTransferReceived       = "finance.transfer.received"
	EventExpenseConfirmed       = "finance.expense.confirmed"
)

// CashbookEntryRecordedEvent is raised when a journal entry is written
type CashbookEntryRecordedEvent struct {
	shared.BaseDomainEvent
	Description string               `json:"description"`
	Side        EntrySide            `json:"side"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    valueobject.Currency `json:"currency"`
	SourceType  EntrySourceType      `json:"source_type"`
}

// NewCashbookEntryRecordedEvent creates a cashbook entry recorded event
func NewCashbookEntryRecordedEvent(entry *CashbookEntry) *CashbookEntryRecordedEvent {
	return &CashbookEntryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCashbookEntryRecorded, "CashbookEntry", entry.ID, entry.BranchID),
		Description:     entry.Description,
		Side:            entry.Side,
		Amount:          entry.Amount,
		Currency:        entry.Currency,
		SourceType:      entry.SourceType,
	}
}

// CashbookEntryApprovedEvent is raised when a role signs off an entry
type CashbookEntryApprovedEvent struct {
	shared.BaseDomainEvent
	Role          ApprovalRole `json:"role"`
	FullyApproved bool         `json:"fully_approved"`
}

// NewCashbookEntryApprovedEvent creates a cashbook entry approved event
func NewCashbookEntryApprovedEvent(entry *CashbookEntry, role ApprovalRole) *CashbookEntryApprovedEvent {
	return &CashbookEntryApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCashbookEntryApproved, "CashbookEntry", entry.ID, entry.BranchID),
		Role:            role,
		FullyApproved:   entry.FullyApproved(),
	}
}

// CashbookEntryCancelledEvent is raised when an entry is voided
type CashbookEntryCancelledEvent struct {
	shared.BaseDomainEvent
	Description string `json:"description"`
}

// NewCashbookEntryCancelledEvent creates a cashbook entry cancelled event
func NewCashbookEntryCancelledEvent(entry *CashbookEntry) *CashbookEntryCancelledEvent {
	return &CashbookEntryCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCashbookEntryCancelled, "CashbookEntry", entry.ID, entry.BranchID),
		Description:     entry.Description,
	}
}

// DepositCreatedEvent is raised when a customer lodges a deposit
type DepositCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID string               `json:"customer_id"`
	Amount     decimal.Decimal      `json:"amount"`
	Currency   valueobject.Currency `json:"currency"`
}

// NewDepositCreatedEvent creates a deposit created event
func NewDepositCreatedEvent(deposit *CustomerDeposit) *DepositCreatedEvent {
	return &DepositCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDepositCreated, "CustomerDeposit", deposit.ID, deposit.BranchID),
		CustomerID:      deposit.CustomerID.String(),
		Amount:          deposit.Amount,
		Currency:        deposit.Currency,
	}
}

// DepositEditedEvent is raised when a deposit amount is corrected
type DepositEditedEvent struct {
	shared.BaseDomainEvent
	NewAmount decimal.Decimal      `json:"new_amount"`
	Delta     decimal.Decimal      `json:"delta"`
	Currency  valueobject.Currency `json:"currency"`
}

// NewDepositEditedEvent creates a deposit edited event
func NewDepositEditedEvent(deposit *CustomerDeposit, delta valueobject.Money) *DepositEditedEvent {
	return &DepositEditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDepositEdited, "CustomerDeposit", deposit.ID, deposit.BranchID),
		NewAmount:       deposit.Amount,
		Delta:           delta.Amount(),
		Currency:        deposit.Currency,
	}
}

// DepositRefundedEvent is raised when a deposit is paid back in full
type DepositRefundedEvent struct {
	shared.BaseDomainEvent
	CustomerID string               `json:"customer_id"`
	Amount     decimal.Decimal      `json:"amount"`
	Currency   valueobject.Currency `json:"currency"`
}

// NewDepositRefundedEvent creates a deposit refunded event
func NewDepositRefundedEvent(deposit *CustomerDeposit) *DepositRefundedEvent {
	return &DepositRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDepositRefunded, "CustomerDeposit", deposit.ID, deposit.BranchID),
		CustomerID:      deposit.CustomerID.String(),
		Amount:          deposit.Amount,
		Currency:        deposit.Currency,
	}
}

// TransferSentEvent is raised when a branch sends cash to another branch
type TransferSentEvent struct {
	shared.BaseDomainEvent
	ToBranchID string               `json:"to_branch_id"`
	Amount     decimal.Decimal      `json:"amount"`
	Currency   valueobject.Currency `json:"currency"`
}

// NewTransferSentEvent creates a transfer sent event
func NewTransferSentEvent(transfer *CashTransfer) *TransferSentEvent {
	return &TransferSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransferSent, "CashTransfer", transfer.ID, transfer.BranchID),
		ToBranchID:      transfer.ToBranchID.String(),
		Amount:          transfer.Amount,
		Currency:        transfer.Currency,
	}
}

// TransferReceivedEvent is raised when the destination branch confirms receipt
type TransferReceivedEvent struct {
	shared.BaseDomainEvent
	FromBranchID string               `json:"from_branch_id"`
	Amount       decimal.Decimal      `json:"amount"`
	Currency     valueobject.Currency `json:"currency"`
}

// NewTransferReceivedEvent creates a transfer received event. The event is
// scoped to the receiving branch so its users get the notification.
func NewTransferReceivedEvent(transfer *CashTransfer) *TransferReceivedEvent {
	return &TransferReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransferReceived, "CashTransfer", transfer.ID, transfer.ToBranchID),
		FromBranchID:    transfer.BranchID.String(),
		Amount:          transfer.Amount,
		Currency:        transfer.Currency,
	}
}

// ExpenseConfirmedEvent is raised when an expense is confirmed as paid
type ExpenseConfirmedEvent struct {
	shared.BaseDomainEvent
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    valueobject.Currency `json:"currency"`
}

// NewExpenseConfirmedEvent creates an expense confirmed event
func NewExpenseConfirmedEvent(expense *Expense) *ExpenseConfirmedEvent {
	return &ExpenseConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventExpenseConfirmed, "Expense", expense.ID, expense.BranchID),
		Description:     expense.Description,
		Amount:          expense.Amount,
		Currency:        expense.Currency,
	}
}
