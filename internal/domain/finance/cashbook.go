package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// EntrySide tags a cashbook entry as a debit or a credit. Exactly one side
// applies to every entry; the balance of a book is the fold of signed amounts.
type EntrySide string

const (
	EntryDebit  EntrySide = "DEBIT"
	EntryCredit EntrySide = "CREDIT"
)

// IsValid checks if the side is a valid EntrySide
func (s EntrySide) IsValid() bool {
	return s == EntryDebit || s == EntryCredit
}

// Sign returns +1 for debits and -1 for credits
func (s EntrySide) Sign() decimal.Decimal {
	if s == EntryDebit {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// EntrySourceType identifies the record that caused a cashbook entry
type EntrySourceType string

const (
	EntrySourceInvoice    EntrySourceType = "INVOICE"
	EntrySourceExpense    EntrySourceType = "EXPENSE"
	EntrySourceDeposit    EntrySourceType = "DEPOSIT"
	EntrySourceTransfer   EntrySourceType = "TRANSFER"
	EntrySourceWithdrawal EntrySourceType = "WITHDRAWAL"
	EntrySourcePurchase   EntrySourceType = "PURCHASE"
	EntrySourceManual     EntrySourceType = "MANUAL"
)

// IsValid checks if the source type is valid
func (s EntrySourceType) IsValid() bool {
	switch s {
	case EntrySourceInvoice, EntrySourceExpense, EntrySourceDeposit,
		EntrySourceTransfer, EntrySourceWithdrawal, EntrySourcePurchase, EntrySourceManual:
		return true
	}
	return false
}

// ApprovalRole is one of the three sign-off parties on a cashbook entry
type ApprovalRole string

const (
	RoleAccountant ApprovalRole = "accountant"
	RoleManager    ApprovalRole = "manager"
	RoleDirector   ApprovalRole = "director"
)

// IsValid checks if the approval role is recognised
func (r ApprovalRole) IsValid() bool {
	switch r {
	case RoleAccountant, RoleManager, RoleDirector:
		return true
	}
	return false
}

// CashbookNote is a free-text annotation on a cashbook entry
type CashbookNote struct {
	shared.BaseEntity
	EntryID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `gorm:"type:uuid;not null"`
	Note    string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CashbookNote) TableName() string {
	return "cashbook_notes"
}

// CashbookEntry is one row of the branch journal: a dated debit or credit
// with a reference to whatever produced it, three independent role approvals
// and a cancelled flag. Entries are written by the operation that moved the
// money, never by persistence hooks.
type CashbookEntry struct {
	shared.BranchAggregateRoot
	IssueDate   time.Time            `gorm:"not null;index"`
	Description string               `gorm:"type:varchar(255);not null"`
	Side        EntrySide            `gorm:"type:varchar(6);not null"`
	Amount      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	SourceType  EntrySourceType      `gorm:"type:varchar(12);not null"`
	SourceID    *uuid.UUID           `gorm:"type:uuid;index"`

	AccountantApproved bool `gorm:"not null;default:false"`
	ManagerApproved    bool `gorm:"not null;default:false"`
	DirectorApproved   bool `gorm:"not null;default:false"`
	Cancelled          bool `gorm:"not null;default:false"`

	Notes []CashbookNote `gorm:"foreignKey:EntryID;references:ID"`
}

// TableName returns the table name for GORM
func (CashbookEntry) TableName() string {
	return "cashbook_entries"
}

// NewCashbookEntry creates a journal entry
func NewCashbookEntry(
	branchID uuid.UUID,
	description string,
	side EntrySide,
	amount valueobject.Money,
	sourceType EntrySourceType,
	sourceID *uuid.UUID,
) (*CashbookEntry, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if !side.IsValid() {
		return nil, shared.NewDomainError("INVALID_SIDE", fmt.Sprintf("Entry side %q is not valid", side))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Entry amount must be positive")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", fmt.Sprintf("Source type %q is not valid", sourceType))
	}

	entry := &CashbookEntry{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		IssueDate:           time.Now(),
		Description:         description,
		Side:                side,
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		SourceType:          sourceType,
		SourceID:            sourceID,
		Notes:               make([]CashbookNote, 0),
	}

	entry.AddDomainEvent(NewCashbookEntryRecordedEvent(entry))
	return entry, nil
}

// SignedAmount returns the amount with the entry side applied
func (e *CashbookEntry) SignedAmount() decimal.Decimal {
	return e.Amount.Mul(e.Side.Sign())
}

// Approve grants the given role's sign-off
func (e *CashbookEntry) Approve(role ApprovalRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", fmt.Sprintf("Approval role %q is not valid", role))
	}
	if e.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot approve a cancelled entry")
	}

	switch role {
	case RoleAccountant:
		if e.AccountantApproved {
			return shared.NewDomainError("ALREADY_APPROVED", "Entry already approved by accountant")
		}
		e.AccountantApproved = true
	case RoleManager:
		if e.ManagerApproved {
			return shared.NewDomainError("ALREADY_APPROVED", "Entry already approved by manager")
		}
		e.ManagerApproved = true
	case RoleDirector:
		if e.DirectorApproved {
			return shared.NewDomainError("ALREADY_APPROVED", "Entry already approved by director")
		}
		e.DirectorApproved = true
	}

	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewCashbookEntryApprovedEvent(e, role))
	return nil
}

// Cancel voids the entry. The most recent grant is withdrawn at the same
// time so a cancelled entry can never also carry a full approval chain.
func (e *CashbookEntry) Cancel() error {
	if e.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Entry is already cancelled")
	}

	switch {
	case e.DirectorApproved:
		e.DirectorApproved = false
	case e.ManagerApproved:
		e.ManagerApproved = false
	case e.AccountantApproved:
		e.AccountantApproved = false
	}

	e.Cancelled = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewCashbookEntryCancelledEvent(e))
	return nil
}

// AddNote attaches a free-text note to the entry
func (e *CashbookEntry) AddNote(userID uuid.UUID, text string) (*CashbookNote, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if text == "" {
		return nil, shared.NewDomainError("INVALID_NOTE", "Note text cannot be empty")
	}
	note := CashbookNote{
		BaseEntity: shared.NewBaseEntity(),
		EntryID:    e.ID,
		UserID:     userID,
		Note:       text,
	}
	e.Notes = append(e.Notes, note)
	e.UpdatedAt = time.Now()
	return &e.Notes[len(e.Notes)-1], nil
}

// FullyApproved reports whether all three roles have signed off
func (e *CashbookEntry) FullyApproved() bool {
	return e.AccountantApproved && e.ManagerApproved && e.DirectorApproved
}

// AmountMoney returns the entry amount as Money
func (e *CashbookEntry) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(e.Amount, e.Currency)
	return m
}
