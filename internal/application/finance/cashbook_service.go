package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CashbookService manages the branch journal: manual entries, the three-role
// approval chain, cancellation and notes. Entries belonging to money
// movements are written by the services that move the money; this service
// only ever touches the journal itself.
type CashbookService struct {
	cashbookRepo finance.CashbookRepository
	userRepo     identity.UserRepository
	txManager    shared.TxManager
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewCashbookService creates a new CashbookService
func NewCashbookService(
	cashbookRepo finance.CashbookRepository,
	userRepo identity.UserRepository,
	txManager shared.TxManager,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *CashbookService {
	return &CashbookService{
		cashbookRepo: cashbookRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// RecordEntryRequest writes a manual journal entry
type RecordEntryRequest struct {
	BranchID    uuid.UUID            `json:"-"`
	Description string               `json:"description" binding:"required"`
	Side        finance.EntrySide    `json:"side" binding:"required"`
	Amount      decimal.Decimal      `json:"amount" binding:"required"`
	Currency    valueobject.Currency `json:"currency" binding:"required"`
	UserID      *uuid.UUID           `json:"-"`
}

// EntryNoteResponse is one note on a journal entry
type EntryNoteResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Note   string    `json:"note"`
}

// EntryResponse is the API shape of a journal entry
type EntryResponse struct {
	ID                 uuid.UUID               `json:"id"`
	BranchID           uuid.UUID               `json:"branch_id"`
	IssueDate          time.Time               `json:"issue_date"`
	Description        string                  `json:"description"`
	Side               finance.EntrySide       `json:"side"`
	Amount             decimal.Decimal         `json:"amount"`
	Currency           valueobject.Currency    `json:"currency"`
	SourceType         finance.EntrySourceType `json:"source_type"`
	AccountantApproved bool                    `json:"accountant_approved"`
	ManagerApproved    bool                    `json:"manager_approved"`
	DirectorApproved   bool                    `json:"director_approved"`
	Cancelled          bool                    `json:"cancelled"`
	Notes              []EntryNoteResponse     `json:"notes,omitempty"`
}

func toEntryResponse(e *finance.CashbookEntry) *EntryResponse {
	notes := make([]EntryNoteResponse, 0, len(e.Notes))
	for _, n := range e.Notes {
		notes = append(notes, EntryNoteResponse{ID: n.ID, UserID: n.UserID, Note: n.Note})
	}
	return &EntryResponse{
		ID:                 e.ID,
		BranchID:           e.BranchID,
		IssueDate:          e.IssueDate,
		Description:        e.Description,
		Side:               e.Side,
		Amount:             e.Amount,
		Currency:           e.Currency,
		SourceType:         e.SourceType,
		AccountantApproved: e.AccountantApproved,
		ManagerApproved:    e.ManagerApproved,
		DirectorApproved:   e.DirectorApproved,
		Cancelled:          e.Cancelled,
		Notes:              notes,
	}
}

// RecordEntry writes a manual journal entry
func (s *CashbookService) RecordEntry(ctx context.Context, req RecordEntryRequest) (*EntryResponse, error) {
	amount, err := valueobject.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	entry, err := finance.NewCashbookEntry(req.BranchID, req.Description, req.Side, amount, finance.EntrySourceManual, nil)
	if err != nil {
		return nil, err
	}
	if req.UserID != nil {
		entry.SetCreatedBy(*req.UserID)
	}

	if err := s.cashbookRepo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save cashbook entry: %w", err)
	}

	s.publish(ctx, entry)
	return toEntryResponse(entry), nil
}

// ApproveEntry grants the acting user's role sign-off on an entry. Only
// accountant, manager and director roles may approve.
func (s *CashbookService) ApproveEntry(ctx context.Context, branchID, entryID, userID uuid.UUID) (*EntryResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Role.CanApproveCashbook() {
		return nil, shared.ErrForbidden
	}

	role, err := approvalRoleFor(user.Role)
	if err != nil {
		return nil, err
	}

	var entry *finance.CashbookEntry
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		entry, err = s.cashbookRepo.FindByIDForBranch(ctx, branchID, entryID)
		if err != nil {
			return fmt.Errorf("failed to get cashbook entry: %w", err)
		}
		if entry == nil {
			return shared.NewDomainError("ENTRY_NOT_FOUND", "Cashbook entry not found")
		}
		if err := entry.Approve(role); err != nil {
			return err
		}
		return s.cashbookRepo.Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entry)
	s.logger.Info("cashbook entry approved",
		zap.String("entry_id", entryID.String()),
		zap.String("role", string(role)),
	)
	return toEntryResponse(entry), nil
}

// CancelEntry voids a journal entry and withdraws its most recent approval
func (s *CashbookService) CancelEntry(ctx context.Context, branchID, entryID uuid.UUID) (*EntryResponse, error) {
	var entry *finance.CashbookEntry
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.cashbookRepo.FindByIDForBranch(ctx, branchID, entryID)
		if err != nil {
			return fmt.Errorf("failed to get cashbook entry: %w", err)
		}
		if entry == nil {
			return shared.NewDomainError("ENTRY_NOT_FOUND", "Cashbook entry not found")
		}
		if err := entry.Cancel(); err != nil {
			return err
		}
		return s.cashbookRepo.Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entry)
	return toEntryResponse(entry), nil
}

// AddNote attaches a free-text note to an entry
func (s *CashbookService) AddNote(ctx context.Context, branchID, entryID, userID uuid.UUID, text string) (*EntryResponse, error) {
	var entry *finance.CashbookEntry
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.cashbookRepo.FindByIDForBranch(ctx, branchID, entryID)
		if err != nil {
			return fmt.Errorf("failed to get cashbook entry: %w", err)
		}
		if entry == nil {
			return shared.NewDomainError("ENTRY_NOT_FOUND", "Cashbook entry not found")
		}
		note, err := entry.AddNote(userID, text)
		if err != nil {
			return err
		}
		return s.cashbookRepo.AddNote(ctx, note)
	})
	if err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// ListEntries pages through a branch's journal
func (s *CashbookService) ListEntries(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (*shared.Paginated[EntryResponse], error) {
	entries, err := s.cashbookRepo.FindAllForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cashbook entries: %w", err)
	}
	total, err := s.cashbookRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count cashbook entries: %w", err)
	}

	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, *toEntryResponse(&entries[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func approvalRoleFor(role identity.Role) (finance.ApprovalRole, error) {
	switch role {
	case identity.RoleAccountant:
		return finance.RoleAccountant, nil
	case identity.RoleManager:
		return finance.RoleManager, nil
	case identity.RoleDirector, identity.RoleAdmin:
		return finance.RoleDirector, nil
	}
	return "", shared.ErrForbidden
}

func (s *CashbookService) publish(ctx context.Context, entry *finance.CashbookEntry) {
	events := entry.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish cashbook events", zap.Error(err))
	}
	entry.ClearDomainEvents()
}
