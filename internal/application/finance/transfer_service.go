package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// TransferService moves cash between branches and out of branches. Sending
// requires funds in the source account; the destination account is only
// credited when the receiving branch confirms.
type TransferService struct {
	transferRepo   finance.TransferRepository
	withdrawalRepo finance.WithdrawalRepository
	accountRepo    finance.AccountRepository
	cashbookRepo   finance.CashbookRepository
	ledgerRepo     finance.LedgerRepository
	branchRepo     company.BranchRepository
	txManager      shared.TxManager
	eventBus       shared.EventPublisher
	logger         *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	transferRepo finance.TransferRepository,
	withdrawalRepo finance.WithdrawalRepository,
	accountRepo finance.AccountRepository,
	cashbookRepo finance.CashbookRepository,
	ledgerRepo finance.LedgerRepository,
	branchRepo company.BranchRepository,
	txManager shared.TxManager,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		transferRepo:   transferRepo,
		withdrawalRepo: withdrawalRepo,
		accountRepo:    accountRepo,
		cashbookRepo:   cashbookRepo,
		ledgerRepo:     ledgerRepo,
		branchRepo:     branchRepo,
		txManager:      txManager,
		eventBus:       eventBus,
		logger:         logger,
	}
}

// SendTransferRequest sends cash to another branch
type SendTransferRequest struct {
	FromBranchID  uuid.UUID             `json:"-"`
	ToBranchID    uuid.UUID             `json:"to_branch_id" binding:"required"`
	Amount        decimal.Decimal       `json:"amount" binding:"required"`
	Currency      valueobject.Currency  `json:"currency" binding:"required"`
	PaymentMethod finance.PaymentMethod `json:"payment_method" binding:"required"`
	Description   string                `json:"description"`
	UserID        *uuid.UUID            `json:"-"`
}

// WithdrawRequest takes cash out of a branch account
type WithdrawRequest struct {
	BranchID      uuid.UUID             `json:"-"`
	Amount        decimal.Decimal       `json:"amount" binding:"required"`
	Currency      valueobject.Currency  `json:"currency" binding:"required"`
	PaymentMethod finance.PaymentMethod `json:"payment_method" binding:"required"`
	Reason        string                `json:"reason" binding:"required"`
	UserID        *uuid.UUID            `json:"-"`
}

// TransferResponse is the API shape of a cash transfer
type TransferResponse struct {
	ID            uuid.UUID              `json:"id"`
	FromBranchID  uuid.UUID              `json:"from_branch_id"`
	ToBranchID    uuid.UUID              `json:"to_branch_id"`
	Amount        decimal.Decimal        `json:"amount"`
	Currency      valueobject.Currency   `json:"currency"`
	PaymentMethod finance.PaymentMethod  `json:"payment_method"`
	Status        finance.TransferStatus `json:"status"`
	SentAt        time.Time              `json:"sent_at"`
	ReceivedAt    *time.Time             `json:"received_at,omitempty"`
}

func toTransferResponse(t *finance.CashTransfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		FromBranchID:  t.BranchID,
		ToBranchID:    t.ToBranchID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		SentAt:        t.SentAt,
		ReceivedAt:    t.ReceivedAt,
	}
}

// SendTransfer debits the source branch account and leaves the transfer
// pending until the destination confirms. Sending more than the source
// account holds is rejected.
func (s *TransferService) SendTransfer(ctx context.Context, req SendTransferRequest) (*TransferResponse, error) {
	toBranch, err := s.branchRepo.FindByID(ctx, req.ToBranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get destination branch: %w", err)
	}
	if toBranch == nil || !toBranch.Active {
		return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Destination branch not found")
	}
	fromBranch, err := s.branchRepo.FindByID(ctx, req.FromBranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get source branch: %w", err)
	}
	if fromBranch == nil {
		return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Source branch not found")
	}

	amount, err := valueobject.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	var transfer *finance.CashTransfer
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		transfer, err = finance.NewCashTransfer(req.FromBranchID, req.ToBranchID, amount, req.PaymentMethod, req.Description)
		if err != nil {
			return err
		}
		if req.UserID != nil {
			transfer.SetCreatedBy(*req.UserID)
		}

		account, err := s.accountRepo.GetOrCreate(ctx, transfer.SourceAccountKey(), fromBranch.Name)
		if err != nil {
			return fmt.Errorf("failed to get source account: %w", err)
		}
		balance, err := s.accountRepo.BalanceForUpdate(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("failed to get source balance: %w", err)
		}
		if !balance.HasFunds(amount) {
			return shared.ErrInsufficientFunds
		}
		if err := balance.Debit(amount); err != nil {
			return err
		}
		if err := s.accountRepo.SaveBalance(ctx, balance); err != nil {
			return fmt.Errorf("failed to save source balance: %w", err)
		}

		if err := s.journal(ctx, req.FromBranchID, account.ID, finance.EntryCredit, amount, finance.EntrySourceTransfer, transfer.ID,
			fmt.Sprintf("Transfer to %s", toBranch.Name)); err != nil {
			return err
		}
		return s.transferRepo.Save(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, transfer.GetDomainEvents())
	transfer.ClearDomainEvents()
	s.logger.Info("transfer sent",
		zap.String("from", req.FromBranchID.String()),
		zap.String("to", req.ToBranchID.String()),
		zap.String("amount", amount.String()),
	)
	return toTransferResponse(transfer), nil
}

// ReceiveTransfer confirms arrival and credits the destination account
func (s *TransferService) ReceiveTransfer(ctx context.Context, toBranchID, transferID, userID uuid.UUID) (*TransferResponse, error) {
	var transfer *finance.CashTransfer
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.transferRepo.FindByID(ctx, transferID)
		if err != nil {
			return fmt.Errorf("failed to get transfer: %w", err)
		}
		if transfer == nil || transfer.ToBranchID != toBranchID {
			return shared.NewDomainError("TRANSFER_NOT_FOUND", "Transfer not found")
		}

		toBranch, err := s.branchRepo.FindByID(ctx, toBranchID)
		if err != nil {
			return fmt.Errorf("failed to get branch: %w", err)
		}

		if err := transfer.MarkReceived(userID); err != nil {
			return err
		}

		amount := transfer.AmountMoney()
		account, err := s.accountRepo.GetOrCreate(ctx, transfer.DestinationAccountKey(), toBranch.Name)
		if err != nil {
			return fmt.Errorf("failed to get destination account: %w", err)
		}
		balance, err := s.accountRepo.BalanceForUpdate(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("failed to get destination balance: %w", err)
		}
		if err := balance.Credit(amount); err != nil {
			return err
		}
		if err := s.accountRepo.SaveBalance(ctx, balance); err != nil {
			return fmt.Errorf("failed to save destination balance: %w", err)
		}

		if err := s.journal(ctx, toBranchID, account.ID, finance.EntryDebit, amount, finance.EntrySourceTransfer, transfer.ID,
			"Transfer received"); err != nil {
			return err
		}
		return s.transferRepo.Save(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, transfer.GetDomainEvents())
	transfer.ClearDomainEvents()
	return toTransferResponse(transfer), nil
}

// Withdraw takes cash out of a branch account for an external purpose
func (s *TransferService) Withdraw(ctx context.Context, req WithdrawRequest) (*finance.CashWithdrawal, error) {
	branch, err := s.branchRepo.FindByID(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	if branch == nil {
		return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
	}

	amount, err := valueobject.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	var withdrawal *finance.CashWithdrawal
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		withdrawal, err = finance.NewCashWithdrawal(req.BranchID, amount, req.PaymentMethod, req.Reason)
		if err != nil {
			return err
		}
		if req.UserID != nil {
			withdrawal.SetCreatedBy(*req.UserID)
		}

		account, err := s.accountRepo.GetOrCreate(ctx, withdrawal.AccountKey(), branch.Name)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		balance, err := s.accountRepo.BalanceForUpdate(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		if !balance.HasFunds(amount) {
			return shared.ErrInsufficientFunds
		}
		if err := balance.Debit(amount); err != nil {
			return err
		}
		if err := s.accountRepo.SaveBalance(ctx, balance); err != nil {
			return fmt.Errorf("failed to save balance: %w", err)
		}

		if err := s.journal(ctx, req.BranchID, account.ID, finance.EntryCredit, amount, finance.EntrySourceWithdrawal, withdrawal.ID, req.Reason); err != nil {
			return err
		}
		return s.withdrawalRepo.Save(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash withdrawn",
		zap.String("branch_id", req.BranchID.String()),
		zap.String("amount", amount.String()),
	)
	return withdrawal, nil
}

// ListIncoming lists pending transfers addressed to a branch
func (s *TransferService) ListIncoming(ctx context.Context, toBranchID uuid.UUID, filter shared.Filter) ([]TransferResponse, error) {
	transfers, err := s.transferRepo.FindIncoming(ctx, toBranchID, finance.TransferPending, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming transfers: %w", err)
	}
	responses := make([]TransferResponse, 0, len(transfers))
	for i := range transfers {
		responses = append(responses, *toTransferResponse(&transfers[i]))
	}
	return responses, nil
}

// journal writes the ledger and cashbook lines for one account movement
func (s *TransferService) journal(
	ctx context.Context,
	branchID, accountID uuid.UUID,
	side finance.EntrySide,
	amount valueobject.Money,
	sourceType finance.EntrySourceType,
	sourceID uuid.UUID,
	narration string,
) error {
	ledgerTx, err := finance.NewLedgerTransaction(branchID, accountID, side, amount, sourceType, &sourceID, narration)
	if err != nil {
		return err
	}
	if err := s.ledgerRepo.Append(ctx, ledgerTx); err != nil {
		return fmt.Errorf("failed to append ledger transaction: %w", err)
	}
	entry, err := finance.NewCashbookEntry(branchID, narration, side, amount, sourceType, &sourceID)
	if err != nil {
		return err
	}
	if err := s.cashbookRepo.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save cashbook entry: %w", err)
	}
	return nil
}

func (s *TransferService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish transfer events", zap.Error(err))
	}
}
