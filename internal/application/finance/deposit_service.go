package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/partner"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// DepositService manages customer deposits. A deposit credits the branch
// account and the customer balance together; edits move both by exactly the
// difference, and refunds reverse the full amount and remove the row.
type DepositService struct {
	depositRepo  finance.DepositRepository
	accountRepo  finance.AccountRepository
	custAcctRepo finance.CustomerAccountRepository
	cashbookRepo finance.CashbookRepository
	ledgerRepo   finance.LedgerRepository
	customerRepo partner.CustomerRepository
	branchRepo   company.BranchRepository
	txManager    shared.TxManager
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewDepositService creates a new DepositService
func NewDepositService(
	depositRepo finance.DepositRepository,
	accountRepo finance.AccountRepository,
	custAcctRepo finance.CustomerAccountRepository,
	cashbookRepo finance.CashbookRepository,
	ledgerRepo finance.LedgerRepository,
	customerRepo partner.CustomerRepository,
	branchRepo company.BranchRepository,
	txManager shared.TxManager,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *DepositService {
	return &DepositService{
		depositRepo:  depositRepo,
		accountRepo:  accountRepo,
		custAcctRepo: custAcctRepo,
		cashbookRepo: cashbookRepo,
		ledgerRepo:   ledgerRepo,
		customerRepo: customerRepo,
		branchRepo:   branchRepo,
		txManager:    txManager,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// CreateDepositRequest lodges a deposit for a customer
type CreateDepositRequest struct {
	BranchID         uuid.UUID             `json:"-"`
	CustomerID       uuid.UUID             `json:"customer_id" binding:"required"`
	PaymentReference string                `json:"payment_reference" binding:"required"`
	Amount           decimal.Decimal       `json:"amount" binding:"required"`
	Currency         valueobject.Currency  `json:"currency" binding:"required"`
	PaymentMethod    finance.PaymentMethod `json:"payment_method" binding:"required"`
	Description      string                `json:"description"`
	UserID           *uuid.UUID            `json:"-"`
}

// DepositResponse is the API shape of a deposit
type DepositResponse struct {
	ID               uuid.UUID             `json:"id"`
	BranchID         uuid.UUID             `json:"branch_id"`
	CustomerID       uuid.UUID             `json:"customer_id"`
	PaymentReference string                `json:"payment_reference"`
	Amount           decimal.Decimal       `json:"amount"`
	Currency         valueobject.Currency  `json:"currency"`
	PaymentMethod    finance.PaymentMethod `json:"payment_method"`
	Description      string                `json:"description"`
	Refunded         bool                  `json:"refunded"`
	CreatedBy        *uuid.UUID            `json:"created_by,omitempty"`
}

func toDepositResponse(d *finance.CustomerDeposit) *DepositResponse {
	return &DepositResponse{
		ID:               d.ID,
		BranchID:         d.BranchID,
		CustomerID:       d.CustomerID,
		PaymentReference: d.PaymentReference,
		Amount:           d.Amount,
		Currency:         d.Currency,
		PaymentMethod:    d.PaymentMethod,
		Description:      d.Description,
		Refunded:         d.Refunded,
		CreatedBy:        d.CreatedBy,
	}
}

// CreateDeposit lodges the deposit and credits both balances
func (s *DepositService) CreateDeposit(ctx context.Context, req CreateDepositRequest) (*DepositResponse, error) {
	branch, err := s.branchRepo.FindByID(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	if branch == nil {
		return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
	}
	customer, err := s.customerRepo.FindByIDForBranch(ctx, req.BranchID, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}

	amount, err := valueobject.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	var deposit *finance.CustomerDeposit
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		deposit, err = finance.NewCustomerDeposit(req.BranchID, req.CustomerID, req.PaymentReference, amount, req.PaymentMethod, req.Description)
		if err != nil {
			return err
		}
		existing, err := s.depositRepo.FindByPaymentReference(ctx, deposit.PaymentReference)
		if err != nil {
			return fmt.Errorf("failed to check payment reference: %w", err)
		}
		if existing != nil {
			return shared.ErrDuplicateReference
		}
		if req.UserID != nil {
			deposit.SetCreatedBy(*req.UserID)
		}

		if err := s.postToBranchAccount(ctx, deposit.AccountKey(), branch.Name, finance.EntryDebit, amount, deposit.ID,
			fmt.Sprintf("Deposit from %s", customer.Name)); err != nil {
			return err
		}
		if err := s.postToCustomerBalance(ctx, req.CustomerID, amount, finance.EntryDebit); err != nil {
			return err
		}
		return s.depositRepo.Save(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, deposit.GetDomainEvents())
	deposit.ClearDomainEvents()
	s.logger.Info("deposit created",
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("amount", amount.String()),
	)
	return toDepositResponse(deposit), nil
}

// EditDeposit corrects a deposit amount. Both the branch account and the
// customer balance move by the difference only, so editing 100 to 150 adds
// 50, not 150.
func (s *DepositService) EditDeposit(ctx context.Context, branchID, depositID uuid.UUID, newAmount decimal.Decimal) (*DepositResponse, error) {
	var deposit *finance.CustomerDeposit
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		deposit, err = s.depositRepo.FindByIDForBranch(ctx, branchID, depositID)
		if err != nil {
			return fmt.Errorf("failed to get deposit: %w", err)
		}
		if deposit == nil {
			return shared.NewDomainError("DEPOSIT_NOT_FOUND", "Deposit not found")
		}

		branch, err := s.branchRepo.FindByID(ctx, branchID)
		if err != nil {
			return fmt.Errorf("failed to get branch: %w", err)
		}

		amount, err := valueobject.NewMoney(newAmount, deposit.Currency)
		if err != nil {
			return err
		}
		delta, err := deposit.Edit(amount)
		if err != nil {
			return err
		}

		if !delta.IsZero() {
			side := finance.EntryDebit
			if delta.IsNegative() {
				side = finance.EntryCredit
			}
			abs := delta.Abs()
			if err := s.postToBranchAccount(ctx, deposit.AccountKey(), branch.Name, side, abs, deposit.ID, "Deposit amount corrected"); err != nil {
				return err
			}
			if err := s.postToCustomerBalance(ctx, deposit.CustomerID, abs, side); err != nil {
				return err
			}
		}
		return s.depositRepo.Save(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, deposit.GetDomainEvents())
	deposit.ClearDomainEvents()
	return toDepositResponse(deposit), nil
}

// RefundDeposit pays the given amount back out of both balances. A full
// refund removes the deposit row; a partial one reduces its amount.
func (s *DepositService) RefundDeposit(ctx context.Context, branchID, depositID uuid.UUID, refundAmount decimal.Decimal) error {
	var events []shared.DomainEvent
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		deposit, err := s.depositRepo.FindByIDForBranch(ctx, branchID, depositID)
		if err != nil {
			return fmt.Errorf("failed to get deposit: %w", err)
		}
		if deposit == nil {
			return shared.NewDomainError("DEPOSIT_NOT_FOUND", "Deposit not found")
		}

		branch, err := s.branchRepo.FindByID(ctx, branchID)
		if err != nil {
			return fmt.Errorf("failed to get branch: %w", err)
		}

		amount, err := valueobject.NewMoney(refundAmount, deposit.Currency)
		if err != nil {
			return err
		}
		full, err := deposit.Refund(amount)
		if err != nil {
			return err
		}

		if err := s.postToBranchAccount(ctx, deposit.AccountKey(), branch.Name, finance.EntryCredit, amount, deposit.ID, "Deposit refunded"); err != nil {
			return err
		}
		if err := s.postToCustomerBalance(ctx, deposit.CustomerID, amount, finance.EntryCredit); err != nil {
			return err
		}

		events = deposit.GetDomainEvents()
		if full {
			return s.depositRepo.Delete(ctx, deposit.ID)
		}
		return s.depositRepo.Save(ctx, deposit)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	s.logger.Info("deposit refunded", zap.String("deposit_id", depositID.String()))
	return nil
}

// ListDeposits pages through a customer's deposits
func (s *DepositService) ListDeposits(ctx context.Context, branchID, customerID uuid.UUID, filter shared.Filter) ([]DepositResponse, error) {
	deposits, err := s.depositRepo.FindByCustomer(ctx, branchID, customerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	responses := make([]DepositResponse, 0, len(deposits))
	for i := range deposits {
		responses = append(responses, *toDepositResponse(&deposits[i]))
	}
	return responses, nil
}

// postToBranchAccount applies a signed movement to the branch account with a
// matching ledger and journal line
func (s *DepositService) postToBranchAccount(
	ctx context.Context,
	key finance.AccountKey,
	branchName string,
	side finance.EntrySide,
	amount valueobject.Money,
	sourceID uuid.UUID,
	narration string,
) error {
	account, err := s.accountRepo.GetOrCreate(ctx, key, branchName)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	balance, err := s.accountRepo.BalanceForUpdate(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("failed to get account balance: %w", err)
	}
	if side == finance.EntryDebit {
		err = balance.Credit(amount)
	} else {
		err = balance.Debit(amount)
	}
	if err != nil {
		return err
	}
	if err := s.accountRepo.SaveBalance(ctx, balance); err != nil {
		return fmt.Errorf("failed to save account balance: %w", err)
	}

	ledgerTx, err := finance.NewLedgerTransaction(key.BranchID, account.ID, side, amount, finance.EntrySourceDeposit, &sourceID, narration)
	if err != nil {
		return err
	}
	if err := s.ledgerRepo.Append(ctx, ledgerTx); err != nil {
		return fmt.Errorf("failed to append ledger transaction: %w", err)
	}

	entry, err := finance.NewCashbookEntry(key.BranchID, narration, side, amount, finance.EntrySourceDeposit, &sourceID)
	if err != nil {
		return err
	}
	if err := s.cashbookRepo.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save cashbook entry: %w", err)
	}
	return nil
}

// postToCustomerBalance moves the customer's balance in the deposit currency
func (s *DepositService) postToCustomerBalance(ctx context.Context, customerID uuid.UUID, amount valueobject.Money, side finance.EntrySide) error {
	acct, err := s.custAcctRepo.GetOrCreate(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to get customer account: %w", err)
	}
	balance, err := s.custAcctRepo.BalanceForUpdate(ctx, acct.ID, amount.Currency())
	if err != nil {
		return fmt.Errorf("failed to get customer balance: %w", err)
	}
	if side == finance.EntryDebit {
		err = balance.Credit(amount)
	} else {
		err = balance.Debit(amount)
	}
	if err != nil {
		return err
	}
	if err := s.custAcctRepo.SaveBalance(ctx, balance); err != nil {
		return fmt.Errorf("failed to save customer balance: %w", err)
	}
	return nil
}

func (s *DepositService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish deposit events", zap.Error(err))
	}
}
