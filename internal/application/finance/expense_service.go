package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ExpenseService records operating costs. Creating an expense is free of
// side effects; confirming it debits the branch account and writes the
// journal lines in one transaction.
type ExpenseService struct {
	expenseRepo  finance.ExpenseRepository
	accountRepo  finance.AccountRepository
	cashbookRepo finance.CashbookRepository
	ledgerRepo   finance.LedgerRepository
	branchRepo   company.BranchRepository
	txManager    shared.TxManager
	logger       *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo finance.ExpenseRepository,
	accountRepo finance.AccountRepository,
	cashbookRepo finance.CashbookRepository,
	ledgerRepo finance.LedgerRepository,
	branchRepo company.BranchRepository,
	txManager shared.TxManager,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		accountRepo:  accountRepo,
		cashbookRepo: cashbookRepo,
		ledgerRepo:   ledgerRepo,
		branchRepo:   branchRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateExpenseRequest records a pending expense
type CreateExpenseRequest struct {
	BranchID      uuid.UUID             `json:"-"`
	CategoryID    *uuid.UUID            `json:"category_id,omitempty"`
	Description   string                `json:"description" binding:"required"`
	Amount        decimal.Decimal       `json:"amount" binding:"required"`
	Currency      valueobject.Currency  `json:"currency" binding:"required"`
	PaymentMethod finance.PaymentMethod `json:"payment_method" binding:"required"`
	UserID        *uuid.UUID            `json:"-"`
}

// CreateExpense records a pending expense without moving money
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*finance.Expense, error) {
	amount, err := valueobject.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		category, err := s.expenseRepo.FindCategoryByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		if category == nil || category.BranchID != req.BranchID {
			return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Expense category not found")
		}
	}

	expense, err := finance.NewExpense(req.BranchID, req.CategoryID, req.Description, amount, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if req.UserID != nil {
		expense.SetCreatedBy(*req.UserID)
	}

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}
	return expense, nil
}

// ConfirmExpense pays the expense out of the branch account. Confirmation
// fails when the account cannot cover it.
func (s *ExpenseService) ConfirmExpense(ctx context.Context, branchID, expenseID, userID uuid.UUID) (*finance.Expense, error) {
	var expense *finance.Expense
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		expense, err = s.expenseRepo.FindByIDForBranch(ctx, branchID, expenseID)
		if err != nil {
			return fmt.Errorf("failed to get expense: %w", err)
		}
		if expense == nil {
			return shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense not found")
		}

		branch, err := s.branchRepo.FindByID(ctx, branchID)
		if err != nil {
			return fmt.Errorf("failed to get branch: %w", err)
		}

		if err := expense.Confirm(userID); err != nil {
			return err
		}

		amount := expense.AmountMoney()
		account, err := s.accountRepo.GetOrCreate(ctx, expense.AccountKey(), branch.Name)
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

		ledgerTx, err := finance.NewLedgerTransaction(
			branchID, account.ID, finance.EntryCredit, amount,
			finance.EntrySourceExpense, &expense.ID, expense.Description,
		)
		if err != nil {
			return err
		}
		if err := s.ledgerRepo.Append(ctx, ledgerTx); err != nil {
			return fmt.Errorf("failed to append ledger transaction: %w", err)
		}

		entry, err := finance.NewCashbookEntry(
			branchID, expense.Description, finance.EntryCredit, amount,
			finance.EntrySourceExpense, &expense.ID,
		)
		if err != nil {
			return err
		}
		if err := s.cashbookRepo.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save cashbook entry: %w", err)
		}

		return s.expenseRepo.Save(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("expense confirmed",
		zap.String("expense_id", expenseID.String()),
		zap.String("amount", expense.Amount.String()),
	)
	return expense, nil
}

// CancelExpense voids a pending expense
func (s *ExpenseService) CancelExpense(ctx context.Context, branchID, expenseID uuid.UUID) (*finance.Expense, error) {
	expense, err := s.expenseRepo.FindByIDForBranch(ctx, branchID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return nil, shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense not found")
	}
	if err := expense.Cancel(); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}
	return expense, nil
}

// CreateCategory adds an expense category for a branch
func (s *ExpenseService) CreateCategory(ctx context.Context, branchID uuid.UUID, name, description string) (*finance.ExpenseCategory, error) {
	category, err := finance.NewExpenseCategory(branchID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return category, nil
}

// ListExpenses pages through a branch's expenses
func (s *ExpenseService) ListExpenses(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	expenses, err := s.expenseRepo.FindAllForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// ListCategories lists a branch's expense categories
func (s *ExpenseService) ListCategories(ctx context.Context, branchID uuid.UUID) ([]finance.ExpenseCategory, error) {
	categories, err := s.expenseRepo.FindCategories(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
