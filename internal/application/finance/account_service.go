package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// AccountService answers balance queries for branch and customer accounts
type AccountService struct {
	accountRepo  finance.AccountRepository
	custAcctRepo finance.CustomerAccountRepository
	ledgerRepo   finance.LedgerRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo finance.AccountRepository,
	custAcctRepo finance.CustomerAccountRepository,
	ledgerRepo finance.LedgerRepository,
) *AccountService {
	return &AccountService{
		accountRepo:  accountRepo,
		custAcctRepo: custAcctRepo,
		ledgerRepo:   ledgerRepo,
	}
}

// BalanceResponse is one account balance line
type BalanceResponse struct {
	AccountID     uuid.UUID             `json:"account_id"`
	Currency      valueobject.Currency  `json:"currency"`
	PaymentMethod finance.PaymentMethod `json:"payment_method,omitempty"`
	Name          string                `json:"name,omitempty"`
	Balance       decimal.Decimal       `json:"balance"`
}

// BranchBalances lists every account balance of a branch
func (s *AccountService) BranchBalances(ctx context.Context, branchID uuid.UUID) ([]BalanceResponse, error) {
	balances, err := s.accountRepo.BalancesForBranch(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	responses := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp := BalanceResponse{
			AccountID: b.AccountID,
			Currency:  b.Currency,
			Balance:   b.Balance,
		}
		if account, err := s.accountRepo.FindByID(ctx, b.AccountID); err == nil && account != nil {
			resp.PaymentMethod = account.PaymentMethod
			resp.Name = account.Name
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// CustomerBalances lists a customer's balances per currency
func (s *AccountService) CustomerBalances(ctx context.Context, customerID uuid.UUID) ([]BalanceResponse, error) {
	acct, err := s.custAcctRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer account: %w", err)
	}
	if acct == nil {
		return []BalanceResponse{}, nil
	}
	balances, err := s.custAcctRepo.Balances(ctx, acct.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer balances: %w", err)
	}
	responses := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, BalanceResponse{
			AccountID: b.CustomerAccountID,
			Currency:  b.Currency,
			Balance:   b.Balance,
		})
	}
	return responses, nil
}

// AccountHistory pages through an account's ledger trail
func (s *AccountService) AccountHistory(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]finance.LedgerTransaction, error) {
	transactions, err := s.ledgerRepo.FindByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}
	return transactions, nil
}
