package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/partner"
	"github.com/techcity/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService manages the per-branch customer register
type CustomerService struct {
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// RegisterCustomer adds a customer to a branch. Phone numbers are unique
// within a branch when given.
func (s *CustomerService) RegisterCustomer(ctx context.Context, branchID uuid.UUID, name, phone, email, address string) (*partner.Customer, error) {
	if phone != "" {
		existing, err := s.customerRepo.FindByPhone(ctx, branchID, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		}
		if existing != nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A customer with this phone number already exists")
		}
	}

	customer, err := partner.NewCustomer(branchID, name, phone, email, address)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("branch_id", branchID.String()),
	)
	return customer, nil
}

// UpdateContact changes a customer's contact details
func (s *CustomerService) UpdateContact(ctx context.Context, branchID, customerID uuid.UUID, phone, email, address string) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByIDForBranch(ctx, customerID, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}
	customer.UpdateContact(phone, email, address)
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	return customer, nil
}

// GetCustomer loads a branch customer
func (s *CustomerService) GetCustomer(ctx context.Context, branchID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByIDForBranch(ctx, customerID, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}
	return customer, nil
}

// ListCustomers searches a branch's customers by name or phone; an empty
// term pages through everyone
func (s *CustomerService) ListCustomers(ctx context.Context, branchID uuid.UUID, term string, filter shared.Filter) ([]partner.Customer, error) {
	customers, err := s.customerRepo.Search(ctx, branchID, term, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
