package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// Customer is a buyer registered at a branch. The finance side keeps its own
// per-customer account; this aggregate only holds identity and contact data.
type Customer struct {
	shared.BranchAggregateRoot
	Name    string `gorm:"type:varchar(120);not null;index"`
	Phone   string `gorm:"type:varchar(20);index"`
	Email   string `gorm:"type:varchar(120)"`
	Address string `gorm:"type:varchar(255)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer registers a customer at a branch
func NewCustomer(branchID uuid.UUID, name, phone, email, address string) (*Customer, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		Name:                name,
		Phone:               strings.TrimSpace(phone),
		Email:               strings.TrimSpace(email),
		Address:             address,
		Active:              true,
	}, nil
}

// UpdateContact changes the customer's contact details
func (c *Customer) UpdateContact(phone, email, address string) {
	c.Phone = strings.TrimSpace(phone)
	c.Email = strings.TrimSpace(email)
	c.Address = address
	c.IncrementVersion()
}

// Deactivate hides the customer from lookups without deleting history
func (c *Customer) Deactivate() {
	c.Active = false
	c.IncrementVersion()
}

// CustomerRepository manages customers
type CustomerRepository interface {
	shared.BranchRepository[Customer]
	FindByPhone(ctx context.Context, branchID uuid.UUID, phone string) (*Customer, error)
	Search(ctx context.Context, branchID uuid.UUID, term string, filter shared.Filter) ([]Customer, error)
}
