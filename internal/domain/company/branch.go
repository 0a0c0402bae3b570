package company

import (
	"context"
	"strings"

	"github.com/techcity/backoffice/internal/domain/shared"
)

// Branch is one trading location. It is the tenancy boundary of the whole
// back office: accounts, stock, customers and journals all hang off it.
type Branch struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Address string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(20)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a trading location
func NewBranch(name, address, phone string) (*Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}
	return &Branch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
		Phone:             phone,
		Active:            true,
	}, nil
}

// Initial returns the first letter of the branch name, used in document
// numbering
func (b *Branch) Initial() string {
	for _, r := range b.Name {
		return string(r)
	}
	return "X"
}

// Deactivate closes the branch to new activity
func (b *Branch) Deactivate() {
	b.Active = false
	b.IncrementVersion()
}

// BranchRepository manages branches
type BranchRepository interface {
	shared.Repository[Branch]
	FindByName(ctx context.Context, name string) (*Branch, error)
	FindActive(ctx context.Context) ([]Branch, error)
}
