package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/domain/partner"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	branchRepo[partner.Customer]
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *Database) *GormCustomerRepository {
	return &GormCustomerRepository{branchRepo: newBranchRepo[partner.Customer](db.DB, "name ASC")}
}

// FindByPhone finds a customer by phone within a branch
func (r *GormCustomerRepository) FindByPhone(ctx context.Context, branchID uuid.UUID, phone string) (*partner.Customer, error) {
	if phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}
	var customer partner.Customer
	if err := r.session(ctx).
		Where("branch_id = ? AND phone = ?", branchID, phone).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// Search finds customers by name or phone fragment within a branch
func (r *GormCustomerRepository) Search(ctx context.Context, branchID uuid.UUID, term string, filter shared.Filter) ([]partner.Customer, error) {
	query := r.session(ctx).Model(&partner.Customer{}).
		Where("branch_id = ?", branchID)
	if term != "" {
		pattern := "%" + term + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}
	var customers []partner.Customer
	if err := r.applyFilter(query, filter).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// GormBranchRepository implements company.BranchRepository using GORM
type GormBranchRepository struct {
	repo[company.Branch]
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *Database) *GormBranchRepository {
	return &GormBranchRepository{repo: newRepo[company.Branch](db.DB, "name ASC")}
}

// FindByName finds a branch by its unique name
func (r *GormBranchRepository) FindByName(ctx context.Context, name string) (*company.Branch, error) {
	var branch company.Branch
	if err := r.session(ctx).
		Where("name = ?", name).
		First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// FindActive lists branches that are open for trading
func (r *GormBranchRepository) FindActive(ctx context.Context) ([]company.Branch, error) {
	var branches []company.Branch
	if err := r.session(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	repo[identity.User]
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *Database) *GormUserRepository {
	return &GormUserRepository{repo: newRepo[identity.User](db.DB, "username ASC")}
}

// FindByUsername finds a user by username, case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var user identity.User
	if err := r.session(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByBranch lists the users assigned to a branch
func (r *GormUserRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	query := r.session(ctx).Model(&identity.User{}).
		Where("branch_id = ?", branchID)
	var users []identity.User
	if err := r.applyFilter(query, filter).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
var _ company.BranchRepository = (*GormBranchRepository)(nil)
var _ identity.UserRepository = (*GormUserRepository)(nil)
