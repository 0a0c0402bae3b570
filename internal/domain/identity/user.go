package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the back-office role of a user
type Role string

const (
	RoleCashier    Role = "cashier"
	RoleAccountant Role = "accountant"
	RoleManager    Role = "manager"
	RoleDirector   Role = "director"
	RoleAdmin      Role = "admin"
)

// IsValid checks if the role is recognised
func (r Role) IsValid() bool {
	switch r {
	case RoleCashier, RoleAccountant, RoleManager, RoleDirector, RoleAdmin:
		return true
	}
	return false
}

// CanApproveCashbook reports whether the role may sign off journal entries
func (r Role) CanApproveCashbook() bool {
	switch r {
	case RoleAccountant, RoleManager, RoleDirector, RoleAdmin:
		return true
	}
	return false
}

// User is a back-office operator attached to one branch
type User struct {
	shared.BaseAggregateRoot
	BranchID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Username     string     `gorm:"type:varchar(60);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	FullName     string     `gorm:"type:varchar(120);not null"`
	Role         Role       `gorm:"type:varchar(12);not null"`
	Active       bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a user with a bcrypt password hash
func NewUser(branchID uuid.UUID, username, password, fullName string, role Role) (*User, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role is not recognised")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		Username:          username,
		PasswordHash:      string(hash),
		FullName:          fullName,
		Role:              role,
		Active:            true,
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the stored hash after verifying the old password
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.CheckPassword(oldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if len(newPassword) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.IncrementVersion()
	return nil
}

// RecordLogin stamps the last successful login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// Deactivate locks the user out
func (u *User) Deactivate() {
	u.Active = false
	u.IncrementVersion()
}

// UserRepository manages users
type UserRepository interface {
	shared.Repository[User]
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]User, error)
}
