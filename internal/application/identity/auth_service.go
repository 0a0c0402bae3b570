package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Issue(user *identity.User) (token string, expiresAt time.Time, err error)
}

// AuthService handles login, registration and password changes
type AuthService struct {
	userRepo identity.UserRepository
	issuer   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.UserRepository, issuer TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// LoginRequest authenticates a user
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed token and user identity
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	UserID    uuid.UUID     `json:"user_id"`
	BranchID  uuid.UUID     `json:"branch_id"`
	Username  string        `json:"username"`
	FullName  string        `json:"full_name"`
	Role      identity.Role `json:"role"`
}

// RegisterRequest creates a user on a branch
type RegisterRequest struct {
	BranchID uuid.UUID     `json:"branch_id" binding:"required"`
	Username string        `json:"username" binding:"required"`
	Password string        `json:"password" binding:"required,min=8"`
	FullName string        `json:"full_name" binding:"required"`
	Role     identity.Role `json:"role" binding:"required"`
}

// Login verifies credentials and issues a token. Failures never say whether
// the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Active || !user.CheckPassword(req.Password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Warn("failed to record login time", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))
	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		BranchID:  user.BranchID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
	}, nil
}

// Register creates a new user
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*identity.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}

	user, err := identity.NewUser(req.BranchID, req.Username, req.Password, req.FullName, req.Role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces a user's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return shared.ErrNotFound
	}
	if err := user.ChangePassword(oldPassword, newPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
