package company

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// BranchService manages trading locations
type BranchService struct {
	branchRepo company.BranchRepository
	logger     *zap.Logger
}

// NewBranchService creates a new BranchService
func NewBranchService(branchRepo company.BranchRepository, logger *zap.Logger) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
		logger:     logger,
	}
}

// CreateBranch opens a new trading location
func (s *BranchService) CreateBranch(ctx context.Context, name, address, phone string) (*company.Branch, error) {
	existing, err := s.branchRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check branch name: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A branch with this name already exists")
	}

	branch, err := company.NewBranch(name, address, phone)
	if err != nil {
		return nil, err
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}

	s.logger.Info("branch created", zap.String("branch_id", branch.ID.String()), zap.String("name", branch.Name))
	return branch, nil
}

// GetBranch loads a branch
func (s *BranchService) GetBranch(ctx context.Context, branchID uuid.UUID) (*company.Branch, error) {
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	if branch == nil {
		return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
	}
	return branch, nil
}

// ListBranches returns all active branches
func (s *BranchService) ListBranches(ctx context.Context) ([]company.Branch, error) {
	branches, err := s.branchRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

// DeactivateBranch closes a branch to new activity
func (s *BranchService) DeactivateBranch(ctx context.Context, branchID uuid.UUID) error {
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return fmt.Errorf("failed to get branch: %w", err)
	}
	if branch == nil {
		return shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
	}
	branch.Deactivate()
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return fmt.Errorf("failed to save branch: %w", err)
	}
	return nil
}
