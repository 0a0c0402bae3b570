package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the base interface for all repositories
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter Filter) (int64, error)
}

// BranchRepository is a repository scoped to a branch
type BranchRepository[T any] interface {
	Repository[T]
	FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*T, error)
	FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter Filter) ([]T, error)
}

// TxManager runs a function inside a single database transaction. Every
// repository call made with the context passed to fn joins that transaction;
// returning an error rolls the whole unit of work back.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result. A non-positive page size
// means the query was unpaginated and everything fits on one page.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := 1
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
