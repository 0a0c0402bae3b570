package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techcity/backoffice/internal/domain/shared"
)

// repo provides the common CRUD surface shared by every GORM repository.
// Concrete repositories embed it and add their domain-specific queries.
type repo[T any] struct {
	db           *gorm.DB
	defaultOrder string
}

func newRepo[T any](db *gorm.DB, defaultOrder string) repo[T] {
	if defaultOrder == "" {
		defaultOrder = "created_at DESC"
	}
	return repo[T]{db: db, defaultOrder: defaultOrder}
}

// session returns the DB handle for the current context, joining the ambient
// transaction when one is active.
func (r *repo[T]) session(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// FindByID finds an entity by its ID. A missing row is (nil, nil); callers
// decide which typed error a missing row means.
func (r *repo[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.session(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// FindAll finds all entities matching the filter
func (r *repo[T]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	var entities []T
	var model T
	query := r.applyFilter(r.session(ctx).Model(&model), filter)
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// Save creates or updates an entity
func (r *repo[T]) Save(ctx context.Context, entity *T) error {
	return r.session(ctx).Save(entity).Error
}

// Delete deletes an entity by its ID
func (r *repo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var model T
	result := r.session(ctx).Delete(&model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts entities matching the filter
func (r *repo[T]) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	var model T
	query := r.applyConditions(r.session(ctx).Model(&model), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies conditions, ordering and pagination to the query
func (r *repo[T]) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.EqualFold(filter.OrderDir, "desc") {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else {
		query = query.Order(r.defaultOrder)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyConditions applies the filter map without pagination. Keys are column
// names chosen by application code, never raw request input.
func (r *repo[T]) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		query = query.Where(key+" = ?", value)
	}
	return query
}

// branchRepo extends repo with branch-scoped queries
type branchRepo[T any] struct {
	repo[T]
}

func newBranchRepo[T any](db *gorm.DB, defaultOrder string) branchRepo[T] {
	return branchRepo[T]{repo: newRepo[T](db, defaultOrder)}
}

// FindByIDForBranch finds an entity by ID within a branch. A missing row is
// (nil, nil).
func (r *branchRepo[T]) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.session(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// FindAllForBranch finds all entities for a branch matching the filter
func (r *branchRepo[T]) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]T, error) {
	var entities []T
	var model T
	query := r.applyFilter(
		r.session(ctx).Model(&model).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
