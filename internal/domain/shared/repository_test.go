package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Aggregate roots must satisfy the Entity contract through BaseEntity.
var _ AggregateRoot = (*BaseAggregateRoot)(nil)

func TestNewPaginated(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		page       int
		pageSize   int
		totalPages int
	}{
		{"exact pages", 40, 1, 20, 2},
		{"partial last page", 41, 1, 20, 3},
		{"empty result", 0, 1, 20, 0},
		{"unpaginated query", 7, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPaginated([]string{}, tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.totalPages, page.TotalPages)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestBaseEntityAccessors(t *testing.T) {
	e := NewBaseEntity()
	assert.Equal(t, e.ID, e.GetID())
	assert.Equal(t, e.CreatedAt, e.GetCreatedAt())
	assert.Equal(t, e.UpdatedAt, e.GetUpdatedAt())
}
