package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// StockMovementType classifies a stock transaction
type StockMovementType string

const (
	MovementSale       StockMovementType = "SALE"
	MovementPurchase   StockMovementType = "PURCHASE"
	MovementAdjustment StockMovementType = "ADJUSTMENT"
	MovementTransfer   StockMovementType = "TRANSFER"
	MovementReturn     StockMovementType = "RETURN"
)

// IsValid checks if the movement type is recognised
func (t StockMovementType) IsValid() bool {
	switch t {
	case MovementSale, MovementPurchase, MovementAdjustment, MovementTransfer, MovementReturn:
		return true
	}
	return false
}

// StockTransaction is one immutable stock movement. QuantityAfter snapshots
// the stock level after the movement so the history reads without replay.
type StockTransaction struct {
	shared.BaseEntity
	BranchID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type          StockMovementType `gorm:"type:varchar(12);not null"`
	Quantity      int               `gorm:"not null"`
	QuantityAfter int               `gorm:"not null"`
	SourceID      *uuid.UUID        `gorm:"type:uuid;index"`
	UserID        *uuid.UUID        `gorm:"type:uuid"`
	Note          string            `gorm:"type:varchar(255)"`
	OccurredAt    time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction records one movement. Quantity is signed: negative for
// stock leaving the branch, positive for stock arriving.
func NewStockTransaction(
	item *StockItem,
	movementType StockMovementType,
	quantity int,
	sourceID, userID *uuid.UUID,
	note string,
) (*StockTransaction, error) {
	if item == nil {
		return nil, shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item cannot be nil")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type is not valid")
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}

	return &StockTransaction{
		BaseEntity:    shared.NewBaseEntity(),
		BranchID:      item.BranchID,
		ProductID:     item.ProductID,
		Type:          movementType,
		Quantity:      quantity,
		QuantityAfter: item.Quantity,
		SourceID:      sourceID,
		UserID:        userID,
		Note:          note,
		OccurredAt:    time.Now(),
	}, nil
}

// ActivityLog is a human-readable audit line for back-office actions
type ActivityLog struct {
	shared.BaseEntity
	BranchID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	Action     string     `gorm:"type:varchar(60);not null"`
	Detail     string     `gorm:"type:varchar(255);not null"`
	OccurredAt time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// NewActivityLog creates an audit line
func NewActivityLog(branchID uuid.UUID, userID *uuid.UUID, action, detail string) (*ActivityLog, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action cannot be empty")
	}
	return &ActivityLog{
		BaseEntity: shared.NewBaseEntity(),
		BranchID:   branchID,
		UserID:     userID,
		Action:     action,
		Detail:     detail,
		OccurredAt: time.Now(),
	}, nil
}
