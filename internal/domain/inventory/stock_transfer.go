package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/shared"
)

// StockTransferStatus is the lifecycle state of an inter-branch stock move
type StockTransferStatus string

const (
	StockTransferPending  StockTransferStatus = "PENDING"
	StockTransferReceived StockTransferStatus = "RECEIVED"
	StockTransferVoided   StockTransferStatus = "VOIDED"
)

// StockTransferItem is one product line on a stock transfer
type StockTransferItem struct {
	shared.BaseEntity
	TransferID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockTransferItem) TableName() string {
	return "stock_transfer_items"
}

// StockTransfer moves goods between branches. Sending deducts the source
// branch immediately; the destination is restocked on receipt.
type StockTransfer struct {
	shared.BranchAggregateRoot
	ToBranchID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status     StockTransferStatus `gorm:"type:varchar(10);not null;index"`
	Note       string              `gorm:"type:varchar(255)"`
	SentAt     time.Time           `gorm:"not null"`
	ReceivedAt *time.Time          `gorm:""`
	Items      []StockTransferItem `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer creates a pending goods transfer
func NewStockTransfer(fromBranchID, toBranchID uuid.UUID, items []StockTransferItem, note string) (*StockTransfer, error) {
	if fromBranchID == uuid.Nil || toBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if fromBranchID == toBranchID {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Cannot transfer stock to the same branch")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_TRANSFER", "Transfer must have at least one item")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantities must be positive")
		}
	}

	transfer := &StockTransfer{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(fromBranchID),
		ToBranchID:          toBranchID,
		Status:              StockTransferPending,
		Note:                note,
		SentAt:              time.Now(),
		Items:               items,
	}
	for i := range transfer.Items {
		transfer.Items[i].TransferID = transfer.ID
	}
	return transfer, nil
}

// MarkReceived confirms the goods arrived at the destination branch
func (t *StockTransfer) MarkReceived() error {
	if t.Status != StockTransferPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot receive a stock transfer in status %s", t.Status))
	}
	now := time.Now()
	t.Status = StockTransferReceived
	t.ReceivedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// Void cancels an unsent-for transfer; the source deduction must be reversed
// by the caller
func (t *StockTransfer) Void() error {
	if t.Status != StockTransferPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot void a stock transfer in status %s", t.Status))
	}
	t.Status = StockTransferVoided
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}
