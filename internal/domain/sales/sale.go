package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// Sale is the reporting record written when an invoice is created. It carries
// the sale total alongside its date so daily and monthly rollups never join
// through the invoice table.
type Sale struct {
	shared.BranchAggregateRoot
	InvoiceID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	Total     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null"`
	SaleDate  time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates the reporting record for an invoice
func NewSale(invoice *Invoice) (*Sale, error) {
	if invoice == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice cannot be nil")
	}
	return &Sale{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(invoice.BranchID),
		InvoiceID:           invoice.ID,
		Total:               invoice.Total,
		Currency:            invoice.Currency,
		SaleDate:            invoice.IssueDate,
	}, nil
}

// COGSItem is the unit cost captured for one sold line
type COGSItem struct {
	shared.BaseEntity
	COGSEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    int             `gorm:"not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (COGSItem) TableName() string {
	return "cogs_items"
}

// COGSEntry records the cost of goods sold for one invoice, captured at sale
// time from the products' cost prices
type COGSEntry struct {
	shared.BranchAggregateRoot
	InvoiceID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	Total     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null"`
	Items     []COGSItem           `gorm:"foreignKey:COGSEntryID;references:ID"`
}

// TableName returns the table name for GORM
func (COGSEntry) TableName() string {
	return "cogs_entries"
}

// NewCOGSEntry captures the cost of goods for an invoice
func NewCOGSEntry(invoice *Invoice, items []COGSItem) (*COGSEntry, error) {
	if invoice == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice cannot be nil")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_COGS", "Cost entry must have at least one item")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	entry := &COGSEntry{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(invoice.BranchID),
		InvoiceID:           invoice.ID,
		Total:               total,
		Currency:            invoice.Currency,
		Items:               items,
	}
	for i := range entry.Items {
		entry.Items[i].COGSEntryID = entry.ID
	}
	return entry, nil
}
