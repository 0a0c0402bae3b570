package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// VATType distinguishes tax collected on sales from tax paid on purchases
type VATType string

const (
	VATOutput VATType = "OUTPUT"
	VATInput  VATType = "INPUT"
)

// IsValid checks if the VAT type is valid
func (t VATType) IsValid() bool {
	return t == VATOutput || t == VATInput
}

// VATRate is the configured tax percentage for a branch. Line items capture
// their VAT amount at creation so a later rate change never rewrites history.
type VATRate struct {
	shared.BaseEntity
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Rate          decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	EffectiveFrom time.Time       `gorm:"not null;index"`
	Active        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VATRate) TableName() string {
	return "vat_rates"
}

// NewVATRate creates a VAT rate effective from now
func NewVATRate(branchID uuid.UUID, rate decimal.Decimal) (*VATRate, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_RATE", "VAT rate must be between 0 and 100")
	}
	return &VATRate{
		BaseEntity:    shared.NewBaseEntity(),
		BranchID:      branchID,
		Rate:          rate,
		EffectiveFrom: time.Now(),
		Active:        true,
	}, nil
}

// Apply returns the VAT amount for a taxable amount at this rate
func (r *VATRate) Apply(amount valueobject.Money) valueobject.Money {
	return amount.CalculatePercentage(r.Rate).Round(2)
}

// VATTransaction records tax captured on a single source document
type VATTransaction struct {
	shared.BranchAggregateRoot
	Type       VATType              `gorm:"type:varchar(6);not null;index"`
	SourceType EntrySourceType      `gorm:"type:varchar(12);not null"`
	SourceID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Rate       decimal.Decimal      `gorm:"type:decimal(5,2);not null"`
	Amount     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency   valueobject.Currency `gorm:"type:varchar(3);not null"`
	RecordedAt time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (VATTransaction) TableName() string {
	return "vat_transactions"
}

// NewVATTransaction records the tax portion of a source document
func NewVATTransaction(
	branchID uuid.UUID,
	vatType VATType,
	sourceType EntrySourceType,
	sourceID uuid.UUID,
	rate decimal.Decimal,
	amount valueobject.Money,
) (*VATTransaction, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !vatType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_TYPE", "VAT type must be INPUT or OUTPUT")
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "VAT amount cannot be negative")
	}

	return &VATTransaction{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		Type:                vatType,
		SourceType:          sourceType,
		SourceID:            sourceID,
		Rate:                rate,
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		RecordedAt:          time.Now(),
	}, nil
}
