package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/techcity/backoffice/internal/domain/sales"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
)

// GormInvoiceRepository implements sales.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	branchRepo[sales.Invoice]
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *Database) *GormInvoiceRepository {
	return &GormInvoiceRepository{branchRepo: newBranchRepo[sales.Invoice](db.DB, "issue_date DESC, created_at DESC")}
}

// FindByID finds an invoice with its line items preloaded
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	var invoice sales.Invoice
	if err := r.session(ctx).
		Preload("Items").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForBranch finds an invoice within a branch with items preloaded
func (r *GormInvoiceRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*sales.Invoice, error) {
	var invoice sales.Invoice
	if err := r.session(ctx).
		Preload("Items").
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForBranch lists a branch's invoices with items preloaded
func (r *GormInvoiceRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]sales.Invoice, error) {
	var invoices []sales.Invoice
	query := r.applyFilter(
		r.session(ctx).Model(&sales.Invoice{}).
			Preload("Items").
			Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByIDForUpdate loads the invoice under a FOR UPDATE lock so concurrent
// payments against it serialise.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	var invoice sales.Invoice
	if err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	// Items are loaded separately; FOR UPDATE cannot be combined with the
	// preload join on all databases.
	if err := r.session(ctx).
		Where("invoice_id = ?", id).
		Find(&invoice.Items).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its human-readable number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*sales.Invoice, error) {
	var invoice sales.Invoice
	if err := r.session(ctx).
		Preload("Items").
		Where("invoice_number = ?", invoiceNumber).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByCustomer lists a customer's invoices within a branch
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, branchID, customerID uuid.UUID, filter shared.Filter) ([]sales.Invoice, error) {
	var invoices []sales.Invoice
	query := r.applyFilter(
		r.session(ctx).Model(&sales.Invoice{}).
			Preload("Items").
			Where("branch_id = ? AND customer_id = ?", branchID, customerID),
		filter,
	)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindLatestPartialForUpdate loads the customer's most recent partially paid
// invoice in the given currency under a FOR UPDATE lock, or nil when none is
// outstanding.
func (r *GormInvoiceRepository) FindLatestPartialForUpdate(ctx context.Context, branchID, customerID uuid.UUID, currency valueobject.Currency) (*sales.Invoice, error) {
	var invoice sales.Invoice
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND customer_id = ? AND currency = ? AND payment_status = ? AND status = ?",
			branchID, customerID, currency, sales.PaymentStatusPartial, sales.InvoiceActive).
		Order("issue_date DESC, created_at DESC").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// documentSequence is a per-branch counter row for numbered documents.
// Incrementing it under a row lock keeps concurrent creates from sharing a
// number.
type documentSequence struct {
	BranchID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Scope    string    `gorm:"type:varchar(20);primaryKey"`
	Value    int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (documentSequence) TableName() string {
	return "document_sequences"
}

// nextDocumentSequence locks the counter row for the branch and scope and
// returns the incremented value. A missing counter is seeded from the current
// document count so numbering continues where it left off.
func nextDocumentSequence(tx *gorm.DB, branchID uuid.UUID, scope string, model any) (int64, error) {
	var seq documentSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND scope = ?", branchID, scope).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var count int64
		if err := tx.Model(model).Where("branch_id = ?", branchID).Count(&count).Error; err != nil {
			return 0, err
		}
		seq = documentSequence{BranchID: branchID, Scope: scope, Value: count + 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.Value, nil
	}
	if err != nil {
		return 0, err
	}
	seq.Value++
	if err := tx.Model(&documentSequence{}).
		Where("branch_id = ? AND scope = ?", branchID, scope).
		Update("value", seq.Value).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// NextSequence returns the next invoice sequence number for the branch
func (r *GormInvoiceRepository) NextSequence(ctx context.Context, branchID uuid.UUID) (int64, error) {
	return nextDocumentSequence(r.session(ctx), branchID, "invoice", &sales.Invoice{})
}

// SaveWithLock persists the invoice with an optimistic version check. Line
// items are immutable after creation and saved separately on first insert.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *sales.Invoice) error {
	items := invoice.Items
	invoice.Items = nil
	defer func() { invoice.Items = items }()

	result := r.session(ctx).
		Model(invoice).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Select("*").
		Omit("Items", "id", "created_at").
		Updates(invoice)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another transaction")
	}
	return nil
}

// GormPaymentRepository implements sales.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *Database) *GormPaymentRepository {
	return &GormPaymentRepository{db: db.DB}
}

// Save inserts a payment history row
func (r *GormPaymentRepository) Save(ctx context.Context, payment *sales.Payment) error {
	return dbFrom(ctx, r.db).Create(payment).Error
}

// FindByInvoice lists the payments applied to an invoice, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]sales.Payment, error) {
	var payments []sales.Payment
	if err := dbFrom(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *Database) *GormSaleRepository {
	return &GormSaleRepository{db: db.DB}
}

// Save inserts a sale reporting row
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return dbFrom(ctx, r.db).Create(sale).Error
}

// DeleteByInvoice removes the sale row for a reversed invoice
func (r *GormSaleRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return dbFrom(ctx, r.db).
		Delete(&sales.Sale{}, "invoice_id = ?", invoiceID).Error
}

// SaveCOGS inserts a cost-of-goods entry with its items
func (r *GormSaleRepository) SaveCOGS(ctx context.Context, entry *sales.COGSEntry) error {
	return dbFrom(ctx, r.db).Create(entry).Error
}

// DeleteCOGSByInvoice removes the cost entry for a reversed invoice
func (r *GormSaleRepository) DeleteCOGSByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	session := dbFrom(ctx, r.db)
	var entry sales.COGSEntry
	err := session.Where("invoice_id = ?", invoiceID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := session.Delete(&sales.COGSItem{}, "cogs_entry_id = ?", entry.ID).Error; err != nil {
		return err
	}
	return session.Delete(&sales.COGSEntry{}, "id = ?", entry.ID).Error
}

// TotalsForPeriod sums sale totals per currency for the branch between two
// instants.
func (r *GormSaleRepository) TotalsForPeriod(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]sales.SaleTotal, error) {
	var totals []sales.SaleTotal
	if err := dbFrom(ctx, r.db).
		Model(&sales.Sale{}).
		Select("currency, CAST(SUM(total) AS TEXT) AS total").
		Where("branch_id = ? AND sale_date >= ? AND sale_date < ?", branchID, from, to).
		Group("currency").
		Order("currency ASC").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

// GormQuotationRepository implements sales.QuotationRepository using GORM
type GormQuotationRepository struct {
	branchRepo[sales.Quotation]
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *Database) *GormQuotationRepository {
	return &GormQuotationRepository{branchRepo: newBranchRepo[sales.Quotation](db.DB, "created_at DESC")}
}

// FindByID finds a quotation with its items preloaded
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Quotation, error) {
	var quote sales.Quotation
	if err := r.session(ctx).
		Preload("Items").
		First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// FindByIDForBranch finds a quotation within a branch with items preloaded
func (r *GormQuotationRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*sales.Quotation, error) {
	var quote sales.Quotation
	if err := r.session(ctx).
		Preload("Items").
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// FindAllForBranch lists a branch's quotations with items preloaded
func (r *GormQuotationRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]sales.Quotation, error) {
	var quotes []sales.Quotation
	query := r.applyFilter(
		r.session(ctx).Model(&sales.Quotation{}).
			Preload("Items").
			Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindByNumber finds a quotation by its human-readable number
func (r *GormQuotationRepository) FindByNumber(ctx context.Context, quoteNumber string) (*sales.Quotation, error) {
	var quote sales.Quotation
	if err := r.session(ctx).
		Preload("Items").
		Where("quote_number = ?", quoteNumber).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// NextSequence returns the next quotation sequence number for the branch
func (r *GormQuotationRepository) NextSequence(ctx context.Context, branchID uuid.UUID) (int64, error) {
	return nextDocumentSequence(r.session(ctx), branchID, "quotation", &sales.Quotation{})
}

var _ sales.InvoiceRepository = (*GormInvoiceRepository)(nil)
var _ sales.PaymentRepository = (*GormPaymentRepository)(nil)
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
var _ sales.QuotationRepository = (*GormQuotationRepository)(nil)
