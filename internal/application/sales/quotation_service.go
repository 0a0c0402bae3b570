package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/sales"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// QuotationService manages priced offers and their conversion into invoices
type QuotationService struct {
	quotationRepo  sales.QuotationRepository
	productRepo    inventory.ProductRepository
	branchRepo     company.BranchRepository
	invoiceService *InvoiceService
	txManager      shared.TxManager
	logger         *zap.Logger
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo sales.QuotationRepository,
	productRepo inventory.ProductRepository,
	branchRepo company.BranchRepository,
	invoiceService *InvoiceService,
	txManager shared.TxManager,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo:  quotationRepo,
		productRepo:    productRepo,
		branchRepo:     branchRepo,
		invoiceService: invoiceService,
		txManager:      txManager,
		logger:         logger,
	}
}

// QuotationLineRequest is one requested quotation line. UnitPrice overrides
// the catalogue sell price when set.
type QuotationLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateQuotationRequest creates a quotation
type CreateQuotationRequest struct {
	BranchID   uuid.UUID              `json:"-"`
	CustomerID uuid.UUID              `json:"customer_id" binding:"required"`
	Currency   valueobject.Currency   `json:"currency" binding:"required"`
	ValidUntil time.Time              `json:"valid_until" binding:"required"`
	Lines      []QuotationLineRequest `json:"lines" binding:"required,min=1,dive"`
	UserID     *uuid.UUID             `json:"-"`
}

// ConvertQuotationRequest turns a quotation into an invoice
type ConvertQuotationRequest struct {
	BranchID      uuid.UUID             `json:"-"`
	QuotationID   uuid.UUID             `json:"-"`
	PaymentMethod finance.PaymentMethod `json:"payment_method" binding:"required"`
	Terms         sales.PaymentTerms    `json:"terms" binding:"required"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	UserID        *uuid.UUID            `json:"-"`
}

// CreateQuotation prices the requested lines from the catalogue and stores
// an open quotation. No stock or balances move until conversion.
func (s *QuotationService) CreateQuotation(ctx context.Context, req CreateQuotationRequest) (*sales.Quotation, error) {
	branch, err := s.branchRepo.FindByID(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	if branch == nil {
		return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
	}

	var quotation *sales.Quotation
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		items := make([]sales.QuotationItem, 0, len(req.Lines))
		for _, line := range req.Lines {
			product, err := s.productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product: %w", err)
			}
			if product == nil {
				return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
			}
			unitPrice := product.SellPrice
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			items = append(items, sales.QuotationItem{
				BaseEntity:  shared.NewBaseEntity(),
				ProductID:   product.ID,
				Description: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   unitPrice,
			})
		}

		seq, err := s.quotationRepo.NextSequence(ctx, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to get quote sequence: %w", err)
		}

		quotation, err = sales.NewQuotation(
			req.BranchID, req.CustomerID,
			sales.FormatQuoteNumber(branch.Name, seq),
			req.Currency, req.ValidUntil, items,
		)
		if err != nil {
			return err
		}
		if req.UserID != nil {
			quotation.SetCreatedBy(*req.UserID)
		}
		return s.quotationRepo.Save(ctx, quotation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation created",
		zap.String("quote_number", quotation.QuoteNumber),
		zap.String("branch_id", req.BranchID.String()),
	)
	return quotation, nil
}

// GetQuotation loads a branch quotation
func (s *QuotationService) GetQuotation(ctx context.Context, branchID, quotationID uuid.UUID) (*sales.Quotation, error) {
	quotation, err := s.quotationRepo.FindByIDForBranch(ctx, branchID, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	if quotation == nil {
		return nil, shared.NewDomainError("QUOTATION_NOT_FOUND", "Quotation not found")
	}
	return quotation, nil
}

// ListQuotations pages through a branch's quotations
func (s *QuotationService) ListQuotations(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]sales.Quotation, error) {
	quotations, err := s.quotationRepo.FindAllForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	return quotations, nil
}

// ConvertQuotation invoices an open quotation at its quoted prices. The
// invoice creation and the status change commit together.
func (s *QuotationService) ConvertQuotation(ctx context.Context, req ConvertQuotationRequest) (*InvoiceResponse, error) {
	var invoice *InvoiceResponse
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		quotation, err := s.quotationRepo.FindByIDForBranch(ctx, req.BranchID, req.QuotationID)
		if err != nil {
			return fmt.Errorf("failed to get quotation: %w", err)
		}
		if quotation == nil {
			return shared.NewDomainError("QUOTATION_NOT_FOUND", "Quotation not found")
		}

		lines := make([]InvoiceLineRequest, 0, len(quotation.Items))
		for _, item := range quotation.Items {
			price := item.UnitPrice
			lines = append(lines, InvoiceLineRequest{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: &price,
			})
		}

		invoice, err = s.invoiceService.CreateInvoice(ctx, CreateInvoiceRequest{
			BranchID:      req.BranchID,
			CustomerID:    quotation.CustomerID,
			Currency:      quotation.Currency,
			PaymentMethod: req.PaymentMethod,
			Terms:         req.Terms,
			Lines:         lines,
			AmountPaid:    req.AmountPaid,
			UserID:        req.UserID,
		})
		if err != nil {
			return err
		}

		if err := quotation.MarkConverted(invoice.ID); err != nil {
			return err
		}
		return s.quotationRepo.Save(ctx, quotation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation converted",
		zap.String("quotation_id", req.QuotationID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	return invoice, nil
}
