package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/partner"
	"github.com/techcity/backoffice/internal/domain/sales"
	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService drives the sale lifecycle. Every operation that moves money
// or stock runs inside one transaction: the invoice row, the branch account,
// the customer account, stock and the journal all commit or roll back
// together.
type InvoiceService struct {
	invoiceRepo   sales.InvoiceRepository
	paymentRepo   sales.PaymentRepository
	saleRepo      sales.SaleRepository
	accountRepo   finance.AccountRepository
	custAcctRepo  finance.CustomerAccountRepository
	cashbookRepo  finance.CashbookRepository
	ledgerRepo    finance.LedgerRepository
	vatRepo       finance.VATRepository
	productRepo   inventory.ProductRepository
	stockRepo     inventory.StockRepository
	activityRepo  inventory.ActivityLogRepository
	customerRepo  partner.CustomerRepository
	branchRepo    company.BranchRepository
	txManager     shared.TxManager
	eventBus      shared.EventPublisher
	logger        *zap.Logger
	allowNegative bool
}

// NewInvoiceService creates a new InvoiceService. allowNegativeStock lets a
// sale take stock below zero instead of failing.
func NewInvoiceService(
	invoiceRepo sales.InvoiceRepository,
	paymentRepo sales.PaymentRepository,
	saleRepo sales.SaleRepository,
	accountRepo finance.AccountRepository,
	custAcctRepo finance.CustomerAccountRepository,
	cashbookRepo finance.CashbookRepository,
	ledgerRepo finance.LedgerRepository,
	vatRepo finance.VATRepository,
	productRepo inventory.ProductRepository,
	stockRepo inventory.StockRepository,
	activityRepo inventory.ActivityLogRepository,
	customerRepo partner.CustomerRepository,
	branchRepo company.BranchRepository,
	txManager shared.TxManager,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	allowNegativeStock bool,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		paymentRepo:   paymentRepo,
		saleRepo:      saleRepo,
		accountRepo:   accountRepo,
		custAcctRepo:  custAcctRepo,
		cashbookRepo:  cashbookRepo,
		ledgerRepo:    ledgerRepo,
		vatRepo:       vatRepo,
		productRepo:   productRepo,
		stockRepo:     stockRepo,
		activityRepo:  activityRepo,
		customerRepo:  customerRepo,
		branchRepo:    branchRepo,
		txManager:     txManager,
		eventBus:      eventBus,
		logger:        logger,
		allowNegative: allowNegativeStock,
	}
}

// CreateInvoice issues an invoice: stock is deducted, the customer account is
// charged the total, and any upfront payment settles into the branch account.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if !req.Currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency %q is not supported", req.Currency))
	}
	if req.AmountPaid.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount paid cannot be negative")
	}

	branch, err := s.branchRepo.FindByID(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	if branch == nil {
		return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
	}

	customer, err := s.customerRepo.FindByIDForBranch(ctx, req.BranchID, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}

	var invoice *sales.Invoice
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		rate, err := s.vatRepo.ActiveRate(ctx, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to get VAT rate: %w", err)
		}
		vatRate := decimal.Zero
		if rate != nil {
			vatRate = rate.Rate
		}

		items, cogsItems, err := s.buildLines(ctx, req, vatRate)
		if err != nil {
			return err
		}

		seq, err := s.invoiceRepo.NextSequence(ctx, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to get invoice sequence: %w", err)
		}

		invoice, err = sales.NewInvoice(
			req.BranchID, req.CustomerID,
			sales.FormatInvoiceNumber(branch.Name, seq),
			req.Currency, req.PaymentMethod, req.Terms, req.DueDate,
			req.Discount, req.DeliveryCost, req.Recurring, items,
		)
		if err != nil {
			return err
		}
		if req.UserID != nil {
			invoice.SetCreatedBy(*req.UserID)
		}

		for _, line := range req.Lines {
			if err := s.deductStock(ctx, req.BranchID, line.ProductID, line.Quantity, invoice.ID, req.UserID); err != nil {
				return err
			}
		}

		// The customer owes the full total from the moment of sale
		custBalance, err := s.customerBalanceForUpdate(ctx, req.CustomerID, req.Currency)
		if err != nil {
			return err
		}
		totalMoney, err := valueobject.NewMoney(invoice.Total, invoice.Currency)
		if err != nil {
			return err
		}
		if err := custBalance.Charge(totalMoney); err != nil {
			return err
		}

		if req.AmountPaid.IsPositive() {
			paid, err := valueobject.NewMoney(req.AmountPaid, req.Currency)
			if err != nil {
				return err
			}
			// An earlier partially paid invoice absorbs the cash before the
			// new sale sees any of it
			paid, err = s.settleOutstanding(ctx, req.BranchID, req.CustomerID, custBalance, paid, req.PaymentMethod, branch.Name, req.UserID)
			if err != nil {
				return err
			}
			if paid.IsPositive() {
				if err := s.settlePayment(ctx, invoice, custBalance, paid, req.PaymentMethod, branch.Name, req.UserID); err != nil {
					return err
				}
			}
		}

		if err := s.custAcctRepo.SaveBalance(ctx, custBalance); err != nil {
			return fmt.Errorf("failed to save customer balance: %w", err)
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		sale, err := sales.NewSale(invoice)
		if err != nil {
			return err
		}
		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		cogs, err := sales.NewCOGSEntry(invoice, cogsItems)
		if err != nil {
			return err
		}
		if err := s.saleRepo.SaveCOGS(ctx, cogs); err != nil {
			return fmt.Errorf("failed to save cost entry: %w", err)
		}

		if invoice.VATTotal.IsPositive() {
			vatMoney, err := valueobject.NewMoney(invoice.VATTotal, invoice.Currency)
			if err != nil {
				return err
			}
			vatTx, err := finance.NewVATTransaction(
				req.BranchID, finance.VATOutput, finance.EntrySourceInvoice,
				invoice.ID, vatRate, vatMoney,
			)
			if err != nil {
				return err
			}
			if err := s.vatRepo.RecordTransaction(ctx, vatTx); err != nil {
				return fmt.Errorf("failed to record VAT: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	s.logger.Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("branch_id", invoice.BranchID.String()),
		zap.String("total", invoice.Total.String()),
	)
	return ToInvoiceResponse(invoice), nil
}

// AddPayment records a settlement against an invoice. The amount applied is
// clamped to what is due; the remainder of an overpayment is never taken.
func (s *InvoiceService) AddPayment(ctx context.Context, req AddPaymentRequest) (*InvoiceResponse, error) {
	var invoice *sales.Invoice
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		if invoice == nil || invoice.BranchID != req.BranchID {
			return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}

		branch, err := s.branchRepo.FindByID(ctx, invoice.BranchID)
		if err != nil {
			return fmt.Errorf("failed to get branch: %w", err)
		}

		amount, err := valueobject.NewMoney(req.Amount, invoice.Currency)
		if err != nil {
			return err
		}

		custBalance, err := s.customerBalanceForUpdate(ctx, invoice.CustomerID, invoice.Currency)
		if err != nil {
			return err
		}
		if err := s.settlePayment(ctx, invoice, custBalance, amount, req.PaymentMethod, branch.Name, req.UserID); err != nil {
			return err
		}
		if err := s.custAcctRepo.SaveBalance(ctx, custBalance); err != nil {
			return fmt.Errorf("failed to save customer balance: %w", err)
		}
		return s.invoiceRepo.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	return ToInvoiceResponse(invoice), nil
}

/// CancelInvoice voids an invoice: stock comes back, the customer charge is
// reversed, and any money already taken is paid back out of the branch
// account.
func (s *InvoiceService) CancelInvoice(ctx context.Context, branchID, invoiceID uuid.UUID, userID *uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.reverseInvoice(ctx, branchID, invoiceID, userID, "sale cancelled", func(inv *sales.Invoice) error {
		return inv.Cancel()
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)
	s.logger.Info("invoice cancelled", zap.String("invoice_number", invoice.InvoiceNumber))
	return ToInvoiceResponse(invoice), nil
}

// ReturnInvoice records a full goods return. Reversals match cancellation;
// only the resulting document status differs.
func (s *InvoiceService) ReturnInvoice(ctx context.Context, branchID, invoiceID uuid.UUID, userID *uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.reverseInvoice(ctx, branchID, invoiceID, userID, "returns", func(inv *sales.Invoice) error {
		return inv.MarkReturned()
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)
	s.logger.Info("invoice returned", zap.String("invoice_number", invoice.InvoiceNumber))
	return ToInvoiceResponse(invoice), nil
}

// GetInvoice fetches one invoice scoped to a branch
func (s *InvoiceService) GetInvoice(ctx context.Context, branchID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForBranch(ctx, branchID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	return ToInvoiceResponse(invoice), nil
}

// ListInvoices pages through a branch's invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	invoices, err := s.invoiceRepo.FindAllForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, *ToInvoiceResponse(&invoices[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListPayments returns the settlement history of an invoice
func (s *InvoiceService) ListPayments(ctx context.Context, branchID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForBranch(ctx, branchID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *ToPaymentResponse(&payments[i]))
	}
	return responses, nil
}

// buildLines resolves the requested lines against the catalogue and captures
// VAT and unit cost per line
func (s *InvoiceService) buildLines(ctx context.Context, req CreateInvoiceRequest, vatRate decimal.Decimal) ([]sales.InvoiceItem, []sales.COGSItem, error) {
	items := make([]sales.InvoiceItem, 0, len(req.Lines))
	cogsItems := make([]sales.COGSItem, 0, len(req.Lines))

	for _, line := range req.Lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil || !product.Active {
			return nil, nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found or inactive")
		}

		price := product.SellPrice
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		unitPrice, err := valueobject.NewMoney(price, req.Currency)
		if err != nil {
			return nil, nil, err
		}

		item, err := sales.NewInvoiceItem(product.ID, product.Name, line.Quantity, unitPrice, vatRate)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, *item)
		cogsItems = append(cogsItems, sales.COGSItem{
			BaseEntity: shared.NewBaseEntity(),
			ProductID:  product.ID,
			Quantity:   line.Quantity,
			UnitCost:   product.CostPrice,
		})
	}
	return items, cogsItems, nil
}

// deductStock takes quantity off the branch stock row under a row lock and
// records the movement
func (s *InvoiceService) deductStock(ctx context.Context, branchID, productID uuid.UUID, quantity int, invoiceID uuid.UUID, userID *uuid.UUID) error {
	item, err := s.stockRepo.FindForUpdate(ctx, branchID, productID)
	if err != nil {
		return fmt.Errorf("failed to get stock: %w", err)
	}
	if item == nil {
		return shared.NewDomainError("STOCK_NOT_FOUND", "Product is not stocked at this branch")
	}
	if err := item.Deduct(quantity, s.allowNegative); err != nil {
		return err
	}
	if err := s.stockRepo.Save(ctx, item); err != nil {
		return fmt.Errorf("failed to save stock: %w", err)
	}
	movement, err := inventory.NewStockTransaction(item, inventory.MovementSale, -quantity, &invoiceID, userID, "")
	if err != nil {
		return err
	}
	if err := s.stockRepo.RecordTransaction(ctx, movement); err != nil {
		return err
	}
	entry, err := inventory.NewActivityLog(branchID, userID, "sale",
		fmt.Sprintf("sold %d of product %s, %d left", quantity, productID, item.Quantity))
	if err != nil {
		return err
	}
	return s.activityRepo.Append(ctx, entry)
}

// restock returns quantity to the branch stock row, for cancellations and
// returns
func (s *InvoiceService) restock(ctx context.Context, branchID, productID uuid.UUID, quantity int, invoiceID uuid.UUID, userID *uuid.UUID, action string) error {
	item, err := s.stockRepo.FindForUpdate(ctx, branchID, productID)
	if err != nil {
		return fmt.Errorf("failed to get stock: %w", err)
	}
	if item == nil {
		return shared.NewDomainError("STOCK_NOT_FOUND", "Product is not stocked at this branch")
	}
	if err := item.Restock(quantity); err != nil {
		return err
	}
	if err := s.stockRepo.Save(ctx, item); err != nil {
		return fmt.Errorf("failed to save stock: %w", err)
	}
	movement, err := inventory.NewStockTransaction(item, inventory.MovementReturn, quantity, &invoiceID, userID, "")
	if err != nil {
		return err
	}
	if err := s.stockRepo.RecordTransaction(ctx, movement); err != nil {
		return err
	}
	entry, err := inventory.NewActivityLog(branchID, userID, action,
		fmt.Sprintf("restocked %d of product %s, now %d", quantity, productID, item.Quantity))
	if err != nil {
		return err
	}
	return s.activityRepo.Append(ctx, entry)
}

// settleOutstanding applies incoming cash to the customer's most recent
// partially paid invoice in the same currency and returns what is left over
// for the current sale.
func (s *InvoiceService) settleOutstanding(
	ctx context.Context,
	branchID, customerID uuid.UUID,
	custBalance *finance.CustomerAccountBalance,
	amount valueobject.Money,
	method finance.PaymentMethod,
	branchName string,
	userID *uuid.UUID,
) (valueobject.Money, error) {
	due, err := s.invoiceRepo.FindLatestPartialForUpdate(ctx, branchID, customerID, amount.Currency())
	if err != nil {
		return amount, fmt.Errorf("failed to find outstanding invoice: %w", err)
	}
	if due == nil {
		return amount, nil
	}

	applied := amount.Amount()
	if applied.GreaterThan(due.AmountDue()) {
		applied = due.AmountDue()
	}
	appliedMoney, err := valueobject.NewMoney(applied, amount.Currency())
	if err != nil {
		return amount, err
	}
	if err := s.settlePayment(ctx, due, custBalance, appliedMoney, method, branchName, userID); err != nil {
		return amount, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, due); err != nil {
		return amount, fmt.Errorf("failed to save outstanding invoice: %w", err)
	}

	remaining := amount.Amount().Sub(applied)
	if !remaining.IsPositive() {
		return valueobject.Zero(amount.Currency()), nil
	}
	return valueobject.NewMoney(remaining, amount.Currency())
}

// settlePayment applies a payment to the invoice and posts every side
// effect: the branch account, the customer balance, the payment history row,
// the ledger and the journal
func (s *InvoiceService) settlePayment(
	ctx context.Context,
	invoice *sales.Invoice,
	custBalance *finance.CustomerAccountBalance,
	amount valueobject.Money,
	method finance.PaymentMethod,
	branchName string,
	userID *uuid.UUID,
) error {
	applied, err := invoice.ApplyPayment(amount)
	if err != nil {
		return err
	}

	key := finance.AccountKey{BranchID: invoice.BranchID, Currency: invoice.Currency, PaymentMethod: method}
	account, err := s.accountRepo.GetOrCreate(ctx, key, branchName)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	balance, err := s.accountRepo.BalanceForUpdate(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("failed to get account balance: %w", err)
	}
	if err := balance.Credit(applied); err != nil {
		return err
	}
	if err := s.accountRepo.SaveBalance(ctx, balance); err != nil {
		return fmt.Errorf("failed to save account balance: %w", err)
	}

	if err := custBalance.Credit(applied); err != nil {
		return err
	}

	payment, err := sales.NewPayment(invoice, applied, method, userID)
	if err != nil {
		return err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	ledgerTx, err := finance.NewLedgerTransaction(
		invoice.BranchID, account.ID, finance.EntryDebit, applied,
		finance.EntrySourceInvoice, &invoice.ID,
		fmt.Sprintf("Payment on %s", invoice.InvoiceNumber),
	)
	if err != nil {
		return err
	}
	if err := s.ledgerRepo.Append(ctx, ledgerTx); err != nil {
		return fmt.Errorf("failed to append ledger transaction: %w", err)
	}

	entry, err := finance.NewCashbookEntry(
		invoice.BranchID,
		fmt.Sprintf("Payment received on %s", invoice.InvoiceNumber),
		finance.EntryDebit, applied, finance.EntrySourceInvoice, &invoice.ID,
	)
	if err != nil {
		return err
	}
	if err := s.cashbookRepo.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save cashbook entry: %w", err)
	}
	return nil
}

// reverseInvoice runs the shared reversal for cancellation and return
func (s *InvoiceService) reverseInvoice(
	ctx context.Context,
	branchID, invoiceID uuid.UUID,
	userID *uuid.UUID,
	action string,
	transition func(*sales.Invoice) error,
) (*sales.Invoice, error) {
	var invoice *sales.Invoice
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		if invoice == nil || invoice.BranchID != branchID {
			return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}

		paid := invoice.PaidMoney()
		total := invoice.TotalMoney()

		if err := transition(invoice); err != nil {
			return err
		}

		custBalance, err := s.customerBalanceForUpdate(ctx, invoice.CustomerID, invoice.Currency)
		if err != nil {
			return err
		}
		// Undo the charge for the full total, then undo the credit for what
		// was paid in
		if err := custBalance.Credit(total); err != nil {
			return err
		}
		if paid.IsPositive() {
			if err := custBalance.Debit(paid); err != nil {
				return err
			}
		}
		if err := s.custAcctRepo.SaveBalance(ctx, custBalance); err != nil {
			return fmt.Errorf("failed to save customer balance: %w", err)
		}

		if paid.IsPositive() {
			account, err := s.accountRepo.FindByKey(ctx, invoice.AccountKey())
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}
			if account == nil {
				return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Branch account not found")
			}
			balance, err := s.accountRepo.BalanceForUpdate(ctx, account.ID)
			if err != nil {
				return fmt.Errorf("failed to get account balance: %w", err)
			}
			if err := balance.Debit(paid); err != nil {
				return err
			}
			if err := s.accountRepo.SaveBalance(ctx, balance); err != nil {
				return fmt.Errorf("failed to save account balance: %w", err)
			}

			ledgerTx, err := finance.NewLedgerTransaction(
				invoice.BranchID, account.ID, finance.EntryCredit, paid,
				finance.EntrySourceInvoice, &invoice.ID,
				fmt.Sprintf("Refund on %s", invoice.InvoiceNumber),
			)
			if err != nil {
				return err
			}
			if err := s.ledgerRepo.Append(ctx, ledgerTx); err != nil {
				return fmt.Errorf("failed to append ledger transaction: %w", err)
			}

			entry, err := finance.NewCashbookEntry(
				invoice.BranchID,
				fmt.Sprintf("Refund on %s", invoice.InvoiceNumber),
				finance.EntryCredit, paid, finance.EntrySourceInvoice, &invoice.ID,
			)
			if err != nil {
				return err
			}
			if err := s.cashbookRepo.Save(ctx, entry); err != nil {
				return fmt.Errorf("failed to save cashbook entry: %w", err)
			}
		}

		for _, item := range invoice.Items {
			if err := s.restock(ctx, invoice.BranchID, item.ProductID, item.Quantity, invoice.ID, userID, action); err != nil {
				return err
			}
		}

		if err := s.saleRepo.DeleteByInvoice(ctx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete sale record: %w", err)
		}
		if err := s.saleRepo.DeleteCOGSByInvoice(ctx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete cost entry: %w", err)
		}
		if err := s.vatRepo.DeleteBySource(ctx, finance.EntrySourceInvoice, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete VAT transactions: %w", err)
		}

		return s.invoiceRepo.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// customerBalanceForUpdate loads the customer's balance row for the currency
// under a row lock, creating the account and row on first use
func (s *InvoiceService) customerBalanceForUpdate(ctx context.Context, customerID uuid.UUID, currency valueobject.Currency) (*finance.CustomerAccountBalance, error) {
	acct, err := s.custAcctRepo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer account: %w", err)
	}
	balance, err := s.custAcctRepo.BalanceForUpdate(ctx, acct.ID, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer balance: %w", err)
	}
	return balance, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, invoice *sales.Invoice) {
	if invoice == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, invoice.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish invoice events", zap.Error(err))
	}
	invoice.ClearDomainEvents()
}
