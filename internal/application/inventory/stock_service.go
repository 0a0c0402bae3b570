package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService manages branch stock: receiving goods, stock takes and
// inter-branch transfers. Every movement leaves a transaction row.
type StockService struct {
	productRepo  inventory.ProductRepository
	stockRepo    inventory.StockRepository
	transferRepo inventory.StockTransferRepository
	activityRepo inventory.ActivityLogRepository
	vatRepo      finance.VATRepository
	txManager    shared.TxManager
	logger       *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	productRepo inventory.ProductRepository,
	stockRepo inventory.StockRepository,
	transferRepo inventory.StockTransferRepository,
	activityRepo inventory.ActivityLogRepository,
	vatRepo finance.VATRepository,
	txManager shared.TxManager,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		transferRepo: transferRepo,
		activityRepo: activityRepo,
		vatRepo:      vatRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// ReceiveStock books purchased goods into a branch
func (s *StockService) ReceiveStock(ctx context.Context, branchID, productID uuid.UUID, quantity int, userID *uuid.UUID) (*inventory.StockItem, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}

	var item *inventory.StockItem
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		item, err = s.stockRepo.GetOrCreate(ctx, branchID, productID)
		if err != nil {
			return fmt.Errorf("failed to get stock: %w", err)
		}
		if err := item.Restock(quantity); err != nil {
			return err
		}
		if err := s.stockRepo.Save(ctx, item); err != nil {
			return fmt.Errorf("failed to save stock: %w", err)
		}
		movement, err := inventory.NewStockTransaction(item, inventory.MovementPurchase, quantity, nil, userID, "")
		if err != nil {
			return err
		}
		if err := s.stockRepo.RecordTransaction(ctx, movement); err != nil {
			return err
		}
		return s.recordInputVAT(ctx, branchID, product, quantity, movement.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock received",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
	)
	return item, nil
}

// recordInputVAT extracts the tax portion of a VAT-inclusive purchase and
// books it as input VAT against the stock movement. Nothing is recorded when
// the branch has no active rate.
func (s *StockService) recordInputVAT(ctx context.Context, branchID uuid.UUID, product *inventory.Product, quantity int, movementID uuid.UUID) error {
	rate, err := s.vatRepo.ActiveRate(ctx, branchID)
	if err != nil {
		return fmt.Errorf("failed to get VAT rate: %w", err)
	}
	if rate == nil || !rate.Rate.IsPositive() {
		return nil
	}

	inclusive := product.CostPriceMoney().MultiplyByInt(int64(quantity))
	divisor := rate.Rate.Add(decimal.NewFromInt(100))
	vat := inclusive.Multiply(rate.Rate.Div(divisor)).Round(2)

	vatTx, err := finance.NewVATTransaction(branchID, finance.VATInput, finance.EntrySourcePurchase, movementID, rate.Rate, vat)
	if err != nil {
		return err
	}
	return s.vatRepo.RecordTransaction(ctx, vatTx)
}

// AdjustStock sets the stock level to a counted quantity after a stock take
func (s *StockService) AdjustStock(ctx context.Context, branchID, productID uuid.UUID, counted int, userID *uuid.UUID, note string) (*inventory.StockItem, error) {
	var item *inventory.StockItem
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.stockRepo.FindForUpdate(ctx, branchID, productID)
		if err != nil {
			return fmt.Errorf("failed to get stock: %w", err)
		}
		if item == nil {
			return shared.NewDomainError("STOCK_NOT_FOUND", "Product is not stocked at this branch")
		}
		diff, err := item.Adjust(counted)
		if err != nil {
			return err
		}
		if err := s.stockRepo.Save(ctx, item); err != nil {
			return fmt.Errorf("failed to save stock: %w", err)
		}
		if diff == 0 {
			return nil
		}
		movement, err := inventory.NewStockTransaction(item, inventory.MovementAdjustment, diff, nil, userID, note)
		if err != nil {
			return err
		}
		if err := s.stockRepo.RecordTransaction(ctx, movement); err != nil {
			return err
		}
		entry, err := inventory.NewActivityLog(branchID, userID, "stock_take",
			fmt.Sprintf("adjusted product %s by %+d to %d", productID, diff, counted))
		if err != nil {
			return err
		}
		return s.activityRepo.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SendStockTransfer deducts the source branch and leaves the transfer
// pending until the destination confirms
func (s *StockService) SendStockTransfer(ctx context.Context, fromBranchID, toBranchID uuid.UUID, lines map[uuid.UUID]int, note string, userID *uuid.UUID) (*inventory.StockTransfer, error) {
	items := make([]inventory.StockTransferItem, 0, len(lines))
	for productID, qty := range lines {
		items = append(items, inventory.StockTransferItem{
			BaseEntity: shared.NewBaseEntity(),
			ProductID:  productID,
			Quantity:   qty,
		})
	}

	var transfer *inventory.StockTransfer
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = inventory.NewStockTransfer(fromBranchID, toBranchID, items, note)
		if err != nil {
			return err
		}
		if userID != nil {
			transfer.SetCreatedBy(*userID)
		}

		for _, line := range transfer.Items {
			item, err := s.stockRepo.FindForUpdate(ctx, fromBranchID, line.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get stock: %w", err)
			}
			if item == nil {
				return shared.NewDomainError("STOCK_NOT_FOUND", "Product is not stocked at this branch")
			}
			if err := item.Deduct(line.Quantity, false); err != nil {
				return err
			}
			if err := s.stockRepo.Save(ctx, item); err != nil {
				return fmt.Errorf("failed to save stock: %w", err)
			}
			movement, err := inventory.NewStockTransaction(item, inventory.MovementTransfer, -line.Quantity, &transfer.ID, userID, note)
			if err != nil {
				return err
			}
			if err := s.stockRepo.RecordTransaction(ctx, movement); err != nil {
				return err
			}
		}
		if err := s.transferRepo.Save(ctx, transfer); err != nil {
			return err
		}
		entry, err := inventory.NewActivityLog(fromBranchID, userID, "stock_transfer_sent",
			fmt.Sprintf("sent transfer %s to branch %s", transfer.ID, toBranchID))
		if err != nil {
			return err
		}
		return s.activityRepo.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock transfer sent",
		zap.String("from", fromBranchID.String()),
		zap.String("to", toBranchID.String()),
		zap.Int("lines", len(items)),
	)
	return transfer, nil
}

// ReceiveStockTransfer restocks the destination branch and closes the
// transfer
func (s *StockService) ReceiveStockTransfer(ctx context.Context, toBranchID, transferID uuid.UUID, userID *uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer *inventory.StockTransfer
	err := s.txManager.InTx(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.transferRepo.FindByID(ctx, transferID)
		if err != nil {
			return fmt.Errorf("failed to get transfer: %w", err)
		}
		if transfer == nil || transfer.ToBranchID != toBranchID {
			return shared.NewDomainError("TRANSFER_NOT_FOUND", "Stock transfer not found")
		}
		if err := transfer.MarkReceived(); err != nil {
			return err
		}

		for _, line := range transfer.Items {
			item, err := s.stockRepo.GetOrCreate(ctx, toBranchID, line.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get stock: %w", err)
			}
			if err := item.Restock(line.Quantity); err != nil {
				return err
			}
			if err := s.stockRepo.Save(ctx, item); err != nil {
				return fmt.Errorf("failed to save stock: %w", err)
			}
			movement, err := inventory.NewStockTransaction(item, inventory.MovementTransfer, line.Quantity, &transfer.ID, userID, "")
			if err != nil {
				return err
			}
			if err := s.stockRepo.RecordTransaction(ctx, movement); err != nil {
				return err
			}
		}
		if err := s.transferRepo.Save(ctx, transfer); err != nil {
			return err
		}
		entry, err := inventory.NewActivityLog(toBranchID, userID, "stock_transfer_received",
			fmt.Sprintf("received transfer %s from branch %s", transfer.ID, transfer.BranchID))
		if err != nil {
			return err
		}
		return s.activityRepo.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// BranchStock pages through a branch's stock levels
func (s *StockService) BranchStock(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	items, err := s.stockRepo.FindForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return items, nil
}

// IncomingTransfers lists transfers pending receipt at a branch
func (s *StockService) IncomingTransfers(ctx context.Context, toBranchID uuid.UUID, filter shared.Filter) ([]inventory.StockTransfer, error) {
	transfers, err := s.transferRepo.FindIncoming(ctx, toBranchID, inventory.StockTransferPending, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming transfers: %w", err)
	}
	return transfers, nil
}

// LowStock lists stock items at or below their reorder level
func (s *StockService) LowStock(ctx context.Context, branchID uuid.UUID) ([]inventory.StockItem, error) {
	items, err := s.stockRepo.FindBelowReorderLevel(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return items, nil
}

// Activity pages through a branch's audit trail
func (s *StockService) Activity(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]inventory.ActivityLog, error) {
	entries, err := s.activityRepo.FindForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}

// StockHistory pages through a product's movements at a branch
func (s *StockService) StockHistory(ctx context.Context, branchID, productID uuid.UUID, filter shared.Filter) ([]inventory.StockTransaction, error) {
	transactions, err := s.stockRepo.FindTransactions(ctx, branchID, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock transactions: %w", err)
	}
	return transactions, nil
}
