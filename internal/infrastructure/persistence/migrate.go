package persistence

import (
	"fmt"

	"github.com/techcity/backoffice/internal/domain/company"
	"github.com/techcity/backoffice/internal/domain/finance"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/domain/inventory"
	"github.com/techcity/backoffice/internal/domain/partner"
	"github.com/techcity/backoffice/internal/domain/sales"
	"gorm.io/gorm"
)

// allModels lists every persisted aggregate in dependency order
func allModels() []any {
	return []any{
		&company.Branch{},
		&identity.User{},
		&partner.Customer{},
		&inventory.ProductCategory{},
		&inventory.Product{},
		&inventory.StockItem{},
		&inventory.StockTransaction{},
		&inventory.StockTransfer{},
		&inventory.StockTransferItem{},
		&inventory.ActivityLog{},
		&finance.Account{},
		&finance.AccountBalance{},
		&finance.CustomerAccount{},
		&finance.CustomerAccountBalance{},
		&finance.CashbookEntry{},
		&finance.CashbookNote{},
		&finance.CustomerDeposit{},
		&finance.CashTransfer{},
		&finance.CashWithdrawal{},
		&finance.ExpenseCategory{},
		&finance.Expense{},
		&finance.LedgerTransaction{},
		&finance.VATRate{},
		&finance.VATTransaction{},
		&sales.Quotation{},
		&sales.QuotationItem{},
		&sales.Invoice{},
		&sales.InvoiceItem{},
		&sales.Payment{},
		&sales.Sale{},
		&sales.COGSEntry{},
		&sales.COGSItem{},
		&documentSequence{},
	}
}

// AutoMigrate creates or updates the schema for all persisted types. It is
// the development and test path; production schemas are managed by the
// versioned SQL migrations under migrations/.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
