package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/techcity/backoffice/internal/application/finance"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/interfaces/http/middleware"
)

// FinanceHandler handles cashbook, deposit, transfer, expense and balance
// requests.
type FinanceHandler struct {
	BaseHandler
	cashbookService *finance.CashbookService
	depositService  *finance.DepositService
	transferService *finance.TransferService
	expenseService  *finance.ExpenseService
	accountService  *finance.AccountService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(
	cashbookService *finance.CashbookService,
	depositService *finance.DepositService,
	transferService *finance.TransferService,
	expenseService *finance.ExpenseService,
	accountService *finance.AccountService,
) *FinanceHandler {
	return &FinanceHandler{
		cashbookService: cashbookService,
		depositService:  depositService,
		transferService: transferService,
		expenseService:  expenseService,
		accountService:  accountService,
	}
}

// RecordEntry writes a manual cashbook entry
func (h *FinanceHandler) RecordEntry(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req finance.RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.UserID = userID

	entry, err := h.cashbookService.RecordEntry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ListEntries returns the branch cashbook, paginated
func (h *FinanceHandler) ListEntries(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	page, err := h.cashbookService.ListEntries(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ApproveEntry grants the caller's approval level on an entry
func (h *FinanceHandler) ApproveEntry(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	entryID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.cashbookService.ApproveEntry(c.Request.Context(), branchID, entryID, *userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// CancelEntry voids a cashbook entry
func (h *FinanceHandler) CancelEntry(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	entryID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.cashbookService.CancelEntry(c.Request.Context(), branchID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// AddEntryNote attaches a note to a cashbook entry
func (h *FinanceHandler) AddEntryNote(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	entryID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req struct {
		Note string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}

	entry, err := h.cashbookService.AddNote(c.Request.Context(), branchID, entryID, *userID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// CreateDeposit lodges a customer deposit
func (h *FinanceHandler) CreateDeposit(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req finance.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.UserID = userID

	deposit, err := h.depositService.CreateDeposit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, deposit)
}

// EditDeposit corrects a deposit's amount, moving balances by the difference
func (h *FinanceHandler) EditDeposit(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	depositID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid deposit ID")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}

	deposit, err := h.depositService.EditDeposit(c.Request.Context(), branchID, depositID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposit)
}

// RefundDeposit pays part or all of a deposit back out. Refunding the full
// amount removes the deposit.
func (h *FinanceHandler) RefundDeposit(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	depositID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid deposit ID")
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}

	if err := h.depositService.RefundDeposit(c.Request.Context(), branchID, depositID, req.Amount); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListDeposits returns a customer's deposits
func (h *FinanceHandler) ListDeposits(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	deposits, err := h.depositService.ListDeposits(c.Request.Context(), branchID, customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposits)
}

// SendTransfer sends cash to another branch
func (h *FinanceHandler) SendTransfer(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req finance.SendTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.FromBranchID = branchID
	req.UserID = userID

	transfer, err := h.transferService.SendTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// ReceiveTransfer acknowledges an incoming transfer, crediting this branch
func (h *FinanceHandler) ReceiveTransfer(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	transferID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.ReceiveTransfer(c.Request.Context(), branchID, transferID, *userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// ListIncomingTransfers lists transfers addressed to this branch
func (h *FinanceHandler) ListIncomingTransfers(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	transfers, err := h.transferService.ListIncoming(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfers)
}

// Withdraw takes cash out of a branch account
func (h *FinanceHandler) Withdraw(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req finance.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.UserID = userID

	withdrawal, err := h.transferService.Withdraw(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, withdrawal)
}

// CreateExpense records a pending expense
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req finance.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	req.BranchID = branchID
	req.UserID = userID

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// ConfirmExpense confirms a pending expense and moves the money
func (h *FinanceHandler) ConfirmExpense(c *gin.Context) {
	branchID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	expense, err := h.expenseService.ConfirmExpense(c.Request.Context(), branchID, expenseID, *userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// CancelExpense voids a pending expense
func (h *FinanceHandler) CancelExpense(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	expense, err := h.expenseService.CancelExpense(c.Request.Context(), branchID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// ListExpenses returns the branch's expenses
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expenses)
}

// CreateExpenseCategory defines a new expense category for the branch
func (h *FinanceHandler) CreateExpenseCategory(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}

	category, err := h.expenseService.CreateCategory(c.Request.Context(), branchID, req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// ListExpenseCategories lists the branch's expense categories
func (h *FinanceHandler) ListExpenseCategories(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	categories, err := h.expenseService.ListCategories(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// BranchBalances returns every account balance for this branch
func (h *FinanceHandler) BranchBalances(c *gin.Context) {
	branchID, _, ok := h.identity(c)
	if !ok {
		return
	}

	balances, err := h.accountService.BranchBalances(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// CustomerBalances returns a customer's per-currency balances
func (h *FinanceHandler) CustomerBalances(c *gin.Context) {
	if _, _, ok := h.identity(c); !ok {
		return
	}
	customerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	balances, err := h.accountService.CustomerBalances(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// AccountHistory returns the ledger trail for an account
func (h *FinanceHandler) AccountHistory(c *gin.Context) {
	if _, _, ok := h.identity(c); !ok {
		return
	}
	accountID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	history, err := h.accountService.AccountHistory(c.Request.Context(), accountID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// RegisterRoutes mounts the finance endpoints. Cashbook approval and cash
// withdrawals are restricted to senior roles.
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	seniorRole := middleware.RequireRole(identity.RoleAccountant, identity.RoleManager, identity.RoleDirector)

	cashbook := rg.Group("/cashbook")
	{
		cashbook.POST("", h.RecordEntry)
		cashbook.GET("", h.ListEntries)
		cashbook.POST("/:id/approve", seniorRole, h.ApproveEntry)
		cashbook.POST("/:id/cancel", seniorRole, h.CancelEntry)
		cashbook.POST("/:id/notes", h.AddEntryNote)
	}

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", h.CreateDeposit)
		deposits.GET("", h.ListDeposits)
		deposits.PUT("/:id", h.EditDeposit)
		deposits.POST("/:id/refund", h.RefundDeposit)
	}

	transfers := rg.Group("/cash-transfers")
	{
		transfers.POST("", h.SendTransfer)
		transfers.GET("/incoming", h.ListIncomingTransfers)
		transfers.POST("/:id/receive", h.ReceiveTransfer)
	}

	rg.POST("/withdrawals", middleware.RequireRole(identity.RoleManager, identity.RoleDirector), h.Withdraw)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.CreateExpense)
		expenses.GET("", h.ListExpenses)
		expenses.POST("/:id/confirm", h.ConfirmExpense)
		expenses.POST("/:id/cancel", h.CancelExpense)
	}

	expenseCategories := rg.Group("/expense-categories")
	{
		expenseCategories.POST("", seniorRole, h.CreateExpenseCategory)
		expenseCategories.GET("", h.ListExpenseCategories)
	}

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/balances", h.BranchBalances)
		accounts.GET("/:id/history", h.AccountHistory)
	}
	rg.GET("/customers/:id/balances", h.CustomerBalances)
}
