package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	companyapp "github.com/techcity/backoffice/internal/application/company"
	financeapp "github.com/techcity/backoffice/internal/application/finance"
	identityapp "github.com/techcity/backoffice/internal/application/identity"
	inventoryapp "github.com/techcity/backoffice/internal/application/inventory"
	partnerapp "github.com/techcity/backoffice/internal/application/partner"
	salesapp "github.com/techcity/backoffice/internal/application/sales"
	"github.com/techcity/backoffice/internal/infrastructure/auth"
	"github.com/techcity/backoffice/internal/infrastructure/config"
	"github.com/techcity/backoffice/internal/infrastructure/event"
	"github.com/techcity/backoffice/internal/infrastructure/logger"
	"github.com/techcity/backoffice/internal/infrastructure/notification"
	"github.com/techcity/backoffice/internal/infrastructure/persistence"
	"github.com/techcity/backoffice/internal/interfaces/http/handler"
	"github.com/techcity/backoffice/internal/interfaces/http/middleware"
	"github.com/techcity/backoffice/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	txManager := persistence.NewTxManager(db)

	accountRepo := persistence.NewGormAccountRepository(db)
	custAcctRepo := persistence.NewGormCustomerAccountRepository(db)
	cashbookRepo := persistence.NewGormCashbookRepository(db)
	depositRepo := persistence.NewGormDepositRepository(db)
	transferRepo := persistence.NewGormTransferRepository(db)
	withdrawalRepo := persistence.NewGormWithdrawalRepository(db)
	expenseRepo := persistence.NewGormExpenseRepository(db)
	ledgerRepo := persistence.NewGormLedgerRepository(db)
	vatRepo := persistence.NewGormVATRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	saleRepo := persistence.NewGormSaleRepository(db)
	quotationRepo := persistence.NewGormQuotationRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	stockRepo := persistence.NewGormStockRepository(db)
	stockTransferRepo := persistence.NewGormStockTransferRepository(db)
	activityRepo := persistence.NewGormActivityLogRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	branchRepo := persistence.NewGormBranchRepository(db)
	userRepo := persistence.NewGormUserRepository(db)

	eventBus := event.NewInMemoryEventBus(log)
	notifier, err := notification.NewRedisNotifier(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, branch notifications disabled", zap.Error(err))
	} else {
		eventBus.Subscribe(notifier)
		defer func() {
			_ = notifier.Close()
		}()
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	branchService := companyapp.NewBranchService(branchRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, log)
	catalogService := inventoryapp.NewCatalogService(productRepo, log)
	stockService := inventoryapp.NewStockService(productRepo, stockRepo, stockTransferRepo, activityRepo, vatRepo, txManager, log)
	accountService := financeapp.NewAccountService(accountRepo, custAcctRepo, ledgerRepo)
	cashbookService := financeapp.NewCashbookService(cashbookRepo, userRepo, txManager, eventBus, log)
	depositService := financeapp.NewDepositService(
		depositRepo, accountRepo, custAcctRepo, cashbookRepo, ledgerRepo,
		customerRepo, branchRepo, txManager, eventBus, log,
	)
	expenseService := financeapp.NewExpenseService(
		expenseRepo, accountRepo, cashbookRepo, ledgerRepo, branchRepo, txManager, log,
	)
	transferService := financeapp.NewTransferService(
		transferRepo, withdrawalRepo, accountRepo, cashbookRepo, ledgerRepo,
		branchRepo, txManager, eventBus, log,
	)
	invoiceService := salesapp.NewInvoiceService(
		invoiceRepo, paymentRepo, saleRepo,
		accountRepo, custAcctRepo, cashbookRepo, ledgerRepo, vatRepo,
		productRepo, stockRepo, activityRepo, customerRepo, branchRepo,
		txManager, eventBus, log,
		cfg.Policy.AllowNegativeStock,
	)
	quotationService := salesapp.NewQuotationService(
		quotationRepo, productRepo, branchRepo, invoiceService, txManager, log,
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithOrigins(cfg.HTTP.CORSAllowOrigins))

	engine.GET("/health", healthHandler(db))

	authHandler := handler.NewAuthHandler(authService)
	branchHandler := handler.NewBranchHandler(branchService)
	customerHandler := handler.NewCustomerHandler(customerService)
	stockHandler := handler.NewStockHandler(catalogService, stockService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	quotationHandler := handler.NewQuotationHandler(quotationService)
	financeHandler := handler.NewFinanceHandler(
		cashbookService, depositService, transferService, expenseService, accountService,
	)

	r := router.NewRouter(engine, middleware.Auth(jwtService), router.WithAPIVersion("v1"))
	r.Public(router.RegistrarFunc(authHandler.RegisterPublicRoutes))
	r.Protected(
		authHandler,
		branchHandler,
		customerHandler,
		stockHandler,
		invoiceHandler,
		quotationHandler,
		financeHandler,
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
