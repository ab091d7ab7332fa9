package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	accountingapp "github.com/retailbooks/backend/internal/application/accounting"
	partnerapp "github.com/retailbooks/backend/internal/application/partner"
	postingapp "github.com/retailbooks/backend/internal/application/posting"
	"github.com/retailbooks/backend/internal/infrastructure/config"
	"github.com/retailbooks/backend/internal/infrastructure/logger"
	"github.com/retailbooks/backend/internal/infrastructure/persistence"
	"github.com/retailbooks/backend/internal/interfaces/http/handler"
	"github.com/retailbooks/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories and the shared transaction scope
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	chartRepo := persistence.NewGormChartRepository(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// The posting coordinator needs the seeded system accounts to generate
	// vouchers; refusing to start beats posting into nothing.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	systemAccounts, err := postingapp.LoadSystemAccounts(startupCtx, accountRepo)
	if err != nil {
		cancelStartup()
		log.Fatal("Failed to load system accounts; run migrations first", zap.Error(err))
	}
	categoryAccountRepo := persistence.NewGormCategoryAccountRepository(db.DB)
	categoryMappings, err := categoryAccountRepo.FindAll(startupCtx)
	cancelStartup()
	if err != nil {
		log.Fatal("Failed to load category account mappings", zap.Error(err))
	}
	selector, err := postingapp.NewAccountSelector(systemAccounts, categoryMappings)
	if err != nil {
		log.Fatal("Failed to build account selector", zap.Error(err))
	}
	log.Info("Account selector ready", zap.Int("category_mappings", len(categoryMappings)))

	// Application services
	chartService := accountingapp.NewChartOfAccountsService(chartRepo, accountRepo, log)
	voucherService := accountingapp.NewVoucherService(scope, log)
	partyService := partnerapp.NewPartyService(partyRepo, log)
	coordinator := postingapp.NewPostingCoordinator(scope, selector, log)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validations", zap.Error(err))
	}
	engine := gin.New()
	engine.Use(logger.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.GET("/healthz", healthHandler(db))

	// Handlers
	chartHandler := handler.NewChartHandler(chartService)
	voucherHandler := handler.NewVoucherHandler(voucherService)
	stockHandler := handler.NewStockHandler(coordinator)
	partyHandler := handler.NewPartyHandler(partyService, voucherService)

	// Routes
	chartRoutes := router.NewDomainGroup("chart", "/chart")
	chartRoutes.POST("/families", chartHandler.CreateFamily)
	chartRoutes.POST("/families/:id/heads", chartHandler.CreateHead)
	chartRoutes.POST("/heads/:id/subheads", chartHandler.CreateSubhead)
	chartRoutes.GET("/tree", chartHandler.GetTree)

	accountRoutes := router.NewDomainGroup("accounts", "/accounts")
	accountRoutes.POST("", chartHandler.CreateAccount)
	accountRoutes.GET("/:id", chartHandler.GetAccount)
	accountRoutes.DELETE("/:id", chartHandler.DeleteAccount)

	voucherRoutes := router.NewDomainGroup("vouchers", "/vouchers")
	voucherRoutes.POST("", voucherHandler.Post)
	voucherRoutes.GET("/:id", voucherHandler.GetByID)
	voucherRoutes.DELETE("/:id", voucherHandler.DiscardDraft)
	voucherRoutes.POST("/:id/reverse", voucherHandler.Reverse)
	voucherRoutes.GET("/source/:table/:source_id", voucherHandler.GetBySource)

	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/trial-balance", voucherHandler.TrialBalance)

	stockRoutes := router.NewDomainGroup("stock", "/stock-movements")
	stockRoutes.POST("", stockHandler.PostMovement)
	stockRoutes.POST("/transfers", stockHandler.Transfer)
	stockRoutes.GET("/:id", stockHandler.GetMovement)
	stockRoutes.POST("/:id/void", stockHandler.Void)

	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.GET("/:id/ledger", stockHandler.StockLedger)
	productRoutes.GET("/:id/inventory", stockHandler.GetInventoryState)

	partyRoutes := router.NewDomainGroup("parties", "/parties")
	partyRoutes.POST("", partyHandler.Create)
	partyRoutes.GET("", partyHandler.List)
	partyRoutes.GET("/:id", partyHandler.Get)
	partyRoutes.POST("/:id/deactivate", partyHandler.Deactivate)
	partyRoutes.GET("/:id/balance", partyHandler.Balance)

	r := router.NewRouter(engine)
	r.Register(chartRoutes).
		Register(accountRoutes).
		Register(voucherRoutes).
		Register(reportRoutes).
		Register(stockRoutes).
		Register(productRoutes).
		Register(partyRoutes)
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

	// Graceful shutdown
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

// healthHandler reports liveness of the service and its database
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
