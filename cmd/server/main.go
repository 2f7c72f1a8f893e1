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

	billingapp "github.com/simbacrm/backend/internal/application/billing"
	catalogapp "github.com/simbacrm/backend/internal/application/catalog"
	partnerapp "github.com/simbacrm/backend/internal/application/partner"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/infrastructure/auth"
	"github.com/simbacrm/backend/internal/infrastructure/cache"
	"github.com/simbacrm/backend/internal/infrastructure/config"
	"github.com/simbacrm/backend/internal/infrastructure/event"
	"github.com/simbacrm/backend/internal/infrastructure/logger"
	"github.com/simbacrm/backend/internal/infrastructure/persistence"
	"github.com/simbacrm/backend/internal/infrastructure/scheduler"
	"github.com/simbacrm/backend/internal/interfaces/http/handler"
	"github.com/simbacrm/backend/internal/interfaces/http/middleware"
	"github.com/simbacrm/backend/internal/interfaces/http/router"
)

//	@title			SimbaCRM Billing API
//	@version		1.0
//	@description	Quote and invoice billing backend for SimbaCRM

//	@contact.name	API Support
//	@contact.email	support@simbacrm.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting SimbaCRM Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)

	// Idempotency store backs both payment request deduplication and
	// exactly-once event handling
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = store
		log.Info("Redis idempotency store connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}

	// Initialize application services
	quoteService := billingapp.NewQuoteService(quoteRepo, invoiceRepo, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, log)
	invoiceService.SetIdempotencyStore(idempotencyStore)
	productService := catalogapp.NewProductService(productRepo, log)
	accountService := partnerapp.NewAccountService(accountRepo, log)
	contactService := partnerapp.NewContactService(contactRepo, accountRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	activityHandler := event.NewIdempotentHandler(
		event.NewActivityLogHandler(log),
		idempotencyStore,
		log,
	)
	eventBus.Subscribe(activityHandler)

	log.Info("Event handlers registered",
		zap.Strings("activity_log_events", activityHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	quoteService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)

	// JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect token blacklist to Redis", zap.Error(err))
		}
		tokenBlacklist = blacklist
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Initialize billing sweep scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		billingScheduler, err := scheduler.NewBillingScheduler(cfg.Scheduler, quoteService, invoiceService, log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := billingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := billingScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	quoteHandler := handler.NewQuoteHandler(quoteService, accountService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, accountService)
	productHandler := handler.NewProductHandler(productService)
	accountHandler := handler.NewAccountHandler(accountService)
	contactHandler := handler.NewContactHandler(contactService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
			"/api/v1/system/health",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Billing domain (quotes, invoices, payments)
	billingRoutes := router.NewDomainGroup("billing", "/billing")

	// Quote routes
	billingRoutes.POST("/quotes", quoteHandler.Create)
	billingRoutes.GET("/quotes", quoteHandler.List)
	billingRoutes.GET("/quotes/stats/summary", quoteHandler.StatusSummary)
	billingRoutes.GET("/quotes/number/:number", quoteHandler.GetByNumber)
	billingRoutes.GET("/quotes/:id", quoteHandler.GetByID)
	billingRoutes.PUT("/quotes/:id", quoteHandler.Update)
	billingRoutes.PUT("/quotes/:id/items", quoteHandler.UpdateItems)
	billingRoutes.DELETE("/quotes/:id", quoteHandler.Delete)
	billingRoutes.POST("/quotes/:id/send", quoteHandler.Send)
	billingRoutes.POST("/quotes/:id/approve", quoteHandler.Approve)
	billingRoutes.POST("/quotes/:id/reject", quoteHandler.Reject)
	billingRoutes.POST("/quotes/:id/expire", quoteHandler.Expire)
	billingRoutes.POST("/quotes/:id/convert", quoteHandler.Convert)

	// Invoice and payment ledger routes
	billingRoutes.POST("/invoices", invoiceHandler.Create)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/number/:number", invoiceHandler.GetByNumber)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.POST("/invoices/:id/send", invoiceHandler.Send)
	billingRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)
	billingRoutes.POST("/invoices/:id/payments", invoiceHandler.RecordPayment)
	billingRoutes.GET("/invoices/:id/payments", invoiceHandler.ListPayments)
	billingRoutes.POST("/invoices/:id/payments/:payment_id/refund", invoiceHandler.RefundPayment)

	// Catalog domain (products)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.POST("/products/:id/activate", productHandler.Activate)
	catalogRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)

	// Partner domain (accounts)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/accounts", accountHandler.Create)
	partnerRoutes.GET("/accounts", accountHandler.List)
	partnerRoutes.GET("/accounts/:id", accountHandler.GetByID)
	partnerRoutes.PUT("/accounts/:id", accountHandler.Update)
	partnerRoutes.DELETE("/accounts/:id", accountHandler.Delete)
	partnerRoutes.POST("/accounts/:id/activate", accountHandler.Activate)
	partnerRoutes.POST("/accounts/:id/deactivate", accountHandler.Deactivate)
	partnerRoutes.GET("/accounts/:id/contacts", contactHandler.ListByAccount)
	partnerRoutes.POST("/contacts", contactHandler.Create)
	partnerRoutes.GET("/contacts", contactHandler.List)
	partnerRoutes.GET("/contacts/:id", contactHandler.GetByID)
	partnerRoutes.PUT("/contacts/:id", contactHandler.Update)
	partnerRoutes.DELETE("/contacts/:id", contactHandler.Delete)
	partnerRoutes.POST("/contacts/:id/primary", contactHandler.MarkPrimary)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/health", systemHandler.Health)
	systemRoutes.GET("/db-stats", systemHandler.DatabaseStats)

	// Register all domain groups
	r.Register(billingRoutes).
		Register(catalogRoutes).
		Register(partnerRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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
