package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hospitality_pos/internal/cart"
	"hospitality_pos/internal/config"
	"hospitality_pos/internal/database"
	"hospitality_pos/internal/handlers"
	"hospitality_pos/internal/migrations"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/redis"
	"hospitality_pos/internal/repository"
	"hospitality_pos/internal/services"
	"hospitality_pos/pkg/whatsapp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(db, cfg.DeletePassword, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	menuRepo := repository.NewMenuItemRepository(db)
	tableRepo := repository.NewTableRepository(db)
	runningOrderRepo := repository.NewRunningOrderRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	billRepo := repository.NewBillRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	financialRepo := repository.NewFinancialRepository(db)

	// Receipts go out only when enabled
	var receipts services.ReceiptSender
	if cfg.WhatsAppReceipts {
		whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
		receipts = services.NewWhatsAppService(whatsappClient, cfg.VenueName)
	}

	// Initialize services
	settingsService := services.NewSettingsService(financialRepo, redisClient, cfg.CacheTTL, redisClient, logger)
	menuService := services.NewMenuService(menuRepo, redisClient, logger)
	customerService := services.NewCustomerService(customerRepo, redisClient, logger)
	runningOrderService := services.NewRunningOrderService(runningOrderRepo, orderRepo, tableRepo, menuRepo, redisClient, logger)
	sessionManager := cart.NewManager(runningOrderService, cfg.AutosaveDebounce, logger)
	orderService := services.NewOrderService(orderRepo, orderItemRepo, tableRepo, runningOrderRepo, settingsService, cfg.OrderPrefix, redisClient, logger)
	billingService := services.NewBillingService(billRepo, orderRepo, runningOrderRepo, orderService, customerService, settingsService, receipts, cfg.BillPrefix, redisClient, logger)
	tableService := services.NewTableService(tableRepo, orderRepo, runningOrderRepo, orderService, settingsService, sessionManager, redisClient, logger)
	sessionService := services.NewSessionService(sessionManager, menuService, runningOrderService, orderService, billingService, customerService, orderRepo, logger)

	// Initialize handlers
	hub := realtime.NewHub(logger)
	apiHandler := handlers.NewAPIHandler(menuService, tableService, sessionService, runningOrderService, orderService, billingService, customerService, settingsService, logger)
	whatsappHandler := handlers.NewWhatsAppHandler(receipts, billingService, logger)

	// Setup routes
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "viewers": hub.ClientCount()})
	})

	api := router.Group("/api")
	apiHandler.RegisterRoutes(api)
	whatsappHandler.RegisterRoutes(api)
	api.GET("/changes", hub.HandleWebSocket)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		return redisClient.SubscribeChanges(gctx, logger, hub.Broadcast)
	})
	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Flush drafts of sessions still open so they resume on restart.
		sessionManager.CloseAll()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
