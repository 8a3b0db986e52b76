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

	"github.com/ibrahim77gh/shopify-products/controllers"
	"github.com/ibrahim77gh/shopify-products/database"
	"github.com/ibrahim77gh/shopify-products/importer"
	"github.com/ibrahim77gh/shopify-products/logger"
	"github.com/ibrahim77gh/shopify-products/repository"
	"github.com/ibrahim77gh/shopify-products/routes"
	"github.com/ibrahim77gh/shopify-products/sender"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	// Database
	if err := database.Connect(log); err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	// Redis (import queue + list cache). Non-fatal: the catalog API works
	// without it, import-job endpoints report 503.
	rdb, err := database.NewRedisClient()
	if err != nil {
		log.Warn("Redis unavailable, import queue and cache disabled", zap.Error(err))
		rdb = nil
	}

	// Email sender. Non-fatal: import reports are logged when unset.
	var emailSender sender.EmailSender
	if smtpSender, err := sender.NewSMTPSender(); err != nil {
		log.Warn("SMTP sender not configured, import reports will only be logged", zap.Error(err))
	} else {
		emailSender = smtpSender
	}

	// Dependency injection
	productRepo := repository.NewGormProductRepository(database.DB)
	cache := controllers.NewCacheManager(rdb)
	validator := controllers.NewRequestValidator()

	productController := controllers.NewProductController(productRepo, cache, validator, log)
	webhookController := controllers.NewWebhookController(productRepo, cache, cfg.ShopifyWebhookSecret, log)
	importController := controllers.NewImportController(rdb, cfg.ImportStorageDir, cfg.ReportRecipient, log)

	imp := importer.New(productRepo, emailSender, log, cfg.MockCSVPath)

	// Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.RegisterRoutes(r, productController, webhookController, importController, cfg.JWTSecret)

	// Import worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	importer.StartWorker(workerCtx, rdb, imp, log)

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Inventory service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	workerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := database.Close(); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Inventory service stopped gracefully")
}
