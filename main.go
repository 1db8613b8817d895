package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-import-service/controllers"
	"stock-import-service/database"
	"stock-import-service/repository"
	"stock-import-service/routes"
	servicepkg "stock-import-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if err := database.Connect(cfg.DSN()); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	// DI chain
	catalogRepo := repository.NewGormCatalogRepository(database.DB)
	offerRepo := repository.NewGormOfferRepository(database.DB)
	locationRepo := repository.NewGormLocationRepository(database.DB)
	stockRepo := repository.NewGormStockRepository(database.DB)

	normalizer := servicepkg.NewNormalizer(servicepkg.DefaultAliasTable())
	resolver := servicepkg.NewVariantResolver(catalogRepo)
	importService := servicepkg.NewImportService(normalizer, resolver, offerRepo, locationRepo, stockRepo, logger)
	exportService := servicepkg.NewExportService(catalogRepo, offerRepo, locationRepo, stockRepo, logger)

	validator := controllers.NewRequestValidator()
	stockController := controllers.NewStockController(importService, exportService, rdb, validator, cfg.ImportStorageDir)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	servicepkg.StartImportWorker(workerCtx, rdb, importService, cfg.ImportStorageDir)

	r := gin.New()

	// Global request-logging middleware
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
		)
	})

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "stock-import-service"})
	})

	routes.RegisterStockRoutes(r, stockController)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Stock import service started", zap.String("port", cfg.Port))
	<-quit
	logger.Info("Shutting down stock import service...")

	workerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}
