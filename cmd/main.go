package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paygate/internal/bootstrap"
	"paygate/internal/config"
	cronpkg "paygate/internal/cron"
	"paygate/internal/handler"
	"paygate/internal/middleware"
	"paygate/internal/notify"
	"paygate/internal/payment/esewa"
	"paygate/internal/payment/khalti"
	"paygate/internal/repository"
	"paygate/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	esewaBaseURL := cfg.Esewa.BaseURL
	khaltiBaseURL := cfg.Khalti.BaseURL
	if esewaBaseURL == "" {
		esewaBaseURL = esewa.ProductionBaseURL
		if !cfg.Server.IsProduction() {
			esewaBaseURL = esewa.TestBaseURL
		}
	}
	if khaltiBaseURL == "" {
		khaltiBaseURL = khalti.ProductionBaseURL
		if !cfg.Server.IsProduction() {
			khaltiBaseURL = khalti.TestBaseURL
		}
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db, cfg); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Repositories ---
	gatewayRepo := repository.NewGatewayRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	resolver := repository.NewGatewayResolver(gatewayRepo, 5*time.Minute)

	// --- Callback Deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewCallbackDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		24*time.Hour,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for callback dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Notifier ---
	notifier := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)

	// --- Handlers ---
	paymentHandler := handler.NewPaymentHandler(
		resolver, transactionRepo, deduper, notifier, logger,
		esewaBaseURL, khaltiBaseURL,
	)
	adminHandler := handler.NewAdminHandler(gatewayRepo, resolver, transactionRepo, logger)

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true
	router.Setup(e, paymentHandler, adminHandler, cfg.API.Key)

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(transactionRepo, resolver, notifier, logger, esewaBaseURL)
	scheduler.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting paygate server",
			zap.String("addr", addr),
			zap.String("env", cfg.Server.Env))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
