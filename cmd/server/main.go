package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/markethub/settlement-service/internal/adapters/postgres"
	"github.com/markethub/settlement-service/internal/config"
	adminHandler "github.com/markethub/settlement-service/internal/handlers/admin"
	cronHandler "github.com/markethub/settlement-service/internal/handlers/cron"
	"github.com/markethub/settlement-service/internal/services/commission"
	"github.com/markethub/settlement-service/internal/services/settlement"
	"github.com/markethub/settlement-service/pkg/logging"
	"github.com/markethub/settlement-service/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting settlement service",
		zap.String("version", "0.1.0"),
	)

	// Initialize database connection pool
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbPool, err := postgres.NewPool(ctx, postgres.Config{
		DatabaseURL: cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
	})
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("Database connection established")

	// Wire repositories and services
	db := postgres.NewDBExecutor(dbPool)
	portLogger := logging.NewZapLogger(logger)

	sellerRepo := postgres.NewSellerRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	refundRepo := postgres.NewRefundRepository(db)
	settlementRepo := postgres.NewSettlementRepository(db)
	execRepo := postgres.NewJobExecutionRepository(db)

	calc := commission.NewCalculator()
	processor := settlement.NewProcessor(db, settlementRepo, orderRepo, refundRepo, calc, portLogger)
	writer := settlement.NewChunkWriter(db, settlementRepo, portLogger)
	tracker := settlement.NewExecutionTracker(db, execRepo, sellerRepo, portLogger)
	orchestrator := settlement.NewOrchestrator(db, sellerRepo, processor, writer, tracker, cfg.Settlement.ChunkSize, portLogger)
	trigger := settlement.NewTrigger(orchestrator, portLogger)
	queries := settlement.NewQueryService(settlementRepo, execRepo, portLogger)

	settlementCron := cronHandler.NewSettlementHandler(trigger, logger, cfg.Settlement.CronSecret)
	settlementAdmin := adminHandler.NewSettlementHandler(queries, logger)

	// HTTP router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(observability.MetricsMiddleware)

	router.Post("/cron/settlements/run", settlementCron.RunSettlement)
	router.Get("/cron/health", settlementCron.HealthCheck)
	router.Route("/admin", settlementAdmin.Routes)

	// Metrics and health server on its own port
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker)
	logger.Info("Metrics server started", zap.Int("port", cfg.Server.MetricsPort))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Minute, // a settlement run completes within the request
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown failed", zap.Error(err))
	}

	logger.Info("Settlement service stopped")
}

// initLogger builds the zap logger from configuration
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
