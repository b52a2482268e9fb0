package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/impairment-ledger/internal/api_gateway"
	"github.com/impairment-ledger/internal/api_gateway/service"
	"github.com/impairment-ledger/internal/config"
	"github.com/impairment-ledger/internal/data/mongo"
	"github.com/impairment-ledger/internal/data/postgres"
	"github.com/impairment-ledger/internal/impairment/components"
	engine "github.com/impairment-ledger/internal/impairment/service"
	"github.com/impairment-ledger/internal/logger"
	"github.com/impairment-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Redis lock is optional; without it the advisory lock alone serialises posts
	redisLocker, err := persistence.NewRedisLocker(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}
	var locker engine.Locker
	if redisLocker != nil {
		locker = redisLocker
	}

	// Initialize repositories
	repos := components.Repositories{
		Accounts:     postgres.NewAccountRepository(log, postgresDB),
		Ledger:       postgres.NewLedgerRepository(log, postgresDB),
		Calculations: postgres.NewCalculationRepository(log, postgresDB),
		Settings:     postgres.NewSettingsRepository(log, postgresDB),
		Locks:        postgres.NewPeriodLockRepository(log, postgresDB),
		Subledger:    postgres.NewSubledgerRepository(log, postgresDB),
		Outbox:       postgres.NewOutboxRepository(log, postgresDB),
	}
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())
	if err := historyRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to prepare posting history collection", "error", err)
		os.Exit(1)
	}

	// Initialize services
	impairmentEngine := components.CreateEngine(postgresDB.Pool(), repos, locker, log)
	impairmentService := service.NewImpairmentService(
		log,
		impairmentEngine.Posting,
		impairmentEngine.Previews,
		impairmentEngine.Settings,
		impairmentEngine.Locks,
		repos.Calculations,
		repos.Ledger,
		repos.Accounts,
		cfg.Impairment.RecomputeOnPost,
	)
	historyService := service.NewHistoryService(log, historyRepo)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, impairmentService, historyService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if redisLocker != nil {
		if err = redisLocker.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
