// The sweep worker periodically materializes due recurring occurrences for
// every user with active templates, so catch-up does not depend on users
// signing in. It shares the engine, store, and sink with the API server; the
// read-path trigger and the sweep converge on the same rows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zoubayerBS/budgetbud-sub000/internal/config"
	"github.com/zoubayerBS/budgetbud-sub000/internal/database"
	"github.com/zoubayerBS/budgetbud-sub000/internal/logger"
	"github.com/zoubayerBS/budgetbud-sub000/internal/recurrence"
	"github.com/zoubayerBS/budgetbud-sub000/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	db := dbManager.DB()
	recurringService := services.NewRecurringService(db)
	transactionService := services.NewTransactionService(db)
	engine := recurrence.NewEngine(recurringService, transactionService, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := recurrence.NewSweeper(engine, appConfig.SweepInterval)

	log.Infof("Starting recurring sweep worker, interval %s", appConfig.SweepInterval)
	worker.Run(ctx)
	log.Info("Sweep worker stopped")
	return nil
}
