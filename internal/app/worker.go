package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"funnel-copilot/internal/config"
	"funnel-copilot/internal/database"
	"funnel-copilot/internal/repositories/postgresrepo"
	"funnel-copilot/internal/services"
	"funnel-copilot/internal/worker"

	log "github.com/sirupsen/logrus"
)

type Worker struct {
	cfg              *config.Config
	partitionManager *worker.PartitionManager
	scheduler        *worker.Scheduler
}

func NewWorker() (*Worker, error) {
	a := new(Worker)

	// Initialize config
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	a.cfg = cfg

	// Connect to database
	db, err := database.NewPostgres(a.cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	// Initialize repositories and services
	usageRepo := postgresrepo.NewUsageRepo(db)
	settlementService := services.NewSettlementService(usageRepo)

	a.partitionManager = worker.NewPartitionManager(a.cfg, settlementService)
	a.scheduler = worker.NewScheduler(usageRepo)

	return a, nil
}

func (a *Worker) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	if err := a.scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("weekly rollup scheduler failed to start")
	}
	defer a.scheduler.Stop()

	if err := a.partitionManager.Start(ctx); err != nil {
		log.WithError(err).Fatal("settlement workers failed to start")
	}
}
