package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "funnel-copilot/docs"
	"funnel-copilot/internal/ai"
	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/broker"
	"funnel-copilot/internal/cache"
	"funnel-copilot/internal/config"
	"funnel-copilot/internal/database"
	"funnel-copilot/internal/repositories/kafkarepo"
	"funnel-copilot/internal/repositories/postgresrepo"
	"funnel-copilot/internal/repositories/redisrepo"
	"funnel-copilot/internal/services"
	"funnel-copilot/internal/transport/http/handler"
)

type Server struct {
	cfg        *config.Config
	httpServer *http.Server
}

// @title Funnel Copilot API
// @version 1.0
// @description Credit-metered marketing diagnosis and growth copilot service.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func NewServer() (*Server, error) {
	a := new(Server)

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

	// Connect to cache
	redis, err := cache.NewRedis(a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("cache connection error: %w", err)
	}

	// Connect to broker
	kafka, err := broker.NewKafkaWriter(a.cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("broker connection error: %w", err)
	}

	// Connect to the generation backend
	aiClient, err := ai.NewClient(context.Background(), a.cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("ai client error: %w", err)
	}

	// Initialize repositories
	walletRepo := postgresrepo.NewWalletRepository(db)
	reportRepo := postgresrepo.NewReportRepository(db)
	usageRepo := postgresrepo.NewUsageRepo(db)
	redisRepo := redisrepo.NewWalletRepository(redis)
	kafkaRepo := kafkarepo.NewUsageRepository(kafka)

	// Initialize the credit meter
	meter := billing.NewMeter(walletRepo, redisRepo, kafkaRepo)

	// Initialize services
	walletService := services.NewWalletService(walletRepo, redisRepo, meter)
	diagnosisService := services.NewDiagnosisService(meter, reportRepo, aiClient)
	copilotService := services.NewCopilotService(meter, aiClient)
	advisorService := services.NewAdvisorService(meter, reportRepo, usageRepo, aiClient)

	// Initialize mux and handlers
	mux := http.NewServeMux()

	handler.NewWallet(mux, walletService)
	handler.NewDiagnosis(mux, diagnosisService)
	handler.NewCopilot(mux, copilotService, advisorService)

	// Initialize http server
	a.httpServer = &http.Server{
		Addr:         a.cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return a, nil
}

func (a *Server) Run() error {
	fmt.Printf("Starting HTTP server on port %s\n", a.cfg.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
