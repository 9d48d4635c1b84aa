package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/messaging"
	pgRepo "github.com/bibbank/creditrisk/internal/infrastructure/postgres"
	"github.com/bibbank/creditrisk/internal/presentation/rest"
	"github.com/bibbank/creditrisk/pkg/auth"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
	"github.com/bibbank/creditrisk/pkg/observability"
	pkgpostgres "github.com/bibbank/creditrisk/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load and validate configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting creditrisk-service",
		"http_port", cfg.HTTPPort,
		"score_threshold", cfg.Scoring.Threshold,
		"overwrite_policy", cfg.Scoring.OverwritePolicy,
	)

	// Metrics.
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Wire infrastructure adapters.
	recordRepo := pgRepo.NewLoanRecordRepo(pool)
	artifactRepo := pgRepo.NewArtifactRepo(pool)

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := messaging.NewKafkaEventPublisher(kafkaProducer, logger)

	// Wire domain services.
	encoder := service.NewFeatureEncoder()

	trainerCfg := service.DefaultTrainerConfig()
	trainerCfg.MinRecords = cfg.Training.MinRecords
	trainer := service.NewTrainer(valueobject.FeatureSchemaV1(), trainerCfg)

	scorer, err := service.NewScorer(cfg.Scoring.Threshold, cfg.Scoring.ReasonCodeCount)
	if err != nil {
		logger.Error("invalid scorer configuration", "error", err)
		os.Exit(1)
	}
	policy, err := valueobject.NewOverwritePolicy(cfg.Scoring.OverwritePolicy)
	if err != nil {
		logger.Error("invalid overwrite policy", "error", err)
		os.Exit(1)
	}

	// Wire use cases.
	trainUC := usecase.NewTrainModelUseCase(recordRepo, artifactRepo, publisher, encoder, trainer)
	scoreUC := usecase.NewScoreLoanUseCase(recordRepo, artifactRepo, publisher, encoder, scorer, policy)
	getScoreUC := usecase.NewGetScoreUseCase(recordRepo)

	// JWT service (validation-only against the gateway's signing key; RSA
	// public key when provided, shared HMAC secret otherwise).
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Issuer:       "bib-gateway",
		Secret:       cfg.JWTSecret,
		PublicKeyPEM: cfg.JWTPublicKey,
	})
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// HTTP server: authenticated API routes plus open health and metrics.
	apiMux := http.NewServeMux()
	riskHandler := rest.NewRiskHandler(trainUC, scoreUC, getScoreUC, logger)
	riskHandler.RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/v1/", auth.HTTPMiddleware(jwtSvc)(apiMux))
	mux.Handle("GET /metrics", metricsHandler)
	healthHandler := rest.NewHealthHandler(pool, logger)
	healthHandler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("creditrisk-service stopped")
}
