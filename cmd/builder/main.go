package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/matthinz/idv-journey-analytics/internal/config"
	"github.com/matthinz/idv-journey-analytics/internal/journey"
	"github.com/matthinz/idv-journey-analytics/internal/logger"
	"github.com/matthinz/idv-journey-analytics/internal/pipeline"
	"github.com/matthinz/idv-journey-analytics/internal/repository/clickhouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting journey builder",
		zap.String("environment", cfg.Service.Environment),
		zap.Int("workers", cfg.Builder.Workers))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop the build on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down journey builder")
		cancel()
	}()

	// Initialize ClickHouse client
	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	// Initialize repositories
	eventRepo := clickhouse.NewEventRepository(chClient, log)
	journeyRepo := clickhouse.NewJourneyRepository(chClient, log)

	// Initialize schema (create tables if not exist)
	if err := eventRepo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize events schema", zap.Error(err))
	}
	if err := journeyRepo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize journeys schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	flow := journey.DefaultFlow()
	flow.InactivityTimeout = time.Duration(cfg.Builder.InactivityTimeoutMin) * time.Minute

	p := pipeline.New(eventRepo, journeyRepo, flow, pipeline.Config{
		Workers:      cfg.Builder.Workers,
		BatchSize:    cfg.Builder.BatchSize,
		FlushTimeout: time.Duration(cfg.Builder.FlushTimeoutSec) * time.Second,
		FailFast:     cfg.Builder.FailFast,
	}, log)

	start := time.Now()
	stats, err := p.Run(ctx)
	if err != nil {
		log.Fatal("Journey build failed",
			zap.Uint64("users", stats.Users),
			zap.Uint64("journeys", stats.Journeys),
			zap.Uint64("facts_written", stats.FactsWritten),
			zap.Uint64("journeys_failed", stats.JourneysFailed),
			zap.Error(err))
	}

	log.Info("Journey build complete",
		zap.Uint64("users", stats.Users),
		zap.Uint64("journeys", stats.Journeys),
		zap.Uint64("facts_written", stats.FactsWritten),
		zap.Uint64("journeys_failed", stats.JourneysFailed),
		zap.Duration("elapsed", time.Since(start)))
}
