// Package main provides the API server entry point for the club leaderboard service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/club-leaderboard/internal/api"
	"github.com/club-leaderboard/internal/config"
	"github.com/club-leaderboard/internal/highlights"
	"github.com/club-leaderboard/internal/logging"
	"github.com/club-leaderboard/internal/storage"
	"github.com/club-leaderboard/internal/strava"
	syncsvc "github.com/club-leaderboard/internal/sync"
)

func main() {
	fmt.Println("Club Leaderboard API Server")
	log.Println("Server starting...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize database connections
	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Repositories
	accountRepo := storage.NewAccountRepository(postgres)
	segmentRepo := storage.NewSegmentRepository(postgres)
	effortRepo := storage.NewEffortRepository(postgres)
	activityRepo := storage.NewActivityRepository(postgres)
	crownRepo := storage.NewCrownRepository(postgres)
	boardRepo := storage.NewLeaderboardRepository(postgres)
	highlightRepo := storage.NewHighlightRepository(postgres)
	auditRepo := storage.NewSyncLogRepository(postgres)

	segmentCache := storage.NewSegmentCache(redis, cfg.Cache.TTL)

	// External API client
	client := strava.NewClient(&strava.ClientConfig{
		ClientID:       cfg.Strava.ClientID,
		ClientSecret:   cfg.Strava.ClientSecret,
		RequestTimeout: cfg.Strava.RequestTimeout,
		CourtesyDelay:  cfg.Strava.CourtesyDelay,
	})

	// Sync pipeline
	syncService, err := syncsvc.NewService(&syncsvc.ServiceConfig{
		Client:     client,
		Accounts:   accountRepo,
		Efforts:    effortRepo,
		Activities: activityRepo,
		Crowns:     crownRepo,
		Board:      boardRepo,
		Highlights: highlightRepo,
		Audit:      auditRepo,
		Cache:      segmentCache,
		Generator:  highlights.NewGenerator(),
		Sync:       cfg.Sync,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create sync service")
	}

	// HTTP server
	server := api.NewServer(
		&api.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		&api.ServerDeps{
			SyncService: syncService,
			Accounts:    accountRepo,
			Segments:    segmentRepo,
			Board:       boardRepo,
			Crowns:      crownRepo,
			Highlights:  highlightRepo,
			Cache:       segmentCache,
		},
	)

	// Start server and wait for shutdown signal
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("Server failed")
		}
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Shutting down...")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Graceful shutdown failed")
		}
	}

	logger.Info("Server stopped")
}
