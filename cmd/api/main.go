// Command api is the MediTrack alert server: it runs the time matcher and
// serves the alert check endpoints.
//
// Usage:
//
//	meditrack-api
//	API_PORT=8080 DEDUP_BACKEND=redis meditrack-api

// @title MediTrack Alerts API
// @version 1.0.0
// @description Medicine and appointment reminder alerts for polling clients.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name MediTrack
// @license.name MIT
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/meditrack-alerts/internal/alerts"
	"github.com/albapepper/meditrack-alerts/internal/api"
	"github.com/albapepper/meditrack-alerts/internal/auth"
	"github.com/albapepper/meditrack-alerts/internal/config"
	"github.com/albapepper/meditrack-alerts/internal/db"
	"github.com/albapepper/meditrack-alerts/internal/maintenance"
	"github.com/albapepper/meditrack-alerts/internal/push"
	"github.com/albapepper/meditrack-alerts/internal/schedule"

	_ "github.com/albapepper/meditrack-alerts/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("Applying schema...")
	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	queue, closeQueue, err := alerts.OpenQueue(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open alert queue", "backend", cfg.DedupBackend, "error", err)
		os.Exit(1)
	}
	defer closeQueue()
	logger.Info("Alert queue ready", "backend", cfg.DedupBackend)

	store := schedule.NewPGStore(pool.Pool)

	// Push is optional; a nil sender is a no-op.
	sender, err := push.NewSNSSender(ctx, cfg.SNSRegion, store, logger)
	if err != nil {
		logger.Error("Failed to configure SNS push", "error", err)
		os.Exit(1)
	}
	if sender != nil {
		logger.Info("SNS push enabled", "region", cfg.SNSRegion)
	} else {
		logger.Info("SNS push disabled (no SNS_REGION)")
	}

	dedup := alerts.NewDeduplicator(queue, store, alerts.TTLs{
		Medicine:    cfg.MedicineAlertTTL,
		Appointment: cfg.AppointmentAlertTTL,
	}, sender, logger)
	matcher := alerts.NewMatcher(store, dedup, time.Local, logger)
	go matcher.Run(ctx, cfg.TickInterval)

	mcfg := maintenance.DefaultConfig()
	mcfg.EvictInterval = cfg.EvictInterval
	go maintenance.Start(ctx, queue, mcfg, logger)

	router := api.NewRouter(api.Deps{
		Alerts: alerts.NewService(store, queue, time.Local, logger),
		DB:     pool,
		Queue:  queue,
		Tokens: auth.NewManager(cfg.JWTSecret, cfg.JWTTTL),
		Logger: logger,
	}, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting MediTrack Alerts API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
