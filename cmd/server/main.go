package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zonewatch/zonewatch/internal"
	"github.com/zonewatch/zonewatch/internal/executor"
	"github.com/zonewatch/zonewatch/internal/executor/mock"
	"github.com/zonewatch/zonewatch/internal/executor/openai"
	"github.com/zonewatch/zonewatch/internal/handler"
	"github.com/zonewatch/zonewatch/internal/registry"
	"github.com/zonewatch/zonewatch/internal/scheduler"
	"github.com/zonewatch/zonewatch/internal/snapshot"
	"github.com/zonewatch/zonewatch/internal/tracker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Load zone registry
	zones, err := registry.Load(cfg.ZonesFile, cfg.DefaultScanInterval)
	if err != nil {
		return fmt.Errorf("zone registry failed: %w", err)
	}
	logger.Info("Zone registry loaded", "zones", zones.Len(), "file", cfg.ZonesFile)

	// Initialize lifecycle tracker
	var tr tracker.Tracker
	switch cfg.TrackerBackend {
	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		if err := internal.RunMigrations(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database ready")
		tr = tracker.NewPostgres(db)
	default:
		tr = tracker.NewMemory()
	}

	// Initialize snapshot source
	var snapshots snapshot.Source
	switch cfg.SnapshotProvider {
	case "s3":
		snapshots, err = snapshot.NewS3(snapshot.S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
		}, logger)
	default:
		snapshots, err = snapshot.NewLocal(cfg.SnapshotDir, logger)
	}
	if err != nil {
		return fmt.Errorf("snapshot source failed: %w", err)
	}

	// Initialize executor
	var exec executor.Executor
	switch cfg.ExecutorProvider {
	case "openai":
		exec, err = openai.New(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Config: executor.Config{
				MaxRetries:     cfg.ExecutorMaxRetries,
				RetryBaseDelay: cfg.ExecutorRetryDelay,
				RequestTimeout: cfg.ExecutorTimeout,
			},
		}, zones, snapshots, logger)
		if err != nil {
			return fmt.Errorf("executor initialization failed: %w", err)
		}
	default:
		exec = mock.New(logger)
	}
	logger.Info("Executor ready", "provider", cfg.ExecutorProvider)

	// Initialize scheduler and periodic scans
	sched, err := scheduler.New(exec, tr, scheduler.Config{
		Workers:       cfg.AnalysisWorkers,
		MaxConcurrent: cfg.MaxConcurrentAnalyses,
		MaxRetries:    cfg.MaxRetries,
		DrainTimeout:  cfg.DrainTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("scheduler initialization failed: %w", err)
	}
	sched.Start(ctx)

	periodic := scheduler.NewPeriodic(sched, zones, logger)
	periodic.Start(ctx)

	// ==========================================================================
	// Create router and start server
	// ==========================================================================

	api := handler.NewAPI(sched, tr, zones, logger)
	router := api.Router()
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Stop enqueuing scheduled scans before draining the workers.
	periodic.Stop()
	if err := sched.Stop(); err != nil {
		logger.Error("Scheduler shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
