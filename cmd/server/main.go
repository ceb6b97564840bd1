package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/mfreitas/devmarket/api"
	dbfs "github.com/mfreitas/devmarket/db"
	"github.com/mfreitas/devmarket/internal/config"
	"github.com/mfreitas/devmarket/internal/db"
	"github.com/mfreitas/devmarket/internal/jobs"
	"github.com/mfreitas/devmarket/internal/reconcile"
	"github.com/mfreitas/devmarket/internal/repository/sqlite"
	"github.com/mfreitas/devmarket/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	log.Printf("Starting devmarket server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations
	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// Avatar object storage: S3 when a bucket is configured, local disk otherwise
	var store storage.Store
	if cfg.Storage.Bucket != "" {
		store, err = storage.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.BaseURL)
	} else {
		baseURL := cfg.Storage.BaseURL
		if baseURL == "" {
			baseURL = cfg.SiteBaseURL + "/uploads"
		}
		store, err = storage.NewLocalStore(cfg.Storage.LocalDir, baseURL)
	}
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}

	// Background worker pool running the reconciliation sweep
	repo := sqlite.New(database, logger)
	reconciler := reconcile.New(repo, repo, repo, repo, logger)
	jobsRepo := jobs.NewRepository(database)
	handlers := map[string]jobs.Handler{
		jobs.TypeReconcileSweep: func(ctx context.Context, j *jobs.Job) error {
			report, err := reconciler.Sweep(ctx)
			if err != nil {
				return err
			}
			logger.Info("reconcile sweep finished",
				"applications", report.Applications,
				"conversations_created", report.ConversationsCreated,
				"messages_emitted", report.MessagesEmitted,
				"errors", report.Errors,
			)
			return nil
		},
	}
	pool := jobs.NewWorkerPool(jobsRepo, handlers, logger, cfg.WorkerCount)
	pool.Start(ctx)

	// Periodic sweep enqueue
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		if _, err := pool.Enqueue(ctx, jobs.TypeReconcileSweep, nil, 100, 3); err != nil {
			logger.Error("enqueue scheduled sweep", "err", err)
		}
	}); err != nil {
		log.Fatalf("Invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	scheduler.Start()

	handler, err := api.SetupRoutes(cfg, version, buildTime, database, store, pool)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Stop the scheduler and drain workers before closing the DB
	<-scheduler.Stop().Done()
	pool.Stop()

	if err := database.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
