package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/miwanzo/internal/database"
	"github.com/hugh/miwanzo/internal/jobs"
	"github.com/hugh/miwanzo/pkg/config"
	"github.com/hugh/miwanzo/pkg/queue"
	"github.com/hugh/miwanzo/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting Miwanzo worker", "concurrency", cfg.Worker.Concurrency)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	handler := jobs.NewHandler(db, logger)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	scheduler := queue.NewScheduler(&cfg.Redis, logger)
	entryID, err := jobs.Schedule(scheduler, cfg.Worker.SessionPruneCron)
	if err != nil {
		logger.Error("failed to schedule session pruning", "error", err)
		os.Exit(1)
	}
	logger.Info("scheduled session pruning", "entry_id", entryID, "cron", cfg.Worker.SessionPruneCron)

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency)
	if err := srv.Start(mux); err != nil {
		logger.Error("failed to start worker", "error", err)
		scheduler.Shutdown()
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()

	logger.Info("worker stopped")
}
