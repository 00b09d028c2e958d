package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/provender-erp/provender/internal/app"
	jobmetrics "github.com/provender-erp/provender/internal/jobs"
	"github.com/provender-erp/provender/internal/masterdata"
	"github.com/provender-erp/provender/internal/payments"
	"github.com/provender-erp/provender/internal/platform/cache"
	"github.com/provender-erp/provender/internal/platform/db"
	"github.com/provender-erp/provender/internal/stock"
	"github.com/provender-erp/provender/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	refdataRepo := masterdata.NewRepository(pool)

	stockRepo := stock.NewRepository(pool)
	stockCache := stock.NewCache(redisClient, cfg.SnapshotCacheTTL)
	stockService := stock.NewService(stockRepo, refdataRepo, stockCache, nil, logger)

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(paymentsRepo, refdataRepo, nil, logger)

	warmupJob := jobs.NewSnapshotWarmupJob(stockService, paymentsService, logger, jobmetrics.NewMetrics(nil))

	warmupTask, err := jobs.NewSnapshotWarmupTask(jobs.SnapshotWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSnapshotWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
