package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/provender-erp/provender/internal/app"
	"github.com/provender-erp/provender/internal/masterdata"
	"github.com/provender-erp/provender/internal/observability"
	"github.com/provender-erp/provender/internal/payments"
	"github.com/provender-erp/provender/internal/platform/cache"
	"github.com/provender-erp/provender/internal/platform/db"
	"github.com/provender-erp/provender/internal/stock"
	"github.com/provender-erp/provender/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	metrics := observability.NewMetrics()

	refdataRepo := masterdata.NewRepository(dbpool)

	stockRepo := stock.NewRepository(dbpool)
	stockCache := stock.NewCache(redisClient, cfg.SnapshotCacheTTL)
	stockService := stock.NewService(stockRepo, refdataRepo, stockCache, metrics, logger)
	stockHandler := stock.NewHandler(logger, stockService)

	paymentsRepo := payments.NewRepository(dbpool)
	paymentsService := payments.NewService(paymentsRepo, refdataRepo, metrics, logger)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		StockHandler:    stockHandler,
		PaymentsHandler: paymentsHandler,
		JobsHandler:     jobsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
