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

	"github.com/lattice-erp/lattice/internal/app"
	"github.com/lattice-erp/lattice/internal/attendance"
	"github.com/lattice-erp/lattice/internal/auth"
	"github.com/lattice-erp/lattice/internal/catalog"
	"github.com/lattice-erp/lattice/internal/observability"
	"github.com/lattice-erp/lattice/internal/platform/cache"
	"github.com/lattice-erp/lattice/internal/platform/db"
	"github.com/lattice-erp/lattice/internal/reports"
	"github.com/lattice-erp/lattice/internal/sales"
	"github.com/lattice-erp/lattice/internal/users"
	"github.com/lattice-erp/lattice/jobs"
)

// reportRefresher flushes cached reports and queues a warmup whenever the
// order ledger changes.
type reportRefresher struct {
	reports *reports.Service
	jobs    *jobs.Client
	logger  *slog.Logger
}

func (r *reportRefresher) Invalidate(ctx context.Context) {
	r.reports.Invalidate(ctx)
	if _, err := r.jobs.EnqueueReportsWarmup(ctx, ""); err != nil {
		r.logger.Warn("enqueue reports warmup", slog.Any("error", err))
	}
}

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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache degraded", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)
	authMW := auth.Middleware{Tokens: tokens, Service: authService, Logger: logger}

	userService := users.NewService(logger, users.NewRepository(pool))
	userHandler := users.NewHandler(logger, userService, authMW)

	attendanceService := attendance.NewService(logger, attendance.NewRepository(pool), userService)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, authMW)

	catalogService := catalog.NewService(logger, catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService, authMW)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("report cache subscribe", slog.Any("error", err))
	}
	reportService := reports.NewService(logger, reports.NewRepository(pool), reportCache)
	reportHandler := reports.NewHandler(logger, reportService, authMW)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	salesService := sales.NewService(logger, sales.NewRepository(pool), &reportRefresher{
		reports: reportService,
		jobs:    jobsClient,
		logger:  logger,
	})
	salesHandler := sales.NewHandler(logger, salesService, authMW)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Config:            cfg,
		Metrics:           metrics,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		AttendanceHandler: attendanceHandler,
		CatalogHandler:    catalogHandler,
		SalesHandler:      salesHandler,
		ReportHandler:     reportHandler,
		JobHandler:        jobHandler,
		Middlewares: app.MiddlewareStack(app.MiddlewareConfig{
			Logger:  logger,
			Config:  cfg,
			Metrics: metrics,
		}),
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
