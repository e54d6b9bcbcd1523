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

	"github.com/campus-ledger/campus/internal/app"
	"github.com/campus-ledger/campus/internal/finance"
	"github.com/campus-ledger/campus/internal/inventory"
	"github.com/campus-ledger/campus/internal/ledger"
	"github.com/campus-ledger/campus/internal/ledger/reports"
	"github.com/campus-ledger/campus/internal/observability"
	"github.com/campus-ledger/campus/internal/payroll"
	"github.com/campus-ledger/campus/internal/platform/cache"
	"github.com/campus-ledger/campus/internal/platform/db"
	"github.com/campus-ledger/campus/internal/posting"
	"github.com/campus-ledger/campus/internal/procurement"
	"github.com/campus-ledger/campus/internal/users"
	"github.com/campus-ledger/campus/jobs"
)

func main() {
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
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	if cfg.SeedChart {
		if err := ledger.Seed(ctx, pool); err != nil {
			logger.Error("seed chart of accounts", slog.Any("error", err))
			os.Exit(1)
		}
	}

	registry := ledger.NewRegistry(ledger.NewRoleSource(pool))
	if err := registry.Validate(ctx); err != nil {
		logger.Error("account role registry invalid", slog.Any("error", err))
		os.Exit(1)
	}

	reportCache := cache.NewCache(redisClient, cfg.ReportCacheTTL)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, reportCache, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, reportCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	failureStore := posting.NewFailureStore(pool)
	poster := posting.NewService(ledgerService, registry, failureStore, logger, cfg.SystemUserID)
	postingHandler := posting.NewHandler(logger, failureStore)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo, poster, logger)
	financeHandler := finance.NewHandler(logger, financeService)

	payrollRepo := payroll.NewRepository(pool)
	payrollService := payroll.NewService(payrollRepo, poster, logger)
	payrollHandler := payroll.NewHandler(logger, payrollService)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, poster, logger)
	procurementHandler := procurement.NewHandler(logger, procurementService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, poster, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		LedgerHandler:      ledgerHandler,
		ReportsHandler:     reportsHandler,
		FinanceHandler:     financeHandler,
		PayrollHandler:     payrollHandler,
		ProcurementHandler: procurementHandler,
		InventoryHandler:   inventoryHandler,
		PostingHandler:     postingHandler,
		UsersHandler:       usersHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
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
