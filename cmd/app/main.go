package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskreel/lifecycle/internal/analytics"
	"github.com/taskreel/lifecycle/internal/bootstrap"
	"github.com/taskreel/lifecycle/internal/config"
	"github.com/taskreel/lifecycle/internal/database"
	"github.com/taskreel/lifecycle/internal/handler"
	"github.com/taskreel/lifecycle/internal/lifecycle"
	"github.com/taskreel/lifecycle/internal/milestone"
	"github.com/taskreel/lifecycle/internal/rules"
	"github.com/taskreel/lifecycle/internal/scheduler"
	"github.com/taskreel/lifecycle/internal/scoring"
	"github.com/taskreel/lifecycle/internal/segment"
	"github.com/taskreel/lifecycle/internal/server"
	"github.com/taskreel/lifecycle/internal/tracker"
	"github.com/taskreel/lifecycle/internal/worker"
)

// Database pool sizing
const (
	dbMaxConns       = 25
	dbMaxIdleTime    = 5 * time.Minute
	dbMaxLifetime    = 30 * time.Minute
	shutdownDeadline = 15 * time.Second
)

// Background job configuration
const (
	poolWorkers        = 2
	poolQueueSize      = 16
	stageGaugeInterval = 15 * time.Minute
	stageGaugeWindow   = 30 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Logger setup failed", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	warnings, err := config.ValidateEnvWithWarnings()
	for _, w := range warnings {
		slog.Warn(w)
	}
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbPool, err := database.NewPool(cfg.GetDBConnString(), dbMaxConns, dbMaxIdleTime, dbMaxLifetime)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := bootstrap.EnsureSchema(ctx, dbPool); err != nil {
		slog.Error("Schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	eventBus, resilientPublisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		slog.Error("Event system initialization failed", "error", err)
		os.Exit(1)
	}

	stores := bootstrap.InitializeStores(dbPool)

	// Core services
	scoringService := scoring.NewService(stores.Events)
	ruleEngine := rules.NewEngine(stores.Events, stores.Users, scoringService, rules.DefaultRules(), eventBus)
	trackerService := tracker.NewService(stores.Events, eventBus)
	milestoneService := milestone.NewService(stores.Events, stores.Users, scoringService, milestone.DefaultMilestones(), eventBus)
	analyticsService := analytics.NewService(stores.Events, stores.Users, scoringService, segment.DefaultRules())
	lifecycleService := lifecycle.NewService(stores.Users, stores.Events, trackerService, ruleEngine, scoringService, analyticsService, segment.DefaultRules(), eventBus)

	deps := bootstrap.EventHandlerDependencies{
		EventBus:         eventBus,
		RuleEngine:       ruleEngine,
		MilestoneService: milestoneService,
		LifecycleService: lifecycleService,
	}
	if err := bootstrap.RegisterEventHandlers(deps); err != nil {
		slog.Error("Event handler registration failed", "error", err)
		os.Exit(1)
	}

	handler.InitValidator()

	dailyCheckWorker := worker.NewDailyCheckWorker(lifecycleService, cfg.DailyCheckHour)
	dailyCheckWorker.Start()

	jobPool := worker.NewPool(poolWorkers, poolQueueSize)
	jobPool.Start()
	jobScheduler := scheduler.New(jobPool)
	jobScheduler.Schedule(stageGaugeInterval, worker.NewStageGaugeJob(analyticsService, stageGaugeWindow))

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, dbPool, trackerService, lifecycleService, analyticsService)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		slog.Info("Shutdown signal received", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		DailyCheckWorker:   dailyCheckWorker,
		Scheduler:          jobScheduler,
		WorkerPool:         jobPool,
		ResilientPublisher: resilientPublisher,
	})
}
