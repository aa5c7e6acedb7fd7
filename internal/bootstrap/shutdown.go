package bootstrap

import (
	"context"
	"log/slog"

	"github.com/taskreel/lifecycle/internal/event"
	"github.com/taskreel/lifecycle/internal/scheduler"
	"github.com/taskreel/lifecycle/internal/server"
	"github.com/taskreel/lifecycle/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server             *server.Server
	DailyCheckWorker   *worker.DailyCheckWorker
	Scheduler          *scheduler.Scheduler
	WorkerPool         *worker.Pool
	ResilientPublisher *event.ResilientPublisher
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in order:
// 1. HTTP server (stop accepting new requests)
// 2. Workers and scheduler (cancel pending timers, finish queued jobs)
// 3. Event publisher (flush pending retries to keep the event log consistent)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	if components.DailyCheckWorker != nil {
		if err := components.DailyCheckWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgDailyCheckWorkerFailed, "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}

	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	slog.Info(LogMsgShuttingDownEventPublisher)
	if err := components.ResilientPublisher.Drain(ctx); err != nil {
		slog.Error(LogMsgPublisherDrainFailed, "error", err)
	}

	slog.Info(LogMsgServerStopped)
}
