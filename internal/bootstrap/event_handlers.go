package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/taskreel/lifecycle/internal/event"
	"github.com/taskreel/lifecycle/internal/lifecycle"
	"github.com/taskreel/lifecycle/internal/metrics"
	"github.com/taskreel/lifecycle/internal/milestone"
	"github.com/taskreel/lifecycle/internal/rules"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus         event.Bus
	RuleEngine       rules.Engine
	MilestoneService milestone.Service
	LifecycleService lifecycle.Service
}

// RegisterEventHandlers sets up all event bus subscribers.
// This includes:
// - Stage rule engine (re-evaluates stages when events are tracked)
// - Milestone watcher (fires milestone events on threshold crossings)
// - Lifecycle snapshot cache invalidation
// - Metrics collector (for event-based metrics)
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	deps.RuleEngine.Subscribe(deps.EventBus)
	slog.Info(LogMsgRuleEngineSubscribed)

	deps.MilestoneService.Subscribe(deps.EventBus)
	slog.Info(LogMsgMilestonesSubscribed)

	deps.LifecycleService.Subscribe(deps.EventBus)
	slog.Info(LogMsgSnapshotCacheSubscribed)

	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	return nil
}
