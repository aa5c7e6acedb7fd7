package metrics

import (
	"context"

	"github.com/taskreel/lifecycle/internal/event"
	"github.com/taskreel/lifecycle/internal/logger"
)

// EventMetricsCollector subscribes to bus events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.LifecycleEventTracked,
		event.LifecycleStageChanged,
		event.LifecycleMilestoneFired,
		event.LifecycleDailyCheckDone,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.LifecycleMilestoneFired:
		payload, err := event.DecodePayload[event.MilestoneFiredPayloadV1](evt.Payload)
		if err != nil {
			log.Debug("Milestone payload not decodable", "error", err)
			return nil
		}
		MilestonesFired.WithLabelValues(payload.Kind).Inc()

	case event.LifecycleDailyCheckDone:
		DailyChecksRun.Inc()
	}

	return nil
}
