package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// EventSchemaVersion is the current event schema version
const EventSchemaVersion = "1.0"

// Type represents the type of an in-process event
type Type string

// In-process event types published on the bus. These are distinct from
// domain.EventType: bus events coordinate components inside the
// process, domain events are the persisted facts about users.
const (
	LifecycleEventTracked   Type = "lifecycle.event_tracked"
	LifecycleStageChanged   Type = "lifecycle.stage_changed"
	LifecycleMilestoneFired Type = "lifecycle.milestone_fired"
	LifecycleDailyCheckDone Type = "lifecycle.daily_check_done"
)

// Event represents a generic in-process event
type Event struct {
	Version  string      `json:"version"`
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// EventTrackedPayloadV1 is published after a domain event is persisted.
// Subscribers (rule engine, milestone checker) react to it best-effort.
type EventTrackedPayloadV1 struct {
	UserID              string           `json:"user_id"`
	EventType           domain.EventType `json:"event_type"`
	Timestamp           time.Time        `json:"timestamp"`
	SkipStageTransition bool             `json:"skip_stage_transition,omitempty"`
}

// StageChangedPayloadV1 is published after a stage transition persists.
type StageChangedPayloadV1 struct {
	UserID              string           `json:"user_id"`
	FromStage           string           `json:"from_stage,omitempty"`
	ToStage             string           `json:"to_stage"`
	TriggerEvent        domain.EventType `json:"trigger_event,omitempty"`
	DaysInPreviousStage int              `json:"days_in_previous_stage"`
}

// MilestoneFiredPayloadV1 is published when a milestone threshold is crossed.
type MilestoneFiredPayloadV1 struct {
	UserID    string  `json:"user_id"`
	Kind      string  `json:"kind"`
	Threshold float64 `json:"threshold"`
	Label     string  `json:"label"`
}

// DailyCheckDonePayloadV1 is published after a daily batch check pass.
type DailyCheckDonePayloadV1 struct {
	UsersChecked           int       `json:"users_checked"`
	InactivityEventsLogged int       `json:"inactivity_events_logged"`
	StageTransitions       int       `json:"stage_transitions"`
	StartedAt              time.Time `json:"started_at"`
	DurationMs             int64     `json:"duration_ms"`
}

// NewEventTrackedEvent creates the bus event emitted after persisting a
// domain event.
func NewEventTrackedEvent(userID string, eventType domain.EventType, ts time.Time, skipStageTransition bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LifecycleEventTracked,
		Payload: EventTrackedPayloadV1{
			UserID:              userID,
			EventType:           eventType,
			Timestamp:           ts,
			SkipStageTransition: skipStageTransition,
		},
	}
}

// NewStageChangedEvent creates the bus event emitted after a transition.
func NewStageChangedEvent(userID string, t domain.StageTransition) Event {
	p := StageChangedPayloadV1{
		UserID:              userID,
		ToStage:             string(t.ToStage),
		TriggerEvent:        t.TriggerEvent,
		DaysInPreviousStage: t.DaysInPreviousStage,
	}
	if t.FromStage != nil {
		p.FromStage = string(*t.FromStage)
	}
	return Event{Version: EventSchemaVersion, Type: LifecycleStageChanged, Payload: p}
}

// NewMilestoneFiredEvent creates the bus event for a crossed milestone.
func NewMilestoneFiredEvent(userID string, m domain.Milestone) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LifecycleMilestoneFired,
		Payload: MilestoneFiredPayloadV1{
			UserID:    userID,
			Kind:      string(m.Kind),
			Threshold: m.Threshold,
			Label:     m.Label,
		},
	}
}

// NewDailyCheckDoneEvent creates the bus event emitted after a daily
// check pass completes.
func NewDailyCheckDoneEvent(p DailyCheckDonePayloadV1) Event {
	return Event{Version: EventSchemaVersion, Type: LifecycleDailyCheckDone, Payload: p}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the event bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish delivers the event to all subscribers synchronously. Handler
// errors are collected so one failing subscriber does not starve the rest.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("encountered %d errors while handling event %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
