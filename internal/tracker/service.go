package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/event"
	"github.com/taskreel/lifecycle/internal/logger"
	"github.com/taskreel/lifecycle/internal/metrics"
	"github.com/taskreel/lifecycle/internal/repository"
)

// TrackRequest is one event to record. Zero Timestamp means now; zero
// Source means USER_ACTION.
type TrackRequest struct {
	UserID              string                 `json:"user_id"`
	Type                domain.EventType       `json:"event_type"`
	Source              domain.EventSource     `json:"source,omitempty"`
	Timestamp           time.Time              `json:"timestamp,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	Context             *domain.EventContext   `json:"context,omitempty"`
	SkipStageTransition bool                   `json:"skip_stage_transition,omitempty"`
}

// BatchItemError reports one rejected batch item by its input index.
type BatchItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult is the outcome of a batch: the events that were recorded
// plus the items that failed validation.
type BatchResult struct {
	Recorded []domain.Event   `json:"recorded"`
	Failed   []BatchItemError `json:"failed,omitempty"`
}

// Service records lifecycle events and answers history queries.
//
// Recording is fire-and-forget for callers: validation failures are
// returned, but a storage failure after validation is logged and
// swallowed so instrumented call sites never break on tracking.
type Service interface {
	// Track validates and records one event.
	Track(ctx context.Context, req TrackRequest) (*domain.Event, error)

	// TrackBatch records each request independently, in order. Invalid
	// items are reported in the result and do not stop the rest.
	TrackBatch(ctx context.Context, reqs []TrackRequest) *BatchResult

	// History returns the user's events newest-first.
	History(ctx context.Context, userID string, q repository.EventQuery) ([]domain.Event, error)

	// Counts returns per-type event counts, optionally since a cutoff.
	Counts(ctx context.Context, userID string, types []domain.EventType, since *time.Time) (map[domain.EventType]int, error)

	// HasTriggered reports whether the user ever produced the event type.
	HasTriggered(ctx context.Context, userID string, t domain.EventType) (bool, error)

	// FirstEvent returns the user's earliest event of the type, or nil.
	FirstEvent(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error)
}

type service struct {
	events repository.EventStore
	bus    event.Bus
}

// NewService creates a new tracker service
func NewService(events repository.EventStore, bus event.Bus) Service {
	return &service{events: events, bus: bus}
}

func (s *service) Track(ctx context.Context, req TrackRequest) (*domain.Event, error) {
	ev, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	s.record(ctx, ev, req.SkipStageTransition)
	return ev, nil
}

func (s *service) TrackBatch(ctx context.Context, reqs []TrackRequest) *BatchResult {
	res := &BatchResult{Recorded: make([]domain.Event, 0, len(reqs))}
	for i, req := range reqs {
		ev, err := s.validate(req)
		if err != nil {
			res.Failed = append(res.Failed, BatchItemError{Index: i, Error: err.Error()})
			continue
		}
		s.record(ctx, ev, req.SkipStageTransition)
		res.Recorded = append(res.Recorded, *ev)
	}
	return res
}

func (s *service) validate(req TrackRequest) (*domain.Event, error) {
	if req.UserID == "" {
		return nil, domain.ErrUserIDRequired
	}
	if !domain.IsKnownEventType(req.Type) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEventType, req.Type)
	}

	ev := &domain.Event{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Type:      req.Type,
		Source:    req.Source,
		Timestamp: req.Timestamp,
		Metadata:  req.Metadata,
		Context:   req.Context,
	}
	if ev.Source == "" {
		ev.Source = domain.SourceUserAction
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return ev, nil
}

// record persists and announces one validated event. Storage failures
// are logged, never returned, and suppress the bus publish so
// downstream consumers only ever see persisted events.
func (s *service) record(ctx context.Context, ev *domain.Event, skipStageTransition bool) {
	log := logger.FromContext(ctx)

	if err := s.events.Append(ctx, ev); err != nil {
		log.Error("Failed to persist event",
			"error", err, "user_id", ev.UserID, "event_type", ev.Type)
		return
	}

	metrics.EventsTracked.WithLabelValues(string(ev.Type), string(ev.Source)).Inc()

	log.Debug("Event tracked", "user_id", ev.UserID, "event_type", ev.Type)

	if s.bus != nil {
		evt := event.NewEventTrackedEvent(ev.UserID, ev.Type, ev.Timestamp, skipStageTransition)
		if err := s.bus.Publish(ctx, evt); err != nil {
			log.Warn("Failed to publish tracked event",
				"error", err, "user_id", ev.UserID, "event_type", ev.Type)
		}
	}
}

func (s *service) History(ctx context.Context, userID string, q repository.EventQuery) ([]domain.Event, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	events, err := s.events.ListByUser(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *service) Counts(ctx context.Context, userID string, types []domain.EventType, since *time.Time) (map[domain.EventType]int, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	counts, err := s.events.CountByUser(ctx, userID, types, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	return counts, nil
}

func (s *service) HasTriggered(ctx context.Context, userID string, t domain.EventType) (bool, error) {
	first, err := s.FirstEvent(ctx, userID, t)
	if err != nil {
		return false, err
	}
	return first != nil, nil
}

func (s *service) FirstEvent(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	first, err := s.events.FirstOfType(ctx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to load first event: %w", err)
	}
	return first, nil
}
