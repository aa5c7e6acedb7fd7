package milestone

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
	"github.com/taskreel/lifecycle/internal/scoring"
)

// Service detects newly crossed milestone thresholds and records them
// as MILESTONE_REACHED events. Firing is idempotent: a threshold that
// already has a recorded event never fires again, no matter how often
// the check runs.
type Service interface {
	// Check fires every milestone the user has crossed but not yet
	// been credited for, returning the newly fired ones.
	Check(ctx context.Context, userID string) ([]domain.Milestone, error)

	// Fired returns all milestones already recorded for the user.
	Fired(ctx context.Context, userID string) ([]domain.Milestone, error)

	// Subscribe registers the checker on the bus so milestones fire as
	// a side effect of event tracking.
	Subscribe(bus event.Bus)
}

type service struct {
	events     repository.EventStore
	users      repository.UserStore
	scoring    scoring.Service
	milestones []domain.Milestone
	bus        event.Bus
}

// NewService creates a milestone service over the given threshold set.
func NewService(events repository.EventStore, users repository.UserStore, scoringSvc scoring.Service, milestones []domain.Milestone, bus event.Bus) Service {
	return &service{
		events:     events,
		users:      users,
		scoring:    scoringSvc,
		milestones: milestones,
		bus:        bus,
	}
}

func (s *service) Subscribe(bus event.Bus) {
	bus.Subscribe(event.LifecycleEventTracked, func(ctx context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.EventTrackedPayloadV1](evt.Payload)
		if err != nil {
			logger.FromContext(ctx).Warn("Undecodable tracked-event payload", "error", err)
			return nil
		}
		// Milestone and transition records are bookkeeping, not user
		// activity; reacting to them would loop.
		switch payload.EventType {
		case domain.EventMilestoneReached, domain.EventStageTransition:
			return nil
		}
		if _, err := s.Check(ctx, payload.UserID); err != nil {
			logger.FromContext(ctx).Error("Milestone check failed", "error", err, "user_id", payload.UserID)
		}
		return nil
	})
}

func (s *service) Check(ctx context.Context, userID string) ([]domain.Milestone, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now()
	userMetrics, err := s.scoring.MetricsFor(ctx, user, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	already, err := s.firedKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	var fired []domain.Milestone
	for _, m := range s.milestones {
		if _, done := already[key(m.Kind, m.Threshold)]; done {
			continue
		}
		if s.valueFor(m.Kind, user, userMetrics) < m.Threshold {
			continue
		}
		if err := s.record(ctx, userID, m, now); err != nil {
			return fired, err
		}
		fired = append(fired, m)
	}
	return fired, nil
}

func (s *service) Fired(ctx context.Context, userID string) ([]domain.Milestone, error) {
	events, err := s.events.ListByUser(ctx, userID, repository.EventQuery{
		Types: []domain.EventType{domain.EventMilestoneReached},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list milestone events: %w", err)
	}

	out := make([]domain.Milestone, 0, len(events))
	for _, ev := range events {
		if m, ok := milestoneFromEvent(ev); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *service) firedKeys(ctx context.Context, userID string) (map[string]struct{}, error) {
	fired, err := s.Fired(ctx, userID)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(fired))
	for _, m := range fired {
		keys[key(m.Kind, m.Threshold)] = struct{}{}
	}
	return keys, nil
}

// valueFor resolves the current metric a milestone kind tracks. Streaks
// use the longest streak so a crossed threshold stays crossed after the
// streak breaks.
func (s *service) valueFor(kind domain.MilestoneKind, user *domain.User, m domain.UserMetrics) float64 {
	switch kind {
	case domain.MilestoneEarnings:
		return user.TotalEarnings
	case domain.MilestoneTasks:
		return float64(m.TotalTasks)
	case domain.MilestoneReferrals:
		return float64(user.ReferralCount)
	case domain.MilestoneStreak:
		return float64(m.LongestStreak)
	default:
		return 0
	}
}

func (s *service) record(ctx context.Context, userID string, m domain.Milestone, now time.Time) error {
	ev := &domain.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domain.EventMilestoneReached,
		Source:    domain.SourceSystemTrigger,
		Timestamp: now,
		Metadata: map[string]interface{}{
			domain.MilestoneKeyKind:      string(m.Kind),
			domain.MilestoneKeyThreshold: m.Threshold,
			domain.MilestoneKeyLabel:     m.Label,
		},
	}
	if err := s.events.Append(ctx, ev); err != nil {
		return fmt.Errorf("failed to persist milestone: %w", err)
	}

	metrics.MilestonesFired.WithLabelValues(string(m.Kind)).Inc()

	logger.FromContext(ctx).Info("Milestone fired",
		"user_id", userID, "kind", m.Kind, "threshold", m.Threshold)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, event.NewMilestoneFiredEvent(userID, m)); err != nil {
			logger.FromContext(ctx).Warn("Failed to publish milestone", "error", err, "user_id", userID)
		}
	}
	return nil
}

func milestoneFromEvent(ev domain.Event) (domain.Milestone, bool) {
	if ev.Type != domain.EventMilestoneReached || ev.Metadata == nil {
		return domain.Milestone{}, false
	}
	kind, ok := ev.Metadata[domain.MilestoneKeyKind].(string)
	if !ok {
		return domain.Milestone{}, false
	}
	m := domain.Milestone{Kind: domain.MilestoneKind(kind)}
	switch v := ev.Metadata[domain.MilestoneKeyThreshold].(type) {
	case float64:
		m.Threshold = v
	case int:
		m.Threshold = float64(v)
	default:
		return domain.Milestone{}, false
	}
	if label, ok := ev.Metadata[domain.MilestoneKeyLabel].(string); ok {
		m.Label = label
	}
	return m, true
}
