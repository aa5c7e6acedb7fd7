package rules

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/taskreel/lifecycle/internal/concurrency"
	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/event"
	"github.com/taskreel/lifecycle/internal/logger"
	"github.com/taskreel/lifecycle/internal/metrics"
	"github.com/taskreel/lifecycle/internal/repository"
	"github.com/taskreel/lifecycle/internal/scoring"
)

// TransitionResult describes the outcome of one evaluation pass.
type TransitionResult struct {
	Transitioned bool                    `json:"transitioned"`
	Transition   *domain.StageTransition `json:"transition,omitempty"`
	Stage        domain.Stage            `json:"stage"`
	MatchedRule  string                  `json:"matched_rule,omitempty"`
}

// Engine evaluates the ordered transition rule set against a user's
// current state and persists at most one transition per pass.
type Engine interface {
	// Evaluate runs one rule evaluation pass for the user. Repeated
	// calls with no new events are no-ops.
	Evaluate(ctx context.Context, userID string, trigger domain.EventType) (*TransitionResult, error)

	// CurrentStage derives the user's stage from the most recent
	// STAGE_TRANSITION event, defaulting to domain.DefaultStage.
	CurrentStage(ctx context.Context, userID string) (domain.Stage, time.Time, error)

	// Force records a transition without rule evaluation, with an
	// audit reason and acting admin.
	Force(ctx context.Context, userID string, toStage domain.Stage, reason, adminID string) (*domain.StageTransition, error)

	// Subscribe registers the engine on the bus so every tracked event
	// triggers an evaluation pass.
	Subscribe(bus event.Bus)
}

type engine struct {
	events  repository.EventStore
	users   repository.UserStore
	scoring scoring.Service
	rules   []domain.TransitionRule
	locks   *concurrency.LockManager
	bus     event.Bus
}

// NewEngine creates a rule engine over the given rule set. Rules are
// sorted once by ascending priority; declaration order breaks ties.
func NewEngine(events repository.EventStore, users repository.UserStore, scoringSvc scoring.Service, ruleSet []domain.TransitionRule, bus event.Bus) Engine {
	sorted := make([]domain.TransitionRule, len(ruleSet))
	copy(sorted, ruleSet)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	return &engine{
		events:  events,
		users:   users,
		scoring: scoringSvc,
		rules:   sorted,
		locks:   concurrency.NewLockManager(),
		bus:     bus,
	}
}

// Subscribe wires the engine to tracked events. Evaluation failures are
// logged, never surfaced: one broken pass must not affect the tracker's
// caller.
func (e *engine) Subscribe(bus event.Bus) {
	bus.Subscribe(event.LifecycleEventTracked, func(ctx context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.EventTrackedPayloadV1](evt.Payload)
		if err != nil {
			logger.FromContext(ctx).Warn("Undecodable tracked-event payload", "error", err)
			return nil
		}
		if payload.SkipStageTransition || payload.EventType == domain.EventStageTransition {
			return nil
		}
		if _, err := e.Evaluate(ctx, payload.UserID, payload.EventType); err != nil {
			logger.FromContext(ctx).Error("Stage evaluation failed", "error", err, "user_id", payload.UserID)
		}
		return nil
	})
}

func (e *engine) CurrentStage(ctx context.Context, userID string) (domain.Stage, time.Time, error) {
	latest, err := e.events.LatestOfType(ctx, userID, domain.EventStageTransition)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load latest transition: %w", err)
	}
	if latest == nil {
		return domain.DefaultStage, time.Time{}, nil
	}

	t, ok := domain.TransitionFromEvent(*latest)
	if !ok {
		// Malformed transition metadata counts as no transition.
		logger.FromContext(ctx).Warn("Malformed stage transition metadata, defaulting stage",
			"user_id", userID, "event_id", latest.ID)
		return domain.DefaultStage, time.Time{}, nil
	}
	return t.ToStage, latest.Timestamp, nil
}

func (e *engine) Evaluate(ctx context.Context, userID string, trigger domain.EventType) (*TransitionResult, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}

	// Serialize evaluations per user: two concurrent passes over the
	// same history must not record contradictory transitions.
	mu := e.locks.GetLock(userID)
	mu.Lock()
	defer mu.Unlock()

	return e.evaluateLocked(ctx, userID, trigger)
}

func (e *engine) evaluateLocked(ctx context.Context, userID string, trigger domain.EventType) (*TransitionResult, error) {
	log := logger.FromContext(ctx)
	now := time.Now()

	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	stage, enteredAt, err := e.CurrentStage(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enteredAt.IsZero() {
		enteredAt = user.RegisteredAt
	}

	userMetrics, err := e.scoring.MetricsFor(ctx, user, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	evalCtx := EvalContext{
		User:            user,
		Stage:           stage,
		StageEnteredAt:  enteredAt,
		Metrics:         userMetrics,
		EngagementScore: e.scoring.EngagementFor(user, userMetrics),
		Counts:          newCountCache(ctx, e.events, userID, now),
		Now:             now,
	}

	for _, rule := range e.rules {
		if !rule.Matches(stage) {
			continue
		}
		if !allConditionsHold(rule, evalCtx) {
			continue
		}
		if rule.ToStage == stage {
			// Matched but already there; evaluation is idempotent.
			return &TransitionResult{Stage: stage, MatchedRule: rule.Name}, nil
		}

		transition, err := e.recordTransition(ctx, userID, stage, enteredAt, rule.ToStage, trigger, "", "", now)
		if err != nil {
			return nil, err
		}

		log.Info("Stage transition applied",
			"user_id", userID,
			"from", stage,
			"to", rule.ToStage,
			"rule", rule.Name)

		metrics.RuleEvaluations.WithLabelValues("transitioned").Inc()

		return &TransitionResult{
			Transitioned: true,
			Transition:   transition,
			Stage:        rule.ToStage,
			MatchedRule:  rule.Name,
		}, nil
	}

	metrics.RuleEvaluations.WithLabelValues("no_match").Inc()
	return &TransitionResult{Stage: stage}, nil
}

func (e *engine) Force(ctx context.Context, userID string, toStage domain.Stage, reason, adminID string) (*domain.StageTransition, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	if !domain.IsValidStage(toStage) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStage, toStage)
	}

	mu := e.locks.GetLock(userID)
	mu.Lock()
	defer mu.Unlock()

	stage, enteredAt, err := e.CurrentStage(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enteredAt.IsZero() {
		if user, uerr := e.users.Get(ctx, userID); uerr == nil {
			enteredAt = user.RegisteredAt
		}
	}

	now := time.Now()
	transition, err := e.recordTransition(ctx, userID, stage, enteredAt, toStage, domain.EventAdminAdjustment, reason, adminID, now)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Stage transition forced",
		"user_id", userID, "from", stage, "to", toStage, "admin_id", adminID, "reason", reason)

	return transition, nil
}

func (e *engine) recordTransition(ctx context.Context, userID string, from domain.Stage, enteredAt time.Time, to domain.Stage, trigger domain.EventType, reason, adminID string, now time.Time) (*domain.StageTransition, error) {
	fromStage := from
	days := 0
	if !enteredAt.IsZero() {
		days = int(now.Sub(enteredAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
	}

	transition := domain.StageTransition{
		FromStage:           &fromStage,
		ToStage:             to,
		TriggerEvent:        trigger,
		DaysInPreviousStage: days,
		Reason:              reason,
		AdminID:             adminID,
		Timestamp:           now,
	}

	source := domain.SourceSystemTrigger
	var evCtx *domain.EventContext
	if adminID != "" {
		source = domain.SourceAdminAction
		evCtx = &domain.EventContext{AdminID: adminID}
	}

	ev := &domain.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domain.EventStageTransition,
		Source:    source,
		Timestamp: now,
		Metadata:  transition.ToMetadata(),
		Context:   evCtx,
	}
	if err := e.events.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to persist stage transition: %w", err)
	}

	metrics.StageTransitions.WithLabelValues(string(from), string(to)).Inc()

	if e.bus != nil {
		if err := e.bus.Publish(ctx, event.NewStageChangedEvent(userID, transition)); err != nil {
			logger.FromContext(ctx).Warn("Failed to publish stage change", "error", err, "user_id", userID)
		}
	}

	return &transition, nil
}

// allConditionsHold is a conjunction over the rule's conditions. A
// rule with no conditions matches unconditionally, so stage gating
// for such a rule rests on FromStage alone.
func allConditionsHold(rule domain.TransitionRule, ctx EvalContext) bool {
	for _, cond := range rule.Conditions {
		if !evalCondition(cond, ctx) {
			return false
		}
	}
	return true
}
