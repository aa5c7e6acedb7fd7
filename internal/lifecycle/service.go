package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskreel/lifecycle/internal/analytics"
	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/event"
	"github.com/taskreel/lifecycle/internal/logger"
	"github.com/taskreel/lifecycle/internal/metrics"
	"github.com/taskreel/lifecycle/internal/repository"
	"github.com/taskreel/lifecycle/internal/rules"
	"github.com/taskreel/lifecycle/internal/scoring"
	"github.com/taskreel/lifecycle/internal/segment"
	"github.com/taskreel/lifecycle/internal/tracker"
)

const (
	snapshotCacheSize = 8192
	snapshotCacheTTL  = 5 * time.Minute

	// snapshotConcurrency bounds parallel snapshot computation in
	// list reads and the daily check.
	snapshotConcurrency = 8
	snapshotPageSize    = 500

	defaultPageLimit = 50
	maxPageLimit     = 200
)

// Filters narrows a snapshot listing. Zero-valued fields do not
// constrain; MaxEngagement of zero means unbounded.
type Filters struct {
	Stages        []domain.Stage   `json:"stages,omitempty"`
	Segments      []domain.Segment `json:"segments,omitempty"`
	MinEngagement int              `json:"min_engagement,omitempty"`
	MaxEngagement int              `json:"max_engagement,omitempty"`
}

// Page selects one page of a listing. A zero or negative Limit falls
// back to the default page size.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PaginatedSnapshots is one page of snapshots plus the total number of
// users matching the filters.
type PaginatedSnapshots struct {
	Snapshots []domain.Snapshot `json:"snapshots"`
	Total     int               `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// DailyCheckResult summarizes one daily batch pass.
type DailyCheckResult struct {
	UsersChecked           int           `json:"users_checked"`
	InactivityEventsLogged int           `json:"inactivity_events_logged"`
	StageTransitions       int           `json:"stage_transitions"`
	StartedAt              time.Time     `json:"started_at"`
	Duration               time.Duration `json:"duration"`
}

// Service is the composition surface over the lifecycle core: snapshot
// reads, reports, churn prediction, admin overrides and the daily
// batch check. Handlers and jobs talk to this, not to the parts.
type Service interface {
	// GetUserLifecycleData returns the user's computed snapshot, or
	// (nil, nil) when the user does not exist.
	GetUserLifecycleData(ctx context.Context, userID string) (*domain.Snapshot, error)

	// GetUsersLifecycleData returns one page of snapshots matching the
	// filters, ordered by registration time.
	GetUsersLifecycleData(ctx context.Context, f Filters, p Page) (*PaginatedSnapshots, error)

	// GenerateReport composes the analytics surfaces into one report
	// for the date range.
	GenerateReport(ctx context.Context, from, to time.Time, f Filters) (*Report, error)

	// PredictChurn returns the churn heuristic for the user, or
	// (nil, nil) when the user does not exist.
	PredictChurn(ctx context.Context, userID string) (*domain.ChurnPrediction, error)

	// ForceStageTransition applies an admin stage override.
	ForceStageTransition(ctx context.Context, userID string, to domain.Stage, reason, adminID string) (*domain.StageTransition, error)

	// RunDailyCheck walks every user, logs inactivity events for users
	// who went quiet and re-evaluates their stages.
	RunDailyCheck(ctx context.Context) (*DailyCheckResult, error)

	// Subscribe registers the cache invalidation hooks on the bus.
	Subscribe(bus event.Bus)
}

type service struct {
	users     repository.UserStore
	events    repository.EventStore
	tracker   tracker.Service
	engine    rules.Engine
	scoring   scoring.Service
	analytics analytics.Service
	segments  []domain.SegmentRule
	bus       event.Bus
	cache     *snapshotCache
}

// NewService composes the lifecycle facade.
func NewService(
	users repository.UserStore,
	events repository.EventStore,
	trackerSvc tracker.Service,
	engine rules.Engine,
	scoringSvc scoring.Service,
	analyticsSvc analytics.Service,
	segmentRules []domain.SegmentRule,
	bus event.Bus,
) Service {
	return &service{
		users:     users,
		events:    events,
		tracker:   trackerSvc,
		engine:    engine,
		scoring:   scoringSvc,
		analytics: analyticsSvc,
		segments:  segmentRules,
		bus:       bus,
		cache:     newSnapshotCache(snapshotCacheSize, snapshotCacheTTL),
	}
}

// Subscribe evicts cached snapshots whenever new facts land for a user.
// Tracked events and stage changes both make the cached view stale.
func (s *service) Subscribe(bus event.Bus) {
	bus.Subscribe(event.LifecycleEventTracked, func(ctx context.Context, ev event.Event) error {
		payload, err := event.DecodePayload[event.EventTrackedPayloadV1](ev.Payload)
		if err != nil {
			return fmt.Errorf("decode event tracked payload: %w", err)
		}
		s.cache.Invalidate(payload.UserID)
		return nil
	})
	bus.Subscribe(event.LifecycleStageChanged, func(ctx context.Context, ev event.Event) error {
		payload, err := event.DecodePayload[event.StageChangedPayloadV1](ev.Payload)
		if err != nil {
			return fmt.Errorf("decode stage changed payload: %w", err)
		}
		s.cache.Invalidate(payload.UserID)
		return nil
	})
}

func (s *service) GetUserLifecycleData(ctx context.Context, userID string) (*domain.Snapshot, error) {
	if snap, ok := s.cache.Get(userID); ok {
		return snap, nil
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	snap, err := s.snapshotFor(ctx, user, time.Now())
	if err != nil {
		return nil, err
	}
	s.cache.Set(userID, snap)
	return snap, nil
}

func (s *service) GetUsersLifecycleData(ctx context.Context, f Filters, p Page) (*PaginatedSnapshots, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	users, err := s.listAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	snaps := make([]*domain.Snapshot, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for i := range users {
		g.Go(func() error {
			snap, err := s.snapshotFor(gctx, &users[i], now)
			if err != nil {
				return err
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matched := make([]domain.Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		if f.matches(snap) {
			matched = append(matched, *snap)
		}
	}

	page := matched[min(offset, len(matched)):]
	if len(page) > limit {
		page = page[:limit]
	}
	return &PaginatedSnapshots{
		Snapshots: page,
		Total:     len(matched),
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (f Filters) matches(snap *domain.Snapshot) bool {
	if len(f.Stages) > 0 && !containsStage(f.Stages, snap.CurrentStage) {
		return false
	}
	if len(f.Segments) > 0 && !containsSegment(f.Segments, snap.Segment) {
		return false
	}
	if snap.EngagementScore < f.MinEngagement {
		return false
	}
	if f.MaxEngagement > 0 && snap.EngagementScore > f.MaxEngagement {
		return false
	}
	return true
}

func containsStage(stages []domain.Stage, s domain.Stage) bool {
	for _, candidate := range stages {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsSegment(segments []domain.Segment, s domain.Segment) bool {
	for _, candidate := range segments {
		if candidate == s {
			return true
		}
	}
	return false
}

// snapshotFor derives the full lifecycle view for one user from the
// event history. Snapshots are never stored.
func (s *service) snapshotFor(ctx context.Context, user *domain.User, now time.Time) (*domain.Snapshot, error) {
	stage, enteredAt, err := s.engine.CurrentStage(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("current stage for %s: %w", user.ID, err)
	}
	if enteredAt.IsZero() {
		enteredAt = user.RegisteredAt
	}
	daysInStage := int(now.Sub(enteredAt).Hours() / 24)
	if daysInStage < 0 {
		daysInStage = 0
	}

	m, err := s.scoring.MetricsFor(ctx, user, now)
	if err != nil {
		return nil, fmt.Errorf("metrics for %s: %w", user.ID, err)
	}
	engagement := s.scoring.EngagementFor(user, m)
	risk := s.scoring.RiskFor(user, m, now)
	churn := scoring.ChurnProbability(risk, engagement)

	seg := segment.Classify(s.segments, segment.Input{
		User:            user,
		Stage:           stage,
		EngagementScore: engagement,
		Metrics:         m,
		Now:             now,
	})

	snap := &domain.Snapshot{
		UserID:             user.ID,
		CurrentStage:       stage,
		StageEnteredAt:     enteredAt,
		DaysInStage:        daysInStage,
		JourneyPhase:       domain.PhaseForStage(stage),
		Segment:            seg,
		EngagementScore:    engagement,
		RiskScore:          risk,
		Metrics:            m,
		ChurnProbability:   churn,
		PredictedNextStage: scoring.PredictNextStage(stage, engagement, risk),
		PredictedLTV:       scoring.LifetimeValuePrediction(user.TotalEarnings, monthlyRunRate(user, now), churn),
		ComputedAt:         now,
	}
	metrics.SnapshotsComputed.Inc()
	return snap, nil
}

// monthlyRunRate approximates monthly earnings as lifetime earnings
// spread over the months since registration.
func monthlyRunRate(user *domain.User, now time.Time) float64 {
	months := now.Sub(user.RegisteredAt).Hours() / (24 * 30)
	if months < 1 {
		months = 1
	}
	return user.TotalEarnings / months
}

func (s *service) PredictChurn(ctx context.Context, userID string) (*domain.ChurnPrediction, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	now := time.Now()
	m, err := s.scoring.MetricsFor(ctx, user, now)
	if err != nil {
		return nil, fmt.Errorf("metrics for %s: %w", userID, err)
	}
	engagement := s.scoring.EngagementFor(user, m)
	risk := s.scoring.RiskFor(user, m, now)
	probability := scoring.ChurnProbability(risk, engagement)

	return &domain.ChurnPrediction{
		UserID:      userID,
		Probability: probability,
		RiskScore:   risk,
		RiskLevel:   scoring.RiskLevelFor(probability),
		Factors:     scoring.ChurnFactors(scoring.RiskInputsFor(user, m, now), engagement),
		PredictedAt: now,
	}, nil
}

func (s *service) ForceStageTransition(ctx context.Context, userID string, to domain.Stage, reason, adminID string) (*domain.StageTransition, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	t, err := s.engine.Force(ctx, userID, to, reason, adminID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(userID)
	return t, nil
}

// RunDailyCheck walks the whole user base once. For each user it logs
// the matching inactivity event when one is due (at most once per UTC
// day per threshold) and re-evaluates the stage. Per-user failures are
// logged and skipped so one bad record cannot stall the batch.
func (s *service) RunDailyCheck(ctx context.Context) (*DailyCheckResult, error) {
	log := logger.FromContext(ctx)
	started := time.Now()

	users, err := s.listAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	result := &DailyCheckResult{StartedAt: started}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for i := range users {
		g.Go(func() error {
			logged, transitioned, err := s.checkUser(gctx, &users[i], started)
			mu.Lock()
			defer mu.Unlock()
			result.UsersChecked++
			if err != nil {
				log.Warn("Daily check failed for user",
					"user_id", users[i].ID,
					"error", err)
				return nil
			}
			if logged {
				result.InactivityEventsLogged++
			}
			if transitioned {
				result.StageTransitions++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	metrics.DailyChecksRun.Inc()

	if err := s.bus.Publish(ctx, event.NewDailyCheckDoneEvent(event.DailyCheckDonePayloadV1{
		UsersChecked:           result.UsersChecked,
		InactivityEventsLogged: result.InactivityEventsLogged,
		StageTransitions:       result.StageTransitions,
		StartedAt:              result.StartedAt,
		DurationMs:             result.Duration.Milliseconds(),
	})); err != nil {
		log.Warn("Failed to publish daily check event", "error", err)
	}

	log.Info("Daily check complete",
		"users_checked", result.UsersChecked,
		"inactivity_events", result.InactivityEventsLogged,
		"transitions", result.StageTransitions,
		"duration", result.Duration)
	return result, nil
}

func (s *service) checkUser(ctx context.Context, user *domain.User, now time.Time) (logged, transitioned bool, err error) {
	inactivityType := inactivityEventFor(user, now)
	if inactivityType != "" {
		due, err := s.inactivityDue(ctx, user.ID, inactivityType, now)
		if err != nil {
			return false, false, err
		}
		if due {
			// Skip the bus-driven evaluation; the explicit
			// Evaluate below covers it.
			if _, err := s.tracker.Track(ctx, tracker.TrackRequest{
				UserID:              user.ID,
				Type:                inactivityType,
				Source:              domain.SourceSystemTrigger,
				Timestamp:           now,
				SkipStageTransition: true,
			}); err != nil {
				return false, false, fmt.Errorf("track %s: %w", inactivityType, err)
			}
			logged = true
		}
	}

	res, err := s.engine.Evaluate(ctx, user.ID, domain.EventLifecycleCheckDone)
	if err != nil {
		return logged, false, fmt.Errorf("evaluate: %w", err)
	}
	return logged, res.Transitioned, nil
}

// inactivityEventFor picks the strongest inactivity marker the user has
// crossed, or "" when the user is active or has never logged in.
func inactivityEventFor(user *domain.User, now time.Time) domain.EventType {
	days := user.DaysSinceLastLogin(now)
	switch {
	case days >= 30:
		return domain.EventInactivity30Days
	case days >= 14:
		return domain.EventInactivity14Days
	case days >= 7:
		return domain.EventInactivity7Days
	default:
		return ""
	}
}

// inactivityDue reports whether the marker has not yet been logged
// today. The check keys on the UTC day so reruns of the job stay
// idempotent.
func (s *service) inactivityDue(ctx context.Context, userID string, t domain.EventType, now time.Time) (bool, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	existing, err := s.events.ListByUser(ctx, userID, repository.EventQuery{
		Types:    []domain.EventType{t},
		DateFrom: &dayStart,
		Limit:    1,
	})
	if err != nil {
		return false, fmt.Errorf("list %s: %w", t, err)
	}
	return len(existing) == 0, nil
}

func (s *service) listAllUsers(ctx context.Context) ([]domain.User, error) {
	var all []domain.User
	for offset := 0; ; offset += snapshotPageSize {
		page, err := s.users.List(ctx, repository.UserQuery{Limit: snapshotPageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		all = append(all, page...)
		if len(page) < snapshotPageSize {
			return all, nil
		}
	}
}

func sortSnapshotsByRisk(snaps []domain.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].RiskScore > snaps[j].RiskScore
	})
}
