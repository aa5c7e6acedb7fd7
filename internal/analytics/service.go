package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/logger"
	"github.com/taskreel/lifecycle/internal/repository"
	"github.com/taskreel/lifecycle/internal/scoring"
	"github.com/taskreel/lifecycle/internal/segment"
)

// userConcurrency bounds per-user fan-out so a big user table cannot
// exhaust store connections.
const userConcurrency = 8

const userPageSize = 500

// Service computes aggregate analytics over the event log and user
// records. Reads are fail-fast: a store error surfaces to the caller
// instead of producing a report that looks fresh but is not.
type Service interface {
	Dashboard(ctx context.Context, from, to time.Time) (*Dashboard, error)
	Heatmap(ctx context.Context, from, to time.Time) (*Heatmap, error)
	JourneyFlows(ctx context.Context, from, to time.Time) (*JourneyReport, error)
	CohortRetention(ctx context.Context, from, to time.Time, period CohortPeriod) (*CohortReport, error)
	Insights(ctx context.Context, from, to time.Time) ([]Insight, error)
}

type service struct {
	events       repository.EventStore
	users        repository.UserStore
	scoring      scoring.Service
	segmentRules []domain.SegmentRule
}

// NewService creates a new analytics service
func NewService(events repository.EventStore, users repository.UserStore, scoringSvc scoring.Service, segmentRules []domain.SegmentRule) Service {
	return &service{
		events:       events,
		users:        users,
		scoring:      scoringSvc,
		segmentRules: segmentRules,
	}
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

// userSummary is the per-user state the dashboard aggregates.
type userSummary struct {
	stage              domain.Stage
	seg                domain.Segment
	active             bool
	newToday           bool
	daysToFirstTask    int
	daysToFirstEarning int
}

func (s *service) Dashboard(ctx context.Context, from, to time.Time) (*Dashboard, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	d := &Dashboard{
		From:                from,
		To:                  to,
		StageDistribution:   make(map[domain.Stage]int),
		SegmentDistribution: make(map[domain.Segment]int),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		granularity, trend, err := s.trendSeries(gctx, from, to)
		if err != nil {
			return err
		}
		d.TrendGranularity = granularity
		d.Trend = trend
		return nil
	})

	g.Go(func() error {
		return s.aggregateUsers(gctx, to, d)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// aggregateUsers walks the whole user table and folds per-user state
// into the dashboard. A failure for one user is logged and marks the
// dashboard Incomplete; a failure listing users aborts.
func (s *service) aggregateUsers(ctx context.Context, asOf time.Time, d *Dashboard) error {
	log := logger.FromContext(ctx)

	var (
		mu          sync.Mutex
		churned     int
		taskDaysSum int
		taskDaysN   int
		earnDaysSum int
		earnDaysN   int
	)

	for offset := 0; ; offset += userPageSize {
		users, err := s.users.List(ctx, repository.UserQuery{Limit: userPageSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(users) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(userConcurrency)
		for i := range users {
			user := users[i]
			g.Go(func() error {
				summary, err := s.summarize(gctx, &user, asOf)
				if err != nil {
					log.Warn("Failed to summarize user, dashboard incomplete",
						"error", err, "user_id", user.ID)
					mu.Lock()
					d.Incomplete = true
					mu.Unlock()
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				d.TotalUsers++
				d.StageDistribution[summary.stage]++
				d.SegmentDistribution[summary.seg]++
				if summary.active {
					d.ActiveUsers++
				}
				if summary.newToday {
					d.NewToday++
				}
				if summary.stage == domain.StageChurned {
					churned++
				}
				if summary.daysToFirstTask >= 0 {
					taskDaysSum += summary.daysToFirstTask
					taskDaysN++
				}
				if summary.daysToFirstEarning >= 0 {
					earnDaysSum += summary.daysToFirstEarning
					earnDaysN++
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if len(users) < userPageSize {
			break
		}
	}

	if d.TotalUsers > 0 {
		d.ChurnRate = round2(float64(churned) / float64(d.TotalUsers) * 100)
	}
	if taskDaysN > 0 {
		d.AvgDaysToFirstTask = round2(float64(taskDaysSum) / float64(taskDaysN))
	}
	if earnDaysN > 0 {
		d.AvgDaysToFirstEarning = round2(float64(earnDaysSum) / float64(earnDaysN))
	}
	return nil
}

func (s *service) summarize(ctx context.Context, user *domain.User, asOf time.Time) (userSummary, error) {
	stage, err := s.currentStage(ctx, user.ID)
	if err != nil {
		return userSummary{}, err
	}

	m, err := s.scoring.MetricsFor(ctx, user, asOf)
	if err != nil {
		return userSummary{}, err
	}

	seg := segment.Classify(s.segmentRules, segment.Input{
		User:            user,
		Stage:           stage,
		EngagementScore: s.scoring.EngagementFor(user, m),
		Metrics:         m,
		Now:             asOf,
	})

	active := false
	if days := user.DaysSinceLastLogin(asOf); days >= 0 && days <= 30 {
		active = true
	}

	y1, m1, d1 := user.RegisteredAt.UTC().Date()
	y2, m2, d2 := asOf.UTC().Date()

	return userSummary{
		stage:              stage,
		seg:                seg,
		active:             active,
		newToday:           y1 == y2 && m1 == m2 && d1 == d2,
		daysToFirstTask:    m.DaysToFirstTask,
		daysToFirstEarning: m.DaysToFirstEarning,
	}, nil
}

// currentStage derives the stage from the latest transition event, the
// same way the rule engine does.
func (s *service) currentStage(ctx context.Context, userID string) (domain.Stage, error) {
	latest, err := s.events.LatestOfType(ctx, userID, domain.EventStageTransition)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return domain.DefaultStage, nil
	}
	t, ok := domain.TransitionFromEvent(*latest)
	if !ok {
		return domain.DefaultStage, nil
	}
	return t.ToStage, nil
}

func (s *service) trendSeries(ctx context.Context, from, to time.Time) (TrendGranularity, []TrendPoint, error) {
	granularity := granularityFor(from, to)

	var points []TrendPoint
	for cursor := from; cursor.Before(to); {
		next := nextBucket(cursor, granularity)
		end := next
		if end.After(to) {
			end = to
		}
		count, err := s.events.CountRange(ctx, cursor, end)
		if err != nil {
			return granularity, nil, fmt.Errorf("failed to count trend bucket: %w", err)
		}
		points = append(points, TrendPoint{Bucket: bucketLabel(cursor, granularity), Count: count})
		cursor = next
	}
	return granularity, points, nil
}

func granularityFor(from, to time.Time) TrendGranularity {
	span := to.Sub(from)
	switch {
	case span <= 31*24*time.Hour:
		return TrendDaily
	case span <= 180*24*time.Hour:
		return TrendWeekly
	default:
		return TrendMonthly
	}
}

func nextBucket(t time.Time, g TrendGranularity) time.Time {
	switch g {
	case TrendDaily:
		return t.AddDate(0, 0, 1)
	case TrendWeekly:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 1, 0)
	}
}

func bucketLabel(t time.Time, g TrendGranularity) string {
	switch g {
	case TrendMonthly:
		return t.UTC().Format("2006-01")
	default:
		return t.UTC().Format("2006-01-02")
	}
}

// listAllUsers pages through the user table within a registration window.
func (s *service) listAllUsers(ctx context.Context, from, to *time.Time) ([]domain.User, error) {
	var out []domain.User
	for offset := 0; ; offset += userPageSize {
		page, err := s.users.List(ctx, repository.UserQuery{
			RegisteredFrom: from,
			RegisteredTo:   to,
			Limit:          userPageSize,
			Offset:         offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		out = append(out, page...)
		if len(page) < userPageSize {
			return out, nil
		}
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func sortTransitions(stats []TransitionStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].From != stats[j].From {
			return stats[i].From < stats[j].From
		}
		return stats[i].To < stats[j].To
	})
}
