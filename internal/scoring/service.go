package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/logger"
	"github.com/taskreel/lifecycle/internal/repository"
)

// DefaultDailyTaskTarget applies when the user record carries no target.
const DefaultDailyTaskTarget = 5

// Service resolves score inputs from the event store and user record
// and applies the pure scoring functions. It holds no state of its own;
// scores always reflect the latest events.
type Service interface {
	// MetricsFor aggregates a user's event history into UserMetrics.
	MetricsFor(ctx context.Context, user *domain.User, now time.Time) (domain.UserMetrics, error)

	// EngagementFor computes the engagement score for the given metrics.
	EngagementFor(user *domain.User, m domain.UserMetrics) int

	// RiskFor computes the risk score as of now.
	RiskFor(user *domain.User, m domain.UserMetrics, now time.Time) int
}

type service struct {
	events repository.EventStore
}

// NewService creates a new scoring service
func NewService(events repository.EventStore) Service {
	return &service{events: events}
}

// taskEventTypes are the event types that count as completed tasks.
var taskEventTypes = []domain.EventType{domain.EventTaskCompleted, domain.EventVideoTaskCompleted}

func (s *service) MetricsFor(ctx context.Context, user *domain.User, now time.Time) (domain.UserMetrics, error) {
	log := logger.FromContext(ctx)

	var m domain.UserMetrics

	totals, err := s.events.CountByUser(ctx, user.ID, nil, nil)
	if err != nil {
		return m, fmt.Errorf("failed to count user events: %w", err)
	}

	since30 := now.AddDate(0, 0, -30)
	last30, err := s.events.CountByUser(ctx, user.ID, nil, &since30)
	if err != nil {
		return m, fmt.Errorf("failed to count recent events: %w", err)
	}

	since7 := now.AddDate(0, 0, -7)
	last7, err := s.events.CountByUser(ctx, user.ID, taskEventTypes, &since7)
	if err != nil {
		return m, fmt.Errorf("failed to count weekly tasks: %w", err)
	}

	m.TotalTasks = totals[domain.EventTaskCompleted] + totals[domain.EventVideoTaskCompleted]
	m.TotalVideoTasks = totals[domain.EventVideoTaskCompleted]
	m.TasksLast30Days = last30[domain.EventTaskCompleted] + last30[domain.EventVideoTaskCompleted]
	m.TasksLast7Days = last7[domain.EventTaskCompleted] + last7[domain.EventVideoTaskCompleted]
	m.LoginsLast30Days = last30[domain.EventUserLogin] + last30[domain.EventFirstLogin]
	m.TotalReferrals = user.ReferralCount
	m.TotalEarnings = user.TotalEarnings

	current, longest, err := s.streaksFor(ctx, user.ID, now)
	if err != nil {
		// Streaks are a bonus component; a failed read degrades the
		// score rather than failing the whole computation.
		log.Warn("Failed to compute streaks, using zero", "error", err, "user_id", user.ID)
	}
	m.CurrentStreak = current
	m.LongestStreak = longest

	m.DaysToFirstTask = s.daysToFirst(ctx, user, domain.EventTaskCompleted)
	m.DaysToFirstEarning = s.daysToFirst(ctx, user, domain.EventEarningCredited)

	return m, nil
}

func (s *service) streaksFor(ctx context.Context, userID string, now time.Time) (int, int, error) {
	events, err := s.events.ListByUser(ctx, userID, repository.EventQuery{
		Types: taskEventTypes,
	})
	if err != nil {
		return 0, 0, err
	}

	times := make([]time.Time, 0, len(events))
	for _, ev := range events {
		times = append(times, ev.Timestamp)
	}
	current, longest := Streaks(times, now)
	return current, longest, nil
}

// daysToFirst returns whole days from registration to the first event
// of the given type, or -1 when it has not happened.
func (s *service) daysToFirst(ctx context.Context, user *domain.User, t domain.EventType) int {
	first, err := s.events.FirstOfType(ctx, user.ID, t)
	if err != nil || first == nil {
		return -1
	}
	days := int(first.Timestamp.Sub(user.RegisteredAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (s *service) EngagementFor(user *domain.User, m domain.UserMetrics) int {
	return EngagementScore(EngagementInputs{
		TasksLast30Days:  m.TasksLast30Days,
		LoginsLast30Days: m.LoginsLast30Days,
		TotalEarnings:    m.TotalEarnings,
		ReferralCount:    m.TotalReferrals,
		CurrentStreak:    m.CurrentStreak,
	})
}

func (s *service) RiskFor(user *domain.User, m domain.UserMetrics, now time.Time) int {
	target := user.DailyTaskTarget
	if target <= 0 {
		target = DefaultDailyTaskTarget
	}
	return RiskScore(RiskInputs{
		DaysSinceLastLogin: user.DaysSinceLastLogin(now),
		ExpectedTasks7Days: target * 7,
		ActualTasks7Days:   m.TasksLast7Days,
		Balance:            user.Balance,
	})
}

// RiskInputsFor mirrors RiskFor but returns the raw inputs, used by
// churn prediction to name contributing factors.
func RiskInputsFor(user *domain.User, m domain.UserMetrics, now time.Time) RiskInputs {
	target := user.DailyTaskTarget
	if target <= 0 {
		target = DefaultDailyTaskTarget
	}
	return RiskInputs{
		DaysSinceLastLogin: user.DaysSinceLastLogin(now),
		ExpectedTasks7Days: target * 7,
		ActualTasks7Days:   m.TasksLast7Days,
		Balance:            user.Balance,
	}
}
