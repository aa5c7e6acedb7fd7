package rules

import (
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// EventCounter resolves event counts for EVENT_COUNT conditions. A
// windowDays of 0 means all time. The boolean is false when the count
// could not be resolved; the condition then evaluates to false.
type EventCounter interface {
	Count(t domain.EventType, windowDays int) (int, bool)
}

// EvalContext is the immutable input to condition evaluation: the user
// snapshot, aggregate metrics, the engagement score, the stage under
// evaluation and a fixed "now". Evaluating the same context twice
// always yields the same result.
type EvalContext struct {
	User            *domain.User
	Stage           domain.Stage
	StageEnteredAt  time.Time
	Metrics         domain.UserMetrics
	EngagementScore int
	Counts          EventCounter
	Now             time.Time
}

// propertyValue resolves a USER_PROPERTY field path against the
// context. The path set is closed; unknown paths resolve to (nil,
// false). Nil-valued known paths resolve to (nil, true) so EXISTS /
// NOT_EXISTS can test them.
func (c EvalContext) propertyValue(field string) (interface{}, bool) {
	switch field {
	case "username":
		return c.User.Username, true
	case "email":
		return c.User.Email, true
	case "emailVerified":
		return c.User.EmailVerified, true
	case "registeredAt":
		return c.User.RegisteredAt, true
	case "lastLoginAt":
		return timeOrNil(c.User.LastLoginAt), true
	case "profileCompletedAt":
		return timeOrNil(c.User.ProfileCompletedAt), true
	case "position":
		if c.User.Position == "" {
			return nil, true
		}
		return c.User.Position, true
	case "balance":
		return c.User.Balance, true
	case "totalEarnings":
		return c.User.TotalEarnings, true
	case "referralCount":
		return c.User.ReferralCount, true
	case "suspended":
		return c.User.Suspended, true
	case "metrics.totalTasks":
		return c.Metrics.TotalTasks, true
	case "metrics.totalVideoTasks":
		return c.Metrics.TotalVideoTasks, true
	case "metrics.currentStreak":
		return c.Metrics.CurrentStreak, true
	case "metrics.longestStreak":
		return c.Metrics.LongestStreak, true
	default:
		return nil, false
	}
}

// timestampValue resolves a TIME_BASED field to a reference time.
func (c EvalContext) timestampValue(field string) (time.Time, bool) {
	switch field {
	case "registeredAt":
		return c.User.RegisteredAt, true
	case "lastLoginAt":
		if c.User.LastLoginAt == nil {
			return time.Time{}, false
		}
		return *c.User.LastLoginAt, true
	case "profileCompletedAt":
		if c.User.ProfileCompletedAt == nil {
			return time.Time{}, false
		}
		return *c.User.ProfileCompletedAt, true
	case "stageEnteredAt":
		return c.StageEnteredAt, true
	default:
		return time.Time{}, false
	}
}

// metricValue resolves a CALCULATED_METRIC name.
func (c EvalContext) metricValue(name string) (float64, bool) {
	switch name {
	case domain.MetricTotalVideoTasks:
		return float64(c.Metrics.TotalVideoTasks), true
	case domain.MetricTotalReferrals:
		return float64(c.Metrics.TotalReferrals), true
	case domain.MetricTotalEarnings:
		return c.Metrics.TotalEarnings, true
	case domain.MetricEngagementScore:
		return float64(c.EngagementScore), true
	default:
		return 0, false
	}
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
