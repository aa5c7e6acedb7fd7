package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskreel/lifecycle/internal/domain"
)

type fakeCounter map[string]int

func (f fakeCounter) Count(t domain.EventType, windowDays int) (int, bool) {
	n, ok := f[string(t)]
	return n, ok
}

func testEvalContext() EvalContext {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	registered := now.AddDate(0, 0, -40)
	lastLogin := now.AddDate(0, 0, -3)

	return EvalContext{
		User: &domain.User{
			ID:            "user-1",
			Username:      "marta",
			Email:         "marta@example.com",
			EmailVerified: true,
			RegisteredAt:  registered,
			LastLoginAt:   &lastLogin,
			Balance:       120.5,
			TotalEarnings: 340,
			ReferralCount: 2,
		},
		Stage:           domain.StageRegularUser,
		StageEnteredAt:  now.AddDate(0, 0, -20),
		Metrics:         domain.UserMetrics{TotalTasks: 48, CurrentStreak: 6, TotalReferrals: 2, TotalEarnings: 340},
		EngagementScore: 62,
		Counts:          fakeCounter{"TASK_COMPLETED": 48, "USER_LOGIN": 30},
		Now:             now,
	}
}

func TestEvalCondition_UserPropertyEquals(t *testing.T) {
	ctx := testEvalContext()

	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "username", Operator: domain.OpEquals, Value: "marta",
	}, ctx))
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "username", Operator: domain.OpEquals, Value: "other",
	}, ctx))
}

func TestEvalCondition_UserPropertyNumericComparison(t *testing.T) {
	ctx := testEvalContext()

	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "balance", Operator: domain.OpGreaterThan, Value: 100,
	}, ctx))
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "balance", Operator: domain.OpLessThan, Value: 0,
	}, ctx))
}

func TestEvalCondition_ExistsOnNullableField(t *testing.T) {
	ctx := testEvalContext()

	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "lastLoginAt", Operator: domain.OpExists,
	}, ctx))
	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "profileCompletedAt", Operator: domain.OpNotExists,
	}, ctx))

	ctx.User.LastLoginAt = nil
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "lastLoginAt", Operator: domain.OpExists,
	}, ctx))
}

func TestEvalCondition_UnknownFieldIsFalse(t *testing.T) {
	ctx := testEvalContext()

	for _, op := range []domain.Operator{domain.OpEquals, domain.OpExists, domain.OpGreaterThan} {
		assert.False(t, evalCondition(domain.Condition{
			Type: domain.ConditionUserProperty, Field: "favoriteColor", Operator: op, Value: 1,
		}, ctx), "operator %s", op)
	}
}

func TestEvalCondition_EventCount(t *testing.T) {
	ctx := testEvalContext()

	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionEventCount, Field: "TASK_COMPLETED", Operator: domain.OpGreaterThanOrEqual, Value: 12,
	}, ctx))
	// Counter miss means unevaluable, which is false.
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionEventCount, Field: "VIDEO_WATCHED", Operator: domain.OpGreaterThanOrEqual, Value: 0,
	}, ctx))
}

func TestEvalCondition_TimeBasedWholeDays(t *testing.T) {
	ctx := testEvalContext()

	// Last login was 3 days ago.
	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpLessThanOrEqual, Value: 7,
	}, ctx))
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 7,
	}, ctx))

	// Never logged in: condition is unevaluable.
	ctx.User.LastLoginAt = nil
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 7,
	}, ctx))
}

func TestEvalCondition_CalculatedMetric(t *testing.T) {
	ctx := testEvalContext()

	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionCalculatedMetric, Field: domain.MetricEngagementScore, Operator: domain.OpGreaterThanOrEqual, Value: 60,
	}, ctx))
	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionCalculatedMetric, Field: domain.MetricTotalReferrals, Operator: domain.OpEquals, Value: 2,
	}, ctx))
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionCalculatedMetric, Field: "unknownMetric", Operator: domain.OpGreaterThan, Value: 0,
	}, ctx))
}

func TestEvalCondition_InOperators(t *testing.T) {
	ctx := testEvalContext()

	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "username", Operator: domain.OpIn,
		Value: []interface{}{"alex", "marta"},
	}, ctx))
	assert.True(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "username", Operator: domain.OpNotIn,
		Value: []interface{}{"alex", "kim"},
	}, ctx))
	// A non-list value makes IN unevaluable.
	assert.False(t, evalCondition(domain.Condition{
		Type: domain.ConditionUserProperty, Field: "username", Operator: domain.OpIn, Value: "marta",
	}, ctx))
}

func TestEvalCondition_TypeMismatchIsFalseNotPanic(t *testing.T) {
	ctx := testEvalContext()

	assert.NotPanics(t, func() {
		assert.False(t, evalCondition(domain.Condition{
			Type: domain.ConditionUserProperty, Field: "balance", Operator: domain.OpGreaterThan, Value: "not-a-number",
		}, ctx))
	})
}
