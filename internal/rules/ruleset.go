package rules

import "github.com/taskreel/lifecycle/internal/domain"

func from(s domain.Stage) *domain.Stage { return &s }

// DefaultRules is the standard transition rule set. Order and priority
// are load-bearing: rules evaluate in ascending priority and the first
// full match wins, so account-state overrides come first, then the
// progression ladder, then recovery, then inactivity decay. Recovery
// sits below decay so a returning user is promoted before any
// inactivity rule can demote them in the same pass.
//
// The ladder defines no skip rules on purpose. A user who satisfies
// several rungs at once still walks them one transition per pass, which
// keeps the transition history complete.
func DefaultRules() []domain.TransitionRule {
	return []domain.TransitionRule{
		// Account-state overrides. These match from any stage.
		{
			Name:     "suspend-flagged-account",
			ToStage:  domain.StageSuspended,
			Priority: 1,
			Conditions: []domain.Condition{
				{Type: domain.ConditionUserProperty, Field: "suspended", Operator: domain.OpEquals, Value: true},
			},
		},
		{
			Name:      "reinstate-suspended-account",
			FromStage: from(domain.StageSuspended),
			ToStage:   domain.StageReactivated,
			Priority:  2,
			Conditions: []domain.Condition{
				{Type: domain.ConditionUserProperty, Field: "suspended", Operator: domain.OpEquals, Value: false},
			},
		},
		{
			Name:     "flag-negative-balance",
			ToStage:  domain.StageProblemUser,
			Priority: 5,
			Conditions: []domain.Condition{
				{Type: domain.ConditionUserProperty, Field: "balance", Operator: domain.OpLessThan, Value: 0},
			},
		},
		{
			Name:     "flag-repeat-complaints",
			ToStage:  domain.StageProblemUser,
			Priority: 6,
			Conditions: []domain.Condition{
				{Type: domain.ConditionEventCount, Field: string(domain.EventComplaintFiled), Operator: domain.OpGreaterThanOrEqual, Value: 3, TimeWindowDays: 90},
			},
		},
		{
			Name:      "clear-problem-user",
			FromStage: from(domain.StageProblemUser),
			ToStage:   domain.StageRegularUser,
			Priority:  7,
			Conditions: []domain.Condition{
				{Type: domain.ConditionUserProperty, Field: "balance", Operator: domain.OpGreaterThanOrEqual, Value: 0},
				{Type: domain.ConditionEventCount, Field: string(domain.EventComplaintFiled), Operator: domain.OpLessThan, Value: 3, TimeWindowDays: 90},
			},
		},

		// Onboarding and progression ladder.
		{
			Name:      "enter-profile-incomplete",
			FromStage: from(domain.StageRegistered),
			ToStage:   domain.StageProfileIncomplete,
			Priority:  10,
			Conditions: []domain.Condition{
				{Type: domain.ConditionUserProperty, Field: "registeredAt", Operator: domain.OpExists},
			},
		},
		{
			Name:      "profile-completed",
			FromStage: from(domain.StageProfileIncomplete),
			ToStage:   domain.StageProfileComplete,
			Priority:  20,
			Conditions: []domain.Condition{
				{Type: domain.ConditionUserProperty, Field: "profileCompletedAt", Operator: domain.OpExists},
			},
		},
		{
			Name:      "first-login",
			FromStage: from(domain.StageProfileComplete),
			ToStage:   domain.StageFirstLogin,
			Priority:  30,
			Conditions: []domain.Condition{
				{Type: domain.ConditionUserProperty, Field: "lastLoginAt", Operator: domain.OpExists},
			},
		},
		{
			Name:      "exploring",
			FromStage: from(domain.StageFirstLogin),
			ToStage:   domain.StageExploring,
			Priority:  40,
			Conditions: []domain.Condition{
				{Type: domain.ConditionEventCount, Field: string(domain.EventUserLogin), Operator: domain.OpGreaterThanOrEqual, Value: 2},
			},
		},
		{
			Name:      "first-task",
			FromStage: from(domain.StageExploring),
			ToStage:   domain.StageFirstTask,
			Priority:  50,
			Conditions: []domain.Condition{
				{Type: domain.ConditionEventCount, Field: string(domain.EventTaskCompleted), Operator: domain.OpGreaterThanOrEqual, Value: 1},
			},
		},
		{
			Name:      "first-earning",
			FromStage: from(domain.StageFirstTask),
			ToStage:   domain.StageFirstEarning,
			Priority:  60,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricTotalEarnings, Operator: domain.OpGreaterThan, Value: 0},
			},
		},
		{
			Name:      "occasional-user",
			FromStage: from(domain.StageFirstEarning),
			ToStage:   domain.StageOccasionalUser,
			Priority:  70,
			Conditions: []domain.Condition{
				{Type: domain.ConditionEventCount, Field: string(domain.EventTaskCompleted), Operator: domain.OpGreaterThanOrEqual, Value: 3, TimeWindowDays: 30},
			},
		},
		{
			Name:      "regular-user",
			FromStage: from(domain.StageOccasionalUser),
			ToStage:   domain.StageRegularUser,
			Priority:  80,
			Conditions: []domain.Condition{
				{Type: domain.ConditionEventCount, Field: string(domain.EventTaskCompleted), Operator: domain.OpGreaterThanOrEqual, Value: 12, TimeWindowDays: 30},
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpLessThanOrEqual, Value: 7},
			},
		},
		{
			Name:      "position-upgraded",
			FromStage: from(domain.StageRegularUser),
			ToStage:   domain.StagePositionUpgraded,
			Priority:  85,
			Conditions: []domain.Condition{
				{Type: domain.ConditionEventCount, Field: string(domain.EventPositionUpgraded), Operator: domain.OpGreaterThanOrEqual, Value: 1},
			},
		},
		{
			Name:      "first-referral",
			FromStage: from(domain.StagePositionUpgraded),
			ToStage:   domain.StageFirstReferral,
			Priority:  90,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricTotalReferrals, Operator: domain.OpGreaterThanOrEqual, Value: 1},
			},
		},
		{
			Name:      "first-referral-regular",
			FromStage: from(domain.StageRegularUser),
			ToStage:   domain.StageFirstReferral,
			Priority:  91,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricTotalReferrals, Operator: domain.OpGreaterThanOrEqual, Value: 1},
			},
		},
		{
			Name:      "active-referrer",
			FromStage: from(domain.StageFirstReferral),
			ToStage:   domain.StageActiveReferrer,
			Priority:  95,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricTotalReferrals, Operator: domain.OpGreaterThanOrEqual, Value: 3},
			},
		},
		{
			Name:      "highly-engaged-referrer",
			FromStage: from(domain.StageActiveReferrer),
			ToStage:   domain.StageHighlyEngaged,
			Priority:  100,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricEngagementScore, Operator: domain.OpGreaterThanOrEqual, Value: 70},
			},
		},
		{
			Name:      "highly-engaged",
			FromStage: from(domain.StageRegularUser),
			ToStage:   domain.StageHighlyEngaged,
			Priority:  101,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricEngagementScore, Operator: domain.OpGreaterThanOrEqual, Value: 75},
			},
		},
		{
			Name:      "power-user",
			FromStage: from(domain.StageHighlyEngaged),
			ToStage:   domain.StagePowerUser,
			Priority:  105,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricEngagementScore, Operator: domain.OpGreaterThanOrEqual, Value: 85},
				{Type: domain.ConditionUserProperty, Field: "metrics.currentStreak", Operator: domain.OpGreaterThanOrEqual, Value: 14},
			},
		},
		{
			Name:      "vip-user",
			FromStage: from(domain.StagePowerUser),
			ToStage:   domain.StageVIPUser,
			Priority:  110,
			Conditions: []domain.Condition{
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricTotalEarnings, Operator: domain.OpGreaterThanOrEqual, Value: 1000},
				{Type: domain.ConditionCalculatedMetric, Field: domain.MetricEngagementScore, Operator: domain.OpGreaterThanOrEqual, Value: 90},
			},
		},

		// Recovery. Must outrank the decay rules below.
		{
			Name:      "at-risk-recovered",
			FromStage: from(domain.StageAtRisk),
			ToStage:   domain.StageRegularUser,
			Priority:  150,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpLessThanOrEqual, Value: 2},
				{Type: domain.ConditionEventCount, Field: string(domain.EventTaskCompleted), Operator: domain.OpGreaterThanOrEqual, Value: 1, TimeWindowDays: 7},
			},
		},
		{
			Name:      "inactive-reactivated",
			FromStage: from(domain.StageInactive),
			ToStage:   domain.StageReactivated,
			Priority:  155,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpLessThanOrEqual, Value: 2},
			},
		},
		{
			Name:      "dormant-reactivated",
			FromStage: from(domain.StageDormant),
			ToStage:   domain.StageReactivated,
			Priority:  156,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpLessThanOrEqual, Value: 2},
			},
		},
		{
			Name:      "churned-reactivated",
			FromStage: from(domain.StageChurned),
			ToStage:   domain.StageReactivated,
			Priority:  157,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpLessThanOrEqual, Value: 2},
			},
		},
		{
			Name:      "reactivated-recovered",
			FromStage: from(domain.StageReactivated),
			ToStage:   domain.StageRecovered,
			Priority:  160,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "stageEnteredAt", Operator: domain.OpGreaterThanOrEqual, Value: 14},
				{Type: domain.ConditionEventCount, Field: string(domain.EventTaskCompleted), Operator: domain.OpGreaterThanOrEqual, Value: 5, TimeWindowDays: 14},
			},
		},
		{
			Name:      "recovered-regular",
			FromStage: from(domain.StageRecovered),
			ToStage:   domain.StageRegularUser,
			Priority:  165,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "stageEnteredAt", Operator: domain.OpGreaterThanOrEqual, Value: 7},
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpLessThanOrEqual, Value: 7},
			},
		},

		// Inactivity decay.
		{
			Name:      "regular-at-risk",
			FromStage: from(domain.StageRegularUser),
			ToStage:   domain.StageAtRisk,
			Priority:  200,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 7},
			},
		},
		{
			Name:      "occasional-at-risk",
			FromStage: from(domain.StageOccasionalUser),
			ToStage:   domain.StageAtRisk,
			Priority:  201,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 10},
			},
		},
		{
			Name:      "engaged-at-risk",
			FromStage: from(domain.StageHighlyEngaged),
			ToStage:   domain.StageAtRisk,
			Priority:  202,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 10},
			},
		},
		{
			Name:      "at-risk-inactive",
			FromStage: from(domain.StageAtRisk),
			ToStage:   domain.StageInactive,
			Priority:  210,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 14},
			},
		},
		{
			Name:      "inactive-churned",
			FromStage: from(domain.StageInactive),
			ToStage:   domain.StageChurned,
			Priority:  220,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 30},
			},
		},
		{
			Name:      "inactive-dormant",
			FromStage: from(domain.StageInactive),
			ToStage:   domain.StageDormant,
			Priority:  225,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 21},
			},
		},
		{
			Name:      "dormant-churned",
			FromStage: from(domain.StageDormant),
			ToStage:   domain.StageChurned,
			Priority:  230,
			Conditions: []domain.Condition{
				{Type: domain.ConditionTimeBased, Field: "lastLoginAt", Operator: domain.OpGreaterThan, Value: 45},
			},
		},
	}
}
