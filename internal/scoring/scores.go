package scoring

import "math"

// Engagement score component weights. They must sum to 1.0; the
// consistency component is capped at 50 so a long streak alone cannot
// saturate the score.
const (
	weightTaskRate    = 0.25
	weightLoginFreq   = 0.25
	weightEarnings    = 0.20
	weightReferrals   = 0.15
	weightConsistency = 0.15
)

// Risk score component weights.
const (
	weightInactivity      = 0.40
	weightMissedTasks     = 0.35
	weightNegativeBalance = 0.25
)

// EngagementInputs are the facts the engagement score is computed from.
type EngagementInputs struct {
	TasksLast30Days  int
	LoginsLast30Days int
	TotalEarnings    float64
	ReferralCount    int
	CurrentStreak    int
}

// RiskInputs are the facts the risk score is computed from.
type RiskInputs struct {
	DaysSinceLastLogin int // -1 when the user has never logged in
	ExpectedTasks7Days int
	ActualTasks7Days   int
	Balance            float64
}

// EngagementScore computes the [0,100] engagement heuristic: a weighted
// sum of daily task rate, login frequency, earnings growth, referral
// activity and a consistency bonus. Pure function, deterministic.
func EngagementScore(in EngagementInputs) int {
	taskRate := capComponent(float64(in.TasksLast30Days)/30.0*100, 100)
	loginFreq := capComponent(float64(in.LoginsLast30Days)/30.0*100, 100)
	earnings := capComponent(in.TotalEarnings/10.0, 100)
	referrals := capComponent(float64(in.ReferralCount)*10, 100)
	consistency := capComponent(float64(in.CurrentStreak)*5, 50)

	score := taskRate*weightTaskRate +
		loginFreq*weightLoginFreq +
		earnings*weightEarnings +
		referrals*weightReferrals +
		consistency*weightConsistency

	return clampScore(math.Round(score))
}

// RiskScore computes the [0,100] disengagement-risk heuristic from
// inactivity, missed daily task targets over the trailing week, and a
// negative balance penalty.
func RiskScore(in RiskInputs) int {
	var inactivity float64
	if in.DaysSinceLastLogin >= 0 {
		inactivity = capComponent(float64(in.DaysSinceLastLogin)/30.0*100, 100)
	} else {
		// Never logged in counts as fully inactive.
		inactivity = 100
	}

	var missed float64
	if in.ExpectedTasks7Days > 0 {
		shortfall := float64(in.ExpectedTasks7Days - in.ActualTasks7Days)
		if shortfall < 0 {
			shortfall = 0
		}
		missed = capComponent(shortfall/float64(in.ExpectedTasks7Days)*100, 100)
	}

	var negBalance float64
	if in.Balance < 0 {
		negBalance = capComponent(-in.Balance, 100)
	}

	score := inactivity*weightInactivity +
		missed*weightMissedTasks +
		negBalance*weightNegativeBalance

	return clampScore(math.Round(score))
}

func capComponent(v, cap float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > cap || math.IsInf(v, 1) {
		return cap
	}
	return v
}

func clampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
