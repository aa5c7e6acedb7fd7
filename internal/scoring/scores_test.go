package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngagementScore(t *testing.T) {
	tests := []struct {
		name string
		in   EngagementInputs
		want int
	}{
		{
			name: "no activity scores zero",
			in:   EngagementInputs{},
			want: 0,
		},
		{
			name: "saturated inputs hit the consistency-capped maximum",
			in: EngagementInputs{
				TasksLast30Days:  30,
				LoginsLast30Days: 30,
				TotalEarnings:    5000,
				ReferralCount:    25,
				CurrentStreak:    40,
			},
			want: 93,
		},
		{
			name: "half activity scores mid range",
			in: EngagementInputs{
				TasksLast30Days:  15,
				LoginsLast30Days: 15,
				TotalEarnings:    500,
				ReferralCount:    5,
				CurrentStreak:    5,
			},
			want: 46,
		},
		{
			name: "negative inputs clamp to zero",
			in: EngagementInputs{
				TasksLast30Days:  -5,
				LoginsLast30Days: -1,
				TotalEarnings:    -200,
				ReferralCount:    -3,
				CurrentStreak:    -7,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EngagementScore(tt.in)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name string
		in   RiskInputs
		want int
	}{
		{
			name: "active user with met targets scores zero",
			in:   RiskInputs{DaysSinceLastLogin: 0, ExpectedTasks7Days: 7, ActualTasks7Days: 7, Balance: 100},
			want: 0,
		},
		{
			name: "never logged in counts as fully inactive",
			in:   RiskInputs{DaysSinceLastLogin: -1},
			want: 40,
		},
		{
			name: "everything wrong saturates at 100",
			in:   RiskInputs{DaysSinceLastLogin: 45, ExpectedTasks7Days: 7, ActualTasks7Days: 0, Balance: -200},
			want: 100,
		},
		{
			name: "task surplus is not penalized",
			in:   RiskInputs{DaysSinceLastLogin: 3, ExpectedTasks7Days: 7, ActualTasks7Days: 10, Balance: 50},
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskScore(tt.in)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestStreaks(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, -offset) }

	tests := []struct {
		name        string
		times       []time.Time
		wantCurrent int
		wantLongest int
	}{
		{
			name: "no tasks",
		},
		{
			name:        "run ending today",
			times:       []time.Time{day(2), day(1), day(0)},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "run ending yesterday still counts",
			times:       []time.Time{day(3), day(2), day(1)},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "run ending three days ago is broken",
			times:       []time.Time{day(5), day(4), day(3)},
			wantCurrent: 0,
			wantLongest: 3,
		},
		{
			name:        "gap resets the run",
			times:       []time.Time{day(6), day(5), day(1), day(0)},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "same-day tasks deduplicate",
			times:       []time.Time{day(1), day(0), day(0).Add(2 * time.Hour), day(0).Add(5 * time.Hour)},
			wantCurrent: 2,
			wantLongest: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := Streaks(tt.times, now)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantLongest, longest)
		})
	}
}

func TestChurnProbability(t *testing.T) {
	assert.Equal(t, 0.0, ChurnProbability(0, 100))
	assert.Equal(t, 1.0, ChurnProbability(100, 0))
	assert.Equal(t, 0.6, ChurnProbability(60, 40))
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		probability float64
		want        string
	}{
		{0.0, RiskLevelLow},
		{0.34, RiskLevelLow},
		{0.35, RiskLevelMedium},
		{0.59, RiskLevelMedium},
		{0.6, RiskLevelHigh},
		{0.79, RiskLevelHigh},
		{0.8, RiskLevelCritical},
		{1.0, RiskLevelCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.probability), "probability %v", tt.probability)
	}
}

func TestChurnFactors(t *testing.T) {
	factors := ChurnFactors(RiskInputs{DaysSinceLastLogin: -1, ExpectedTasks7Days: 7, ActualTasks7Days: 2, Balance: -10}, 20)
	assert.Contains(t, factors, "never logged in")
	assert.Contains(t, factors, "missing daily task targets")
	assert.Contains(t, factors, "negative balance")
	assert.Contains(t, factors, "low engagement score")

	assert.Empty(t, ChurnFactors(RiskInputs{DaysSinceLastLogin: 1, ExpectedTasks7Days: 7, ActualTasks7Days: 7, Balance: 100}, 80))
}

func TestLifetimeValuePrediction(t *testing.T) {
	assert.Equal(t, 400.0, LifetimeValuePrediction(100, 50, 0.5))
	assert.Equal(t, 100.0, LifetimeValuePrediction(100, 50, 1))
	assert.Equal(t, 700.0, LifetimeValuePrediction(100, 50, 0))
}
