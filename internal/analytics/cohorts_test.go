package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskreel/lifecycle/internal/domain"
)

func TestBuildCohortReport_MonotonicDecay(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	start := cohortStart(now.AddDate(0, 0, -40), CohortWeekly)

	login := func(daysAfterStart int) *time.Time {
		ts := start.AddDate(0, 0, daysAfterStart)
		return &ts
	}

	// Ten users registered the same week, activity decaying over time.
	var users []domain.User
	lastLogins := []*time.Time{
		login(2), login(2), login(2), login(2),
		login(10), login(10), login(10),
		login(35), login(35),
		nil,
	}
	for i, ll := range lastLogins {
		users = append(users, domain.User{
			ID:           fmt.Sprintf("u-%d", i),
			RegisteredAt: start.Add(time.Duration(i) * time.Hour),
			LastLoginAt:  ll,
		})
	}

	report := buildCohortReport(start, now, CohortWeekly, users, now)
	require.Len(t, report.Cohorts, 1)
	cohort := report.Cohorts[0]
	assert.Equal(t, 10, cohort.Size)

	assert.InDelta(t, 90.0, cohort.Retention[1], 0.01)
	assert.InDelta(t, 50.0, cohort.Retention[3], 0.01)
	assert.InDelta(t, 50.0, cohort.Retention[7], 0.01)
	assert.InDelta(t, 20.0, cohort.Retention[14], 0.01)
	assert.InDelta(t, 20.0, cohort.Retention[30], 0.01)

	// Retention never increases with the offset.
	assert.LessOrEqual(t, cohort.Retention[30], cohort.Retention[7])
	assert.LessOrEqual(t, cohort.Retention[7], cohort.Retention[3])
	assert.LessOrEqual(t, cohort.Retention[3], cohort.Retention[1])

	// The cohort is 40ish days old: offsets 60 and 90 have not elapsed
	// and must be absent rather than zero.
	_, has60 := cohort.Retention[60]
	_, has90 := cohort.Retention[90]
	assert.False(t, has60)
	assert.False(t, has90)
}

func TestBuildCohortReport_AveragesAcrossCohorts(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	weekA := cohortStart(now.AddDate(0, 0, -30), CohortWeekly)
	weekB := cohortStart(now.AddDate(0, 0, -20), CohortWeekly)

	loginAt := func(base time.Time, days int) *time.Time {
		ts := base.AddDate(0, 0, days)
		return &ts
	}

	users := []domain.User{
		// Week A: both retained past day 7.
		{ID: "a-1", RegisteredAt: weekA, LastLoginAt: loginAt(weekA, 9)},
		{ID: "a-2", RegisteredAt: weekA.Add(time.Hour), LastLoginAt: loginAt(weekA, 8)},
		// Week B: one of two retained past day 7.
		{ID: "b-1", RegisteredAt: weekB, LastLoginAt: loginAt(weekB, 9)},
		{ID: "b-2", RegisteredAt: weekB.Add(time.Hour), LastLoginAt: loginAt(weekB, 2)},
	}

	report := buildCohortReport(weekA, now, CohortWeekly, users, now)
	require.Len(t, report.Cohorts, 2)

	// (100 + 50) / 2
	assert.InDelta(t, 75.0, report.AverageRetention[7], 0.01)
}

func TestCohortRetention_ServiceEndToEnd(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()

	reg := now.AddDate(0, 0, -20)
	lastLogin := now.AddDate(0, 0, -1)
	f.users.Put(domain.User{ID: "u-1", RegisteredAt: reg, LastLoginAt: &lastLogin})

	report, err := f.service.CohortRetention(ctx, now.AddDate(0, 0, -60), now, CohortMonthly)
	require.NoError(t, err)
	require.Len(t, report.Cohorts, 1)
	assert.Equal(t, CohortMonthly, report.Period)
	assert.InDelta(t, 100.0, report.Cohorts[0].Retention[1], 0.01)
}

func TestCohortStart_Boundaries(t *testing.T) {
	// 2025-06-04 is a Wednesday; its week starts Monday 2025-06-02.
	wed := time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), cohortStart(wed, CohortWeekly))

	// Sunday belongs to the week that started the previous Monday.
	sun := time.Date(2025, 6, 8, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), cohortStart(sun, CohortWeekly))

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cohortStart(wed, CohortMonthly))
}
