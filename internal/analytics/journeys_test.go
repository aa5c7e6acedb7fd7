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

func TestJourneyFlows_DropOffScenario(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()
	from := now.AddDate(0, 0, -30)

	// 100 users reach EXPLORING, only 40 make it to FIRST_TASK.
	for i := 0; i < 100; i++ {
		userID := fmt.Sprintf("u-%d", i)
		f.addTransition(t, userID, domain.StageRegistered, domain.StageExploring, from.Add(time.Duration(i)*time.Minute), 2)
		if i < 40 {
			f.addTransition(t, userID, domain.StageExploring, domain.StageFirstTask, from.Add(48*time.Hour), 2)
		}
	}

	report, err := f.service.JourneyFlows(ctx, from, now)
	require.NoError(t, err)
	assert.Equal(t, 100, report.UsersAnalyzed)

	var exploring *TransitionStat
	for i := range report.Transitions {
		if report.Transitions[i].From == domain.StageExploring {
			exploring = &report.Transitions[i]
		}
	}
	require.NotNil(t, exploring)
	assert.Equal(t, 40, exploring.Count)
	assert.InDelta(t, 40.0, exploring.ConversionRate, 0.01)

	require.Len(t, report.DropOffs, 1)
	drop := report.DropOffs[0]
	assert.Equal(t, domain.StageExploring, drop.From)
	assert.Equal(t, domain.StageFirstTask, drop.To)
	assert.InDelta(t, 40.0, drop.ConversionRate, 0.01)
	assert.Equal(t, 60, drop.EstimatedCount)
}

func TestJourneyFlows_AverageDaysInPreviousStage(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()
	from := now.AddDate(0, 0, -10)

	f.addTransition(t, "u-1", domain.StageRegistered, domain.StageProfileIncomplete, from.Add(time.Hour), 2)
	f.addTransition(t, "u-2", domain.StageRegistered, domain.StageProfileIncomplete, from.Add(2*time.Hour), 6)

	report, err := f.service.JourneyFlows(ctx, from, now)
	require.NoError(t, err)
	require.Len(t, report.Transitions, 1)
	assert.InDelta(t, 4.0, report.Transitions[0].AvgDaysInPrevious, 0.01)
}

func TestJourneyFlows_CommonPaths(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()
	from := now.AddDate(0, 0, -10)

	// Three users walk the full onboarding path, one stalls early.
	for i := 0; i < 3; i++ {
		userID := fmt.Sprintf("walker-%d", i)
		base := from.Add(time.Duration(i) * time.Hour)
		f.addTransition(t, userID, domain.StageRegistered, domain.StageProfileIncomplete, base, 0)
		f.addTransition(t, userID, domain.StageProfileIncomplete, domain.StageProfileComplete, base.Add(time.Hour), 1)
	}
	f.addTransition(t, "staller", domain.StageRegistered, domain.StageProfileIncomplete, from, 0)

	report, err := f.service.JourneyFlows(ctx, from, now)
	require.NoError(t, err)
	require.NotEmpty(t, report.CommonPaths)

	top := report.CommonPaths[0]
	assert.Equal(t, []domain.Stage{
		domain.StageRegistered,
		domain.StageProfileIncomplete,
		domain.StageProfileComplete,
	}, top.Path)
	assert.Equal(t, 3, top.Users)
	assert.InDelta(t, 75.0, top.Percentage, 0.01)
}

func TestJourneyFlows_SkipsMalformedTransitions(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()
	from := now.AddDate(0, 0, -5)

	require.NoError(t, f.events.Append(ctx, &domain.Event{
		UserID:    "u-1",
		Type:      domain.EventStageTransition,
		Source:    domain.SourceSystemTrigger,
		Timestamp: from.Add(time.Hour),
		Metadata:  map[string]interface{}{"to_stage": "NOT_A_STAGE"},
	}))

	report, err := f.service.JourneyFlows(ctx, from, now)
	require.NoError(t, err)
	assert.Zero(t, report.UsersAnalyzed)
	assert.Empty(t, report.Transitions)
}
