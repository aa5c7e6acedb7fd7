package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/event"
)

func countEventsOfType(t *testing.T, f *lifecycleFixture, userID string, et domain.EventType) int {
	t.Helper()
	counts, err := f.events.CountByUser(context.Background(), userID, []domain.EventType{et}, nil)
	require.NoError(t, err)
	return counts[et]
}

func TestRunDailyCheck_LogsInactivityOncePerDay(t *testing.T) {
	f := newLifecycleFixture(t)
	now := time.Now()
	lastLogin := now.Add(-10 * 24 * time.Hour)
	f.addUser(t, "rex", now.Add(-60*24*time.Hour), func(u *domain.User) {
		u.LastLoginAt = &lastLogin
	})

	result, err := f.svc.RunDailyCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.UsersChecked)
	assert.Equal(t, 1, result.InactivityEventsLogged)
	assert.Equal(t, 1, countEventsOfType(t, f, "rex", domain.EventInactivity7Days))

	// A rerun the same day must not log the marker again.
	result, err = f.svc.RunDailyCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.InactivityEventsLogged)
	assert.Equal(t, 1, countEventsOfType(t, f, "rex", domain.EventInactivity7Days))
}

func TestRunDailyCheck_PicksStrongestThreshold(t *testing.T) {
	f := newLifecycleFixture(t)
	now := time.Now()
	lastLogin := now.Add(-35 * 24 * time.Hour)
	f.addUser(t, "vera", now.Add(-90*24*time.Hour), func(u *domain.User) {
		u.LastLoginAt = &lastLogin
	})

	_, err := f.svc.RunDailyCheck(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, countEventsOfType(t, f, "vera", domain.EventInactivity30Days))
	assert.Equal(t, 0, countEventsOfType(t, f, "vera", domain.EventInactivity14Days))
	assert.Equal(t, 0, countEventsOfType(t, f, "vera", domain.EventInactivity7Days))
}

func TestRunDailyCheck_DemotesQuietRegular(t *testing.T) {
	f := newLifecycleFixture(t)
	now := time.Now()
	lastLogin := now.Add(-8 * 24 * time.Hour)
	f.addUser(t, "odin", now.Add(-120*24*time.Hour), func(u *domain.User) {
		u.LastLoginAt = &lastLogin
	})
	f.seedStage(t, "odin", domain.StageRegularUser, now.Add(-20*24*time.Hour))

	result, err := f.svc.RunDailyCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.StageTransitions)

	snap, err := f.svc.GetUserLifecycleData(context.Background(), "odin")
	require.NoError(t, err)
	assert.Equal(t, domain.StageAtRisk, snap.CurrentStage)
}

func TestRunDailyCheck_SkipsNeverLoggedIn(t *testing.T) {
	f := newLifecycleFixture(t)
	f.addUser(t, "newbie", time.Now().Add(-2*time.Hour), nil)

	result, err := f.svc.RunDailyCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.UsersChecked)
	assert.Equal(t, 0, result.InactivityEventsLogged)
}

func TestRunDailyCheck_PublishesCompletionEvent(t *testing.T) {
	f := newLifecycleFixture(t)
	now := time.Now()
	lastLogin := now.Add(-15 * 24 * time.Hour)
	f.addUser(t, "tess", now.Add(-60*24*time.Hour), func(u *domain.User) {
		u.LastLoginAt = &lastLogin
	})

	var got *event.DailyCheckDonePayloadV1
	f.bus.Subscribe(event.LifecycleDailyCheckDone, func(ctx context.Context, ev event.Event) error {
		payload, err := event.DecodePayload[event.DailyCheckDonePayloadV1](ev.Payload)
		if err != nil {
			return err
		}
		got = &payload
		return nil
	})

	result, err := f.svc.RunDailyCheck(context.Background())
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, result.UsersChecked, got.UsersChecked)
	assert.Equal(t, result.InactivityEventsLogged, got.InactivityEventsLogged)
	assert.Equal(t, 1, countEventsOfType(t, f, "tess", domain.EventInactivity14Days))
}
