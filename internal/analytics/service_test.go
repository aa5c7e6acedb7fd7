package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/repository"
	"github.com/taskreel/lifecycle/internal/repository/memory"
	"github.com/taskreel/lifecycle/internal/scoring"
	"github.com/taskreel/lifecycle/internal/segment"
)

type analyticsFixture struct {
	events  *memory.EventStore
	users   *memory.UserStore
	service Service
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	events := memory.NewEventStore()
	users := memory.NewUserStore()
	svc := NewService(events, users, scoring.NewService(events), segment.DefaultRules())
	return &analyticsFixture{events: events, users: users, service: svc}
}

func (f *analyticsFixture) addEvent(t *testing.T, userID string, typ domain.EventType, ts time.Time) {
	t.Helper()
	err := f.events.Append(context.Background(), &domain.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Source:    domain.SourceUserAction,
		Timestamp: ts,
	})
	require.NoError(t, err)
}

func (f *analyticsFixture) addTransition(t *testing.T, userID string, from, to domain.Stage, ts time.Time, days int) {
	t.Helper()
	transition := domain.StageTransition{
		FromStage:           &from,
		ToStage:             to,
		DaysInPreviousStage: days,
		Timestamp:           ts,
	}
	err := f.events.Append(context.Background(), &domain.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domain.EventStageTransition,
		Source:    domain.SourceSystemTrigger,
		Timestamp: ts,
		Metadata:  transition.ToMetadata(),
	})
	require.NoError(t, err)
}

func TestDashboard_RejectsInvalidRange(t *testing.T) {
	f := newAnalyticsFixture(t)
	now := time.Now()

	_, err := f.service.Dashboard(context.Background(), now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestDashboard_CountsAndDistributions(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()
	from := now.AddDate(0, 0, -30)

	recentLogin := now.Add(-2 * time.Hour)
	staleLogin := now.AddDate(0, 0, -45)

	f.users.Put(domain.User{ID: "u-new", RegisteredAt: now.Add(-time.Hour), LastLoginAt: &recentLogin})
	f.users.Put(domain.User{ID: "u-active", RegisteredAt: now.AddDate(0, 0, -60), LastLoginAt: &recentLogin})
	f.users.Put(domain.User{ID: "u-churned", RegisteredAt: now.AddDate(0, 0, -120), LastLoginAt: &staleLogin})
	f.addTransition(t, "u-churned", domain.StageInactive, domain.StageChurned, now.AddDate(0, 0, -10), 31)

	d, err := f.service.Dashboard(ctx, from, now)
	require.NoError(t, err)

	assert.Equal(t, 3, d.TotalUsers)
	assert.Equal(t, 2, d.ActiveUsers)
	assert.Equal(t, 1, d.NewToday)
	assert.InDelta(t, 33.33, d.ChurnRate, 0.01)
	assert.Equal(t, 2, d.StageDistribution[domain.StageRegistered])
	assert.Equal(t, 1, d.StageDistribution[domain.StageChurned])
	assert.Equal(t, 1, d.SegmentDistribution[domain.SegmentNewUsers])
	assert.Equal(t, 1, d.SegmentDistribution[domain.SegmentChurnedUsers])
	assert.False(t, d.Incomplete)
	assert.Equal(t, TrendDaily, d.TrendGranularity)
	assert.Len(t, d.Trend, 30)
}

func TestDashboard_AverageTimeToFirstTask(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()

	reg := now.AddDate(0, 0, -20)
	f.users.Put(domain.User{ID: "u-1", RegisteredAt: reg})
	f.addEvent(t, "u-1", domain.EventTaskCompleted, reg.AddDate(0, 0, 4))

	d, err := f.service.Dashboard(ctx, now.AddDate(0, 0, -30), now)
	require.NoError(t, err)
	assert.InDelta(t, 4, d.AvgDaysToFirstTask, 0.01)
	// Nobody earned yet; the average stays zero rather than negative.
	assert.Zero(t, d.AvgDaysToFirstEarning)
}

type failingUserStore struct {
	*memory.UserStore
}

func (f *failingUserStore) List(ctx context.Context, q repository.UserQuery) ([]domain.User, error) {
	return nil, errors.New("store down")
}

func TestDashboard_StoreErrorPropagates(t *testing.T) {
	events := memory.NewEventStore()
	users := &failingUserStore{memory.NewUserStore()}
	svc := NewService(events, users, scoring.NewService(events), segment.DefaultRules())
	now := time.Now()

	_, err := svc.Dashboard(context.Background(), now.AddDate(0, 0, -7), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestHeatmap_PreZeroedBuckets(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)

	// One event only, in the middle of the range.
	f.addEvent(t, "u-1", domain.EventUserLogin, from.Add(24*time.Hour+14*time.Hour+30*time.Minute))

	h, err := f.service.Heatmap(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, h.TotalEvents)
	assert.Equal(t, 1, h.HourOfDay[14])
	assert.Equal(t, 1, h.Weekday[int(time.Tuesday)])

	// Every day in range is an explicit key, zeros included.
	assert.Equal(t, 0, h.ByDate["2025-06-02"])
	assert.Equal(t, 1, h.ByDate["2025-06-03"])
	assert.Equal(t, 0, h.ByDate["2025-06-04"])
	assert.Equal(t, 1, h.ByMonth["2025-06"])
}

func TestHeatmap_RejectsInvalidRange(t *testing.T) {
	f := newAnalyticsFixture(t)
	now := time.Now()

	_, err := f.service.Heatmap(context.Background(), now, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}
