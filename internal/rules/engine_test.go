package rules

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/event"
	"github.com/taskreel/lifecycle/internal/repository/memory"
	"github.com/taskreel/lifecycle/internal/scoring"
)

type engineFixture struct {
	events *memory.EventStore
	users  *memory.UserStore
	bus    *event.MemoryBus
	engine Engine
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	events := memory.NewEventStore()
	users := memory.NewUserStore()
	bus := event.NewMemoryBus()
	eng := NewEngine(events, users, scoring.NewService(events), DefaultRules(), bus)
	return &engineFixture{events: events, users: users, bus: bus, engine: eng}
}

func (f *engineFixture) addUser(user domain.User) {
	f.users.Put(user)
}

func (f *engineFixture) addEvent(t *testing.T, userID string, typ domain.EventType, ts time.Time) {
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

func (f *engineFixture) seedStage(t *testing.T, userID string, stage domain.Stage, at time.Time) {
	t.Helper()
	from := domain.DefaultStage
	transition := domain.StageTransition{
		FromStage: &from,
		ToStage:   stage,
		Timestamp: at,
	}
	err := f.events.Append(context.Background(), &domain.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domain.EventStageTransition,
		Source:    domain.SourceSystemTrigger,
		Timestamp: at,
		Metadata:  transition.ToMetadata(),
	})
	require.NoError(t, err)
}

func TestCurrentStage_DefaultsToRegistered(t *testing.T) {
	f := newEngineFixture(t)

	stage, enteredAt, err := f.engine.CurrentStage(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, domain.StageRegistered, stage)
	assert.True(t, enteredAt.IsZero())
}

func TestCurrentStage_DerivedFromLatestTransition(t *testing.T) {
	f := newEngineFixture(t)
	now := time.Now()

	f.seedStage(t, "user-1", domain.StageExploring, now.Add(-48*time.Hour))
	f.seedStage(t, "user-1", domain.StageFirstTask, now.Add(-24*time.Hour))

	stage, enteredAt, err := f.engine.CurrentStage(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageFirstTask, stage)
	assert.WithinDuration(t, now.Add(-24*time.Hour), enteredAt, time.Second)
}

func TestCurrentStage_MalformedMetadataFallsBack(t *testing.T) {
	f := newEngineFixture(t)

	require.NoError(t, f.events.Append(context.Background(), &domain.Event{
		ID:        uuid.NewString(),
		UserID:    "user-1",
		Type:      domain.EventStageTransition,
		Source:    domain.SourceSystemTrigger,
		Timestamp: time.Now(),
		Metadata:  map[string]interface{}{"to_stage": 42},
	}))

	stage, _, err := f.engine.CurrentStage(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStage, stage)
}

func TestEvaluate_UnknownUser(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Evaluate(context.Background(), "ghost", domain.EventUserLogin)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEvaluate_WalksOnboardingLadderOneRungPerPass(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()
	profileDone := now.Add(-72 * time.Hour)
	lastLogin := now.Add(-1 * time.Hour)

	// A user who completed everything at once still walks the ladder
	// one transition per pass with no stage skipped.
	f.addUser(domain.User{
		ID:                 "user-1",
		Username:           "marta",
		RegisteredAt:       now.Add(-96 * time.Hour),
		ProfileCompletedAt: &profileDone,
		LastLoginAt:        &lastLogin,
		DailyTaskTarget:    5,
	})
	f.addEvent(t, "user-1", domain.EventUserLogin, now.Add(-2*time.Hour))
	f.addEvent(t, "user-1", domain.EventUserLogin, now.Add(-1*time.Hour))
	f.addEvent(t, "user-1", domain.EventTaskCompleted, now.Add(-30*time.Minute))

	want := []domain.Stage{
		domain.StageProfileIncomplete,
		domain.StageProfileComplete,
		domain.StageFirstLogin,
		domain.StageExploring,
		domain.StageFirstTask,
	}
	for i, expected := range want {
		result, err := f.engine.Evaluate(ctx, "user-1", domain.EventTaskCompleted)
		require.NoError(t, err, "pass %d", i)
		require.True(t, result.Transitioned, "pass %d", i)
		assert.Equal(t, expected, result.Stage, "pass %d", i)
	}

	// FIRST_TASK needs an earning to advance, so evaluation settles.
	result, err := f.engine.Evaluate(ctx, "user-1", domain.EventTaskCompleted)
	require.NoError(t, err)
	assert.False(t, result.Transitioned)
	assert.Equal(t, domain.StageFirstTask, result.Stage)
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.Add(-time.Hour)})

	first, err := f.engine.Evaluate(ctx, "user-1", domain.EventUserRegistered)
	require.NoError(t, err)
	assert.True(t, first.Transitioned)
	assert.Equal(t, domain.StageProfileIncomplete, first.Stage)

	// No new facts since the first pass: nothing else fires.
	second, err := f.engine.Evaluate(ctx, "user-1", domain.EventUserRegistered)
	require.NoError(t, err)
	assert.False(t, second.Transitioned)
	assert.Equal(t, domain.StageProfileIncomplete, second.Stage)
}

func TestEvaluate_RegularUserDecaysToAtRisk(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()
	lastLogin := now.AddDate(0, 0, -8)

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.AddDate(0, 0, -90), LastLoginAt: &lastLogin})
	f.seedStage(t, "user-1", domain.StageRegularUser, now.AddDate(0, 0, -30))

	result, err := f.engine.Evaluate(ctx, "user-1", domain.EventInactivity7Days)
	require.NoError(t, err)
	require.True(t, result.Transitioned)
	assert.Equal(t, domain.StageAtRisk, result.Stage)
	assert.Equal(t, "regular-at-risk", result.MatchedRule)
}

func TestEvaluate_AtRiskDecaysToInactive(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()
	lastLogin := now.AddDate(0, 0, -15)

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.AddDate(0, 0, -90), LastLoginAt: &lastLogin})
	f.seedStage(t, "user-1", domain.StageAtRisk, now.AddDate(0, 0, -7))

	result, err := f.engine.Evaluate(ctx, "user-1", domain.EventInactivity14Days)
	require.NoError(t, err)
	require.True(t, result.Transitioned)
	assert.Equal(t, domain.StageInactive, result.Stage)
}

func TestEvaluate_InactiveDecaysToChurned(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()
	lastLogin := now.AddDate(0, 0, -31)

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.AddDate(0, 0, -120), LastLoginAt: &lastLogin})
	f.seedStage(t, "user-1", domain.StageInactive, now.AddDate(0, 0, -16))

	result, err := f.engine.Evaluate(ctx, "user-1", domain.EventInactivity30Days)
	require.NoError(t, err)
	require.True(t, result.Transitioned)
	assert.Equal(t, domain.StageChurned, result.Stage)
}

func TestEvaluate_ChurnedUserReactivatesOnReturn(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()
	lastLogin := now.Add(-2 * time.Hour)

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.AddDate(0, 0, -200), LastLoginAt: &lastLogin})
	f.seedStage(t, "user-1", domain.StageChurned, now.AddDate(0, 0, -60))

	result, err := f.engine.Evaluate(ctx, "user-1", domain.EventUserLogin)
	require.NoError(t, err)
	require.True(t, result.Transitioned)
	assert.Equal(t, domain.StageReactivated, result.Stage)
}

func TestEvaluate_SuspendedFlagOverridesEverything(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()
	lastLogin := now.Add(-time.Hour)

	f.addUser(domain.User{
		ID:           "user-1",
		RegisteredAt: now.AddDate(0, 0, -90),
		LastLoginAt:  &lastLogin,
		Suspended:    true,
	})
	f.seedStage(t, "user-1", domain.StagePowerUser, now.AddDate(0, 0, -30))

	result, err := f.engine.Evaluate(ctx, "user-1", domain.EventUserLogin)
	require.NoError(t, err)
	require.True(t, result.Transitioned)
	assert.Equal(t, domain.StageSuspended, result.Stage)
	assert.Equal(t, "suspend-flagged-account", result.MatchedRule)
}

func TestEvaluate_PersistsTransitionEvent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.AddDate(0, 0, -3)})

	result, err := f.engine.Evaluate(ctx, "user-1", domain.EventUserRegistered)
	require.NoError(t, err)
	require.True(t, result.Transitioned)

	ev, err := f.events.LatestOfType(ctx, "user-1", domain.EventStageTransition)
	require.NoError(t, err)
	require.NotNil(t, ev)

	transition, ok := domain.TransitionFromEvent(*ev)
	require.True(t, ok)
	require.NotNil(t, transition.FromStage)
	assert.Equal(t, domain.StageRegistered, *transition.FromStage)
	assert.Equal(t, domain.StageProfileIncomplete, transition.ToStage)
	assert.Equal(t, domain.EventUserRegistered, transition.TriggerEvent)
	assert.Equal(t, 3, transition.DaysInPreviousStage)
}

func TestEvaluate_PublishesStageChanged(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()

	var published []event.StageChangedPayloadV1
	f.bus.Subscribe(event.LifecycleStageChanged, func(ctx context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.StageChangedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		published = append(published, payload)
		return nil
	})

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.Add(-time.Hour)})

	_, err := f.engine.Evaluate(ctx, "user-1", domain.EventUserRegistered)
	require.NoError(t, err)

	require.Len(t, published, 1)
	assert.Equal(t, "user-1", published[0].UserID)
	assert.Equal(t, string(domain.StageProfileIncomplete), published[0].ToStage)
}

func TestForce_RecordsAdminTransition(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.AddDate(0, 0, -10)})
	f.seedStage(t, "user-1", domain.StageRegularUser, now.AddDate(0, 0, -5))

	transition, err := f.engine.Force(ctx, "user-1", domain.StageVIPUser, "manual promotion", "admin-7")
	require.NoError(t, err)
	assert.Equal(t, domain.StageVIPUser, transition.ToStage)
	assert.Equal(t, "manual promotion", transition.Reason)
	assert.Equal(t, "admin-7", transition.AdminID)

	stage, _, err := f.engine.CurrentStage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageVIPUser, stage)

	ev, err := f.events.LatestOfType(ctx, "user-1", domain.EventStageTransition)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAdminAction, ev.Source)
}

func TestForce_RejectsInvalidStage(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Force(context.Background(), "user-1", domain.Stage("NOT_A_STAGE"), "", "admin-7")
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestSubscribe_EvaluatesOnTrackedEvents(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.Add(-time.Hour)})
	f.engine.Subscribe(f.bus)

	err := f.bus.Publish(ctx, event.NewEventTrackedEvent("user-1", domain.EventUserLogin, now, false))
	require.NoError(t, err)

	stage, _, err := f.engine.CurrentStage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageProfileIncomplete, stage)
}

func TestSubscribe_HonorsSkipFlag(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	now := time.Now()

	f.addUser(domain.User{ID: "user-1", RegisteredAt: now.Add(-time.Hour)})
	f.engine.Subscribe(f.bus)

	err := f.bus.Publish(ctx, event.NewEventTrackedEvent("user-1", domain.EventUserLogin, now, true))
	require.NoError(t, err)

	stage, _, err := f.engine.CurrentStage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageRegistered, stage)
}

func TestEvaluate_RuleWithoutConditionsMatches(t *testing.T) {
	events := memory.NewEventStore()
	users := memory.NewUserStore()
	from := domain.StageRegistered
	ruleSet := []domain.TransitionRule{{
		Name:      "auto_advance",
		FromStage: &from,
		ToStage:   domain.StageProfileIncomplete,
		Priority:  1,
	}}
	eng := NewEngine(events, users, scoring.NewService(events), ruleSet, event.NewMemoryBus())

	users.Put(domain.User{ID: "user-1", RegisteredAt: time.Now().Add(-time.Hour)})

	result, err := eng.Evaluate(context.Background(), "user-1", domain.EventUserRegistered)
	require.NoError(t, err)
	require.True(t, result.Transitioned)
	assert.Equal(t, "auto_advance", result.MatchedRule)
	assert.Equal(t, domain.StageProfileIncomplete, result.Stage)
}
