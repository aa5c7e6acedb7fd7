package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskreel/lifecycle/internal/domain"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func inputFor(mutate func(*Input)) Input {
	lastLogin := testNow.AddDate(0, 0, -2)
	in := Input{
		User: &domain.User{
			ID:           "user-1",
			RegisteredAt: testNow.AddDate(0, 0, -60),
			LastLoginAt:  &lastLogin,
		},
		Stage:           domain.StageRegularUser,
		EngagementScore: 50,
		Now:             testNow,
	}
	if mutate != nil {
		mutate(&in)
	}
	return in
}

func TestClassify_DefaultsToActiveUsers(t *testing.T) {
	got := Classify(DefaultRules(), inputFor(nil))
	assert.Equal(t, domain.SegmentActiveUsers, got)
}

func TestClassify_NewUsersWinsOnRecentRegistration(t *testing.T) {
	in := inputFor(func(in *Input) {
		in.User.RegisteredAt = testNow.AddDate(0, 0, -3)
		// Even a high-value profile classifies as new first.
		in.User.TotalEarnings = 2000
		in.EngagementScore = 95
	})
	assert.Equal(t, domain.SegmentNewUsers, Classify(DefaultRules(), in))
}

func TestClassify_OnboardingStages(t *testing.T) {
	for _, stage := range []domain.Stage{domain.StageExploring, domain.StageFirstTask} {
		in := inputFor(func(in *Input) { in.Stage = stage })
		assert.Equal(t, domain.SegmentOnboardingUsers, Classify(DefaultRules(), in), "stage %s", stage)
	}
}

func TestClassify_RiskStates(t *testing.T) {
	cases := []struct {
		stage domain.Stage
		want  domain.Segment
	}{
		{domain.StageChurned, domain.SegmentChurnedUsers},
		{domain.StageDormant, domain.SegmentDormantUsers},
		{domain.StageInactive, domain.SegmentDormantUsers},
		{domain.StageAtRisk, domain.SegmentAtRiskUsers},
	}
	for _, tc := range cases {
		in := inputFor(func(in *Input) { in.Stage = tc.stage })
		assert.Equal(t, tc.want, Classify(DefaultRules(), in), "stage %s", tc.stage)
	}
}

func TestClassify_ReferralChampionsBeforeHighValue(t *testing.T) {
	in := inputFor(func(in *Input) {
		in.User.ReferralCount = 6
		in.User.TotalEarnings = 900
	})
	assert.Equal(t, domain.SegmentReferralChampions, Classify(DefaultRules(), in))
}

func TestClassify_HighValueUsers(t *testing.T) {
	in := inputFor(func(in *Input) { in.User.TotalEarnings = 750 })
	assert.Equal(t, domain.SegmentHighValueUsers, Classify(DefaultRules(), in))
}

func TestClassify_PowerUsersNeedRecentActivity(t *testing.T) {
	in := inputFor(func(in *Input) { in.EngagementScore = 88 })
	assert.Equal(t, domain.SegmentPowerUsers, Classify(DefaultRules(), in))

	stale := inputFor(func(in *Input) {
		in.EngagementScore = 88
		old := testNow.AddDate(0, 0, -20)
		in.User.LastLoginAt = &old
	})
	assert.Equal(t, domain.SegmentActiveUsers, Classify(DefaultRules(), stale))
}

func TestClassify_NeverLoggedInFailsActivityConstraint(t *testing.T) {
	in := inputFor(func(in *Input) {
		in.EngagementScore = 90
		in.User.LastLoginAt = nil
	})
	assert.Equal(t, domain.SegmentActiveUsers, Classify(DefaultRules(), in))
}

func TestClassify_DeclarationOrderIsLoadBearing(t *testing.T) {
	// The same user classifies differently when the rule order flips,
	// so order is configuration, not cosmetics.
	in := inputFor(func(in *Input) {
		in.User.ReferralCount = 6
		in.User.TotalEarnings = 900
	})

	forward := []domain.SegmentRule{
		{Segment: domain.SegmentReferralChampions, MinReferrals: 5},
		{Segment: domain.SegmentHighValueUsers, MinLifetimeValue: 500},
	}
	reversed := []domain.SegmentRule{
		{Segment: domain.SegmentHighValueUsers, MinLifetimeValue: 500},
		{Segment: domain.SegmentReferralChampions, MinReferrals: 5},
	}

	assert.Equal(t, domain.SegmentReferralChampions, Classify(forward, in))
	assert.Equal(t, domain.SegmentHighValueUsers, Classify(reversed, in))
}

func TestClassify_EmptyRulesFallThrough(t *testing.T) {
	assert.Equal(t, domain.DefaultSegment, Classify(nil, inputFor(nil)))
}
