package segment

import (
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// Input is the user state a classification runs against. It is built
// once by the caller so classification itself stays a pure function.
type Input struct {
	User            *domain.User
	Stage           domain.Stage
	EngagementScore int
	Metrics         domain.UserMetrics
	Now             time.Time
}

// Classify returns the first segment whose rule the input fully
// satisfies, checking rules in declaration order. When nothing matches
// the user falls into domain.DefaultSegment.
func Classify(rules []domain.SegmentRule, in Input) domain.Segment {
	for _, rule := range rules {
		if ruleMatches(rule, in) {
			return rule.Segment
		}
	}
	return domain.DefaultSegment
}

func ruleMatches(rule domain.SegmentRule, in Input) bool {
	if len(rule.Stages) > 0 && !containsStage(rule.Stages, in.Stage) {
		return false
	}
	if rule.MaxDaysFromRegistration > 0 {
		days := wholeDays(in.User.RegisteredAt, in.Now)
		if days > rule.MaxDaysFromRegistration {
			return false
		}
	}
	if rule.MaxDaysFromLastActivity > 0 {
		days := in.User.DaysSinceLastLogin(in.Now)
		if days < 0 || days > rule.MaxDaysFromLastActivity {
			return false
		}
	}
	if rule.MinEngagementScore > 0 && in.EngagementScore < rule.MinEngagementScore {
		return false
	}
	if rule.MaxEngagementScore > 0 && in.EngagementScore > rule.MaxEngagementScore {
		return false
	}
	if rule.MinLifetimeValue > 0 && in.User.TotalEarnings < rule.MinLifetimeValue {
		return false
	}
	if rule.MinReferrals > 0 && in.User.ReferralCount < rule.MinReferrals {
		return false
	}
	if rule.MinVideoTasks > 0 && in.Metrics.TotalVideoTasks < rule.MinVideoTasks {
		return false
	}
	return true
}

func containsStage(stages []domain.Stage, s domain.Stage) bool {
	for _, candidate := range stages {
		if candidate == s {
			return true
		}
	}
	return false
}

func wholeDays(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DefaultRules is the standard segment rule set. Declaration order is
// the tie-breaker when a user satisfies several rules: recency first,
// then risk states, then value tiers.
func DefaultRules() []domain.SegmentRule {
	return []domain.SegmentRule{
		{Segment: domain.SegmentNewUsers, MaxDaysFromRegistration: 7},
		{Segment: domain.SegmentOnboardingUsers, Stages: []domain.Stage{
			domain.StageRegistered,
			domain.StageProfileIncomplete,
			domain.StageProfileComplete,
			domain.StageFirstLogin,
			domain.StageExploring,
			domain.StageFirstTask,
		}},
		{Segment: domain.SegmentChurnedUsers, Stages: []domain.Stage{domain.StageChurned}},
		{Segment: domain.SegmentDormantUsers, Stages: []domain.Stage{domain.StageDormant, domain.StageInactive}},
		{Segment: domain.SegmentAtRiskUsers, Stages: []domain.Stage{domain.StageAtRisk}},
		{Segment: domain.SegmentReferralChampions, MinReferrals: 5},
		{Segment: domain.SegmentHighValueUsers, MinLifetimeValue: 500},
		{Segment: domain.SegmentPowerUsers, MinEngagementScore: 80, MaxDaysFromLastActivity: 7},
	}
}
