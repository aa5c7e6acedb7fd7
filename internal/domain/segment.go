package domain

// Segment is a coarse behavioral classification derived from stage,
// scores and aggregate metrics.
type Segment string

const (
	SegmentNewUsers          Segment = "NEW_USERS"
	SegmentOnboardingUsers   Segment = "ONBOARDING_USERS"
	SegmentPowerUsers        Segment = "POWER_USERS"
	SegmentHighValueUsers    Segment = "HIGH_VALUE_USERS"
	SegmentReferralChampions Segment = "REFERRAL_CHAMPIONS"
	SegmentAtRiskUsers       Segment = "AT_RISK_USERS"
	SegmentDormantUsers      Segment = "DORMANT_USERS"
	SegmentChurnedUsers      Segment = "CHURNED_USERS"
	SegmentActiveUsers       Segment = "ACTIVE_USERS"
)

// DefaultSegment applies when no segment rule matches.
const DefaultSegment = SegmentActiveUsers

// SegmentRule constrains membership of a segment. Zero-valued fields
// are unconstrained. Rules are checked in declaration order and the
// first fully satisfied rule wins; declaration order is load-bearing
// configuration, not an implementation detail.
type SegmentRule struct {
	Segment                 Segment
	Stages                  []Stage
	MaxDaysFromRegistration int
	MaxDaysFromLastActivity int
	MinEngagementScore      int
	MaxEngagementScore      int
	MinLifetimeValue        float64
	MinReferrals            int
	MinVideoTasks           int
}
