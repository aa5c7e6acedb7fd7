package domain

// MilestoneKind names the metric a milestone threshold applies to.
type MilestoneKind string

const (
	MilestoneEarnings  MilestoneKind = "EARNINGS"
	MilestoneTasks     MilestoneKind = "TASKS"
	MilestoneReferrals MilestoneKind = "REFERRALS"
	MilestoneStreak    MilestoneKind = "STREAK"
)

// Milestone is a threshold crossing recorded as a MILESTONE_REACHED
// event. Crossing the same threshold twice must not re-fire.
type Milestone struct {
	Kind      MilestoneKind `json:"kind"`
	Threshold float64       `json:"threshold"`
	Label     string        `json:"label"`
}

// Metadata keys used by MILESTONE_REACHED events.
const (
	MilestoneKeyKind      = "milestone_kind"
	MilestoneKeyThreshold = "milestone_threshold"
	MilestoneKeyLabel     = "milestone_label"
)
