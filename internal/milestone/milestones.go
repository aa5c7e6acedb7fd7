package milestone

import (
	"fmt"

	"github.com/taskreel/lifecycle/internal/domain"
)

// DefaultMilestones is the standard threshold ladder per kind.
// Thresholds within a kind must be ascending; labels are what user
// facing surfaces display.
func DefaultMilestones() []domain.Milestone {
	return []domain.Milestone{
		{Kind: domain.MilestoneTasks, Threshold: 1, Label: "First task completed"},
		{Kind: domain.MilestoneTasks, Threshold: 10, Label: "10 tasks completed"},
		{Kind: domain.MilestoneTasks, Threshold: 50, Label: "50 tasks completed"},
		{Kind: domain.MilestoneTasks, Threshold: 100, Label: "100 tasks completed"},
		{Kind: domain.MilestoneTasks, Threshold: 500, Label: "500 tasks completed"},

		{Kind: domain.MilestoneEarnings, Threshold: 100, Label: "100 earned"},
		{Kind: domain.MilestoneEarnings, Threshold: 500, Label: "500 earned"},
		{Kind: domain.MilestoneEarnings, Threshold: 1000, Label: "1,000 earned"},
		{Kind: domain.MilestoneEarnings, Threshold: 5000, Label: "5,000 earned"},

		{Kind: domain.MilestoneReferrals, Threshold: 1, Label: "First referral"},
		{Kind: domain.MilestoneReferrals, Threshold: 5, Label: "5 referrals"},
		{Kind: domain.MilestoneReferrals, Threshold: 10, Label: "10 referrals"},
		{Kind: domain.MilestoneReferrals, Threshold: 25, Label: "25 referrals"},

		{Kind: domain.MilestoneStreak, Threshold: 7, Label: "7 day streak"},
		{Kind: domain.MilestoneStreak, Threshold: 14, Label: "14 day streak"},
		{Kind: domain.MilestoneStreak, Threshold: 30, Label: "30 day streak"},
		{Kind: domain.MilestoneStreak, Threshold: 90, Label: "90 day streak"},
	}
}

// key identifies a milestone for dedupe purposes.
func key(kind domain.MilestoneKind, threshold float64) string {
	return fmt.Sprintf("%s:%g", kind, threshold)
}
