package lifecycle

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskreel/lifecycle/internal/analytics"
	"github.com/taskreel/lifecycle/internal/domain"
)

// topAtRiskCount caps the at-risk listing inside a report.
const topAtRiskCount = 10

// Report is the composed analytics view for a date range: the
// dashboard, journey flows, weekly cohort retention and the insight
// battery, plus the highest-risk users matching the report filters.
type Report struct {
	From        time.Time                `json:"from"`
	To          time.Time                `json:"to"`
	Dashboard   *analytics.Dashboard     `json:"dashboard"`
	Journeys    *analytics.JourneyReport `json:"journeys"`
	Cohorts     *analytics.CohortReport  `json:"cohorts"`
	Insights    []analytics.Insight      `json:"insights"`
	TopAtRisk   []domain.Snapshot        `json:"top_at_risk"`
	GeneratedAt time.Time                `json:"generated_at"`
}

func (s *service) GenerateReport(ctx context.Context, from, to time.Time, f Filters) (*Report, error) {
	report := &Report{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.analytics.Dashboard(gctx, from, to)
		if err != nil {
			return err
		}
		report.Dashboard = d
		return nil
	})
	g.Go(func() error {
		j, err := s.analytics.JourneyFlows(gctx, from, to)
		if err != nil {
			return err
		}
		report.Journeys = j
		return nil
	})
	g.Go(func() error {
		c, err := s.analytics.CohortRetention(gctx, from, to, analytics.CohortWeekly)
		if err != nil {
			return err
		}
		report.Cohorts = c
		return nil
	})
	g.Go(func() error {
		ins, err := s.analytics.Insights(gctx, from, to)
		if err != nil {
			return err
		}
		report.Insights = ins
		return nil
	})
	g.Go(func() error {
		atRisk, err := s.topAtRisk(gctx, f)
		if err != nil {
			return err
		}
		report.TopAtRisk = atRisk
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.GeneratedAt = time.Now()
	return report, nil
}

// topAtRisk returns the highest-risk snapshots matching the filters.
func (s *service) topAtRisk(ctx context.Context, f Filters) ([]domain.Snapshot, error) {
	page, err := s.GetUsersLifecycleData(ctx, f, Page{Limit: maxPageLimit})
	if err != nil {
		return nil, err
	}
	snaps := page.Snapshots
	sortSnapshotsByRisk(snaps)
	if len(snaps) > topAtRiskCount {
		snaps = snaps[:topAtRiskCount]
	}
	return snaps, nil
}
