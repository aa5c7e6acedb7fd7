package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/segment"
)

// Insight thresholds. The battery is deliberately rule-based so every
// finding is explainable from the numbers it reports.
const (
	churnRateAlert        = 20.0
	conversionAlert       = 50.0
	conversionMinSample   = 10
	engagementDropAlert   = 10.0
	highValueLTVThreshold = 1000.0
	day7RetentionAlert    = 50.0
)

func (s *service) Insights(ctx context.Context, from, to time.Time) ([]Insight, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	var (
		dashboard *Dashboard
		journeys  *JourneyReport
		cohorts   *CohortReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.Dashboard(gctx, from, to)
		dashboard = d
		return err
	})
	g.Go(func() error {
		j, err := s.JourneyFlows(gctx, from, to)
		journeys = j
		return err
	})
	g.Go(func() error {
		c, err := s.CohortRetention(gctx, from, to, CohortWeekly)
		cohorts = c
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var insights []Insight
	insights = appendChurnInsight(insights, dashboard)
	insights = appendConversionInsight(insights, journeys)

	engagementInsight, err := s.engagementTrendInsight(ctx, to)
	if err != nil {
		return nil, err
	}
	if engagementInsight != nil {
		insights = append(insights, *engagementInsight)
	}

	opportunity, err := s.opportunityInsight(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if opportunity != nil {
		insights = append(insights, *opportunity)
	}

	insights = appendRetentionInsight(insights, cohorts)
	return insights, nil
}

func appendChurnInsight(insights []Insight, d *Dashboard) []Insight {
	if d.ChurnRate <= churnRateAlert {
		return insights
	}
	return append(insights, Insight{
		Category:       InsightRisk,
		Impact:         ImpactHigh,
		Confidence:     0.9,
		Title:          fmt.Sprintf("Churn rate is %.1f%%", d.ChurnRate),
		Recommendation: "Review the inactivity rule thresholds and launch a winback campaign for churned users.",
		Data: map[string]interface{}{
			"churn_rate":  d.ChurnRate,
			"total_users": d.TotalUsers,
		},
	})
}

func appendConversionInsight(insights []Insight, j *JourneyReport) []Insight {
	var worst *TransitionStat
	for i := range j.Transitions {
		t := &j.Transitions[i]
		if t.ConversionRate >= conversionAlert || t.Count <= conversionMinSample {
			continue
		}
		if worst == nil || t.ConversionRate < worst.ConversionRate {
			worst = t
		}
	}
	if worst == nil {
		return insights
	}
	return append(insights, Insight{
		Category:   InsightConversion,
		Impact:     ImpactHigh,
		Confidence: 0.8,
		Title: fmt.Sprintf("Only %.1f%% of users convert from %s to %s",
			worst.ConversionRate, worst.From, worst.To),
		Recommendation: fmt.Sprintf("Investigate friction in the %s stage; most users stall there.", worst.From),
		Data: map[string]interface{}{
			"from_stage":      string(worst.From),
			"to_stage":        string(worst.To),
			"conversion_rate": worst.ConversionRate,
			"sample_size":     worst.Count,
		},
	})
}

// engagementTrendInsight compares event volume in the last seven days
// of the range against the seven days before that.
func (s *service) engagementTrendInsight(ctx context.Context, to time.Time) (*Insight, error) {
	weekAgo := to.AddDate(0, 0, -7)
	twoWeeksAgo := to.AddDate(0, 0, -14)

	current, err := s.events.CountRange(ctx, weekAgo, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count current week: %w", err)
	}
	prior, err := s.events.CountRange(ctx, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count prior week: %w", err)
	}
	if prior == 0 {
		return nil, nil
	}

	drop := (float64(prior) - float64(current)) / float64(prior) * 100
	if drop < engagementDropAlert {
		return nil, nil
	}
	return &Insight{
		Category:       InsightEngagement,
		Impact:         ImpactMedium,
		Confidence:     0.7,
		Title:          fmt.Sprintf("Weekly activity dropped %.1f%%", drop),
		Recommendation: "Check for product regressions or seasonality and consider a re-engagement push.",
		Data: map[string]interface{}{
			"current_week_events": current,
			"prior_week_events":   prior,
			"drop_percent":        round2(drop),
		},
	}, nil
}

// opportunityInsight looks for a segment whose average lifetime value
// clears the high-value threshold.
func (s *service) opportunityInsight(ctx context.Context, from, to time.Time) (*Insight, error) {
	users, err := s.listAllUsers(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	sums := make(map[domain.Segment]float64)
	counts := make(map[domain.Segment]int)
	for i := range users {
		user := users[i]
		stage, err := s.currentStage(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		m, err := s.scoring.MetricsFor(ctx, &user, to)
		if err != nil {
			return nil, err
		}
		seg := segment.Classify(s.segmentRules, segment.Input{
			User:            &user,
			Stage:           stage,
			EngagementScore: s.scoring.EngagementFor(&user, m),
			Metrics:         m,
			Now:             to,
		})
		sums[seg] += user.TotalEarnings
		counts[seg]++
	}

	var bestSegment domain.Segment
	var bestLTV float64
	for seg, n := range counts {
		avg := sums[seg] / float64(n)
		if avg > highValueLTVThreshold && avg > bestLTV {
			bestSegment = seg
			bestLTV = avg
		}
	}
	if bestSegment == "" {
		return nil, nil
	}
	return &Insight{
		Category:       InsightOpportunity,
		Impact:         ImpactMedium,
		Confidence:     0.75,
		Title:          fmt.Sprintf("Segment %s averages %.0f lifetime value", bestSegment, bestLTV),
		Recommendation: fmt.Sprintf("Prioritize retention and upsell programs for the %s segment.", bestSegment),
		Data: map[string]interface{}{
			"segment":     string(bestSegment),
			"average_ltv": round2(bestLTV),
			"users":       counts[bestSegment],
		},
	}, nil
}

func appendRetentionInsight(insights []Insight, c *CohortReport) []Insight {
	day7, ok := c.AverageRetention[7]
	if !ok || day7 >= day7RetentionAlert {
		return insights
	}
	return append(insights, Insight{
		Category:       InsightRetention,
		Impact:         ImpactHigh,
		Confidence:     0.85,
		Title:          fmt.Sprintf("Day-7 retention is %.1f%%", day7),
		Recommendation: "Strengthen the first-week onboarding flow; most users never return after signup.",
		Data: map[string]interface{}{
			"day_7_retention": day7,
			"cohorts":         len(c.Cohorts),
		},
	})
}
