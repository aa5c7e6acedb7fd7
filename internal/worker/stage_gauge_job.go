package worker

import (
	"context"
	"time"

	"github.com/taskreel/lifecycle/internal/analytics"
	"github.com/taskreel/lifecycle/internal/metrics"
)

// StageGaugeJob refreshes the users-by-stage gauge from the dashboard
// aggregates so the stage distribution is scrapeable without hitting
// the API.
type StageGaugeJob struct {
	analytics analytics.Service
	window    time.Duration
}

// NewStageGaugeJob creates the job. The window bounds the dashboard
// date range used for the aggregation.
func NewStageGaugeJob(analyticsSvc analytics.Service, window time.Duration) *StageGaugeJob {
	return &StageGaugeJob{analytics: analyticsSvc, window: window}
}

// Process recomputes the stage distribution and updates the gauge.
func (j *StageGaugeJob) Process(ctx context.Context) error {
	now := time.Now()
	dashboard, err := j.analytics.Dashboard(ctx, now.Add(-j.window), now)
	if err != nil {
		return err
	}

	metrics.UsersByStage.Reset()
	for stage, count := range dashboard.StageDistribution {
		metrics.UsersByStage.WithLabelValues(string(stage)).Set(float64(count))
	}
	return nil
}
