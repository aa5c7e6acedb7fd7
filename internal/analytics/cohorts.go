package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

func (s *service) CohortRetention(ctx context.Context, from, to time.Time, period CohortPeriod) (*CohortReport, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if period != CohortWeekly && period != CohortMonthly {
		period = CohortWeekly
	}

	users, err := s.listAllUsers(ctx, &from, &to)
	if err != nil {
		return nil, err
	}

	return buildCohortReport(from, to, period, users, time.Now()), nil
}

// buildCohortReport is the pure aggregation, separated so tests can
// pin the clock.
func buildCohortReport(from, to time.Time, period CohortPeriod, users []domain.User, now time.Time) *CohortReport {
	groups := make(map[time.Time][]domain.User)
	for _, u := range users {
		start := cohortStart(u.RegisteredAt, period)
		groups[start] = append(groups[start], u)
	}

	starts := make([]time.Time, 0, len(groups))
	for start := range groups {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	report := &CohortReport{
		From:             from,
		To:               to,
		Period:           period,
		AverageRetention: make(map[int]float64),
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)

	for _, start := range starts {
		members := groups[start]
		cohort := Cohort{
			Label:     cohortLabel(start, period),
			Start:     start,
			Size:      len(members),
			Retention: make(map[int]float64),
		}

		for _, offset := range RetentionOffsets {
			checkpoint := start.AddDate(0, 0, offset)
			if checkpoint.After(now) {
				// The cohort has not lived long enough for this
				// offset; leaving it out beats reporting a fake zero.
				continue
			}
			retained := 0
			for _, u := range members {
				if u.LastLoginAt != nil && !u.LastLoginAt.Before(checkpoint) {
					retained++
				}
			}
			rate := round2(float64(retained) / float64(len(members)) * 100)
			cohort.Retention[offset] = rate
			sums[offset] += rate
			counts[offset]++
		}
		report.Cohorts = append(report.Cohorts, cohort)
	}

	for offset, n := range counts {
		report.AverageRetention[offset] = round2(sums[offset] / float64(n))
	}
	return report
}

// cohortStart truncates a registration time to its cohort boundary:
// the ISO week's Monday for weekly cohorts, the first of the month for
// monthly ones.
func cohortStart(registered time.Time, period CohortPeriod) time.Time {
	t := registered.UTC()
	if period == CohortMonthly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func cohortLabel(start time.Time, period CohortPeriod) string {
	if period == CohortMonthly {
		return start.Format("2006-01")
	}
	year, week := start.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
