package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// dropOffThreshold is the conversion rate below which a transition
// counts as a drop-off point.
const dropOffThreshold = 50.0

const maxCommonPaths = 5

type transitionKey struct {
	from domain.Stage
	to   domain.Stage
}

func (s *service) JourneyFlows(ctx context.Context, from, to time.Time) (*JourneyReport, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	events, err := s.events.ListByType(ctx, domain.EventStageTransition, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}

	type tally struct {
		count   int
		daysSum int
	}
	tallies := make(map[transitionKey]*tally)
	arrivals := make(map[domain.Stage]int)
	departures := make(map[domain.Stage]int)
	perUser := make(map[string][]domain.StageTransition)

	for _, ev := range events {
		t, ok := domain.TransitionFromEvent(ev)
		if !ok {
			continue
		}
		arrivals[t.ToStage]++
		key := transitionKey{to: t.ToStage}
		if t.FromStage != nil {
			key.from = *t.FromStage
			departures[*t.FromStage]++
		}
		if tallies[key] == nil {
			tallies[key] = &tally{}
		}
		tallies[key].count++
		tallies[key].daysSum += t.DaysInPreviousStage
		perUser[ev.UserID] = append(perUser[ev.UserID], t)
	}

	report := &JourneyReport{
		From:          from,
		To:            to,
		UsersAnalyzed: len(perUser),
	}

	for key, tl := range tallies {
		rate := conversionRate(tl.count, key.from, arrivals, departures)
		stat := TransitionStat{
			From:           key.from,
			To:             key.to,
			Count:          tl.count,
			ConversionRate: rate,
		}
		if tl.count > 0 {
			stat.AvgDaysInPrevious = round2(float64(tl.daysSum) / float64(tl.count))
		}
		report.Transitions = append(report.Transitions, stat)

		if rate < dropOffThreshold {
			base := arrivals[key.from]
			if base == 0 {
				base = departures[key.from]
			}
			report.DropOffs = append(report.DropOffs, DropOffPoint{
				From:           key.from,
				To:             key.to,
				ConversionRate: rate,
				EstimatedCount: int(float64(base)*(1-rate/100) + 0.5),
			})
		}
	}
	sortTransitions(report.Transitions)
	sort.Slice(report.DropOffs, func(i, j int) bool {
		return report.DropOffs[i].ConversionRate < report.DropOffs[j].ConversionRate
	})

	report.CommonPaths = commonPaths(perUser)
	return report, nil
}

// conversionRate for one from→to edge: how many users made this exact
// transition out of everyone who ever reached the from stage. Stages
// with no recorded inbound transition (the registration root) fall back
// to their departure count, and the rate caps at 100.
func conversionRate(count int, from domain.Stage, arrivals, departures map[domain.Stage]int) float64 {
	base := arrivals[from]
	if base == 0 {
		base = departures[from]
	}
	if base == 0 {
		return 0
	}
	rate := float64(count) / float64(base) * 100
	if rate > 100 {
		rate = 100
	}
	return round2(rate)
}

// commonPaths builds the top deduplicated stage sequences across users.
func commonPaths(perUser map[string][]domain.StageTransition) []PathStat {
	if len(perUser) == 0 {
		return nil
	}

	counts := make(map[string]int)
	paths := make(map[string][]domain.Stage)
	for _, transitions := range perUser {
		sort.SliceStable(transitions, func(i, j int) bool {
			return transitions[i].Timestamp.Before(transitions[j].Timestamp)
		})

		var seq []domain.Stage
		if transitions[0].FromStage != nil {
			seq = append(seq, *transitions[0].FromStage)
		}
		for _, t := range transitions {
			if len(seq) == 0 || seq[len(seq)-1] != t.ToStage {
				seq = append(seq, t.ToStage)
			}
		}

		key := pathKey(seq)
		counts[key]++
		paths[key] = seq
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > maxCommonPaths {
		keys = keys[:maxCommonPaths]
	}

	total := len(perUser)
	out := make([]PathStat, 0, len(keys))
	for _, k := range keys {
		out = append(out, PathStat{
			Path:       paths[k],
			Users:      counts[k],
			Percentage: round2(float64(counts[k]) / float64(total) * 100),
		})
	}
	return out
}

func pathKey(seq []domain.Stage) string {
	parts := make([]string, len(seq))
	for i, s := range seq {
		parts[i] = string(s)
	}
	return strings.Join(parts, ">")
}
