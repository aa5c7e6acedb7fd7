package scoring

import (
	"sort"
	"time"
)

// Streaks derives the current and longest task streaks from raw task
// completion timestamps. Timestamps are grouped by UTC calendar day and
// deduplicated; a streak is a run of consecutive days. The current
// streak allows a one-day grace: a run ending today or yesterday still
// counts, anything older is broken (0).
func Streaks(taskTimes []time.Time, now time.Time) (current, longest int) {
	if len(taskTimes) == 0 {
		return 0, 0
	}

	seen := make(map[string]time.Time, len(taskTimes))
	for _, ts := range taskTimes {
		day := ts.UTC().Truncate(24 * time.Hour)
		seen[day.Format("2006-01-02")] = day
	}

	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	runEnd := days[0]
	run := 1
	longest = 1
	lastRun := 1

	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		runEnd = days[i]
		lastRun = run
	}

	today := now.UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)
	if runEnd.Equal(today) || runEnd.Equal(yesterday) {
		current = lastRun
	}

	return current, longest
}
