package analytics

import (
	"context"
	"fmt"
	"time"
)

func (s *service) Heatmap(ctx context.Context, from, to time.Time) (*Heatmap, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	h := &Heatmap{
		From:    from,
		To:      to,
		ByDate:  make(map[string]int),
		ByMonth: make(map[string]int),
	}

	// Pre-zero every date and month bucket so gaps read as explicit
	// zeroes rather than missing keys.
	for cursor := from.UTC().Truncate(24 * time.Hour); !cursor.After(to); cursor = cursor.AddDate(0, 0, 1) {
		h.ByDate[cursor.Format("2006-01-02")] = 0
		h.ByMonth[cursor.Format("2006-01")] = 0
	}

	events, err := s.events.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	for _, ev := range events {
		ts := ev.Timestamp.UTC()
		h.TotalEvents++
		h.HourOfDay[ts.Hour()]++
		h.Weekday[int(ts.Weekday())]++
		h.ByDate[ts.Format("2006-01-02")]++
		h.ByMonth[ts.Format("2006-01")]++
	}
	return h, nil
}
