package rules

import (
	"context"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/logger"
	"github.com/taskreel/lifecycle/internal/repository"
)

type countKey struct {
	eventType  domain.EventType
	windowDays int
}

// countCache answers EVENT_COUNT lookups for a single evaluation pass,
// memoizing per (type, window) so a rule set never hits the store twice
// for the same question.
type countCache struct {
	ctx    context.Context
	events repository.EventStore
	userID string
	now    time.Time
	cache  map[countKey]int
}

func newCountCache(ctx context.Context, events repository.EventStore, userID string, now time.Time) *countCache {
	return &countCache{
		ctx:    ctx,
		events: events,
		userID: userID,
		now:    now,
		cache:  make(map[countKey]int),
	}
}

// Count reports how many events of the type the user has within the
// window (windowDays <= 0 means all time). An unavailable store makes
// the backing condition unevaluable, reported as ok=false.
func (c *countCache) Count(eventType domain.EventType, windowDays int) (int, bool) {
	key := countKey{eventType: eventType, windowDays: windowDays}
	if n, ok := c.cache[key]; ok {
		return n, true
	}

	var since *time.Time
	if windowDays > 0 {
		t := c.now.AddDate(0, 0, -windowDays)
		since = &t
	}

	counts, err := c.events.CountByUser(c.ctx, c.userID, []domain.EventType{eventType}, since)
	if err != nil {
		logger.FromContext(c.ctx).Warn("Event count lookup failed",
			"error", err, "user_id", c.userID, "event_type", eventType)
		return 0, false
	}

	n := counts[eventType]
	c.cache[key] = n
	return n, true
}
