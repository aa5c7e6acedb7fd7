package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/repository"
)

// EventStore is an in-memory, mutex-guarded event log. It backs unit
// tests and local development without a database.
type EventStore struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Append(ctx context.Context, ev *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *ev
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	s.events = append(s.events, stored)
	ev.ID = stored.ID
	ev.Timestamp = stored.Timestamp
	return nil
}

func (s *EventStore) ListByUser(ctx context.Context, userID string, q repository.EventQuery) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Event
	for _, ev := range s.events {
		if ev.UserID != userID {
			continue
		}
		if !matchesQuery(ev, q) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *EventStore) CountByUser(ctx context.Context, userID string, types []domain.EventType, since *time.Time) (map[domain.EventType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[domain.EventType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	counts := make(map[domain.EventType]int)
	for _, ev := range s.events {
		if ev.UserID != userID {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[ev.Type]; !ok {
				continue
			}
		}
		if since != nil && ev.Timestamp.Before(*since) {
			continue
		}
		counts[ev.Type]++
	}
	return counts, nil
}

func (s *EventStore) FirstOfType(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *domain.Event
	for i := range s.events {
		ev := s.events[i]
		if ev.UserID != userID || ev.Type != t {
			continue
		}
		if first == nil || ev.Timestamp.Before(first.Timestamp) {
			cp := ev
			first = &cp
		}
	}
	return first, nil
}

func (s *EventStore) LatestOfType(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Event
	for i := range s.events {
		ev := s.events[i]
		if ev.UserID != userID || ev.Type != t {
			continue
		}
		if latest == nil || !ev.Timestamp.Before(latest.Timestamp) {
			cp := ev
			latest = &cp
		}
	}
	return latest, nil
}

func (s *EventStore) ListByType(ctx context.Context, t domain.EventType, from, to time.Time) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Event
	for _, ev := range s.events {
		if ev.Type != t || !inRange(ev.Timestamp, from, to) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *EventStore) ListRange(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Event
	for _, ev := range s.events {
		if !inRange(ev.Timestamp, from, to) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *EventStore) CountRange(ctx context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, ev := range s.events {
		if inRange(ev.Timestamp, from, to) {
			n++
		}
	}
	return n, nil
}

func matchesQuery(ev domain.Event, q repository.EventQuery) bool {
	if len(q.Types) > 0 {
		found := false
		for _, t := range q.Types {
			if ev.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.DateFrom != nil && ev.Timestamp.Before(*q.DateFrom) {
		return false
	}
	if q.DateTo != nil && ev.Timestamp.After(*q.DateTo) {
		return false
	}
	return true
}

func inRange(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && ts.After(to) {
		return false
	}
	return true
}
