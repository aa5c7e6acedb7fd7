package repository

import (
	"context"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// EventQuery filters event history reads.
type EventQuery struct {
	Types    []domain.EventType
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// EventStore is the append-only durable event log. Events are never
// updated or deleted through this interface.
type EventStore interface {
	// Append persists a new event.
	Append(ctx context.Context, ev *domain.Event) error

	// ListByUser returns a user's events newest-first.
	ListByUser(ctx context.Context, userID string, q EventQuery) ([]domain.Event, error)

	// CountByUser returns per-type counts for a user, optionally
	// restricted to events at or after since.
	CountByUser(ctx context.Context, userID string, types []domain.EventType, since *time.Time) (map[domain.EventType]int, error)

	// FirstOfType returns the earliest event of the given type for the
	// user, or nil when none exists.
	FirstOfType(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error)

	// LatestOfType returns the most recent event of the given type for
	// the user, or nil when none exists. Backed by a (user_id,
	// event_type, timestamp DESC) index so stage derivation stays O(1).
	LatestOfType(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error)

	// ListByType returns all events of a type across users in [from, to].
	ListByType(ctx context.Context, t domain.EventType, from, to time.Time) ([]domain.Event, error)

	// ListRange returns all events across users in [from, to].
	ListRange(ctx context.Context, from, to time.Time) ([]domain.Event, error)

	// CountRange returns the number of events in [from, to].
	CountRange(ctx context.Context, from, to time.Time) (int, error)
}
