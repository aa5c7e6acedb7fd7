package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/repository"
)

const eventColumns = "event_id, user_id, event_type, source, occurred_at, metadata, context"

type eventStore struct {
	db *pgxpool.Pool
}

// NewEventStore creates a PostgreSQL-backed append-only event log.
func NewEventStore(db *pgxpool.Pool) repository.EventStore {
	return &eventStore{db: db}
}

func (s *eventStore) Append(ctx context.Context, ev *domain.Event) error {
	query := `
		INSERT INTO lifecycle_events (event_id, user_id, event_type, source, occurred_at, metadata, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var metadataJSON []byte
	var err error
	if ev.Metadata != nil {
		metadataJSON, err = json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	var contextJSON []byte
	if ev.Context != nil {
		contextJSON, err = json.Marshal(ev.Context)
		if err != nil {
			return fmt.Errorf("marshal context: %w", err)
		}
	}

	_, err = s.db.Exec(ctx, query, ev.ID, ev.UserID, ev.Type, ev.Source, ev.Timestamp, metadataJSON, contextJSON)
	return err
}

func (s *eventStore) ListByUser(ctx context.Context, userID string, q repository.EventQuery) ([]domain.Event, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + eventColumns + " FROM lifecycle_events WHERE user_id = $1")

	args := []interface{}{userID}
	argNum := 2

	if len(q.Types) > 0 {
		fmt.Fprintf(&queryBuilder, " AND event_type = ANY($%d)", argNum)
		args = append(args, eventTypeStrings(q.Types))
		argNum++
	}

	if q.DateFrom != nil {
		fmt.Fprintf(&queryBuilder, " AND occurred_at >= $%d", argNum)
		args = append(args, *q.DateFrom)
		argNum++
	}

	if q.DateTo != nil {
		fmt.Fprintf(&queryBuilder, " AND occurred_at <= $%d", argNum)
		args = append(args, *q.DateTo)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY occurred_at DESC")

	if q.Limit > 0 {
		fmt.Fprintf(&queryBuilder, " LIMIT $%d", argNum)
		args = append(args, q.Limit)
		argNum++
	}

	if q.Offset > 0 {
		fmt.Fprintf(&queryBuilder, " OFFSET $%d", argNum)
		args = append(args, q.Offset)
	}

	rows, err := s.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *eventStore) CountByUser(ctx context.Context, userID string, types []domain.EventType, since *time.Time) (map[domain.EventType]int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT event_type, COUNT(*) FROM lifecycle_events WHERE user_id = $1")

	args := []interface{}{userID}
	argNum := 2

	if len(types) > 0 {
		fmt.Fprintf(&queryBuilder, " AND event_type = ANY($%d)", argNum)
		args = append(args, eventTypeStrings(types))
		argNum++
	}

	if since != nil {
		fmt.Fprintf(&queryBuilder, " AND occurred_at >= $%d", argNum)
		args = append(args, *since)
	}

	queryBuilder.WriteString(" GROUP BY event_type")

	rows, err := s.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.EventType]int)
	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, err
		}
		counts[domain.EventType(eventType)] = count
	}
	return counts, rows.Err()
}

func (s *eventStore) FirstOfType(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error) {
	return s.oneOfType(ctx, userID, t, "ASC")
}

func (s *eventStore) LatestOfType(ctx context.Context, userID string, t domain.EventType) (*domain.Event, error) {
	return s.oneOfType(ctx, userID, t, "DESC")
}

func (s *eventStore) oneOfType(ctx context.Context, userID string, t domain.EventType, order string) (*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM lifecycle_events
		WHERE user_id = $1 AND event_type = $2
		ORDER BY occurred_at %s
		LIMIT 1
	`, eventColumns, order)

	rows, err := s.db.Query(ctx, query, userID, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (s *eventStore) ListByType(ctx context.Context, t domain.EventType, from, to time.Time) ([]domain.Event, error) {
	query := `
		SELECT ` + eventColumns + ` FROM lifecycle_events
		WHERE event_type = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at ASC
	`

	rows, err := s.db.Query(ctx, query, t, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *eventStore) ListRange(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	query := `
		SELECT ` + eventColumns + ` FROM lifecycle_events
		WHERE occurred_at >= $1 AND occurred_at <= $2
		ORDER BY occurred_at ASC
	`

	rows, err := s.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *eventStore) CountRange(ctx context.Context, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM lifecycle_events
		WHERE occurred_at >= $1 AND occurred_at <= $2
	`

	var count int
	if err := s.db.QueryRow(ctx, query, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// scanEvents scans rows into Event structs
func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var events []domain.Event

	for rows.Next() {
		var ev domain.Event
		var eventType, source string
		var metadataJSON, contextJSON []byte

		err := rows.Scan(
			&ev.ID,
			&ev.UserID,
			&eventType,
			&source,
			&ev.Timestamp,
			&metadataJSON,
			&contextJSON,
		)
		if err != nil {
			return nil, err
		}
		ev.Type = domain.EventType(eventType)
		ev.Source = domain.EventSource(source)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &ev.Metadata); err != nil {
				return nil, err
			}
		}

		if len(contextJSON) > 0 {
			ev.Context = &domain.EventContext{}
			if err := json.Unmarshal(contextJSON, ev.Context); err != nil {
				return nil, err
			}
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func eventTypeStrings(types []domain.EventType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
