package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/repository"
)

const userColumns = `user_id, username, email, email_verified, registered_at,
	last_login_at, profile_completed_at, position, balance, total_earnings,
	referral_count, daily_task_target, suspended`

type userStore struct {
	db *pgxpool.Pool
}

// NewUserStore creates a read-only PostgreSQL view over the users table.
// The account subsystem owns writes.
func NewUserStore(db *pgxpool.Pool) repository.UserStore {
	return &userStore{db: db}
}

func (s *userStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE user_id = $1"

	user, err := scanUser(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userStore) List(ctx context.Context, q repository.UserQuery) ([]domain.User, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + userColumns + " FROM users WHERE 1=1")

	args := []interface{}{}
	argNum := 1

	if q.RegisteredFrom != nil {
		fmt.Fprintf(&queryBuilder, " AND registered_at >= $%d", argNum)
		args = append(args, *q.RegisteredFrom)
		argNum++
	}

	if q.RegisteredTo != nil {
		fmt.Fprintf(&queryBuilder, " AND registered_at <= $%d", argNum)
		args = append(args, *q.RegisteredTo)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY registered_at ASC")

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

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *userStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.EmailVerified,
		&u.RegisteredAt,
		&u.LastLoginAt,
		&u.ProfileCompletedAt,
		&u.Position,
		&u.Balance,
		&u.TotalEarnings,
		&u.ReferralCount,
		&u.DailyTaskTarget,
		&u.Suspended,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
