package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskreel/lifecycle/internal/database"
)

// EnsureSchema applies the database schema on startup. All statements
// are idempotent, so repeated runs are safe.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	slog.Info(LogMsgApplyingSchema)
	if err := database.ApplySchema(ctx, dbPool); err != nil {
		return err
	}
	slog.Info(LogMsgSchemaApplied)
	return nil
}
