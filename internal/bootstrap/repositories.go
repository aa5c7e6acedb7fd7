package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskreel/lifecycle/internal/database/postgres"
	"github.com/taskreel/lifecycle/internal/repository"
)

// Stores holds all store implementations used by the application.
// This provides a centralized location for store initialization and
// makes dependency injection clearer.
type Stores struct {
	Users  repository.UserStore
	Events repository.EventStore
}

// InitializeStores creates the Postgres-backed store implementations.
func InitializeStores(dbPool *pgxpool.Pool) *Stores {
	return &Stores{
		Users:  postgres.NewUserStore(dbPool),
		Events: postgres.NewEventStore(dbPool),
	}
}
