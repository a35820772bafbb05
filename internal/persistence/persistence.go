// Package persistence opens the plan slot backend named by configuration.
package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gymgenius/internal/config"
	"example.com/gymgenius/internal/persistence/libsql"
	"example.com/gymgenius/internal/persistence/postgres"
	"example.com/gymgenius/internal/planstore"
)

// Backend is an opened slot together with the resources behind it.
type Backend struct {
	Slot planstore.Slot
	// Pool is set for the Postgres backend so callers can run the outbox dispatcher on it.
	Pool  *pgxpool.Pool
	close func()
}

// Close releases the backend's connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to cfg.Backend. Postgres schemas are migrated on open.
func Open(ctx context.Context, cfg config.StoreConfig, eventsTopic string) (*Backend, error) {
	switch cfg.Backend {
	case config.StoreMemory, "":
		return &Backend{Slot: planstore.NewMemorySlot()}, nil
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &Backend{Slot: postgres.NewSlot(pool, eventsTopic), Pool: pool, close: pool.Close}, nil
	case config.StoreLibSQL:
		slot, err := libsql.Open(ctx, cfg.LibSQLURL)
		if err != nil {
			return nil, err
		}
		return &Backend{Slot: slot, close: func() { _ = slot.Close() }}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
