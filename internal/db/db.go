// Package db provides the PostgreSQL pool, migrations, and pg type helpers.
package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplehq/simple-server/internal/config"
)

// Open connects a pgx pool using the given Postgres configuration.
func Open(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, DSN(cfg))
}
