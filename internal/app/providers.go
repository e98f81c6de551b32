package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainreport/indexerd/internal/adapters/postgres"
	"github.com/chainreport/indexerd/internal/config"
)

// ProvidePool connects to Postgres and applies the mapping-store schema
// migrations. A failure here aborts startup; the cleanup closes the pool.
func ProvidePool(cfg *config.RuntimeConfig) (*pgxpool.Pool, func(), error) {
	pool, err := postgres.NewPool(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(cfg); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, func() { pool.Close() }, nil
}
