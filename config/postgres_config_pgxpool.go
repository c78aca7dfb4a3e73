package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMinConnections    = int32(1)
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
)

// PGXPoolConfig creates a pgxpool.Config for the configured database.
func PGXPoolConfig(cfg Config) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create a pgx pool config: %w", err)
	}

	dbConfig.MaxConns = cfg.Postgres.MaxConns
	dbConfig.MinConns = min(defaultMinConnections, cfg.Postgres.MaxConns)
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = cfg.Postgres.ConnectTimeout

	if cfg.Features.SimpleProtocol {
		dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		dbConfig.ConnConfig.StatementCacheCapacity = 0
		dbConfig.ConnConfig.DescriptionCacheCapacity = 0
	}

	return dbConfig, nil
}

// NewPGXPool creates the pool and pings it to verify connectivity.
func NewPGXPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := PGXPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
