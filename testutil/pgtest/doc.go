// Package pgtest provides test utilities for running the store against a real PostgreSQL.
//
// Start returns the connection configuration of a throwaway PostgreSQL container, or of an
// existing server when SCANBENCH_TEST_DSN is set. NewStore opens the handle type selected by the
// ADAPTER_TYPE environment variable (pgx.pool, sql.db or sqlx.db), so the same test suite runs
// against every adapter.
//
// Usage:
//
//	cfg := pgtest.Start(t)
//	store := pgtest.NewStore(t, cfg)
//	require.NoError(t, store.Provision(ctx))
//
// The log and metrics spies capture what a Store emits for assertions on observability.
package pgtest
