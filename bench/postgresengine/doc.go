// Package postgresengine provides the PostgreSQL datastore collaborator of the scanbench harness.
//
// A Store provisions the fixture schema, seeds it, and performs the unfiltered full table
// scans the workload runner measures. It runs on one of three handle types (pgx.Pool,
// sql.DB, sqlx.DB) through the internal adapters, and all SQL except DDL is built with goqu.
//
// Key features:
//   - Idempotent provisioning: existing tables are dropped with CASCADE before re-creation
//   - Deterministic-shape seeding: 1 + U + 8*U*L rows for U users and L rows per leaf table
//   - Full table scans that materialize every row, plus counts and cascade deletes for verification
//   - Optional Logger, ContextualLogger and MetricsCollector hooks
//   - PostgreSQL error classification for both pgx and lib/pq errors
//
// Usage examples:
//
//	// Store on a pool the caller owns
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
//
//	// Store that owns its handle, opened from the harness configuration
//	store, _ := postgresengine.Connect(ctx, cfg)
//	defer store.Close()
//
//	_ = store.Provision(ctx)
//	summary, _ := store.Seed(ctx, bench.SeedParams{UserCount: 50, LeafPerUser: 100})
//	records, _ := store.ScanAll(ctx, bench.LeafTables()[0])
package postgresengine
