// Package adapters provide database adapter implementations for the scanbench PostgreSQL engine.
//
// This package implements the adapter pattern over three PostgreSQL handle types:
// pgxpool.Pool, sql.DB and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, so the same provisioning, seeding and scan code runs
// against whichever handle the harness was configured with.
//
// An adapter never owns its handle. Closing is left to whoever opened it.
package adapters
