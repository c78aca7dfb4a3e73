// Package config provides the harness configuration and the PostgreSQL handle factories.
//
// The configuration is resolved once at startup: defaults, then SCANBENCH_* environment
// variables (FromEnv), then command line flags applied by the CLI. Optional driver
// capabilities are plain named booleans in Features instead of being switched on by
// inspecting the environment at the call site.
//
// Environ is the inverse of FromEnv. The workload runner uses it to hand the exact
// connection parameters to isolated worker processes, which then open their own
// connection with the factories in this package (pgxpool.Pool, sql.DB or sqlx.DB).
package config
