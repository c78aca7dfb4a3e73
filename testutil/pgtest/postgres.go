package pgtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/neonaddict/scanbench/bench/postgresengine"
	"github.com/neonaddict/scanbench/config"
)

// Environment variables read by the helpers.
const (
	EnvTestDSN     = "SCANBENCH_TEST_DSN"
	EnvAdapterType = "ADAPTER_TYPE"
)

const (
	postgresImage    = "postgres:18-alpine"
	postgresUser     = "test"
	postgresPassword = "test"
	postgresDatabase = "testdb"
	startupTimeout   = 2 * time.Minute
)

// Start returns a configuration pointing at a PostgreSQL for the test.
// Without SCANBENCH_TEST_DSN a container is started and terminated when the test ends.
// The returned configuration uses the adapter selected by ADAPTER_TYPE.
func Start(t testing.TB) config.Config {
	t.Helper()

	adapter, err := config.ParseAdapterType(strings.ToLower(os.Getenv(EnvAdapterType)))
	require.NoError(t, err, "unsupported %s", EnvAdapterType)

	if dsn := os.Getenv(EnvTestDSN); dsn != "" {
		cfg, dsnErr := config.FromLookup(func(key string) (string, bool) {
			if key == config.EnvDSN {
				return dsn, true
			}

			return "", false
		})
		require.NoError(t, dsnErr, "invalid %s", EnvTestDSN)

		cfg.Adapter = adapter

		return cfg
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDatabase,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres container")

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Adapter = adapter
	cfg.Postgres.Host = host
	cfg.Postgres.Port = port.Int()
	cfg.Postgres.User = postgresUser
	cfg.Postgres.Password = postgresPassword
	cfg.Postgres.Database = postgresDatabase

	return cfg
}

// NewStore opens a handle of cfg.Adapter and wraps it in a Store that does not own it.
// The handle is closed when the test ends.
func NewStore(t testing.TB, cfg config.Config, options ...postgresengine.Option) *postgresengine.Store {
	t.Helper()

	ctx := context.Background()

	var (
		store       *postgresengine.Store
		closeHandle func()
		err         error
	)

	switch cfg.Adapter {
	case config.AdapterPGXPool, "":
		pool, openErr := config.NewPGXPool(ctx, cfg)
		require.NoError(t, openErr, "error connecting to DB pool in test setup")

		closeHandle = pool.Close
		store, err = postgresengine.NewStoreFromPGXPool(pool, options...)

	case config.AdapterSQLDB:
		db, openErr := config.OpenSQLDB(ctx, cfg)
		require.NoError(t, openErr, "error connecting to DB in test setup")

		closeHandle = func() { _ = db.Close() }
		store, err = postgresengine.NewStoreFromSQLDB(db, options...)

	case config.AdapterSQLXDB:
		db, openErr := config.OpenSQLX(ctx, cfg)
		require.NoError(t, openErr, "error connecting to DB in test setup")

		closeHandle = func() { _ = db.Close() }
		store, err = postgresengine.NewStoreFromSQLX(db, options...)

	default:
		panic(fmt.Sprintf("unsupported adapter type: %s", cfg.Adapter))
	}

	t.Cleanup(closeHandle)
	require.NoError(t, err, "error creating store")

	return store
}
