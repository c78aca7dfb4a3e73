//go:build integration

package postgresengine_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/bench/postgresengine"
	"github.com/neonaddict/scanbench/testutil/pgtest"
)

func Test_Integration_Provision_Twice_Leaves_An_Empty_Schema(t *testing.T) {
	// setup
	ctx := context.Background()
	store := pgtest.NewStore(t, pgtest.Start(t))

	// act
	firstErr := store.Provision(ctx)
	_, seedErr := store.Seed(ctx, bench.SeedParams{UserCount: 2, LeafPerUser: 2})
	secondErr := store.Provision(ctx)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, seedErr)
	require.NoError(t, secondErr)

	for _, table := range bench.SchemaTables() {
		exists, err := store.TableExists(ctx, table)
		require.NoError(t, err)
		assert.True(t, exists, table)

		count, err := store.CountRows(ctx, table)
		require.NoError(t, err)
		assert.Zero(t, count, table)
	}
}

func Test_Integration_Seed_Matches_The_Expected_Row_Counts(t *testing.T) {
	// setup
	ctx := context.Background()
	store := pgtest.NewStore(t, pgtest.Start(t))
	require.NoError(t, store.Provision(ctx))
	params := bench.SeedParams{UserCount: 50, LeafPerUser: 100}

	// act
	summary, err := store.Seed(ctx, params)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 40051, params.ExpectedRows())
	assert.Equal(t, params.ExpectedRows(), summary.TotalRows())

	organizations, err := store.CountRows(ctx, bench.TableOrganizations)
	require.NoError(t, err)
	assert.Equal(t, int64(1), organizations)

	users, err := store.CountRows(ctx, bench.TableUsers)
	require.NoError(t, err)
	assert.Equal(t, int64(50), users)

	passports, err := store.CountRows(ctx, bench.TableUserPassports)
	require.NoError(t, err)
	assert.Zero(t, passports)

	for _, table := range bench.LeafTables() {
		records, scanErr := store.ScanAll(ctx, table)
		require.NoError(t, scanErr)
		assert.Len(t, records, 5000, table.Name)

		perUser := map[int64]int{}
		for _, record := range records {
			perUser[record.UserID]++
		}
		assert.Len(t, perUser, 50, table.Name)
		for _, n := range perUser {
			assert.Equal(t, 100, n, table.Name)
		}
	}
}

func Test_Integration_Seed_With_Zero_Users(t *testing.T) {
	// setup
	ctx := context.Background()
	store := pgtest.NewStore(t, pgtest.Start(t))
	require.NoError(t, store.Provision(ctx))

	// act
	summary, err := store.Seed(ctx, bench.SeedParams{UserCount: 0, LeafPerUser: 100})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalRows())

	for _, table := range bench.LeafTables() {
		records, scanErr := store.ScanAll(ctx, table)
		require.NoError(t, scanErr)
		assert.Empty(t, records, table.Name)
	}
}

func Test_Integration_Deleting_The_Organization_Cascades(t *testing.T) {
	// setup
	ctx := context.Background()
	store := pgtest.NewStore(t, pgtest.Start(t))
	require.NoError(t, store.Provision(ctx))

	summary, err := store.Seed(ctx, bench.SeedParams{UserCount: 3, LeafPerUser: 4})
	require.NoError(t, err)

	// act
	deleted, err := store.DeleteOrganization(ctx, summary.OrganizationID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	for _, table := range bench.SchemaTables() {
		count, countErr := store.CountRows(ctx, table)
		require.NoError(t, countErr)
		assert.Zero(t, count, table)
	}
}

func Test_Integration_Scan_Before_Provisioning_Fails(t *testing.T) {
	// setup
	ctx := context.Background()
	store := pgtest.NewStore(t, pgtest.Start(t))
	table, err := bench.LeafTableByName(bench.TableVinyls)
	require.NoError(t, err)

	// act
	_, err = store.ScanAll(ctx, table)

	// assert
	assert.ErrorIs(t, err, bench.ErrScanFailed)
}

func Test_Integration_Store_Logs_And_Records_Metrics(t *testing.T) {
	// setup
	ctx := context.Background()
	logSpy := pgtest.NewLogHandlerSpy()
	metricsSpy := pgtest.NewMetricsCollectorSpy()
	store := pgtest.NewStore(t, pgtest.Start(t),
		postgresengine.WithContextualLogger(logSpy.Logger()),
		postgresengine.WithMetrics(metricsSpy))
	require.NoError(t, store.Provision(ctx))
	_, err := store.Seed(ctx, bench.SeedParams{UserCount: 1, LeafPerUser: 5})
	require.NoError(t, err)
	table, err := bench.LeafTableByName(bench.TableHobbies)
	require.NoError(t, err)

	// act
	_, err = store.ScanAll(ctx, table)

	// assert
	require.NoError(t, err)
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelInfo, "scanbench operation: schema provisioned", "duration_ms"))
	assert.True(t, logSpy.HasLog(slog.LevelInfo, "scanbench operation: data seeded"))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelInfo, "scanbench operation: scan completed", "row_count"))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelDebug, "executed sql for: scan", "query"))
	assert.Equal(t, 11, logSpy.Count(slog.LevelInfo, "scanbench operation: table created"))

	require.Len(t, metricsSpy.DurationRecords(), 1)
	assert.Equal(t, "scanbench_scan_duration_seconds", metricsSpy.DurationRecords()[0].Metric)
	assert.Equal(t, bench.TableHobbies, metricsSpy.DurationRecords()[0].Labels["table"])
	require.Len(t, metricsSpy.ValueRecords(), 1)
	assert.InDelta(t, 5, metricsSpy.ValueRecords()[0].Value, 0)
}

func Test_Integration_Connect_Opens_And_Closes_An_Owned_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	cfg := pgtest.Start(t)

	// act
	store, err := postgresengine.Connect(ctx, cfg)

	// assert
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))
	assert.Equal(t, string(cfg.Adapter), store.AdapterKind())
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func Benchmark_ScanAll_Original_Fixture(b *testing.B) {
	// setup
	ctx := context.Background()
	store := pgtest.NewStore(b, pgtest.Start(b))

	// arrange
	require.NoError(b, store.Provision(ctx))
	_, err := store.Seed(ctx, bench.SeedParams{UserCount: 50, LeafPerUser: 100})
	require.NoError(b, err)
	require.NoError(b, store.Analyze(ctx))

	for _, table := range bench.LeafTables() {
		b.Run(table.Name, func(b *testing.B) {
			b.ResetTimer()
			rows := 0

			for i := 0; i < b.N; i++ {
				records, scanErr := store.ScanAll(ctx, table)
				assert.NoError(b, scanErr)
				rows += len(records)
			}

			b.ReportMetric(float64(rows)/float64(b.N), "rows/scan")
		})
	}
}
