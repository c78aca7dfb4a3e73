// Package bench provides the core types shared by the scanbench harness.
//
// It defines the relational fixture the harness works on (one organization,
// its users and eight per-user leaf tables), the seeding parameters, the
// sentinel errors used across all components, and the dependency-free
// observability interfaces that the PostgreSQL engine and the workload runner
// report through.
//
// Key types:
//   - LeafTable: one of the eight per-user child tables that get scanned
//   - LeafRecord / LeafRecords: rows read back by a full table scan
//   - SeedParams: userCount and leafPerUser for the data seeder
//   - WorkerError: the failure of a single scan worker inside a phase
//
// Common usage pattern:
//
//	params := bench.SeedParams{UserCount: 50, LeafPerUser: 100}
//	if err := params.Validate(); err != nil {
//		// handle error
//	}
//
//	for _, table := range bench.LeafTables() {
//		records, err := store.ScanAll(ctx, table)
//		// ...
//	}
package bench
