// Package workload runs the scan benchmark: it provisions and seeds the fixture through a Store,
// then scans the eight leaf tables concurrently, first with goroutines sharing one connection pool
// and then with one OS process per table, each opening its own connection.
//
// Every measured block goes through a timing.Reporter. Worker failures never cancel sibling workers;
// a phase waits for all of them and fails with the joined *bench.WorkerError values.
package workload
