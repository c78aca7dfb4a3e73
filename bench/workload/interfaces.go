package workload

import (
	"context"

	"github.com/neonaddict/scanbench/bench"
)

// Scanner reads a whole leaf table. *postgresengine.Store implements it.
type Scanner interface {
	ScanAll(ctx context.Context, table bench.LeafTable) (bench.LeafRecords, error)
}

// Provisioner recreates the fixture schema.
type Provisioner interface {
	Provision(ctx context.Context) error
}

// Seeder fills the fixture schema.
type Seeder interface {
	Seed(ctx context.Context, params bench.SeedParams) (bench.SeedSummary, error)
	Analyze(ctx context.Context) error
}

// Launcher runs one isolated scan of table, typically in a separate OS process.
type Launcher interface {
	Launch(ctx context.Context, table bench.LeafTable) (ScanResult, error)
}

// WorkerStore is the connection a scan worker opens for itself and closes when done.
type WorkerStore interface {
	Scanner
	Close() error
}

// Connector opens a brand-new WorkerStore.
type Connector func(ctx context.Context) (WorkerStore, error)
