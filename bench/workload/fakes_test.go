package workload_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/bench/workload"
)

// scannerFake returns rowsPerTable records for every table unless failing names it.
type scannerFake struct {
	mu           sync.Mutex
	rowsPerTable int
	rowsOverride map[string]int
	failing      map[string]error
	scanned      []string
	barrier      *barrier
	closed       bool
}

func (f *scannerFake) ScanAll(_ context.Context, table bench.LeafTable) (bench.LeafRecords, error) {
	if f.barrier != nil {
		if err := f.barrier.arrive(); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.scanned = append(f.scanned, table.Name)

	if err, ok := f.failing[table.Name]; ok {
		return nil, err
	}

	rows := f.rowsPerTable
	if n, ok := f.rowsOverride[table.Name]; ok {
		rows = n
	}

	records := make(bench.LeafRecords, rows)
	for i := range records {
		records[i] = bench.LeafRecord{ID: int64(i + 1), UserID: 1, Text: table.SeedText(i)}
	}

	return records, nil
}

func (f *scannerFake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true

	return nil
}

func (f *scannerFake) scannedTables() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.scanned...)
}

// barrier releases all parties only once n of them have arrived.
type barrier struct {
	mu      sync.Mutex
	n       int
	arrived int
	release chan struct{}
	timeout time.Duration
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, release: make(chan struct{}), timeout: 5 * time.Second}
}

func (b *barrier) arrive() error {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
		return nil
	case <-time.After(b.timeout):
		return errors.New("workers did not run concurrently")
	}
}

// launcherFake answers every launch with a fixed result.
type launcherFake struct {
	mu       sync.Mutex
	rows     int
	elapsed  time.Duration
	failing  map[string]error
	launched []string
}

func (f *launcherFake) Launch(_ context.Context, table bench.LeafTable) (workload.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.launched = append(f.launched, table.Name)

	if err, ok := f.failing[table.Name]; ok {
		return workload.ScanResult{}, err
	}

	return workload.ScanResult{
		Table:     table.Name,
		Rows:      f.rows,
		ElapsedNS: f.elapsed.Nanoseconds(),
		PID:       4242,
	}, nil
}

// fixtureFake records the provision, seed and analyze calls of a run.
type fixtureFake struct {
	mu         sync.Mutex
	calls      []string
	provisionE error
	seedE      error
}

func (f *fixtureFake) Provision(context.Context) error {
	f.record("provision")
	return f.provisionE
}

func (f *fixtureFake) Seed(_ context.Context, params bench.SeedParams) (bench.SeedSummary, error) {
	f.record("seed")
	if f.seedE != nil {
		return bench.SeedSummary{}, f.seedE
	}

	summary := bench.SeedSummary{
		OrganizationID:   1,
		Organizations:    1,
		Users:            params.UserCount,
		LeafRowsPerTable: map[string]int{},
	}
	for _, table := range bench.LeafTables() {
		summary.LeafRowsPerTable[table.Name] = params.RowsPerLeafTable()
	}

	return summary, nil
}

func (f *fixtureFake) Analyze(context.Context) error {
	f.record("analyze")
	return nil
}

func (f *fixtureFake) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}
