package workload

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonaddict/scanbench/bench"
)

// ScanResult is the outcome of one worker scanning one table.
// It is also the line a scan worker process prints on stdout.
type ScanResult struct {
	Table     string `json:"table"`
	Rows      int    `json:"rows"`
	ElapsedNS int64  `json:"elapsed_ns"`
	PID       int    `json:"pid"`
}

// Elapsed returns the scan duration.
func (r ScanResult) Elapsed() time.Duration {
	return time.Duration(r.ElapsedNS)
}

// PhaseResult is the outcome of one phase. Scans are in leaf table order;
// the entry of a failed worker only carries its table name.
type PhaseResult struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Scans   []ScanResult  `json:"scans"`
}

// RowsByTable maps each scanned table to its row count.
func (p PhaseResult) RowsByTable() map[string]int {
	rows := make(map[string]int, len(p.Scans))
	for _, scan := range p.Scans {
		rows[scan.Table] = scan.Rows
	}

	return rows
}

// Cycle is one provision, seed and scan round.
type Cycle struct {
	RunID  uuid.UUID         `json:"run_id"`
	Seed   bench.SeedSummary `json:"seed"`
	Phases []PhaseResult     `json:"phases"`
}

// RunResult collects every cycle of a Run, including the failed one if any.
type RunResult struct {
	Cycles []Cycle `json:"cycles"`
}
