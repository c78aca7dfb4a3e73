package workload

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/bench/timing"
)

// Phase labels as they appear in the report.
const (
	PhaseSharedMemory    = "in threads"
	PhaseIsolatedProcess = "in processes"
	LabelInsideThread    = "inside thread"
)

const (
	logMsgCycleStarted   = "benchmark cycle started"
	logMsgCycleCompleted = "benchmark cycle completed"
	logMsgPhaseCompleted = "phase completed"
	logMsgPhaseFailed    = "phase failed"
	logMsgWorkerFailed   = "worker failed"
	logAttrRunID         = "run_id"
	logAttrCycle         = "cycle"
	logAttrPhase         = "phase"
	logAttrTable         = "table"
	logAttrRows          = "rows"
	logAttrError         = "error"
	logAttrDurationMS    = "duration_ms"
)

// ErrMissingCollaborator is returned when an operation needs a collaborator the Runner was built without.
var ErrMissingCollaborator = errors.New("workload runner collaborator not configured")

// Runner executes the benchmark phases against a Scanner and a Launcher.
type Runner struct {
	scanner     Scanner
	reporter    *timing.Reporter
	launcher    Launcher
	provisioner Provisioner
	seeder      Seeder
	logger      bench.ContextualLogger
	tables      []bench.LeafTable
	seed        bench.SeedParams
	runs        int
	analyze     bool
	verify      bool
}

// NewRunner creates a Runner scanning through scanner and reporting to reporter.
func NewRunner(scanner Scanner, reporter *timing.Reporter, options ...Option) (*Runner, error) {
	if scanner == nil {
		return nil, fmt.Errorf("%w: scanner", ErrMissingCollaborator)
	}

	if reporter == nil {
		return nil, fmt.Errorf("%w: reporter", ErrMissingCollaborator)
	}

	r := &Runner{
		scanner:  scanner,
		reporter: reporter,
		tables:   bench.LeafTables(),
		runs:     1,
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// SharedMemoryPhase scans every leaf table from its own goroutine, all through the one shared Scanner.
// Each worker measures its scan under the table name; the first one is additionally wrapped in an
// "inside thread" block. The phase completes once every worker has returned.
func (r *Runner) SharedMemoryPhase(ctx context.Context) (PhaseResult, error) {
	result := PhaseResult{Name: PhaseSharedMemory, Scans: make([]ScanResult, len(r.tables))}
	workerErrs := make([]error, len(r.tables))

	elapsed, err := r.reporter.Measure(ctx, PhaseSharedMemory, func(ctx context.Context) error {
		var wg sync.WaitGroup

		for i, table := range r.tables {
			result.Scans[i].Table = table.Name

			wg.Add(1)
			go func() {
				defer wg.Done()

				scan := func(ctx context.Context) error {
					return r.sharedScan(ctx, table, &result.Scans[i])
				}

				var scanErr error
				if i == 0 {
					_, scanErr = r.reporter.Measure(ctx, LabelInsideThread, scan)
				} else {
					scanErr = scan(ctx)
				}

				if scanErr != nil {
					workerErrs[i] = r.workerFailed(ctx, PhaseSharedMemory, table, scanErr)
				}
			}()
		}

		wg.Wait()

		return errors.Join(workerErrs...)
	})

	result.Elapsed = elapsed
	r.phaseDone(ctx, result, err)

	return result, err
}

func (r *Runner) sharedScan(ctx context.Context, table bench.LeafTable, out *ScanResult) error {
	var rows int

	elapsed, err := r.reporter.Measure(ctx, table.Name, func(ctx context.Context) error {
		records, scanErr := r.scanner.ScanAll(ctx, table)
		rows = len(records)

		return scanErr
	})

	*out = ScanResult{
		Table:     table.Name,
		Rows:      rows,
		ElapsedNS: elapsed.Nanoseconds(),
		PID:       os.Getpid(),
	}

	return err
}

// IsolatedProcessPhase launches one isolated scan per leaf table concurrently and waits for all of them.
// The elapsed time each worker reports is recorded as a nested line.
func (r *Runner) IsolatedProcessPhase(ctx context.Context) (PhaseResult, error) {
	if r.launcher == nil {
		return PhaseResult{Name: PhaseIsolatedProcess}, fmt.Errorf("%w: launcher", ErrMissingCollaborator)
	}

	result := PhaseResult{Name: PhaseIsolatedProcess, Scans: make([]ScanResult, len(r.tables))}
	workerErrs := make([]error, len(r.tables))

	elapsed, err := r.reporter.Measure(ctx, PhaseIsolatedProcess, func(ctx context.Context) error {
		var wg sync.WaitGroup

		for i, table := range r.tables {
			result.Scans[i].Table = table.Name

			wg.Add(1)
			go func() {
				defer wg.Done()

				scan, launchErr := r.launcher.Launch(ctx, table)
				if launchErr != nil {
					workerErrs[i] = r.workerFailed(ctx, PhaseIsolatedProcess, table, launchErr)
					return
				}

				result.Scans[i] = scan
				r.reporter.Record(ctx, table.Name, scan.Elapsed())
			}()
		}

		wg.Wait()

		return errors.Join(workerErrs...)
	})

	result.Elapsed = elapsed
	r.phaseDone(ctx, result, err)

	return result, err
}

// Run executes the configured number of cycles. Each cycle provisions, seeds, optionally analyzes,
// runs both phases and optionally verifies the row counts. The first failing cycle ends the run.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	if r.provisioner == nil || r.seeder == nil {
		return RunResult{}, fmt.Errorf("%w: provisioner and seeder", ErrMissingCollaborator)
	}

	var result RunResult

	for i := range r.runs {
		cycle, err := r.runCycle(ctx, i)
		result.Cycles = append(result.Cycles, cycle)

		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (r *Runner) runCycle(ctx context.Context, index int) (Cycle, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return Cycle{}, fmt.Errorf("generate run id: %w", err)
	}

	cycle := Cycle{RunID: runID}
	ctx = timing.ContextWithRunID(ctx, runID.String())
	start := time.Now()

	r.logInfo(ctx, logMsgCycleStarted, logAttrRunID, runID.String(), logAttrCycle, index+1)

	if err = r.provisioner.Provision(ctx); err != nil {
		return cycle, err
	}

	if cycle.Seed, err = r.seeder.Seed(ctx, r.seed); err != nil {
		return cycle, err
	}

	if r.analyze {
		if err = r.seeder.Analyze(ctx); err != nil {
			return cycle, err
		}
	}

	shared, err := r.SharedMemoryPhase(ctx)
	cycle.Phases = append(cycle.Phases, shared)
	if err != nil {
		return cycle, err
	}

	isolated, err := r.IsolatedProcessPhase(ctx)
	cycle.Phases = append(cycle.Phases, isolated)
	if err != nil {
		return cycle, err
	}

	if r.verify {
		if err = VerifyTables(r.seed.RowsPerLeafTable(), r.tables, cycle.Phases...); err != nil {
			return cycle, err
		}
	}

	r.logInfo(ctx, logMsgCycleCompleted,
		logAttrRunID, runID.String(),
		logAttrDurationMS, toMilliseconds(time.Since(start)))

	return cycle, nil
}

func (r *Runner) workerFailed(ctx context.Context, phase string, table bench.LeafTable, err error) error {
	if r.logger != nil {
		r.logger.ErrorContext(ctx, logMsgWorkerFailed,
			logAttrPhase, phase,
			logAttrTable, table.Name,
			logAttrError, err.Error())
	}

	return &bench.WorkerError{Phase: phase, Table: table.Name, Err: err}
}

func (r *Runner) phaseDone(ctx context.Context, result PhaseResult, err error) {
	if err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, logMsgPhaseFailed, logAttrPhase, result.Name, logAttrError, err.Error())
		}

		return
	}

	rows := 0
	for _, scan := range result.Scans {
		rows += scan.Rows
	}

	r.logInfo(ctx, logMsgPhaseCompleted,
		logAttrPhase, result.Name,
		logAttrRows, rows,
		logAttrDurationMS, toMilliseconds(result.Elapsed))
}

func (r *Runner) logInfo(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.InfoContext(ctx, msg, args...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
