package workload

import (
	"fmt"

	"github.com/neonaddict/scanbench/bench"
)

// Option defines a functional option for configuring a Runner.
type Option func(*Runner) error

// WithLauncher sets the Launcher used by the isolated-process phase.
func WithLauncher(launcher Launcher) Option {
	return func(r *Runner) error {
		r.launcher = launcher
		return nil
	}
}

// WithProvisioner sets the schema Provisioner used by Run.
func WithProvisioner(provisioner Provisioner) Option {
	return func(r *Runner) error {
		r.provisioner = provisioner
		return nil
	}
}

// WithSeeder sets the Seeder and the dataset shape used by Run.
func WithSeeder(seeder Seeder, params bench.SeedParams) Option {
	return func(r *Runner) error {
		if err := params.Validate(); err != nil {
			return err
		}

		r.seeder = seeder
		r.seed = params

		return nil
	}
}

// WithRuns sets how many provision, seed and scan cycles Run executes.
func WithRuns(runs int) Option {
	return func(r *Runner) error {
		if runs < 1 {
			return fmt.Errorf("%w: runs must be at least 1, got %d", bench.ErrInvalidConfig, runs)
		}

		r.runs = runs

		return nil
	}
}

// WithAnalyzeAfterSeed makes Run refresh planner statistics between seeding and scanning.
func WithAnalyzeAfterSeed(enabled bool) Option {
	return func(r *Runner) error {
		r.analyze = enabled
		return nil
	}
}

// WithVerifyCounts makes Run check the scanned row counts after both phases.
func WithVerifyCounts(enabled bool) Option {
	return func(r *Runner) error {
		r.verify = enabled
		return nil
	}
}

// WithLogger sets the logger for cycle, phase and worker events.
func WithLogger(logger bench.ContextualLogger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// WithTables restricts the phases to the given leaf tables, in the given order.
func WithTables(tables ...bench.LeafTable) Option {
	return func(r *Runner) error {
		if len(tables) == 0 {
			return fmt.Errorf("%w: at least one leaf table is required", bench.ErrInvalidConfig)
		}

		for _, table := range tables {
			if _, err := bench.LeafTableByName(table.Name); err != nil {
				return err
			}
		}

		r.tables = append([]bench.LeafTable(nil), tables...)

		return nil
	}
}
