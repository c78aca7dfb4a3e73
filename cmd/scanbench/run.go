package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/bench/postgresengine"
	"github.com/neonaddict/scanbench/bench/timing"
	"github.com/neonaddict/scanbench/bench/workload"
	"github.com/neonaddict/scanbench/config"
)

type runFlags struct {
	dsn              string
	adapter          string
	maxConns         int32
	connectTimeout   time.Duration
	users            int
	leafPerUser      int
	runs             int
	simpleProtocol   bool
	analyzeAfterSeed bool
	verifyCounts     bool
	labelWidth       int
	outputJSON       bool
	debug            bool
}

func newRunCmd(logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	var flagValues runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Provision, seed and run both scan phases",
		Long: `Drop and recreate the fixture tables, seed one organization with its users
and their leaf rows, then time the shared-memory phase ("in threads") and the
isolated-process phase ("in processes"). One line per measured block is printed
on stdout as it completes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flagValues.debug {
				logLevel.Set(slog.LevelDebug)
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			if err = applyRunFlags(&cfg, cmd.Flags(), flagValues); err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, cfg, flagValues, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&flagValues.dsn, "dsn", "",
		"PostgreSQL connection string (overrides "+config.EnvDSN+")")
	flags.StringVar(&flagValues.adapter, "adapter", string(config.AdapterPGXPool),
		"Database handle: pgx.pool, sql.db or sqlx.db")
	flags.Int32Var(&flagValues.maxConns, "max-conns", 10,
		"Size of the connection pool shared by the goroutine phase (1 serialises the scans)")
	flags.DurationVar(&flagValues.connectTimeout, "connect-timeout", 5*time.Second,
		"Timeout for establishing a connection")
	flags.IntVar(&flagValues.users, "users", 50,
		"Number of seeded users")
	flags.IntVar(&flagValues.leafPerUser, "leaf-per-user", 100,
		"Rows per leaf table per user")
	flags.IntVar(&flagValues.runs, "runs", 1,
		"Number of provision, seed and measure cycles")
	flags.BoolVar(&flagValues.simpleProtocol, "simple-protocol", false,
		"Use the pgx simple query protocol without a statement cache")
	flags.BoolVar(&flagValues.analyzeAfterSeed, "analyze", false,
		"Run VACUUM ANALYZE on all tables after seeding")
	flags.BoolVar(&flagValues.verifyCounts, "verify", false,
		"Fail if any scan disagrees with the seeded row count")
	flags.IntVar(&flagValues.labelWidth, "label-width", 24,
		"Width of the label column in the report")
	flags.BoolVar(&flagValues.outputJSON, "json", false,
		"Also write one JSON document per cycle after the text report")
	flags.BoolVar(&flagValues.debug, "debug", false,
		"Log every SQL statement")

	return cmd
}

// applyRunFlags overrides the environment configuration with the flags set on the command line.
func applyRunFlags(cfg *config.Config, flags *pflag.FlagSet, values runFlags) error {
	if flags.Changed("dsn") {
		overridden, err := config.FromLookup(func(key string) (string, bool) {
			if key == config.EnvDSN {
				return values.dsn, true
			}

			return "", false
		})
		if err != nil {
			return err
		}

		cfg.Postgres = overridden.Postgres
	}

	if flags.Changed("adapter") {
		adapter, err := config.ParseAdapterType(values.adapter)
		if err != nil {
			return err
		}
		cfg.Adapter = adapter
	}

	if flags.Changed("max-conns") {
		cfg.Postgres.MaxConns = values.maxConns
	}
	if flags.Changed("connect-timeout") {
		cfg.Postgres.ConnectTimeout = values.connectTimeout
	}
	if flags.Changed("users") {
		cfg.Seed.UserCount = values.users
	}
	if flags.Changed("leaf-per-user") {
		cfg.Seed.LeafPerUser = values.leafPerUser
	}
	if flags.Changed("runs") {
		cfg.Runs = values.runs
	}
	if flags.Changed("simple-protocol") {
		cfg.Features.SimpleProtocol = values.simpleProtocol
	}
	if flags.Changed("analyze") {
		cfg.Features.AnalyzeAfterSeed = values.analyzeAfterSeed
	}
	if flags.Changed("verify") {
		cfg.Features.VerifyCounts = values.verifyCounts
	}

	return cfg.Validate()
}

// cycleReport is the JSON document written per cycle with --json.
type cycleReport struct {
	timing.Report
	Adapter string                 `json:"adapter"`
	Seed    bench.SeedSummary      `json:"seed"`
	Phases  []workload.PhaseResult `json:"phases"`
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	flagValues runFlags,
	out io.Writer,
) error {
	logger.InfoContext(ctx, "starting benchmark",
		slog.String("postgres", cfg.Postgres.Redacted()),
		slog.String("adapter", string(cfg.Adapter)),
		slog.Int("users", cfg.Seed.UserCount),
		slog.Int("leaf_per_user", cfg.Seed.LeafPerUser),
		slog.Int("expected_rows", cfg.Seed.ExpectedRows()),
		slog.Int("runs", cfg.Runs),
		slog.Int("max_conns", int(cfg.Postgres.MaxConns)),
	)

	store, err := postgresengine.Connect(ctx, cfg, postgresengine.WithContextualLogger(logger))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		_ = store.Close() // a failure is logged by the store
	}()

	launcher, err := workload.NewProcessLauncher(cfg)
	if err != nil {
		return err
	}

	reporter := timing.NewReporter(out,
		timing.WithLabelWidth(flagValues.labelWidth),
		timing.WithLogger(logger))

	runner, err := workload.NewRunner(store, reporter,
		workload.WithLauncher(launcher),
		workload.WithProvisioner(store),
		workload.WithSeeder(store, cfg.Seed),
		workload.WithRuns(cfg.Runs),
		workload.WithAnalyzeAfterSeed(cfg.Features.AnalyzeAfterSeed),
		workload.WithVerifyCounts(cfg.Features.VerifyCounts),
		workload.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	reporter.Header()

	result, runErr := runner.Run(ctx)

	if flagValues.outputJSON {
		if err = writeJSONReports(out, store.AdapterKind(), result, reporter.Measurements()); err != nil {
			return err
		}
	}

	return runErr
}

func writeJSONReports(out io.Writer, adapter string, result workload.RunResult, measurements []timing.Measurement) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)

	for _, cycle := range result.Cycles {
		runID := cycle.RunID.String()

		report := cycleReport{
			Report: timing.Report{
				RunID:        runID,
				Measurements: timing.ForRun(measurements, runID),
			},
			Adapter: adapter,
			Seed:    cycle.Seed,
			Phases:  cycle.Phases,
		}

		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encode report of run %s: %w", runID, err)
		}
	}

	return nil
}
