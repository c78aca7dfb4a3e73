package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/neonaddict/scanbench/bench/postgresengine"
	"github.com/neonaddict/scanbench/bench/workload"
	"github.com/neonaddict/scanbench/config"
)

func newScanWorkerCmd(logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:    workload.ScanWorkerCommand,
		Short:  "Scan one leaf table over a fresh connection and print the result as JSON",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logLevel.Set(slog.LevelWarn)

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			if table == "" {
				table = os.Getenv(workload.EnvWorkerTable)
			}

			connect := func(ctx context.Context) (workload.WorkerStore, error) {
				return postgresengine.Connect(ctx, cfg, postgresengine.WithContextualLogger(logger))
			}

			return workload.RunScanWorker(cmd.Context(), connect, table, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&table, "table", "",
		"Leaf table to scan (default from "+workload.EnvWorkerTable+")")

	return cmd
}
