// Package main provides the CLI entry point for scanbench, a benchmark of concurrent
// full-table scans against PostgreSQL with goroutines and with OS processes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelInfo)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	root := newRootCmd(logger, logLevel)
	err := root.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "scanbench:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "scanbench",
		Short: "Benchmark concurrent full-table scans against PostgreSQL",
		Long: `Scanbench provisions a small relational schema, seeds it with synthetic rows
and times eight full-table scans, first from goroutines sharing one connection pool
and then from one OS process per table, each with its own connection.

Connection parameters and defaults come from SCANBENCH_* environment variables;
flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger, logLevel))
	root.AddCommand(newScanWorkerCmd(logger, logLevel))

	return root
}
