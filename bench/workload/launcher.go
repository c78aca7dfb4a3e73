package workload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/config"
)

// EnvWorkerTable names the leaf table a scan worker process scans.
const EnvWorkerTable = "SCANBENCH_WORKER_TABLE"

// ScanWorkerCommand is the CLI subcommand that runs one scan worker.
const ScanWorkerCommand = "scan-worker"

// ProcessLauncher runs each isolated scan as a child process.
// The child gets the connection parameters only through its environment and opens its own connection.
type ProcessLauncher struct {
	Executable string
	Args       []string

	// Env is appended to the inherited environment.
	Env []string

	// Stderr, if set, also receives the child's stderr (its diagnostics).
	Stderr io.Writer
}

// NewProcessLauncher re-executes the current binary as a scan worker configured by cfg.
func NewProcessLauncher(cfg config.Config) (*ProcessLauncher, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve current executable: %w", err)
	}

	return &ProcessLauncher{
		Executable: executable,
		Args:       []string{ScanWorkerCommand},
		Env:        cfg.Environ(),
	}, nil
}

// Launch starts one worker process for table, waits for it and decodes the ScanResult it prints.
func (l *ProcessLauncher) Launch(ctx context.Context, table bench.LeafTable) (ScanResult, error) {
	cmd := exec.CommandContext(ctx, l.Executable, l.Args...)

	env := append(os.Environ(), l.Env...)
	cmd.Env = append(env, EnvWorkerTable+"="+table.Name)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if l.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, l.Stderr)
	}

	if err := cmd.Run(); err != nil {
		return ScanResult{}, fmt.Errorf("scan worker for %s failed: %w\nstderr: %s", table.Name, err, stderr.String())
	}

	result, err := DecodeScanResult(stdout.Bytes())
	if err != nil {
		return ScanResult{}, fmt.Errorf("parse scan worker output for %s: %w\nstdout: %s", table.Name, err, stdout.String())
	}

	if result.Table != table.Name {
		return ScanResult{}, fmt.Errorf("scan worker for %s reported table %q", table.Name, result.Table)
	}

	return result, nil
}
