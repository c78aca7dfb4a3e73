package workload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/neonaddict/scanbench/bench"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RunScanWorker is the body of a scan worker process: it opens a fresh connection through connect,
// scans the named leaf table, disconnects and writes one ScanResult line to w.
func RunScanWorker(ctx context.Context, connect Connector, tableName string, w io.Writer) error {
	table, err := bench.LeafTableByName(tableName)
	if err != nil {
		return err
	}

	store, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect scan worker for %s: %w", table.Name, err)
	}

	start := time.Now()
	records, scanErr := store.ScanAll(ctx, table)
	elapsed := time.Since(start)

	if closeErr := store.Close(); closeErr != nil && scanErr == nil {
		scanErr = closeErr
	}

	if scanErr != nil {
		return scanErr
	}

	return EncodeScanResult(w, ScanResult{
		Table:     table.Name,
		Rows:      len(records),
		ElapsedNS: elapsed.Nanoseconds(),
		PID:       os.Getpid(),
	})
}

// EncodeScanResult writes result as a single JSON line.
func EncodeScanResult(w io.Writer, result ScanResult) error {
	if err := json.NewEncoder(w).Encode(result); err != nil {
		return fmt.Errorf("encode scan result: %w", err)
	}

	return nil
}

// DecodeScanResult reads the last non-empty line of a worker's stdout as a ScanResult.
func DecodeScanResult(output []byte) (ScanResult, error) {
	lines := bytes.Split(bytes.TrimSpace(output), []byte("\n"))
	last := bytes.TrimSpace(lines[len(lines)-1])

	if len(last) == 0 {
		return ScanResult{}, errors.New("no scan result in worker output")
	}

	var result ScanResult
	if err := json.Unmarshal(last, &result); err != nil {
		return ScanResult{}, fmt.Errorf("decode JSON: %w", err)
	}

	if result.Table == "" {
		return ScanResult{}, errors.New("scan result without table")
	}

	return result, nil
}
