package workload_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/bench/workload"
)

func Test_RunScanWorker_Writes_One_Result_Line_And_Disconnects(t *testing.T) {
	// setup
	store := &scannerFake{rowsPerTable: 250}
	connect := func(context.Context) (workload.WorkerStore, error) { return store, nil }
	out := &bytes.Buffer{}

	// act
	err := workload.RunScanWorker(context.Background(), connect, bench.TableVinyls, out)

	// assert
	require.NoError(t, err)
	assert.True(t, store.closed)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))

	result, err := workload.DecodeScanResult(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, bench.TableVinyls, result.Table)
	assert.Equal(t, 250, result.Rows)
	assert.Equal(t, os.Getpid(), result.PID)
	assert.GreaterOrEqual(t, result.ElapsedNS, int64(0))
}

func Test_RunScanWorker_When_Table_Is_Unknown_Fails_Without_Connecting(t *testing.T) {
	// setup
	connected := false
	connect := func(context.Context) (workload.WorkerStore, error) {
		connected = true
		return &scannerFake{}, nil
	}

	// act
	err := workload.RunScanWorker(context.Background(), connect, "user_passports", &bytes.Buffer{})

	// assert
	assert.ErrorIs(t, err, bench.ErrUnknownLeafTable)
	assert.False(t, connected)
}

func Test_RunScanWorker_When_Scan_Fails_Still_Disconnects(t *testing.T) {
	// setup
	scanErr := errors.New("connection reset")
	store := &scannerFake{failing: map[string]error{bench.TableBooks: scanErr}}
	connect := func(context.Context) (workload.WorkerStore, error) { return store, nil }
	out := &bytes.Buffer{}

	// act
	err := workload.RunScanWorker(context.Background(), connect, bench.TableBooks, out)

	// assert
	assert.ErrorIs(t, err, scanErr)
	assert.True(t, store.closed)
	assert.Empty(t, out.String())
}

func Test_RunScanWorker_When_Connect_Fails(t *testing.T) {
	// setup
	connectErr := errors.New("too many connections")
	connect := func(context.Context) (workload.WorkerStore, error) { return nil, connectErr }

	// act
	err := workload.RunScanWorker(context.Background(), connect, bench.TableBooks, &bytes.Buffer{})

	// assert
	assert.ErrorIs(t, err, connectErr)
}

func Test_DecodeScanResult_Uses_The_Last_Line(t *testing.T) {
	// arrange
	output := []byte("some diagnostics\n{\"table\":\"pets\",\"rows\":7,\"elapsed_ns\":1500,\"pid\":99}\n")

	// act
	result, err := workload.DecodeScanResult(output)

	// assert
	require.NoError(t, err)
	assert.Equal(t, workload.ScanResult{Table: bench.TablePets, Rows: 7, ElapsedNS: 1500, PID: 99}, result)
}

func Test_DecodeScanResult_Rejects_Bad_Output(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "empty", output: ""},
		{name: "not_json", output: "not json at all"},
		{name: "no_table", output: `{"rows":3}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := workload.DecodeScanResult([]byte(tc.output))

			// assert
			assert.Error(t, err)
		})
	}
}
