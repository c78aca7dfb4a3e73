package workload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/bench/workload"
)

func phaseWithRows(name string, rows int, overrides map[string]int) workload.PhaseResult {
	phase := workload.PhaseResult{Name: name}
	for _, table := range bench.LeafTables() {
		n := rows
		if o, ok := overrides[table.Name]; ok {
			n = o
		}
		phase.Scans = append(phase.Scans, workload.ScanResult{Table: table.Name, Rows: n})
	}

	return phase
}

func Test_Verify(t *testing.T) {
	tests := []struct {
		name     string
		expected int
		phases   []workload.PhaseResult
		wantErr  bool
		contains []string
	}{
		{
			name:     "both_phases_match_the_seeded_count",
			expected: 5000,
			phases: []workload.PhaseResult{
				phaseWithRows(workload.PhaseSharedMemory, 5000, nil),
				phaseWithRows(workload.PhaseIsolatedProcess, 5000, nil),
			},
		},
		{
			name:     "empty_dataset",
			expected: 0,
			phases: []workload.PhaseResult{
				phaseWithRows(workload.PhaseSharedMemory, 0, nil),
				phaseWithRows(workload.PhaseIsolatedProcess, 0, nil),
			},
		},
		{
			name:     "one_table_short",
			expected: 100,
			phases: []workload.PhaseResult{
				phaseWithRows(workload.PhaseSharedMemory, 100, map[string]int{bench.TableVideogames: 99}),
			},
			wantErr:  true,
			contains: []string{"videogames returned 99 rows, expected 100"},
		},
		{
			name:     "phases_disagree",
			expected: 100,
			phases: []workload.PhaseResult{
				phaseWithRows(workload.PhaseSharedMemory, 100, nil),
				phaseWithRows(workload.PhaseIsolatedProcess, 100, map[string]int{bench.TableDreams: 101}),
			},
			wantErr: true,
			contains: []string{
				"in processes: table dreams returned 101 rows, expected 100",
				"in processes: table dreams returned 101 rows, in threads returned 100",
			},
		},
		{
			name:     "table_missing",
			expected: 1,
			phases: []workload.PhaseResult{
				{Name: workload.PhaseIsolatedProcess, Scans: []workload.ScanResult{{Table: bench.TableBooks, Rows: 1}}},
			},
			wantErr:  true,
			contains: []string{"table pets was not scanned"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := workload.Verify(tc.expected, tc.phases...)

			// assert
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, bench.ErrRowCountMismatch)
			for _, fragment := range tc.contains {
				assert.Contains(t, err.Error(), fragment)
			}
		})
	}
}

func Test_VerifyTables_Ignores_Tables_Outside_The_Selection(t *testing.T) {
	// setup
	books, err := bench.LeafTableByName(bench.TableBooks)
	require.NoError(t, err)
	phase := workload.PhaseResult{
		Name:  workload.PhaseSharedMemory,
		Scans: []workload.ScanResult{{Table: bench.TableBooks, Rows: 6}},
	}

	// act
	restricted := workload.VerifyTables(6, []bench.LeafTable{books}, phase)
	full := workload.Verify(6, phase)

	// assert
	assert.NoError(t, restricted)
	assert.ErrorIs(t, full, bench.ErrRowCountMismatch)
}
