package workload

import (
	"errors"
	"fmt"

	"github.com/neonaddict/scanbench/bench"
)

// Verify checks that every phase scanned each of the eight leaf tables, that each scan returned
// expectedPerTable rows and that all phases agree table by table.
func Verify(expectedPerTable int, phases ...PhaseResult) error {
	return VerifyTables(expectedPerTable, bench.LeafTables(), phases...)
}

// VerifyTables is Verify restricted to the given tables.
func VerifyTables(expectedPerTable int, tables []bench.LeafTable, phases ...PhaseResult) error {
	var problems []error

	var reference map[string]int
	referenceName := ""

	for _, phase := range phases {
		rows := phase.RowsByTable()

		for _, table := range tables {
			got, scanned := rows[table.Name]
			if !scanned {
				problems = append(problems, fmt.Errorf("%s: table %s was not scanned", phase.Name, table.Name))
				continue
			}

			if got != expectedPerTable {
				problems = append(problems, fmt.Errorf("%s: table %s returned %d rows, expected %d",
					phase.Name, table.Name, got, expectedPerTable))
			}

			if reference == nil {
				continue
			}

			if want, ok := reference[table.Name]; ok && want != got {
				problems = append(problems, fmt.Errorf("%s: table %s returned %d rows, %s returned %d",
					phase.Name, table.Name, got, referenceName, want))
			}
		}

		if reference == nil {
			reference = rows
			referenceName = phase.Name
		}
	}

	if len(problems) == 0 {
		return nil
	}

	return errors.Join(append([]error{bench.ErrRowCountMismatch}, problems...)...)
}
