package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/neonaddict/scanbench/bench/postgresengine/internal/adapters"
)

// adapterFake records every statement and answers from scripted callbacks.
type adapterFake struct {
	mu         sync.Mutex
	statements []string
	nextID     int64

	// queryRows answers Query; by default every query yields one row with the next id.
	queryRows func(sql string) ([][]any, error)

	// execErr fails Exec for statements it returns an error for.
	execErr func(sql string) error
}

func (f *adapterFake) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.mu.Lock()
	f.statements = append(f.statements, query)
	f.mu.Unlock()

	if f.queryRows != nil {
		rows, err := f.queryRows(query)
		if err != nil {
			return nil, err
		}

		return &rowsFake{rows: rows}, nil
	}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	return &rowsFake{rows: [][]any{{id}}}, nil
}

func (f *adapterFake) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.mu.Lock()
	f.statements = append(f.statements, query)
	f.mu.Unlock()

	if f.execErr != nil {
		if err := f.execErr(query); err != nil {
			return nil, err
		}
	}

	var affected int64
	if strings.HasPrefix(query, "INSERT") {
		affected = int64(strings.Count(query, "), (") + 1)
	}

	return resultFake(affected), nil
}

func (f *adapterFake) Ping(context.Context) error { return nil }

func (f *adapterFake) Kind() string { return "fake" }

func (f *adapterFake) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.statements...)
}

func (f *adapterFake) recordedWithPrefix(prefix string) []string {
	var matching []string
	for _, stmt := range f.recorded() {
		if strings.HasPrefix(stmt, prefix) {
			matching = append(matching, stmt)
		}
	}

	return matching
}

type resultFake int64

func (r resultFake) RowsAffected() (int64, error) { return int64(r), nil }

type rowsFake struct {
	rows    [][]any
	current int
	err     error
	closed  bool
}

func (r *rowsFake) Next() bool {
	if r.current >= len(r.rows) {
		return false
	}
	r.current++

	return true
}

func (r *rowsFake) Scan(dest ...any) error {
	row := r.rows[r.current-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d columns into %d destinations", len(row), len(dest))
	}

	for i, value := range row {
		switch d := dest[i].(type) {
		case *int64:
			v, ok := value.(int64)
			if !ok {
				return errors.New("scan: not an int64")
			}
			*d = v
		case **string:
			if value == nil {
				*d = nil
				continue
			}
			s, ok := value.(string)
			if !ok {
				return errors.New("scan: not a string")
			}
			*d = &s
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}

	return nil
}

func (r *rowsFake) Err() error { return r.err }

func (r *rowsFake) Close() error {
	r.closed = true
	return nil
}
