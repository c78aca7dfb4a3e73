package postgresengine

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/neonaddict/scanbench/bench"
	"github.com/neonaddict/scanbench/bench/postgresengine/internal/adapters"
	"github.com/neonaddict/scanbench/config"
)

const (
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "scanbench operation: "
	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgTableDropped        = "table dropped"
	logMsgTableCreated        = "table created"
	logMsgSchemaProvisioned   = "schema provisioned"
	logMsgDataSeeded          = "data seeded"
	logMsgTablesAnalyzed      = "tables analyzed"
	logMsgScanCompleted       = "scan completed"
	logMsgOrganizationDeleted = "organization deleted"
	logMsgCloseHandleFailed   = "failed to close database handle"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrTable              = "table"
	logAttrTableCount         = "table_count"
	logAttrRowCount           = "row_count"
	logAttrUserCount          = "user_count"
	logAttrLeafPerUser        = "leaf_per_user"
	logAttrDurationMS         = "duration_ms"
	logAttrRowsAffected       = "rows_affected"
	logAttrAdapter            = "adapter"
	logActionExists           = "table exists"
	logActionDrop             = "drop table"
	logActionCreate           = "create table"
	logActionInsert           = "insert"
	logActionScan             = "scan"
	logActionCount            = "count"
	logActionDelete           = "delete"
	logActionAnalyze          = "analyze"
	metricScanDuration        = "scanbench_scan_duration_seconds"
	metricRowsScanned         = "scanbench_rows_scanned"
	metricDatabaseErrors      = "scanbench_database_errors_total"
	labelTable                = "table"
	labelOperation            = "operation"
	labelErrorType            = "error_type"
	colID                     = "id"
	colName                   = "name"
	colAge                    = "age"
	colOrganizationID         = "organization_id"
	colUserID                 = "user_id"
	dialectPostgres           = "postgres"
)

type sqlQueryString = string

// Store is the PostgreSQL datastore collaborator: provisioning, seeding and full table scans.
// Provision and Seed are meant to run from a single goroutine before any concurrent phase;
// ScanAll, CountRows and DeleteOrganization are safe for concurrent use.
type Store struct {
	db               adapters.DBAdapter
	closeHandle      func() error
	logger           bench.Logger
	contextualLogger bench.ContextualLogger
	metricsCollector bench.MetricsCollector
	rng              *rand.Rand
	dialect          goqu.DialectWrapper
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
// The caller keeps ownership of the pool.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, bench.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), nil, options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
// The caller keeps ownership of the handle.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, bench.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), nil, options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
// The caller keeps ownership of the handle.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, bench.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), nil, options...)
}

// Connect opens a brand-new handle of the configured adapter type and returns a Store owning it.
// Close releases the handle.
func Connect(ctx context.Context, cfg config.Config, options ...Option) (*Store, error) {
	adapterType, err := config.ParseAdapterType(string(cfg.Adapter))
	if err != nil {
		return nil, err
	}

	switch adapterType {
	case config.AdapterSQLDB:
		db, openErr := config.OpenSQLDB(ctx, cfg)
		if openErr != nil {
			return nil, classifyPostgresError(openErr)
		}

		return newStore(adapters.NewSQLAdapter(db), db.Close, options...)

	case config.AdapterSQLXDB:
		db, openErr := config.OpenSQLX(ctx, cfg)
		if openErr != nil {
			return nil, classifyPostgresError(openErr)
		}

		return newStore(adapters.NewSQLXAdapter(db), db.Close, options...)

	default:
		pool, openErr := config.NewPGXPool(ctx, cfg)
		if openErr != nil {
			return nil, classifyPostgresError(openErr)
		}

		return newStore(adapters.NewPGXAdapter(pool), func() error {
			pool.Close()
			return nil
		}, options...)
	}
}

func newStore(db adapters.DBAdapter, closeHandle func() error, options ...Option) (*Store, error) {
	s := &Store{
		db:          db,
		closeHandle: closeHandle,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		dialect:     goqu.Dialect(dialectPostgres),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			if closeHandle != nil {
				_ = closeHandle()
			}

			return nil, err
		}
	}

	return s, nil
}

// Ping verifies the datastore is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return classifyPostgresError(err)
	}

	return nil
}

// AdapterKind reports which handle type the store runs on.
func (s *Store) AdapterKind() string {
	return s.db.Kind()
}

// Close releases the handle if the Store owns it (see Connect). It is a no-op otherwise.
// After Close the Store must not be used; a worker that needs a fresh connection calls Connect again.
func (s *Store) Close() error {
	if s.closeHandle == nil {
		return nil
	}

	closeHandle := s.closeHandle
	s.closeHandle = nil

	if err := closeHandle(); err != nil {
		s.logWarn(context.Background(), logMsgCloseHandleFailed, logAttrError, err.Error(), logAttrAdapter, s.db.Kind())
		return fmt.Errorf("close %s handle: %w", s.db.Kind(), err)
	}

	return nil
}

// exec executes a statement, logs it with its duration and classifies failures.
func (s *Store) exec(ctx context.Context, action string, sqlQuery sqlQueryString) (int64, error) {
	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		s.recordErrorMetrics(action, execErr)

		return 0, classifyPostgresError(execErr)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, classifyPostgresError(err)
	}

	return rowsAffected, nil
}

// query executes a query and returns rows with timing information.
func (s *Store) query(ctx context.Context, action string, sqlQuery sqlQueryString) (adapters.DBRows, time.Duration, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		s.recordErrorMetrics(action, queryErr)

		return nil, duration, classifyPostgresError(queryErr)
	}

	return rows, duration, nil
}

// queryInt64 runs a query expected to return exactly one int64 column in one row.
func (s *Store) queryInt64(ctx context.Context, action string, sqlQuery sqlQueryString) (int64, error) {
	rows, _, err := s.query(ctx, action, sqlQuery)
	if err != nil {
		return 0, err
	}
	defer s.closeRows(ctx, rows)

	var value int64
	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return 0, classifyPostgresError(rowsErr)
		}

		return 0, fmt.Errorf("%s: query returned no rows", action)
	}

	if scanErr := rows.Scan(&value); scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		return 0, classifyPostgresError(scanErr)
	}

	return value, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}
