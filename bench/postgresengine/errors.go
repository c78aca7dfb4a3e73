package postgresengine

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Error categories used as metric labels.
const (
	errorTypeUndefinedTable = "undefined_table"
	errorTypeForeignKey     = "foreign_key_violation"
	errorTypeConnection     = "connection"
	errorTypeUnavailable    = "server_unavailable"
	errorTypeCanceled       = "query_canceled"
	errorTypeResources      = "resource_limit"
	errorTypePostgres       = "postgres"
	errorTypeOther          = "other"
)

// postgresErrorFields extracts the SQLSTATE and descriptive fields from a pgx or lib/pq error.
func postgresErrorFields(err error) (code, message, detail, table string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.TableName, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message, pqErr.Detail, pqErr.Table, true
	}

	return "", "", "", "", false
}

// errorType maps an error to a coarse category.
func errorType(err error) string {
	code, _, _, _, ok := postgresErrorFields(err)
	if !ok {
		return errorTypeOther
	}

	switch code {
	case pgerrcode.UndefinedTable:
		return errorTypeUndefinedTable
	case pgerrcode.ForeignKeyViolation:
		return errorTypeForeignKey
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return errorTypeConnection
	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown:
		return errorTypeUnavailable
	case pgerrcode.QueryCanceled:
		return errorTypeCanceled
	case pgerrcode.InsufficientResources,
		pgerrcode.DiskFull,
		pgerrcode.OutOfMemory,
		pgerrcode.TooManyConnections:
		return errorTypeResources
	default:
		return errorTypePostgres
	}
}

// classifyPostgresError wraps PostgreSQL errors with a readable category.
// Returns the original error if it's not a PostgreSQL error.
func classifyPostgresError(err error) error {
	if err == nil {
		return nil
	}

	code, message, detail, table, ok := postgresErrorFields(err)
	if !ok {
		return err
	}

	switch errorType(err) {
	case errorTypeUndefinedTable:
		return fmt.Errorf("undefined table (is the schema provisioned?): %w", err)
	case errorTypeForeignKey:
		return fmt.Errorf("foreign key violation on %s: %s: %w", table, detail, err)
	case errorTypeConnection:
		return fmt.Errorf("database connection error: %w", err)
	case errorTypeUnavailable:
		return fmt.Errorf("database server unavailable: %w", err)
	case errorTypeCanceled:
		return fmt.Errorf("query canceled: %w", err)
	case errorTypeResources:
		return fmt.Errorf("database resource limit: %w", err)
	default:
		return fmt.Errorf("postgres error [%s]: %s (detail: %s): %w", code, message, detail, err)
	}
}
