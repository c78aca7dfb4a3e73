package bench

import (
	"errors"
	"fmt"
)

var (
	// ErrNilDatabaseConnection is returned when a store is built from a nil handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrInvalidSeedParameters is returned for negative userCount or leafPerUser.
	ErrInvalidSeedParameters = errors.New("seed parameters must not be negative")

	// ErrProvisioningFailed marks a DDL failure. Fatal for the run.
	ErrProvisioningFailed = errors.New("provisioning the schema failed")

	// ErrSeedingFailed marks an insert failure. Fatal for the run.
	ErrSeedingFailed = errors.New("seeding the data failed")

	// ErrScanFailed marks a failed full table scan.
	ErrScanFailed = errors.New("scanning the table failed")

	// ErrWorkerFailed marks the failure of one worker inside a phase.
	ErrWorkerFailed = errors.New("phase worker failed")

	// ErrRowCountMismatch is returned by verification when scans disagree with the seeded counts.
	ErrRowCountMismatch = errors.New("row count mismatch")

	// ErrUnknownLeafTable is returned for a table name that is not one of the eight leaf tables.
	ErrUnknownLeafTable = errors.New("unknown leaf table")

	// ErrInvalidConfig is returned when the harness configuration does not validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// WorkerError is the failure of a single worker scanning one table within a phase.
type WorkerError struct {
	Phase string
	Table string
	Err   error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s: worker for table %s: %v", e.Phase, e.Table, e.Err)
}

// Unwrap makes a WorkerError match both ErrWorkerFailed and its cause.
func (e *WorkerError) Unwrap() []error {
	return []error{ErrWorkerFailed, e.Err}
}
