package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/neonaddict/scanbench/bench"
)

// ScanAll reads every row of the given leaf table into memory, without filter, order or limit.
func (s *Store) ScanAll(ctx context.Context, table bench.LeafTable) (bench.LeafRecords, error) {
	sqlQuery, err := s.buildScanAllQuery(table)
	if err != nil {
		return nil, errors.Join(bench.ErrScanFailed, err)
	}

	start := time.Now()

	rows, _, err := s.query(ctx, logActionScan, sqlQuery)
	if err != nil {
		return nil, errors.Join(bench.ErrScanFailed, fmt.Errorf("scan %s: %w", table.Name, err))
	}
	defer s.closeRows(ctx, rows)

	records := make(bench.LeafRecords, 0)
	for rows.Next() {
		var (
			record bench.LeafRecord
			text   *string
		)

		if scanErr := rows.Scan(&record.ID, &record.UserID, &text); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrTable, table.Name)
			return nil, errors.Join(bench.ErrScanFailed, classifyPostgresError(scanErr))
		}

		if text != nil {
			record.Text = *text
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.recordErrorMetrics(logActionScan, rowsErr)
		return nil, errors.Join(bench.ErrScanFailed, fmt.Errorf("scan %s: %w", table.Name, classifyPostgresError(rowsErr)))
	}

	duration := time.Since(start)
	s.recordScanMetrics(table.Name, duration, len(records))
	s.logOperation(ctx, logMsgScanCompleted,
		logAttrTable, table.Name,
		logAttrRowCount, len(records),
		logAttrDurationMS, s.toMilliseconds(duration))

	return records, nil
}

// CountRows returns the number of rows in any of the eleven fixture tables.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	sqlQuery, _, err := s.dialect.From(table).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return 0, errors.Join(fmt.Errorf("%s: %s %s", logMsgBuildQueryFailed, logActionCount, table), err)
	}

	count, err := s.queryInt64(ctx, logActionCount, sqlQuery)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	return count, nil
}

// DeleteOrganization removes one organization. The foreign keys cascade the delete
// to its users and all of their leaf rows. It returns the number of deleted organizations.
func (s *Store) DeleteOrganization(ctx context.Context, id int64) (int64, error) {
	sqlQuery, _, err := s.dialect.
		Delete(bench.TableOrganizations).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if err != nil {
		return 0, errors.Join(fmt.Errorf("%s: %s", logMsgBuildQueryFailed, logActionDelete), err)
	}

	deleted, err := s.exec(ctx, logActionDelete, sqlQuery)
	if err != nil {
		return 0, fmt.Errorf("delete organization %d: %w", id, err)
	}

	s.logOperation(ctx, logMsgOrganizationDeleted, logAttrRowsAffected, deleted)

	return deleted, nil
}

func (s *Store) buildScanAllQuery(table bench.LeafTable) (sqlQueryString, error) {
	sqlQuery, _, err := s.dialect.
		From(table.Name).
		Select(colID, colUserID, table.TextColumn).
		ToSQL()
	if err != nil {
		return "", errors.Join(fmt.Errorf("%s: %s %s", logMsgBuildQueryFailed, logActionScan, table.Name), err)
	}

	return sqlQuery, nil
}
