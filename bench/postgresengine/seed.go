package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/neonaddict/scanbench/bench"
)

// Seed inserts one organization, params.UserCount users under it and, for every user,
// params.LeafPerUser rows into each of the eight leaf tables.
// The schema must be freshly provisioned; rows accumulate otherwise.
func (s *Store) Seed(ctx context.Context, params bench.SeedParams) (bench.SeedSummary, error) {
	var empty bench.SeedSummary

	if err := params.Validate(); err != nil {
		return empty, errors.Join(bench.ErrSeedingFailed, err)
	}

	start := time.Now()
	leafTables := bench.LeafTables()

	orgID, err := s.insertOrganization(ctx, bench.SeededOrganizationName)
	if err != nil {
		return empty, errors.Join(bench.ErrSeedingFailed, err)
	}

	summary := bench.SeedSummary{
		OrganizationID:   orgID,
		Organizations:    1,
		LeafRowsPerTable: make(map[string]int, len(leafTables)),
	}
	for _, table := range leafTables {
		summary.LeafRowsPerTable[table.Name] = 0
	}

	userIDs := make([]int64, 0, params.UserCount)
	for i := range params.UserCount {
		user := bench.User{
			Name:           fmt.Sprintf("Name %d", i),
			Age:            s.randomAge(),
			OrganizationID: orgID,
		}

		userID, insertErr := s.insertUser(ctx, user)
		if insertErr != nil {
			return empty, errors.Join(bench.ErrSeedingFailed, insertErr)
		}

		userIDs = append(userIDs, userID)
		summary.Users++
	}

	if params.LeafPerUser > 0 {
		for _, userID := range userIDs {
			for _, table := range leafTables {
				inserted, insertErr := s.insertLeafRows(ctx, table, userID, params.LeafPerUser)
				if insertErr != nil {
					return empty, errors.Join(bench.ErrSeedingFailed, insertErr)
				}

				summary.LeafRowsPerTable[table.Name] += int(inserted)
			}
		}
	}

	s.logOperation(ctx, logMsgDataSeeded,
		logAttrUserCount, params.UserCount,
		logAttrLeafPerUser, params.LeafPerUser,
		logAttrRowCount, summary.TotalRows(),
		logAttrDurationMS, s.toMilliseconds(time.Since(start)))

	return summary, nil
}

// Analyze refreshes planner statistics for every seeded table.
func (s *Store) Analyze(ctx context.Context) error {
	start := time.Now()
	tables := bench.SchemaTables()

	for _, table := range tables {
		if _, err := s.exec(ctx, logActionAnalyze, "VACUUM ANALYZE "+quoteIdent(table)); err != nil {
			return fmt.Errorf("vacuum analyze %s: %w", table, err)
		}
	}

	s.logOperation(ctx, logMsgTablesAnalyzed,
		logAttrTableCount, len(tables),
		logAttrDurationMS, s.toMilliseconds(time.Since(start)))

	return nil
}

func (s *Store) randomAge() int {
	return bench.MinUserAge + s.rng.IntN(bench.MaxUserAge-bench.MinUserAge+1)
}

func (s *Store) insertOrganization(ctx context.Context, name string) (int64, error) {
	sqlQuery, _, err := s.dialect.
		Insert(bench.TableOrganizations).
		Rows(goqu.Record{colName: name}).
		Returning(colID).
		ToSQL()
	if err != nil {
		return 0, errors.Join(fmt.Errorf("%s: insert organization", logMsgBuildQueryFailed), err)
	}

	orgID, err := s.queryInt64(ctx, logActionInsert, sqlQuery)
	if err != nil {
		return 0, fmt.Errorf("insert organization: %w", err)
	}

	return orgID, nil
}

func (s *Store) insertUser(ctx context.Context, user bench.User) (int64, error) {
	sqlQuery, _, err := s.dialect.
		Insert(bench.TableUsers).
		Rows(goqu.Record{
			colName:           user.Name,
			colAge:            user.Age,
			colOrganizationID: user.OrganizationID,
		}).
		Returning(colID).
		ToSQL()
	if err != nil {
		return 0, errors.Join(fmt.Errorf("%s: insert user", logMsgBuildQueryFailed), err)
	}

	userID, err := s.queryInt64(ctx, logActionInsert, sqlQuery)
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", user.Name, err)
	}

	return userID, nil
}

// insertLeafRows inserts count rows for one user into one leaf table with a single multi-row INSERT.
func (s *Store) insertLeafRows(ctx context.Context, table bench.LeafTable, userID int64, count int) (int64, error) {
	sqlQuery, err := s.buildInsertLeafRowsQuery(table, userID, count)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := s.exec(ctx, logActionInsert, sqlQuery)
	if err != nil {
		return 0, fmt.Errorf("insert into %s for user %d: %w", table.Name, userID, err)
	}

	return rowsAffected, nil
}

func (s *Store) buildInsertLeafRowsQuery(table bench.LeafTable, userID int64, count int) (sqlQueryString, error) {
	rows := make([]any, 0, count)
	for j := range count {
		rows = append(rows, goqu.Record{
			colUserID:        userID,
			table.TextColumn: table.SeedText(j),
		})
	}

	sqlQuery, _, err := s.dialect.Insert(table.Name).Rows(rows...).ToSQL()
	if err != nil {
		return "", errors.Join(fmt.Errorf("%s: insert into %s", logMsgBuildQueryFailed, table.Name), err)
	}

	return sqlQuery, nil
}
