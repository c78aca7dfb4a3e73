package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/neonaddict/scanbench/bench"
)

const textColumnType = "varchar(256)"

// tableDefinition is the column list of one fixture table, foreign keys included.
type tableDefinition struct {
	name    string
	columns []string
}

func (d tableDefinition) createStatement() sqlQueryString {
	stmt := "CREATE TABLE " + quoteIdent(d.name) + " ("
	for i, col := range d.columns {
		if i > 0 {
			stmt += ", "
		}
		stmt += col
	}

	return stmt + ")"
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func primaryKeyColumn() string {
	return quoteIdent(colID) + " serial PRIMARY KEY"
}

func cascadingForeignKey(column, parent string) string {
	return fmt.Sprintf("%s integer NOT NULL REFERENCES %s (%s) ON DELETE CASCADE",
		quoteIdent(column), quoteIdent(parent), quoteIdent(colID))
}

func textColumn(column string) string {
	return quoteIdent(column) + " " + textColumnType
}

// schemaDefinitions returns the eleven tables in creation order.
func schemaDefinitions() []tableDefinition {
	defs := []tableDefinition{
		{
			name:    bench.TableOrganizations,
			columns: []string{primaryKeyColumn(), textColumn(colName)},
		},
		{
			name: bench.TableUsers,
			columns: []string{
				primaryKeyColumn(),
				textColumn(colName),
				quoteIdent(colAge) + " integer",
				cascadingForeignKey(colOrganizationID, bench.TableOrganizations),
			},
		},
		{
			name: bench.TableUserPassports,
			columns: []string{
				primaryKeyColumn(),
				cascadingForeignKey(colUserID, bench.TableUsers),
				textColumn("info"),
			},
		},
	}

	for _, leaf := range bench.LeafTables() {
		defs = append(defs, tableDefinition{
			name: leaf.Name,
			columns: []string{
				primaryKeyColumn(),
				cascadingForeignKey(colUserID, bench.TableUsers),
				textColumn(leaf.TextColumn),
			},
		})
	}

	return defs
}

// Provision ensures a clean fixture schema exists: every one of the eleven tables that
// already exists is dropped with CASCADE, then all of them are created again.
// Running it twice in a row leaves the same empty schema.
func (s *Store) Provision(ctx context.Context) error {
	start := time.Now()
	defs := schemaDefinitions()

	for _, def := range defs {
		exists, err := s.TableExists(ctx, def.name)
		if err != nil {
			return errors.Join(bench.ErrProvisioningFailed, err)
		}

		if !exists {
			continue
		}

		if _, err = s.exec(ctx, logActionDrop, "DROP TABLE "+quoteIdent(def.name)+" CASCADE"); err != nil {
			return errors.Join(bench.ErrProvisioningFailed, fmt.Errorf("drop table %s: %w", def.name, err))
		}

		s.logOperation(ctx, logMsgTableDropped, logAttrTable, def.name)
	}

	for _, def := range defs {
		if _, err := s.exec(ctx, logActionCreate, def.createStatement()); err != nil {
			return errors.Join(bench.ErrProvisioningFailed, fmt.Errorf("create table %s: %w", def.name, err))
		}

		s.logOperation(ctx, logMsgTableCreated, logAttrTable, def.name)
	}

	s.logOperation(ctx, logMsgSchemaProvisioned,
		logAttrTableCount, len(defs),
		logAttrDurationMS, s.toMilliseconds(time.Since(start)))

	return nil
}

// TableExists reports whether a table with the given name exists in the current schema.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	sqlQuery, err := s.buildTableExistsQuery(name)
	if err != nil {
		return false, err
	}

	count, err := s.queryInt64(ctx, logActionExists, sqlQuery)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *Store) buildTableExistsQuery(name string) (sqlQueryString, error) {
	sqlQuery, _, err := s.dialect.
		From(goqu.S("information_schema").Table("tables")).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C("table_schema").Eq(goqu.L("current_schema()")),
			goqu.C("table_name").Eq(name),
		).
		ToSQL()
	if err != nil {
		return "", errors.Join(fmt.Errorf("%s: %s", logMsgBuildQueryFailed, logActionExists), err)
	}

	return sqlQuery, nil
}
