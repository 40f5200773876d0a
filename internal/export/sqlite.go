package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"sales-dashboard/internal/models"
)

var columnTypes = map[models.Field]string{
	models.FieldRevenue:       "REAL",
	models.FieldOrderQuantity: "INTEGER",
}

// SaveSplitSQLite writes the partition into the bikes and accessories
// tables of the database at path. Existing tables are replaced.
func SaveSplitSQLite(ctx context.Context, path string, p Partition) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	for _, name := range []string{TableBikes, TableAccessories} {
		if err := writeTable(ctx, db, name, p.Tables()[name]); err != nil {
			return fmt.Errorf("write table %s: %w", name, err)
		}
	}
	return nil
}

func writeTable(ctx context.Context, db *sql.DB, name string, t models.Table) error {
	fields := models.Fields()
	defs := make([]string, len(fields))
	cols := make([]string, len(fields))
	for i, f := range fields {
		typ := columnTypes[f]
		if typ == "" {
			typ = "TEXT"
		}
		cols[i] = fmt.Sprintf("%q", f.String())
		defs[i] = cols[i] + " " + typ
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, name)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %q (%s)`, name, strings.Join(defs, ","))); err != nil {
		return err
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(fields)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, name, strings.Join(cols, ","), ph))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range t {
		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = sqliteValue(r, f)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func sqliteValue(r models.SalesRecord, f models.Field) any {
	if r.Missing.Has(f) {
		return nil
	}
	switch f {
	case models.FieldRevenue:
		return r.Revenue
	case models.FieldOrderQuantity:
		return r.OrderQuantity
	}
	return r.Text(f)
}
