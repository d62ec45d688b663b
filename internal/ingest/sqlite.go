package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// ReadSQLite loads response data from one table of a SQLite database.
// Columns are matched against the datamap by name; rows come back in
// rowid order so repeated loads see the same row layout.
func ReadSQLite(ctx context.Context, path, table string, schema *types.DataMap) (*types.Dataset, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "opening %s", path)
	}
	defer db.Close()

	names, err := matchedColumns(ctx, db, table, schema)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Newf(errors.ErrCategoryConfig, errors.CodeLoadFailed,
			"table %q shares no columns with the datamap", table)
	}

	query := fmt.Sprintf(`SELECT "%s" FROM "%s" ORDER BY rowid`, strings.Join(names, `", "`), table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "querying %q", table)
	}
	defer rows.Close()

	columns := make([][]types.Value, len(names))
	scan := make([]interface{}, len(names))
	cells := make([]sql.NullString, len(names))
	for i := range cells {
		scan[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "scanning %q", table)
		}
		for i, cell := range cells {
			q, _ := schema.Lookup(names[i])
			if !cell.Valid {
				columns[i] = append(columns[i], types.Null())
				continue
			}
			v, err := parseCell(strings.TrimSpace(cell.String), q.Kind)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err,
					"table %q column %q", table, names[i])
			}
			columns[i] = append(columns[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "reading %q", table)
	}

	var length int
	if len(columns) > 0 {
		length = len(columns[0])
	}
	data := types.NewDataset(length)
	for i, name := range names {
		if err := data.AddColumn(name, columns[i]); err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "loading %q", table)
		}
	}
	return data, nil
}

// matchedColumns returns the table's columns that exist in the datamap,
// in datamap order.
func matchedColumns(ctx context.Context, db *sql.DB, table string, schema *types.DataMap) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info("%s")`, table))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "inspecting %q", table)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "inspecting %q", table)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "inspecting %q", table)
	}

	var names []string
	for _, name := range schema.Names() {
		if present[name] {
			names = append(names, name)
		}
	}
	return names, nil
}
