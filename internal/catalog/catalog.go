// Package catalog persists project definitions (datamap, recodes,
// filters, classes and tab plans) in a SQLite database, so a survey
// project can be edited and re-run without re-declaring its setup.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/staats/staats/pkg/types"
)

// Catalog is a SQLite-backed project store.
type Catalog struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and initializes, if needed) a project catalog.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c := &Catalog{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: failed to initialize schema: %w", err)
	}
	return c, nil
}

// Close closes the catalog database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) initSchema() error {
	_, err := c.db.Exec(schemaDDL)
	return err
}

// SaveDataMap replaces the stored datamap with the given one.
func (c *Catalog) SaveDataMap(ctx context.Context, m *types.DataMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM question_codes`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
			return err
		}
		for pos, name := range m.Names() {
			q, _ := m.Lookup(name)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO questions (name, kind, title, position) VALUES (?, ?, ?, ?)`,
				q.Name, q.Kind.Tag(), q.Title, pos); err != nil {
				return err
			}
			for _, code := range q.SortedCodes() {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO question_codes (question, code, label) VALUES (?, ?, ?)`,
					q.Name, code, q.Codes[code]); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadDataMap reads the stored datamap in its original question order.
func (c *Catalog) LoadDataMap(ctx context.Context) (*types.DataMap, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, kind, title FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load datamap: %w", err)
	}
	defer rows.Close()

	m := types.NewDataMap()
	for rows.Next() {
		var name, kind, title string
		if err := rows.Scan(&name, &kind, &title); err != nil {
			return nil, fmt.Errorf("catalog: load datamap: %w", err)
		}
		m.Add(&types.Question{Name: name, Kind: types.ParseKind(kind), Title: title})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load datamap: %w", err)
	}

	codeRows, err := c.db.QueryContext(ctx,
		`SELECT question, code, label FROM question_codes`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load datamap codes: %w", err)
	}
	defer codeRows.Close()

	for codeRows.Next() {
		var question, label string
		var code int
		if err := codeRows.Scan(&question, &code, &label); err != nil {
			return nil, fmt.Errorf("catalog: load datamap codes: %w", err)
		}
		if q, ok := m.Lookup(question); ok {
			if q.Codes == nil {
				q.Codes = make(map[int]string)
			}
			q.Codes[code] = label
		}
	}
	return m, codeRows.Err()
}

// inTx runs fn inside a transaction, rolling back on error.
func (c *Catalog) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("catalog: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	return nil
}
