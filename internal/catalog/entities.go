package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/staats/staats/internal/recode"
	"github.com/staats/staats/pkg/types"
)

// SaveRecodes replaces the stored recode definitions.
func (c *Catalog) SaveRecodes(ctx context.Context, defs []recode.Def) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"recode_subtotals", "recode_weights", "recode_codes", "recodes"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		for pos, def := range defs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recodes (name, title, kind, formula, position) VALUES (?, ?, ?, ?, ?)`,
				def.Name, def.Title, def.Kind, def.Formula, pos); err != nil {
				return err
			}
			for code, label := range def.Codes {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO recode_codes (recode, code, label) VALUES (?, ?, ?)`,
					def.Name, code, label); err != nil {
					return err
				}
			}
			for i, rule := range def.Weights {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO recode_weights (recode, position, formula, weight) VALUES (?, ?, ?, ?)`,
					def.Name, i, rule.Formula, rule.Weight); err != nil {
					return err
				}
			}
			for code, members := range def.Subtotals {
				for _, member := range members {
					if _, err := tx.ExecContext(ctx,
						`INSERT INTO recode_subtotals (recode, code, member) VALUES (?, ?, ?)`,
						def.Name, code, member); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// LoadRecodes reads the stored recode definitions in definition order.
func (c *Catalog) LoadRecodes(ctx context.Context) ([]recode.Def, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, title, kind, formula FROM recodes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load recodes: %w", err)
	}
	defer rows.Close()

	var defs []recode.Def
	index := make(map[string]int)
	for rows.Next() {
		var def recode.Def
		if err := rows.Scan(&def.Name, &def.Title, &def.Kind, &def.Formula); err != nil {
			return nil, fmt.Errorf("catalog: load recodes: %w", err)
		}
		index[def.Name] = len(defs)
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load recodes: %w", err)
	}

	codeRows, err := c.db.QueryContext(ctx, `SELECT recode, code, label FROM recode_codes`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load recode codes: %w", err)
	}
	defer codeRows.Close()
	for codeRows.Next() {
		var name, label string
		var code int
		if err := codeRows.Scan(&name, &code, &label); err != nil {
			return nil, fmt.Errorf("catalog: load recode codes: %w", err)
		}
		if i, ok := index[name]; ok {
			if defs[i].Codes == nil {
				defs[i].Codes = make(map[int]string)
			}
			defs[i].Codes[code] = label
		}
	}
	if err := codeRows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load recode codes: %w", err)
	}

	weightRows, err := c.db.QueryContext(ctx,
		`SELECT recode, formula, weight FROM recode_weights ORDER BY recode, position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load recode weights: %w", err)
	}
	defer weightRows.Close()
	for weightRows.Next() {
		var name string
		var rule recode.WeightRule
		if err := weightRows.Scan(&name, &rule.Formula, &rule.Weight); err != nil {
			return nil, fmt.Errorf("catalog: load recode weights: %w", err)
		}
		if i, ok := index[name]; ok {
			defs[i].Weights = append(defs[i].Weights, rule)
		}
	}
	if err := weightRows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load recode weights: %w", err)
	}

	subRows, err := c.db.QueryContext(ctx,
		`SELECT recode, code, member FROM recode_subtotals ORDER BY recode, code, member`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load recode subtotals: %w", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		var name string
		var code, member int
		if err := subRows.Scan(&name, &code, &member); err != nil {
			return nil, fmt.Errorf("catalog: load recode subtotals: %w", err)
		}
		if i, ok := index[name]; ok {
			if defs[i].Subtotals == nil {
				defs[i].Subtotals = make(map[int][]int)
			}
			defs[i].Subtotals[code] = append(defs[i].Subtotals[code], member)
		}
	}
	return defs, subRows.Err()
}

// SaveFilters replaces the stored filter definitions.
func (c *Catalog) SaveFilters(ctx context.Context, filters []types.Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM filters`); err != nil {
			return err
		}
		for pos, f := range filters {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO filters (name, formula, include_nulls, position) VALUES (?, ?, ?, ?)`,
				f.Name, f.Formula, boolToInt(f.IncludeNulls), pos); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadFilters reads the stored filters in definition order.
func (c *Catalog) LoadFilters(ctx context.Context) ([]types.Filter, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, formula, include_nulls FROM filters ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load filters: %w", err)
	}
	defer rows.Close()

	var filters []types.Filter
	for rows.Next() {
		var f types.Filter
		var includeNulls int
		if err := rows.Scan(&f.Name, &f.Formula, &includeNulls); err != nil {
			return nil, fmt.Errorf("catalog: load filters: %w", err)
		}
		f.IncludeNulls = includeNulls != 0
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// SaveClasses replaces the stored class definitions.
func (c *Catalog) SaveClasses(ctx context.Context, classes []types.Class) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM class_bins`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM classes`); err != nil {
			return err
		}
		for pos, cl := range classes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO classes (name, include_nulls, position) VALUES (?, ?, ?)`,
				cl.Name, boolToInt(cl.IncludeNulls), pos); err != nil {
				return err
			}
			for i, bin := range cl.Bins {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO class_bins (class, position, formula, label) VALUES (?, ?, ?, ?)`,
					cl.Name, i, bin.Formula, bin.Label); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadClasses reads the stored classes in definition order.
func (c *Catalog) LoadClasses(ctx context.Context) ([]types.Class, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, include_nulls FROM classes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load classes: %w", err)
	}
	defer rows.Close()

	var classes []types.Class
	index := make(map[string]int)
	for rows.Next() {
		var cl types.Class
		var includeNulls int
		if err := rows.Scan(&cl.Name, &includeNulls); err != nil {
			return nil, fmt.Errorf("catalog: load classes: %w", err)
		}
		cl.IncludeNulls = includeNulls != 0
		index[cl.Name] = len(classes)
		classes = append(classes, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load classes: %w", err)
	}

	binRows, err := c.db.QueryContext(ctx,
		`SELECT class, formula, label FROM class_bins ORDER BY class, position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load class bins: %w", err)
	}
	defer binRows.Close()
	for binRows.Next() {
		var name string
		var bin types.ClassBin
		if err := binRows.Scan(&name, &bin.Formula, &bin.Label); err != nil {
			return nil, fmt.Errorf("catalog: load class bins: %w", err)
		}
		if i, ok := index[name]; ok {
			classes[i].Bins = append(classes[i].Bins, bin)
		}
	}
	return classes, binRows.Err()
}

// SavePlans replaces the stored tab plans.
func (c *Catalog) SavePlans(ctx context.Context, plans []types.TabPlan) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tabs`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM plans`); err != nil {
			return err
		}
		for pos, plan := range plans {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plans (name, filter_name, weight_var, position) VALUES (?, ?, ?, ?)`,
				plan.Name, plan.FilterName, plan.WeightVar, pos); err != nil {
				return err
			}
			for i, tab := range plan.Tabs {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tabs (plan, position, title, row_var, col_var, second_col_var,
						filter_name, weight_var, class_name, null_handling, display)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					plan.Name, i, tab.Title, tab.RowVariable, tab.ColumnVariable,
					tab.SecondColumnVariable, tab.FilterName, tab.WeightVariable,
					tab.ClassName, tab.NullHandling, string(tab.Display)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadPlans reads the stored tab plans, tabs in plan order.
func (c *Catalog) LoadPlans(ctx context.Context) ([]types.TabPlan, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, filter_name, weight_var FROM plans ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load plans: %w", err)
	}
	defer rows.Close()

	var plans []types.TabPlan
	index := make(map[string]int)
	for rows.Next() {
		var plan types.TabPlan
		if err := rows.Scan(&plan.Name, &plan.FilterName, &plan.WeightVar); err != nil {
			return nil, fmt.Errorf("catalog: load plans: %w", err)
		}
		index[plan.Name] = len(plans)
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load plans: %w", err)
	}

	tabRows, err := c.db.QueryContext(ctx,
		`SELECT plan, title, row_var, col_var, second_col_var, filter_name,
			weight_var, class_name, null_handling, display
		FROM tabs ORDER BY plan, position`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load tabs: %w", err)
	}
	defer tabRows.Close()
	for tabRows.Next() {
		var name string
		var tab types.TabDefinition
		var display string
		if err := tabRows.Scan(&name, &tab.Title, &tab.RowVariable, &tab.ColumnVariable,
			&tab.SecondColumnVariable, &tab.FilterName, &tab.WeightVariable,
			&tab.ClassName, &tab.NullHandling, &display); err != nil {
			return nil, fmt.Errorf("catalog: load tabs: %w", err)
		}
		tab.Display = types.DisplayMode(display)
		if i, ok := index[name]; ok {
			plans[i].Tabs = append(plans[i].Tabs, tab)
		}
	}
	return plans, tabRows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
