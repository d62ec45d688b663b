// Package filter manages named row filters and applies them to datasets.
package filter

import (
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/formula"
	"github.com/staats/staats/pkg/types"
)

// Engine is an ordered registry of named filters.
type Engine struct {
	names   []string
	filters map[string]types.Filter
}

// NewEngine creates an empty filter engine.
func NewEngine() *Engine {
	return &Engine{filters: make(map[string]types.Filter)}
}

// Add registers a filter. Re-adding a name replaces the definition but
// keeps its original position.
func (e *Engine) Add(f types.Filter) {
	if _, exists := e.filters[f.Name]; !exists {
		e.names = append(e.names, f.Name)
	}
	e.filters[f.Name] = f
}

// Get returns the filter with the given name.
func (e *Engine) Get(name string) (types.Filter, bool) {
	f, ok := e.filters[name]
	return f, ok
}

// Names returns the registered filter names in insertion order.
func (e *Engine) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of registered filters.
func (e *Engine) Len() int {
	return len(e.names)
}

// Apply evaluates the named filter against the dataset and returns one
// boolean per row. With IncludeNulls set, rows where every referenced
// column is null pass the filter as well.
func (e *Engine) Apply(data *types.Dataset, name string, schema types.SchemaLookup) ([]bool, error) {
	f, ok := e.filters[name]
	if !ok {
		return nil, errors.NewUnknownEntity("filter", name)
	}

	result, err := formula.Evaluate(data, f.Formula, schema)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryEntity, errors.CodeBadValue, err, "filter %q", name)
	}

	if f.IncludeNulls {
		cols := referencedColumns(data, f.Formula)
		for r := range result {
			if !result[r] && allNull(cols, r) {
				result[r] = true
			}
		}
	}
	return result, nil
}

// Validate checks every registered filter against the schema, collecting
// parse failures and unknown variable references.
func (e *Engine) Validate(schema types.SchemaLookup) []error {
	var problems []error
	for _, name := range e.names {
		f := e.filters[name]
		if _, _, err := formula.Parse(f.Formula); err != nil {
			problems = append(problems, errors.Wrapf(errors.ErrCategoryEntity, errors.CodeParseError, err, "filter %q", name))
			continue
		}
		for _, variable := range formula.ExtractVariables(f.Formula) {
			if _, ok := schema.Lookup(variable); !ok {
				problems = append(problems, errors.Wrapf(errors.ErrCategoryEntity, errors.CodeUnknownVariable,
					errors.NewUnknownVariable(variable, f.Formula), "filter %q", name))
			}
		}
	}
	return problems
}

// referencedColumns resolves the formula's variable references to dataset
// columns, skipping names the dataset does not carry.
func referencedColumns(data *types.Dataset, f string) [][]types.Value {
	var cols [][]types.Value
	for _, name := range formula.ExtractVariables(f) {
		if col, ok := data.Column(name); ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// allNull reports whether every column is null at the given row.
func allNull(cols [][]types.Value, row int) bool {
	if len(cols) == 0 {
		return false
	}
	for _, col := range cols {
		if !col[row].IsNull() {
			return false
		}
	}
	return true
}
