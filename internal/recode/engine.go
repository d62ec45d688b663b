package recode

import (
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// Engine applies registered recodes in definition order.
type Engine struct {
	items []Recode
	index map[string]Recode
}

// NewEngine creates an empty recode engine.
func NewEngine() *Engine {
	return &Engine{index: make(map[string]Recode)}
}

// Add registers a recode. Duplicate names are reported by Validate, not
// here; the first registration wins for lookup.
func (e *Engine) Add(r Recode) {
	e.items = append(e.items, r)
	if _, exists := e.index[r.Name()]; !exists {
		e.index[r.Name()] = r
	}
}

// AddDef builds and registers a recode from its definition.
func (e *Engine) AddDef(def Def) error {
	r, err := FromDef(def)
	if err != nil {
		return err
	}
	e.Add(r)
	return nil
}

// Get returns the registered recode with the given name.
func (e *Engine) Get(name string) (Recode, bool) {
	r, ok := e.index[name]
	return r, ok
}

// Names returns the registered recode names in definition order.
func (e *Engine) Names() []string {
	out := make([]string, len(e.items))
	for i, r := range e.items {
		out[i] = r.Name()
	}
	return out
}

// Len returns the number of registered recodes.
func (e *Engine) Len() int {
	return len(e.items)
}

// Validate checks every registered recode against the schema, collecting
// duplicate names and unresolved variable references. A recode may
// reference the variables of any recode defined before it.
func (e *Engine) Validate(schema types.SchemaLookup) []error {
	var problems []error
	defined := make(map[string]bool)
	for _, r := range e.items {
		name := r.Name()
		if _, clash := schema.Lookup(name); clash || defined[name] {
			problems = append(problems, errors.Newf(errors.ErrCategoryEntity, errors.CodeDuplicateName,
				"recode %q collides with an existing variable", name))
		}
		for _, variable := range r.Variables() {
			if _, ok := schema.Lookup(variable); ok {
				continue
			}
			if defined[variable] {
				continue
			}
			problems = append(problems, errors.Wrapf(errors.ErrCategoryEntity, errors.CodeUnknownVariable,
				errors.NewUnknownVariable(variable, name), "recode %q", name))
		}
		defined[name] = true
	}
	return problems
}

// CalculateAll computes every recode in definition order, appending each
// derived column to the dataset and its question to the datamap. The first
// failure aborts the run; columns already appended are kept, so a partial
// failure leaves the dataset with every recode up to the failing one.
func (e *Engine) CalculateAll(data *types.Dataset, schema *types.DataMap) error {
	for _, r := range e.items {
		values, err := r.Calculate(data, schema)
		if err != nil {
			return errors.Wrapf(errors.ErrCategoryRecode, errors.CodeUnexpected, err,
				"calculating recode %q", r.Name())
		}
		if err := data.AddColumn(r.Name(), values); err != nil {
			return errors.Wrapf(errors.ErrCategoryRecode, errors.CodeDuplicateName, err,
				"adding recode column %q", r.Name())
		}

		codes := r.Codes()
		var copied map[int]string
		if len(codes) > 0 {
			copied = make(map[int]string, len(codes))
			for code, label := range codes {
				copied[code] = label
			}
		}
		schema.Add(&types.Question{
			Name:  r.Name(),
			Kind:  r.Kind(),
			Title: r.Title(),
			Codes: copied,
		})
	}
	return nil
}
