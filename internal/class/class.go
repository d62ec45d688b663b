// Package class manages numeric classification schemes that bin a numeric
// column into labelled categories.
package class

import (
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/formula"
	"github.com/staats/staats/pkg/types"
)

// Engine is an ordered registry of named classes.
type Engine struct {
	names   []string
	classes map[string]types.Class
}

// NewEngine creates an empty class engine.
func NewEngine() *Engine {
	return &Engine{classes: make(map[string]types.Class)}
}

// Add registers a class. Re-adding a name replaces the definition but
// keeps its original position.
func (e *Engine) Add(c types.Class) {
	if _, exists := e.classes[c.Name]; !exists {
		e.names = append(e.names, c.Name)
	}
	e.classes[c.Name] = c
}

// Get returns the class with the given name.
func (e *Engine) Get(name string) (types.Class, bool) {
	c, ok := e.classes[name]
	return c, ok
}

// Names returns the registered class names in insertion order.
func (e *Engine) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of registered classes.
func (e *Engine) Len() int {
	return len(e.names)
}

// Labels returns the bin labels of the named class in definition order.
func (e *Engine) Labels(name string) ([]string, error) {
	c, ok := e.classes[name]
	if !ok {
		return nil, errors.NewUnknownEntity("class", name)
	}
	labels := make([]string, len(c.Bins))
	for i, bin := range c.Bins {
		labels[i] = bin.Label
	}
	return labels, nil
}

// Apply classifies a numeric column with the named class. Each cell gets
// the one-based index of the first bin whose predicate matches; cells that
// are null, non-numeric, or match no bin stay null. Bins are tried in
// definition order, so overlapping bins resolve to the earliest one.
func (e *Engine) Apply(column []types.Value, name string) ([]types.Value, error) {
	c, ok := e.classes[name]
	if !ok {
		return nil, errors.NewUnknownEntity("class", name)
	}

	preds := make([]*formula.BinPredicate, len(c.Bins))
	for i, bin := range c.Bins {
		p, err := formula.ParseBinPredicate(bin.Formula)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryEntity, errors.CodeParseError, err, "class %q bin %d", name, i+1)
		}
		preds[i] = p
	}

	out := make([]types.Value, len(column))
	for r, cell := range column {
		out[r] = types.Null()
		x, ok := cell.Number()
		if !ok {
			continue
		}
		for i, p := range preds {
			if p.Matches(x) {
				out[r] = types.NumberValue(float64(i + 1))
				break
			}
		}
	}
	return out, nil
}

// Validate checks every registered class, collecting empty classes and
// unparseable bin formulas.
func (e *Engine) Validate() []error {
	var problems []error
	for _, name := range e.names {
		c := e.classes[name]
		if len(c.Bins) == 0 {
			problems = append(problems, errors.Newf(errors.ErrCategoryEntity, errors.CodeBadValue,
				"class %q has no bins", name))
			continue
		}
		for i, bin := range c.Bins {
			if _, err := formula.ParseBinPredicate(bin.Formula); err != nil {
				problems = append(problems, errors.Wrapf(errors.ErrCategoryEntity, errors.CodeParseError, err,
					"class %q bin %d", name, i+1))
			}
		}
	}
	return problems
}
