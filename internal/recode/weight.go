package recode

import (
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/formula"
	"github.com/staats/staats/pkg/types"
)

// weight produces a numeric weighting column. Every row starts at 1.0;
// rules are applied in order and a later matching rule overwrites the
// weight set by an earlier one.
type weight struct {
	name  string
	title string
	rules []WeightRule
}

func newWeight(def Def) (*weight, error) {
	if len(def.Weights) == 0 {
		return nil, errors.Newf(errors.ErrCategoryRecode, errors.CodeBadValue,
			"recode %q has no weight rules", def.Name)
	}
	return &weight{name: def.Name, title: def.Title, rules: def.Weights}, nil
}

func (r *weight) Name() string             { return r.name }
func (r *weight) Title() string            { return r.title }
func (r *weight) Kind() types.QuestionKind { return types.Numeric }
func (r *weight) Codes() map[int]string    { return nil }

func (r *weight) Variables() []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, rule := range r.rules {
		for _, v := range formula.ExtractVariables(rule.Formula) {
			if !seen[v] {
				seen[v] = true
				names = append(names, v)
			}
		}
	}
	return names
}

func (r *weight) Calculate(data *types.Dataset, schema types.SchemaLookup) ([]types.Value, error) {
	out := make([]types.Value, data.Len())
	for i := range out {
		out[i] = types.NumberValue(1.0)
	}
	for _, rule := range r.rules {
		match, err := formula.Evaluate(data, rule.Formula, schema)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeBadValue, err,
				"recode %q rule %q", r.name, rule.Formula)
		}
		for i, m := range match {
			if m {
				out[i] = types.NumberValue(rule.Weight)
			}
		}
	}
	return out, nil
}
