package recode

import (
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/formula"
	"github.com/staats/staats/pkg/types"
)

// numeric computes an arithmetic expression over numeric columns.
type numeric struct {
	name  string
	title string
	expr  *formula.Expr
}

func newNumeric(def Def) (*numeric, error) {
	expr, err := formula.ParseArithmetic(def.Formula)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeBadValue, err, "recode %q", def.Name)
	}
	return &numeric{name: def.Name, title: def.Title, expr: expr}, nil
}

func (r *numeric) Name() string             { return r.name }
func (r *numeric) Title() string            { return r.title }
func (r *numeric) Kind() types.QuestionKind { return types.Numeric }
func (r *numeric) Codes() map[int]string    { return nil }
func (r *numeric) Variables() []string      { return r.expr.Variables() }

func (r *numeric) Calculate(data *types.Dataset, _ types.SchemaLookup) ([]types.Value, error) {
	out, err := r.expr.Evaluate(data)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeBadValue, err, "recode %q", r.name)
	}
	return out, nil
}

// numberOfAnswers counts the selected codes of one multi-choice column.
// Null and unparseable cells count as zero.
type numberOfAnswers struct {
	name   string
	title  string
	source string
}

func newNumberOfAnswers(def Def) (*numberOfAnswers, error) {
	source, err := singleRef(def.Name, def.Formula)
	if err != nil {
		return nil, err
	}
	return &numberOfAnswers{name: def.Name, title: def.Title, source: source}, nil
}

func (r *numberOfAnswers) Name() string             { return r.name }
func (r *numberOfAnswers) Title() string            { return r.title }
func (r *numberOfAnswers) Kind() types.QuestionKind { return types.Numeric }
func (r *numberOfAnswers) Codes() map[int]string    { return nil }
func (r *numberOfAnswers) Variables() []string      { return []string{r.source} }

func (r *numberOfAnswers) Calculate(data *types.Dataset, _ types.SchemaLookup) ([]types.Value, error) {
	col, ok := data.Column(r.source)
	if !ok {
		return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeUnknownVariable,
			errors.NewUnknownVariable(r.source, r.name), "recode %q", r.name)
	}

	out := make([]types.Value, len(col))
	for i, cell := range col {
		codes, err := cell.Codes()
		if err != nil {
			out[i] = types.NumberValue(0)
			continue
		}
		out[i] = types.NumberValue(float64(len(codes)))
	}
	return out, nil
}
