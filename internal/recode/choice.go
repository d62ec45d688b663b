package recode

import (
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/formula"
	"github.com/staats/staats/pkg/types"
)

// singleChoice assigns each row the code of the first matching line.
type singleChoice struct {
	name  string
	title string
	lines []codeLine
	codes map[int]string
}

func newSingleChoice(def Def) (*singleChoice, error) {
	lines, err := parseCodeLines(def.Name, def.Formula)
	if err != nil {
		return nil, err
	}
	codes := make(map[int]string, len(lines))
	for _, line := range lines {
		codes[line.code] = labelFor(def.Codes, line.code)
	}
	return &singleChoice{name: def.Name, title: def.Title, lines: lines, codes: codes}, nil
}

func (r *singleChoice) Name() string             { return r.name }
func (r *singleChoice) Title() string            { return r.title }
func (r *singleChoice) Kind() types.QuestionKind { return types.SingleChoice }
func (r *singleChoice) Codes() map[int]string    { return r.codes }

func (r *singleChoice) Variables() []string {
	return lineVariables(r.lines)
}

func (r *singleChoice) Calculate(data *types.Dataset, schema types.SchemaLookup) ([]types.Value, error) {
	out := nullColumn(data.Len())
	assigned := make([]bool, data.Len())
	for _, line := range r.lines {
		match, err := formula.Evaluate(data, line.formula, schema)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeBadValue, err,
				"recode %q code %d", r.name, line.code)
		}
		for i, m := range match {
			if m && !assigned[i] {
				out[i] = types.NumberValue(float64(line.code))
				assigned[i] = true
			}
		}
	}
	return out, nil
}

// multiChoice assigns each row every matching line's code.
type multiChoice struct {
	name  string
	title string
	lines []codeLine
	codes map[int]string
}

func newMultiChoice(def Def) (*multiChoice, error) {
	lines, err := parseCodeLines(def.Name, def.Formula)
	if err != nil {
		return nil, err
	}
	codes := make(map[int]string, len(lines))
	for _, line := range lines {
		codes[line.code] = labelFor(def.Codes, line.code)
	}
	return &multiChoice{name: def.Name, title: def.Title, lines: lines, codes: codes}, nil
}

func (r *multiChoice) Name() string             { return r.name }
func (r *multiChoice) Title() string            { return r.title }
func (r *multiChoice) Kind() types.QuestionKind { return types.MultiChoice }
func (r *multiChoice) Codes() map[int]string    { return r.codes }

func (r *multiChoice) Variables() []string {
	return lineVariables(r.lines)
}

func (r *multiChoice) Calculate(data *types.Dataset, schema types.SchemaLookup) ([]types.Value, error) {
	matched := make([][]int, data.Len())
	for _, line := range r.lines {
		match, err := formula.Evaluate(data, line.formula, schema)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeBadValue, err,
				"recode %q code %d", r.name, line.code)
		}
		for i, m := range match {
			if m {
				matched[i] = append(matched[i], line.code)
			}
		}
	}

	out := make([]types.Value, data.Len())
	for i, codes := range matched {
		// EncodeCodes sorts and deduplicates; no matches yields null.
		out[i] = types.EncodeCodes(codes)
	}
	return out, nil
}

// lineVariables unions the variables of all line formulas, in order of
// first appearance.
func lineVariables(lines []codeLine) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, line := range lines {
		for _, v := range formula.ExtractVariables(line.formula) {
			if !seen[v] {
				seen[v] = true
				names = append(names, v)
			}
		}
	}
	return names
}

// nullColumn allocates a column of nulls.
func nullColumn(n int) []types.Value {
	out := make([]types.Value, n)
	for i := range out {
		out[i] = types.Null()
	}
	return out
}
