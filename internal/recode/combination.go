package recode

import (
	"sort"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// combination assigns one single-choice code per distinct answer pattern
// of a multi-choice column. Patterns are canonicalized (sorted,
// deduplicated) before comparison, so "2,1" and "1,2" are the same
// combination. Codes are assigned 1..n over the lexicographically sorted
// patterns, so the numbering is stable for a given dataset.
type combination struct {
	name    string
	title   string
	source  string
	codes   map[int]string
	mapping map[string]int
}

func newCombination(def Def) (*combination, error) {
	source, err := singleRef(def.Name, def.Formula)
	if err != nil {
		return nil, err
	}
	return &combination{name: def.Name, title: def.Title, source: source}, nil
}

func (r *combination) Name() string             { return r.name }
func (r *combination) Title() string            { return r.title }
func (r *combination) Kind() types.QuestionKind { return types.SingleChoice }
func (r *combination) Variables() []string      { return []string{r.source} }

// Codes returns the pattern labels. Only populated after Calculate.
func (r *combination) Codes() map[int]string { return r.codes }

// Mapping returns the canonical pattern to code assignment. Only populated
// after Calculate.
func (r *combination) Mapping() map[string]int { return r.mapping }

func (r *combination) Calculate(data *types.Dataset, _ types.SchemaLookup) ([]types.Value, error) {
	col, ok := data.Column(r.source)
	if !ok {
		return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeUnknownVariable,
			errors.NewUnknownVariable(r.source, r.name), "recode %q", r.name)
	}

	canonical := make([]string, len(col))
	seen := make(map[string]bool)
	for i, cell := range col {
		codes, err := cell.Codes()
		if err != nil || len(codes) == 0 {
			continue
		}
		text, _ := types.EncodeCodes(codes).Text()
		canonical[i] = text
		seen[text] = true
	}

	patterns := make([]string, 0, len(seen))
	for p := range seen {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	r.mapping = make(map[string]int, len(patterns))
	r.codes = make(map[int]string, len(patterns))
	for i, p := range patterns {
		r.mapping[p] = i + 1
		r.codes[i+1] = p
	}

	out := make([]types.Value, len(col))
	for i, p := range canonical {
		if p == "" {
			out[i] = types.Null()
			continue
		}
		out[i] = types.NumberValue(float64(r.mapping[p]))
	}
	return out, nil
}
