package recode

import (
	"fmt"
	"sort"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// subtotal copies a multi-choice column and adds synthetic codes: each
// subtotal code is selected whenever any of its member codes is selected
// in the source cell.
type subtotal struct {
	name      string
	title     string
	source    string
	subtotals map[int][]int
	labels    map[int]string
	codes     map[int]string
}

func newSubtotal(def Def) (*subtotal, error) {
	source, err := singleRef(def.Name, def.Formula)
	if err != nil {
		return nil, err
	}
	if len(def.Subtotals) == 0 {
		return nil, errors.Newf(errors.ErrCategoryRecode, errors.CodeBadValue,
			"recode %q has no subtotal definitions", def.Name)
	}
	return &subtotal{
		name:      def.Name,
		title:     def.Title,
		source:    source,
		subtotals: def.Subtotals,
		labels:    def.Codes,
	}, nil
}

func (r *subtotal) Name() string             { return r.name }
func (r *subtotal) Title() string            { return r.title }
func (r *subtotal) Kind() types.QuestionKind { return types.MultiChoice }
func (r *subtotal) Variables() []string      { return []string{r.source} }

// Codes returns the source codes plus the subtotal codes. Only populated
// after Calculate, which needs the source question's code labels.
func (r *subtotal) Codes() map[int]string { return r.codes }

func (r *subtotal) Calculate(data *types.Dataset, schema types.SchemaLookup) ([]types.Value, error) {
	col, ok := data.Column(r.source)
	if !ok {
		return nil, errors.Wrapf(errors.ErrCategoryRecode, errors.CodeUnknownVariable,
			errors.NewUnknownVariable(r.source, r.name), "recode %q", r.name)
	}

	subCodes := make([]int, 0, len(r.subtotals))
	for code := range r.subtotals {
		subCodes = append(subCodes, code)
	}
	sort.Ints(subCodes)

	out := make([]types.Value, len(col))
	for i, cell := range col {
		codes, err := cell.Codes()
		if err != nil || len(codes) == 0 {
			out[i] = types.Null()
			continue
		}
		present := make(map[int]bool, len(codes))
		for _, c := range codes {
			present[c] = true
		}
		extended := append([]int(nil), codes...)
		for _, sub := range subCodes {
			for _, member := range r.subtotals[sub] {
				if present[member] {
					extended = append(extended, sub)
					break
				}
			}
		}
		out[i] = types.EncodeCodes(extended)
	}

	r.codes = make(map[int]string)
	if q, ok := schema.Lookup(r.source); ok {
		for code, label := range q.Codes {
			r.codes[code] = label
		}
	}
	for _, sub := range subCodes {
		if label, ok := r.labels[sub]; ok {
			r.codes[sub] = label
		} else {
			r.codes[sub] = fmt.Sprintf("Subtotal %d", sub)
		}
	}
	return out, nil
}
