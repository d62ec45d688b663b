package tab

import (
	"sort"
	"strconv"

	"github.com/staats/staats/internal/class"
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/filter"
	"github.com/staats/staats/pkg/types"
)

// DefaultAlpha is the two-tailed significance level for column tests.
const DefaultAlpha = 0.05

// Engine generates cross-tabulations against a fixed schema, filter
// registry and class registry.
type Engine struct {
	schema  *types.DataMap
	filters *filter.Engine
	classes *class.Engine
	alpha   float64
	workers int
}

// NewEngine creates a tabulation engine.
func NewEngine(schema *types.DataMap, filters *filter.Engine, classes *class.Engine) *Engine {
	return &Engine{
		schema:  schema,
		filters: filters,
		classes: classes,
		alpha:   DefaultAlpha,
		workers: 4,
	}
}

// SetAlpha overrides the significance level.
func (e *Engine) SetAlpha(alpha float64) {
	if alpha > 0 && alpha < 1 {
		e.alpha = alpha
	}
}

// SetConcurrency overrides the batch worker limit.
func (e *Engine) SetConcurrency(n int) {
	if n > 0 {
		e.workers = n
	}
}

// category is one axis entry with its per-row membership.
type category struct {
	label  string
	member []bool
}

// Generate produces one cross-tabulation. The plan's filter is combined
// with the tab's own filter (a row must pass both); the plan's weight
// variable, when set, overrides the tab's. Rows whose cells are null fall
// out of every category unless the definition requests No answer rows.
func (e *Engine) Generate(data *types.Dataset, def types.TabDefinition, plan *types.TabPlan) (*Result, error) {
	include, err := e.resolveInclude(data, def, plan)
	if err != nil {
		return nil, err
	}
	any := false
	for _, in := range include {
		if in {
			any = true
			break
		}
	}
	if !any {
		return emptyResult(def.Title), nil
	}

	weights, err := e.resolveWeights(data, def, plan)
	if err != nil {
		return nil, err
	}
	rows, err := e.rowCategories(data, def)
	if err != nil {
		return nil, err
	}
	cols, err := e.colCategories(data, def)
	if err != nil {
		return nil, err
	}

	nr, nc := len(rows)+1, len(cols)+1
	res := &Result{
		Title:        def.Title,
		RowLabels:    make([]string, nr),
		ColLabels:    make([]string, nc),
		ColLetters:   make([]string, nc),
		Counts:       grid(nr, nc),
		Weighted:     grid(nr, nc),
		RowPct:       grid(nr, nc),
		ColPct:       grid(nr, nc),
		Significance: stringGrid(nr, nc),
	}
	for i, cat := range rows {
		res.RowLabels[i] = cat.label
	}
	res.RowLabels[nr-1] = "Total"
	for j, cat := range cols {
		res.ColLabels[j] = cat.label
		res.ColLetters[j] = columnLetter(j)
	}
	res.ColLabels[nc-1] = "Total"

	for idx := range include {
		if !include[idx] {
			continue
		}
		w := weights[idx]

		res.Counts[nr-1][nc-1]++
		res.Weighted[nr-1][nc-1] += w
		for j, col := range cols {
			if col.member[idx] {
				res.Counts[nr-1][j]++
				res.Weighted[nr-1][j] += w
			}
		}
		for i, row := range rows {
			if !row.member[idx] {
				continue
			}
			res.Counts[i][nc-1]++
			res.Weighted[i][nc-1] += w
			for j, col := range cols {
				if col.member[idx] {
					res.Counts[i][j]++
					res.Weighted[i][j] += w
				}
			}
		}
	}

	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if rowTotal := res.Weighted[i][nc-1]; rowTotal > 0 {
				res.RowPct[i][j] = res.Weighted[i][j] / rowTotal * 100
			}
			if colTotal := res.Weighted[nr-1][j]; colTotal > 0 {
				res.ColPct[i][j] = res.Weighted[i][j] / colTotal * 100
			}
		}
	}

	res.ColumnBase = append([]float64(nil), res.Weighted[nr-1]...)

	if len(cols) >= 2 {
		e.markSignificance(res)
	}
	return res, nil
}

// resolveInclude combines the plan filter and the tab filter into one row
// mask.
func (e *Engine) resolveInclude(data *types.Dataset, def types.TabDefinition, plan *types.TabPlan) ([]bool, error) {
	include := make([]bool, data.Len())
	for i := range include {
		include[i] = true
	}
	apply := func(name string) error {
		mask, err := e.filters.Apply(data, name, e.schema)
		if err != nil {
			return err
		}
		for i := range include {
			include[i] = include[i] && mask[i]
		}
		return nil
	}
	if plan != nil && plan.FilterName != "" {
		if err := apply(plan.FilterName); err != nil {
			return nil, err
		}
	}
	if def.FilterName != "" {
		if err := apply(def.FilterName); err != nil {
			return nil, err
		}
	}
	return include, nil
}

// resolveWeights returns the per-row weight. The plan's weight variable
// takes precedence over the tab's; with neither set every row weighs 1.0.
// Null or non-numeric weight cells fall back to 1.0.
func (e *Engine) resolveWeights(data *types.Dataset, def types.TabDefinition, plan *types.TabPlan) ([]float64, error) {
	name := def.WeightVariable
	if plan != nil && plan.WeightVar != "" {
		name = plan.WeightVar
	}

	weights := make([]float64, data.Len())
	for i := range weights {
		weights[i] = 1.0
	}
	if name == "" {
		return weights, nil
	}

	col, ok := data.Column(name)
	if !ok {
		return nil, errors.NewUnknownVariable(name, "weight variable")
	}
	for i, cell := range col {
		if w, ok := cell.Number(); ok {
			weights[i] = w
		}
	}
	return weights, nil
}

// rowCategories builds the row axis. With a class the row variable is
// binned; otherwise a qualitative variable contributes one category per
// code. A numeric row variable without a class cannot be tabulated.
func (e *Engine) rowCategories(data *types.Dataset, def types.TabDefinition) ([]category, error) {
	q, ok := e.schema.Lookup(def.RowVariable)
	if !ok {
		return nil, errors.NewUnknownVariable(def.RowVariable, def.Title)
	}
	col, ok := data.Column(def.RowVariable)
	if !ok {
		return nil, errors.NewUnknownVariable(def.RowVariable, def.Title)
	}

	var cats []category
	if def.ClassName != "" {
		classified, err := e.classes.Apply(col, def.ClassName)
		if err != nil {
			return nil, err
		}
		labels, err := e.classes.Labels(def.ClassName)
		if err != nil {
			return nil, err
		}
		for b, label := range labels {
			member := make([]bool, len(classified))
			for i, v := range classified {
				if n, ok := v.Number(); ok && int(n) == b+1 {
					member[i] = true
				}
			}
			cats = append(cats, category{label: label, member: member})
		}
	} else {
		switch q.Kind {
		case types.SingleChoice, types.MultiChoice:
			cats = codeCategories(col, q)
		default:
			return nil, errors.NewTypeMismatch(
				"row variable %q is %s; only qualitative variables or classed numerics can span rows",
				def.RowVariable, q.Kind)
		}
	}

	if def.HasRowNA() {
		cats = append(cats, nullCategory(col))
	}
	return cats, nil
}

// colCategories builds the column axis. The column variable must be
// qualitative. A multi-choice column is reduced to its first code with a
// Selected / Not selected split; the remaining codes are not expanded
// into banner columns.
func (e *Engine) colCategories(data *types.Dataset, def types.TabDefinition) ([]category, error) {
	q, ok := e.schema.Lookup(def.ColumnVariable)
	if !ok {
		return nil, errors.NewUnknownVariable(def.ColumnVariable, def.Title)
	}
	col, ok := data.Column(def.ColumnVariable)
	if !ok {
		return nil, errors.NewUnknownVariable(def.ColumnVariable, def.Title)
	}

	var cats []category
	switch q.Kind {
	case types.SingleChoice:
		cats = codeCategories(col, q)
	case types.MultiChoice:
		codes := questionCodes(col, q)
		if len(codes) == 0 {
			return nil, errors.NewTypeMismatch("column variable %q has no codes", def.ColumnVariable)
		}
		first := codes[0]
		selected := make([]bool, len(col))
		unselected := make([]bool, len(col))
		for i, cell := range col {
			cellCodes, err := cell.Codes()
			if err != nil || len(cellCodes) == 0 {
				continue
			}
			hit := false
			for _, c := range cellCodes {
				if c == first {
					hit = true
					break
				}
			}
			selected[i] = hit
			unselected[i] = !hit
		}
		label := labelForCode(q, first)
		cats = []category{
			{label: label + ": selected", member: selected},
			{label: label + ": not selected", member: unselected},
		}
	default:
		return nil, errors.NewTypeMismatch(
			"column variable %q is %s; only qualitative variables can span columns",
			def.ColumnVariable, q.Kind)
	}

	if def.HasColNA() {
		cats = append(cats, nullCategory(col))
	}
	return cats, nil
}

// codeCategories builds one category per question code, in ascending code
// order. A multi-choice cell belongs to every category whose code it
// carries.
func codeCategories(col []types.Value, q *types.Question) []category {
	codes := questionCodes(col, q)
	cats := make([]category, 0, len(codes))
	for _, code := range codes {
		member := make([]bool, len(col))
		for i, cell := range col {
			cellCodes, err := cell.Codes()
			if err != nil {
				continue
			}
			for _, c := range cellCodes {
				if c == code {
					member[i] = true
					break
				}
			}
		}
		cats = append(cats, category{label: labelForCode(q, code), member: member})
	}
	return cats
}

// questionCodes returns the question's codes in ascending order, falling
// back to the distinct codes observed in the data when the datamap carries
// no code list.
func questionCodes(col []types.Value, q *types.Question) []int {
	if codes := q.SortedCodes(); len(codes) > 0 {
		return codes
	}
	seen := make(map[int]bool)
	for _, cell := range col {
		cellCodes, err := cell.Codes()
		if err != nil {
			continue
		}
		for _, c := range cellCodes {
			seen[c] = true
		}
	}
	codes := make([]int, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

func labelForCode(q *types.Question, code int) string {
	if label, ok := q.Codes[code]; ok {
		return label
	}
	return strconv.Itoa(code)
}

// nullCategory captures the rows whose cell is null.
func nullCategory(col []types.Value) category {
	member := make([]bool, len(col))
	for i, cell := range col {
		member[i] = cell.IsNull()
	}
	return category{label: "No answer", member: member}
}

func grid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

func stringGrid(rows, cols int) [][]string {
	g := make([][]string, rows)
	for i := range g {
		g[i] = make([]string, cols)
	}
	return g
}
