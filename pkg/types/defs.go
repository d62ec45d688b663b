package types

import "strings"

// Filter is a named, reusable row predicate expressed in the condition
// language.
type Filter struct {
	// Name is the registry key.
	Name string

	// Formula is the condition-language expression.
	Formula string

	// IncludeNulls keeps rows whose referenced variables are all null
	// instead of excluding them.
	IncludeNulls bool
}

// ClassBin is one bin of a Class: a binning predicate over the cell value
// (e.g. "X>=18 and X<30") and the label assigned on match.
type ClassBin struct {
	Formula string
	Label   string
}

// Class is an ordered set of bins for converting a numeric variable into
// categories. Bins are evaluated in declared order; the first match wins.
type Class struct {
	Name         string
	Bins         []ClassBin
	IncludeNulls bool
}

// DisplayMode selects how exported tabulation cells are rendered.
type DisplayMode string

const (
	// DisplayVertical renders column percentages.
	DisplayVertical DisplayMode = "Vertical"

	// DisplayHorizontal renders row percentages.
	DisplayHorizontal DisplayMode = "Horizontal"

	// DisplayBoth renders "count (pct%)" per cell.
	DisplayBoth DisplayMode = "Both"
)

// TabDefinition specifies a single cross-tabulation. It is pure
// specification: the tabulation engine consumes it and never mutates it.
type TabDefinition struct {
	// Title identifies the tabulation in output and diagnostics.
	Title string

	// RowVariable is the variable tabulated down the rows.
	RowVariable string

	// ColumnVariable splits the rows into columns. Must be SingleChoice
	// or MultiChoice.
	ColumnVariable string

	// SecondColumnVariable is an optional second banner variable.
	// Accepted in configuration for compatibility; nested banners are
	// not produced yet.
	SecondColumnVariable string

	// FilterName optionally names a registered filter to apply.
	FilterName string

	// WeightVariable optionally names a numeric weight column.
	WeightVariable string

	// ClassName optionally names a registered class for binning a
	// numeric row variable.
	ClassName string

	// NullHandling lists the axes that keep "no answer" as a category,
	// as a "/"-separated set of RowNA, ColNA and SecondcolNA markers.
	NullHandling string

	// Display selects the export rendering mode.
	Display DisplayMode
}

// HasRowNA reports whether null row values get their own category.
func (t *TabDefinition) HasRowNA() bool {
	return strings.Contains(t.NullHandling, "RowNA")
}

// HasColNA reports whether null column values get their own category.
func (t *TabDefinition) HasColNA() bool {
	return strings.Contains(t.NullHandling, "ColNA")
}

// HasSecondColNA reports whether null second-column values get their own
// category.
func (t *TabDefinition) HasSecondColNA() bool {
	return strings.Contains(t.NullHandling, "SecondcolNA")
}

// TabPlan is a named batch of tabulations sharing an optional plan-level
// filter and weight. The plan filter combines with each tab's own filter
// with logical AND; the plan weight takes precedence over a tab's weight.
type TabPlan struct {
	Name       string
	FilterName string
	WeightVar  string
	Tabs       []TabDefinition
}
