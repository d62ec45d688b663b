// Package tab generates weighted cross-tabulation tables with column
// percentage significance testing.
package tab

// Result is one generated cross-tabulation. All grids are indexed
// [row][column] and include the Total row and Total column as the last
// entry of each axis.
type Result struct {
	// Title is the table title from the definition.
	Title string

	// RowLabels and ColLabels name the axes; the last label on each axis
	// is "Total".
	RowLabels []string
	ColLabels []string

	// ColLetters assigns the significance letter to each data column;
	// empty for the Total column.
	ColLetters []string

	// Counts holds unweighted respondent counts.
	Counts [][]float64

	// Weighted holds weighted counts. Equal to Counts when no weight
	// variable is in effect.
	Weighted [][]float64

	// RowPct and ColPct hold percentages of the weighted counts against
	// the row and column totals.
	RowPct [][]float64
	ColPct [][]float64

	// Significance marks each data cell with the letters of the columns
	// it is significantly higher than, sorted. Empty strings elsewhere.
	Significance [][]string

	// ColumnBase is the weighted base per column (the Total row).
	ColumnBase []float64
}

// Empty reports whether the result carries no data rows, which happens
// when the filters exclude every respondent or generation failed inside a
// batch.
func (r *Result) Empty() bool {
	return len(r.Counts) == 0
}

// DataColumns returns the number of columns excluding the Total column.
func (r *Result) DataColumns() int {
	if len(r.ColLabels) == 0 {
		return 0
	}
	return len(r.ColLabels) - 1
}

// DataRows returns the number of rows excluding the Total row.
func (r *Result) DataRows() int {
	if len(r.RowLabels) == 0 {
		return 0
	}
	return len(r.RowLabels) - 1
}

// emptyResult builds the placeholder result used for filtered-out tables
// and failed batch entries.
func emptyResult(title string) *Result {
	return &Result{Title: title}
}

// columnLetter returns the significance letter for a data column
// position: A, B, ..., Z, AA, AB and so on.
func columnLetter(pos int) string {
	letter := ""
	for {
		letter = string(rune('A'+pos%26)) + letter
		pos = pos/26 - 1
		if pos < 0 {
			return letter
		}
	}
}
