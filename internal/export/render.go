// Package export renders generated tables to delimited output and packs
// finished runs into compressed archives.
package export

import (
	"fmt"
	"strconv"

	"github.com/staats/staats/internal/tab"
	"github.com/staats/staats/pkg/types"
)

// RenderGrid lays one result out as a cell grid. The first row carries
// the column labels, the second the significance letters. Data rows
// render as column percentages (Vertical), row percentages (Horizontal)
// or "count (col%)" cells (Both). Counts and the weighted base close the
// grid.
func RenderGrid(res *tab.Result, mode types.DisplayMode) [][]string {
	if res.Empty() {
		return [][]string{{res.Title}, {"(no data)"}}
	}

	nc := len(res.ColLabels)
	var grid [][]string

	header := make([]string, nc+1)
	header[0] = res.Title
	copy(header[1:], res.ColLabels)
	grid = append(grid, header)

	letters := make([]string, nc+1)
	copy(letters[1:], res.ColLetters)
	grid = append(grid, letters)

	for i, label := range res.RowLabels {
		row := make([]string, nc+1)
		row[0] = label
		for j := 0; j < nc; j++ {
			switch mode {
			case types.DisplayHorizontal:
				row[j+1] = formatPercent(res.RowPct[i][j], "")
			case types.DisplayBoth:
				cell := fmt.Sprintf("%s (%.1f%%)", formatNumber(res.Counts[i][j]), res.ColPct[i][j])
				if sig := res.Significance[i][j]; sig != "" {
					cell += " " + sig
				}
				row[j+1] = cell
			default:
				row[j+1] = formatPercent(res.ColPct[i][j], res.Significance[i][j])
			}
		}
		grid = append(grid, row)
	}

	base := make([]string, nc+1)
	base[0] = "Base (weighted)"
	for j, b := range res.ColumnBase {
		base[j+1] = formatNumber(b)
	}
	grid = append(grid, base)

	counts := make([]string, nc+1)
	counts[0] = "Base (unweighted)"
	totalRow := len(res.RowLabels) - 1
	for j := 0; j < nc; j++ {
		counts[j+1] = formatNumber(res.Counts[totalRow][j])
	}
	grid = append(grid, counts)

	return grid
}

// formatPercent renders a percentage to one decimal, with significance
// letters appended in parentheses.
func formatPercent(pct float64, sig string) string {
	s := fmt.Sprintf("%.1f", pct)
	if sig != "" {
		s += " (" + sig + ")"
	}
	return s
}

// formatNumber renders a count or base without trailing zeros.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
