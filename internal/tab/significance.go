package tab

import (
	"math"
	"strings"
)

// markSignificance runs the pairwise column proportion z-test on every
// data cell. A cell in column j is marked with the letter of column k
// when its proportion is significantly higher than column k's at the
// engine's alpha. The Total row and Total column are excluded, as are
// columns with a zero base. Letters accumulate in column order, so the
// marks come out sorted.
func (e *Engine) markSignificance(res *Result) {
	dataRows := res.DataRows()
	dataCols := res.DataColumns()
	base := res.ColumnBase

	for i := 0; i < dataRows; i++ {
		for j := 0; j < dataCols; j++ {
			var letters []string
			for k := 0; k < dataCols; k++ {
				if k == j || base[j] <= 0 || base[k] <= 0 {
					continue
				}
				if significantlyHigher(res.Weighted[i][j], base[j], res.Weighted[i][k], base[k], e.alpha) {
					letters = append(letters, columnLetter(k))
				}
			}
			res.Significance[i][j] = strings.Join(letters, "")
		}
	}
}

// significantlyHigher tests whether proportion c1/n1 is higher than c2/n2
// with a two-tailed pooled z-test at the given alpha.
func significantlyHigher(c1, n1, c2, n2, alpha float64) bool {
	p1 := c1 / n1
	p2 := c2 / n2
	if p1 <= p2 {
		return false
	}
	pPool := (c1 + c2) / (n1 + n2)
	se := math.Sqrt(pPool * (1 - pPool) * (1/n1 + 1/n2))
	if se == 0 {
		return false
	}
	z := (p1 - p2) / se
	p := 2 * (1 - normalCDF(math.Abs(z)))
	return p < alpha
}
