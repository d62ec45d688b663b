package tab

import "github.com/staats/staats/internal/errors"

// ChiSquareResult is the outcome of a chi-square independence test over a
// generated table.
type ChiSquareResult struct {
	Statistic float64
	Dof       int
	PValue    float64
}

// ChiSquare runs the chi-square test of independence on the unweighted
// counts of a result, with the Total row and column stripped. Expected
// frequencies come from the row and column marginals. The test needs at
// least a 2x2 data grid.
func ChiSquare(res *Result) (*ChiSquareResult, error) {
	nr, nc := res.DataRows(), res.DataColumns()
	if nr < 2 || nc < 2 {
		return nil, errors.Newf(errors.ErrCategoryTabulation, errors.CodeBadValue,
			"chi-square needs at least a 2x2 table, got %dx%d", nr, nc)
	}

	rowTotals := make([]float64, nr)
	colTotals := make([]float64, nc)
	grand := 0.0
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			obs := res.Counts[i][j]
			rowTotals[i] += obs
			colTotals[j] += obs
			grand += obs
		}
	}
	if grand == 0 {
		return nil, errors.Newf(errors.ErrCategoryTabulation, errors.CodeBadValue,
			"chi-square over an empty table")
	}

	stat := 0.0
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			expected := rowTotals[i] * colTotals[j] / grand
			if expected == 0 {
				continue
			}
			diff := res.Counts[i][j] - expected
			stat += diff * diff / expected
		}
	}

	dof := (nr - 1) * (nc - 1)
	return &ChiSquareResult{
		Statistic: stat,
		Dof:       dof,
		PValue:    chiSquarePValue(stat, dof),
	}, nil
}
