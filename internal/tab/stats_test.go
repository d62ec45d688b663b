package tab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staats/staats/pkg/types"
)

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, normalCDF(0), 1e-9)
	assert.InDelta(t, 0.97725, normalCDF(2), 1e-4)
	assert.InDelta(t, 0.02275, normalCDF(-2), 1e-4)
	assert.InDelta(t, 0.975, normalCDF(1.959964), 1e-4)
}

func TestChiSquarePValue(t *testing.T) {
	// Reference values from standard chi-square tables.
	assert.InDelta(t, 0.05, chiSquarePValue(3.841, 1), 1e-3)
	assert.InDelta(t, 0.05, chiSquarePValue(5.991, 2), 1e-3)
	assert.InDelta(t, 0.01, chiSquarePValue(6.635, 1), 1e-3)
	assert.InDelta(t, 1.0, chiSquarePValue(0, 1), 1e-9)
	assert.Greater(t, chiSquarePValue(1, 5), 0.9)
}

func TestSignificantlyHigher(t *testing.T) {
	// 80/100 vs 20/100 is clearly significant.
	assert.True(t, significantlyHigher(80, 100, 20, 100, 0.05))

	// The lower proportion is never marked.
	assert.False(t, significantlyHigher(20, 100, 80, 100, 0.05))

	// 52/100 vs 48/100 is not significant.
	assert.False(t, significantlyHigher(52, 100, 48, 100, 0.05))

	// Equal proportions short-circuit before the z computation.
	assert.False(t, significantlyHigher(50, 100, 50, 100, 0.05))
}

func TestChiSquare(t *testing.T) {
	e, _, _, _ := testEngine()

	var pairs [][2]float64
	repeat(&pairs, 30, 1, 1)
	repeat(&pairs, 10, 2, 1)
	repeat(&pairs, 10, 1, 2)
	repeat(&pairs, 30, 2, 2)

	res, err := e.Generate(crossData(t, pairs), types.TabDefinition{
		Title:          "chi",
		RowVariable:    "Pref",
		ColumnVariable: "Gender",
	}, nil)
	require.NoError(t, err)

	cs, err := ChiSquare(res)
	require.NoError(t, err)

	// 2x2 with marginals 40/40: expected 20 per cell, so the statistic is
	// 4 * (10^2 / 20) = 20.
	assert.Equal(t, 1, cs.Dof)
	assert.InDelta(t, 20.0, cs.Statistic, 1e-9)
	assert.Less(t, cs.PValue, 0.001)
}

func TestChiSquareTooSmall(t *testing.T) {
	_, err := ChiSquare(emptyResult("x"))
	assert.Error(t, err)
}
