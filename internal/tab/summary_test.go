package tab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staats/staats/pkg/types"
)

func TestSummarize(t *testing.T) {
	e, _, _, _ := testEngine()

	data := buildDataset(t, map[string][]types.Value{
		"Age": {
			types.NumberValue(20), types.NumberValue(30),
			types.NumberValue(40), types.Null(),
		},
		"Gender": numbers(1, 1, 2, 2),
	})

	s, err := e.Summarize(data, "Age", types.TabDefinition{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, s.N)
	assert.InDelta(t, 30.0, s.Mean, 1e-9)
	assert.InDelta(t, 30.0, s.Median, 1e-9)
	assert.Equal(t, 20.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	assert.InDelta(t, 8.1649658, s.StdDev, 1e-6)
}

func TestSummarizeWeightedMeanUnweightedMedian(t *testing.T) {
	e, _, _, _ := testEngine()

	data := buildDataset(t, map[string][]types.Value{
		"Age": numbers(10, 20, 30),
		"W":   numbers(1, 1, 8),
	})

	s, err := e.Summarize(data, "Age", types.TabDefinition{WeightVariable: "W"}, nil)
	require.NoError(t, err)

	// Weighted mean pulls toward 30; the median ignores the weights.
	assert.InDelta(t, 27.0, s.Mean, 1e-9)
	assert.InDelta(t, 20.0, s.Median, 1e-9)
}

func TestSummarizeFiltered(t *testing.T) {
	e, _, filters, _ := testEngine()
	filters.Add(types.Filter{Name: "Males", Formula: `["Gender"=1]`})

	data := buildDataset(t, map[string][]types.Value{
		"Age":    numbers(20, 30, 40, 50),
		"Gender": numbers(1, 1, 2, 2),
	})

	s, err := e.Summarize(data, "Age", types.TabDefinition{FilterName: "Males"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.N)
	assert.InDelta(t, 25.0, s.Mean, 1e-9)
}

func TestSummarizeRejectsQualitative(t *testing.T) {
	e, _, _, _ := testEngine()
	data := buildDataset(t, map[string][]types.Value{
		"Gender": numbers(1, 2),
	})

	_, err := e.Summarize(data, "Gender", types.TabDefinition{}, nil)
	assert.Error(t, err)
}

func TestSummarizeEmpty(t *testing.T) {
	e, _, _, _ := testEngine()
	data := buildDataset(t, map[string][]types.Value{
		"Age": {types.Null(), types.Null()},
	})

	s, err := e.Summarize(data, "Age", types.TabDefinition{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.N)
}
