package tab

import (
	"math"
	"sort"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// Summary holds descriptive statistics for a numeric variable. Mean and
// StdDev honor the weight variable; the median is always computed on the
// unweighted values.
type Summary struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes descriptive statistics for a numeric variable over
// the rows passing the tab and plan filters. Null and non-numeric cells
// are skipped.
func (e *Engine) Summarize(data *types.Dataset, variable string, def types.TabDefinition, plan *types.TabPlan) (*Summary, error) {
	q, ok := e.schema.Lookup(variable)
	if !ok {
		return nil, errors.NewUnknownVariable(variable, "summary")
	}
	if q.Kind != types.Numeric {
		return nil, errors.NewTypeMismatch("summary variable %q is %s, want numeric", variable, q.Kind)
	}
	col, ok := data.Column(variable)
	if !ok {
		return nil, errors.NewUnknownVariable(variable, "summary")
	}

	include, err := e.resolveInclude(data, def, plan)
	if err != nil {
		return nil, err
	}
	weights, err := e.resolveWeights(data, def, plan)
	if err != nil {
		return nil, err
	}

	var (
		values  []float64
		sumW    float64
		sumWX   float64
		sumWXSq float64
		min     = math.Inf(1)
		max     = math.Inf(-1)
	)
	for i, cell := range col {
		if !include[i] {
			continue
		}
		x, ok := cell.Number()
		if !ok {
			continue
		}
		w := weights[i]
		values = append(values, x)
		sumW += w
		sumWX += w * x
		sumWXSq += w * x * x
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	if len(values) == 0 || sumW == 0 {
		return &Summary{}, nil
	}

	mean := sumWX / sumW
	variance := sumWXSq/sumW - mean*mean
	if variance < 0 {
		variance = 0
	}

	sort.Float64s(values)
	var median float64
	n := len(values)
	if n%2 == 1 {
		median = values[n/2]
	} else {
		median = (values[n/2-1] + values[n/2]) / 2
	}

	return &Summary{
		N:      n,
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(variance),
		Min:    min,
		Max:    max,
	}, nil
}
