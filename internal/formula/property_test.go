package formula

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/staats/staats/pkg/types"
)

// multiChoiceData builds a one-column multi-choice dataset from raw cells,
// where an empty code list means a null cell.
func multiChoiceData(cells [][]int) (*types.Dataset, *types.DataMap) {
	values := make([]types.Value, len(cells))
	for i, codes := range cells {
		if len(codes) == 0 {
			values[i] = types.Null()
			continue
		}
		parts := make([]string, len(codes))
		for j, c := range codes {
			parts[j] = fmt.Sprintf("%d", c)
		}
		values[i] = types.TextValue(strings.Join(parts, ","))
	}
	d := types.NewDataset(len(cells))
	_ = d.AddColumn("Q1", values)

	m := types.NewDataMap()
	m.Add(&types.Question{Name: "Q1", Kind: types.MultiChoice})
	return d, m
}

func genCells() gopter.Gen {
	return gen.SliceOf(gen.SliceOfN(3, gen.IntRange(0, 9)).Map(func(codes []int) []int {
		// Allow empty cells by dropping half the generated lists.
		if codes[0]%2 == 0 {
			return nil
		}
		return codes
	}))
}

func TestNullCellsNeverMatch(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	for _, formula := range []string{
		`["Q1"C1]`, `["Q1"NC1]`, `["Q1"CO1,2]`, `["Q1"NCO1,2]`,
	} {
		formula := formula
		properties.Property("null rows are false for "+formula, prop.ForAll(
			func(cells [][]int) bool {
				data, schema := multiChoiceData(cells)
				result, err := Evaluate(data, formula, schema)
				if err != nil {
					return false
				}
				for i, codes := range cells {
					if len(codes) == 0 && result[i] {
						return false
					}
				}
				return true
			},
			genCells(),
		))
	}

	properties.TestingRun(t)
}

func TestSetOperatorProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("NC is the complement of C on non-null rows", prop.ForAll(
		func(cells [][]int) bool {
			data, schema := multiChoiceData(cells)
			contains, err := Evaluate(data, `["Q1"C2,5]`, schema)
			if err != nil {
				return false
			}
			notContains, err := Evaluate(data, `["Q1"NC2,5]`, schema)
			if err != nil {
				return false
			}
			for i, codes := range cells {
				if len(codes) == 0 {
					continue
				}
				if contains[i] == notContains[i] {
					return false
				}
			}
			return true
		},
		genCells(),
	))

	properties.Property("CO matches exactly the rows whose code set equals the target", prop.ForAll(
		func(cells [][]int) bool {
			data, schema := multiChoiceData(cells)
			result, err := Evaluate(data, `["Q1"CO1,3]`, schema)
			if err != nil {
				return false
			}
			for i, codes := range cells {
				want := distinctSorted(codes)
				expect := len(want) == 2 && want[0] == 1 && want[1] == 3
				if result[i] != expect {
					return false
				}
			}
			return true
		},
		genCells(),
	))

	properties.TestingRun(t)
}

func distinctSorted(codes []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return out
}
