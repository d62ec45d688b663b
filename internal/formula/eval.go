package formula

import (
	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// Evaluate parses a condition formula and evaluates it against every row
// of the dataset, returning one boolean per row. Conditions are combined
// strictly left to right using the join token between each pair; there is
// no precedence between and/or. A null cell never satisfies any condition,
// including the negated set operators.
func Evaluate(data *types.Dataset, formula string, schema types.SchemaLookup) ([]bool, error) {
	conds, joins, err := Parse(formula)
	if err != nil {
		return nil, err
	}

	result, err := evalCondition(data, conds[0], formula, schema)
	if err != nil {
		return nil, err
	}
	for k := 1; k < len(conds); k++ {
		vec, err := evalCondition(data, conds[k], formula, schema)
		if err != nil {
			return nil, err
		}
		if joins[k-1] == JoinOr {
			for r := range result {
				result[r] = result[r] || vec[r]
			}
		} else {
			for r := range result {
				result[r] = result[r] && vec[r]
			}
		}
	}
	return result, nil
}

// evalCondition evaluates one atomic condition over the full column.
func evalCondition(data *types.Dataset, cond Condition, formula string, schema types.SchemaLookup) ([]bool, error) {
	if _, ok := schema.Lookup(cond.Variable); !ok {
		return nil, errors.NewUnknownVariable(cond.Variable, formula)
	}
	col, ok := data.Column(cond.Variable)
	if !ok {
		return nil, errors.NewUnknownVariable(cond.Variable, formula)
	}

	out := make([]bool, len(col))
	if cond.Op.IsSetOperator() {
		want := make(map[int]bool, len(cond.Set))
		for _, code := range cond.Set {
			want[code] = true
		}
		for r, cell := range col {
			if cell.IsNull() {
				continue
			}
			codes, err := cell.Codes()
			if err != nil {
				continue
			}
			switch cond.Op {
			case OpContains:
				out[r] = overlaps(codes, want)
			case OpNotContains:
				out[r] = !overlaps(codes, want)
			case OpContainsOnly:
				out[r] = setEqual(codes, want)
			case OpNotContainsOnly:
				out[r] = !setEqual(codes, want)
			}
		}
		return out, nil
	}

	for r, cell := range col {
		n, ok := cell.Number()
		if !ok {
			continue
		}
		switch cond.Op {
		case OpEq:
			out[r] = n == cond.Value
		case OpNe:
			out[r] = n != cond.Value
		case OpGt:
			out[r] = n > cond.Value
		case OpLt:
			out[r] = n < cond.Value
		case OpGe:
			out[r] = n >= cond.Value
		case OpLe:
			out[r] = n <= cond.Value
		}
	}
	return out, nil
}

// overlaps reports whether any code in the cell appears in the wanted set.
func overlaps(codes []int, want map[int]bool) bool {
	for _, c := range codes {
		if want[c] {
			return true
		}
	}
	return false
}

// setEqual reports whether the cell's distinct codes equal the wanted set
// exactly.
func setEqual(codes []int, want map[int]bool) bool {
	seen := make(map[int]bool, len(codes))
	for _, c := range codes {
		if !want[c] {
			return false
		}
		seen[c] = true
	}
	return len(seen) == len(want)
}
