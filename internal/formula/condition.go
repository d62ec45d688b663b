// Package formula implements the STAATS condition language: atomic variable
// conditions of the form ["Var"<op><values>] joined by and/or, the numeric
// binning predicate grammar ("X>=1 and X<3"), and the arithmetic expression
// grammar used by numeric recodes. All three grammars are closed and
// hand-parsed; nothing is delegated to a general-purpose evaluator.
package formula

import (
	"strconv"
	"strings"

	"github.com/staats/staats/internal/errors"
)

// Operator is a condition operator. Scalar operators compare a single
// value; the set operators (C, NC, CO, NCO) test a MultiChoice cell's code
// list against a code set.
type Operator string

const (
	OpEq Operator = "="
	OpNe Operator = "!="
	OpGt Operator = ">"
	OpLt Operator = "<"
	OpGe Operator = ">="
	OpLe Operator = "<="

	// OpContains matches when the cell's code list overlaps the value set.
	OpContains Operator = "C"

	// OpNotContains is the negation of OpContains for non-null cells.
	OpNotContains Operator = "NC"

	// OpContainsOnly matches when the cell's code set equals the value
	// set exactly.
	OpContainsOnly Operator = "CO"

	// OpNotContainsOnly is the negation of OpContainsOnly for non-null
	// cells.
	OpNotContainsOnly Operator = "NCO"
)

// IsSetOperator reports whether the operator takes a code set.
func (op Operator) IsSetOperator() bool {
	switch op {
	case OpContains, OpNotContains, OpContainsOnly, OpNotContainsOnly:
		return true
	}
	return false
}

// Condition is one parsed atomic condition.
type Condition struct {
	// Variable is the referenced variable name.
	Variable string

	// Op is the comparison operator.
	Op Operator

	// Value is the scalar comparison value (scalar operators only).
	Value float64

	// Set is the code set (set operators only).
	Set []int
}

// JoinOp joins two consecutive atomic conditions.
type JoinOp int

const (
	// JoinAnd combines with logical AND (the default when no join token
	// appears between two conditions).
	JoinAnd JoinOp = iota

	// JoinOr combines with logical OR.
	JoinOr
)

// Parse extracts the ordered atomic conditions from a formula, together
// with the join token between each consecutive pair. Joins are resolved
// per gap: the text between two conditions containing the word "or"
// yields JoinOr, anything else yields JoinAnd. A formula with zero
// atomic conditions is a parse error.
func Parse(formula string) ([]Condition, []JoinOp, error) {
	var (
		conds   []Condition
		joins   []JoinOp
		lastEnd int
	)

	i := 0
	for i < len(formula) {
		if formula[i] != '[' {
			i++
			continue
		}
		cond, end, ok := scanCondition(formula, i)
		if !ok {
			i++
			continue
		}
		if len(conds) > 0 {
			joins = append(joins, joinBetween(formula[lastEnd:i]))
		}
		conds = append(conds, cond)
		i = end
		lastEnd = end
	}

	if len(conds) == 0 {
		return nil, nil, errors.NewParseError("no valid conditions found in formula %q", formula)
	}
	return conds, joins, nil
}

// joinBetween resolves the join token in the text between two conditions.
func joinBetween(gap string) JoinOp {
	for _, word := range strings.Fields(strings.ToLower(gap)) {
		if word == "or" {
			return JoinOr
		}
	}
	return JoinAnd
}

// scanCondition scans one ["Var"<op><values>] atom starting at the opening
// bracket. It returns the parsed condition and the index just past the
// closing bracket. Malformed atoms are rejected (ok=false) and skipped by
// the caller, mirroring the tolerant extraction of the legacy parser.
func scanCondition(s string, start int) (Condition, int, bool) {
	i := start + 1
	if i >= len(s) || s[i] != '"' {
		return Condition{}, 0, false
	}
	i++

	nameStart := i
	for i < len(s) && s[i] != '"' {
		i++
	}
	if i >= len(s) || i == nameStart {
		return Condition{}, 0, false
	}
	variable := s[nameStart:i]
	i++

	op, i, ok := scanOperator(s, i)
	if !ok {
		return Condition{}, 0, false
	}

	valueStart := i
	for i < len(s) && isValueChar(s[i]) {
		i++
	}
	if i >= len(s) || s[i] != ']' || i == valueStart {
		return Condition{}, 0, false
	}
	valueText := s[valueStart:i]
	i++

	cond := Condition{Variable: variable, Op: op}
	if op.IsSetOperator() {
		for _, part := range strings.Split(valueText, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			code, err := strconv.Atoi(part)
			if err != nil {
				return Condition{}, 0, false
			}
			cond.Set = append(cond.Set, code)
		}
		if len(cond.Set) == 0 {
			return Condition{}, 0, false
		}
	} else {
		f, err := strconv.ParseFloat(strings.TrimSpace(valueText), 64)
		if err != nil {
			return Condition{}, 0, false
		}
		cond.Value = f
	}
	return cond, i, true
}

// scanOperator scans the operator after the quoted variable name.
func scanOperator(s string, i int) (Operator, int, bool) {
	if i >= len(s) {
		return "", 0, false
	}

	// Set operators are letter runs: C, NC, CO, NCO.
	if s[i] == 'C' || s[i] == 'N' {
		start := i
		for i < len(s) && (s[i] == 'C' || s[i] == 'N' || s[i] == 'O') {
			i++
		}
		switch op := Operator(s[start:i]); op {
		case OpContains, OpNotContains, OpContainsOnly, OpNotContainsOnly:
			return op, i, true
		}
		return "", 0, false
	}

	switch s[i] {
	case '=':
		return OpEq, i + 1, true
	case '!':
		if i+1 < len(s) && s[i+1] == '=' {
			return OpNe, i + 2, true
		}
	case '>':
		if i+1 < len(s) && s[i+1] == '=' {
			return OpGe, i + 2, true
		}
		return OpGt, i + 1, true
	case '<':
		if i+1 < len(s) && s[i+1] == '=' {
			return OpLe, i + 2, true
		}
		return OpLt, i + 1, true
	}
	return "", 0, false
}

// isValueChar reports whether c may appear in a condition value list.
func isValueChar(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == ',' || c == ' ' || c == '\t'
}

// ExtractVariables returns every bracketed variable reference (["Var"...])
// in the formula, in order of first appearance, deduplicated. Used for
// validation and usage tracking; it does not require the references to
// form complete conditions.
func ExtractVariables(formula string) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for i := 0; i+1 < len(formula); i++ {
		if formula[i] != '[' || formula[i+1] != '"' {
			continue
		}
		j := i + 2
		for j < len(formula) && formula[j] != '"' {
			j++
		}
		if j >= len(formula) || j == i+2 {
			continue
		}
		name := formula[i+2 : j]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i = j
	}
	return names
}
