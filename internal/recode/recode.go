// Package recode derives new variables from existing dataset columns.
// Seven recode variants share the Recode interface: single choice, multi
// choice, numeric, number of answers, combination, weight and subtotal.
// The engine applies registered recodes in definition order, so later
// recodes may reference the columns produced by earlier ones.
package recode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/formula"
	"github.com/staats/staats/pkg/types"
)

// Recode kind tags used in definitions and the project catalog.
const (
	KindSingleChoice    = "single"
	KindMultiChoice     = "multi"
	KindNumeric         = "numeric"
	KindNumberOfAnswers = "answers"
	KindCombination     = "combination"
	KindWeight          = "weight"
	KindSubtotal        = "subtotal"
)

// Recode computes one derived column.
type Recode interface {
	// Name is the derived variable's name.
	Name() string

	// Title is the derived variable's display title.
	Title() string

	// Kind is the question kind of the derived variable.
	Kind() types.QuestionKind

	// Variables returns the source variables the recode reads. Used for
	// validation before any data is touched.
	Variables() []string

	// Calculate computes the derived column, one value per dataset row.
	Calculate(data *types.Dataset, schema types.SchemaLookup) ([]types.Value, error)

	// Codes returns the code labels of the derived variable. For
	// data-dependent recodes (combination, subtotal) the labels are only
	// complete after Calculate has run.
	Codes() map[int]string
}

// WeightRule assigns a weight to the rows matching a condition formula.
type WeightRule struct {
	Formula string
	Weight  float64
}

// Def is the serialized form of a recode, as stored in the project
// catalog. Formula carries the kind-specific payload: code lines for
// single/multi, an arithmetic expression for numeric, and a single
// bracketed reference for answers, combination and subtotal.
type Def struct {
	Name    string
	Title   string
	Kind    string
	Formula string

	// Codes labels the derived codes (single, multi, subtotal).
	Codes map[int]string

	// Weights holds the ordered rules of a weight recode.
	Weights []WeightRule

	// Subtotals maps each subtotal code to its member codes.
	Subtotals map[int][]int
}

// FromDef builds the concrete recode for a definition.
func FromDef(def Def) (Recode, error) {
	if def.Name == "" {
		return nil, errors.Newf(errors.ErrCategoryRecode, errors.CodeBadValue, "recode with empty name")
	}
	switch def.Kind {
	case KindSingleChoice:
		return newSingleChoice(def)
	case KindMultiChoice:
		return newMultiChoice(def)
	case KindNumeric:
		return newNumeric(def)
	case KindNumberOfAnswers:
		return newNumberOfAnswers(def)
	case KindCombination:
		return newCombination(def)
	case KindWeight:
		return newWeight(def)
	case KindSubtotal:
		return newSubtotal(def)
	}
	return nil, errors.Newf(errors.ErrCategoryRecode, errors.CodeBadValue,
		"recode %q has unknown kind %q", def.Name, def.Kind)
}

// codeLine is one "code: formula" line of a single or multi choice recode.
type codeLine struct {
	code    int
	formula string
}

// parseCodeLines splits a recode body into code lines. Blank lines and
// lines without a colon are skipped; a line whose code is not an integer
// is an error.
func parseCodeLines(name, body string) ([]codeLine, error) {
	var lines []codeLine
	for _, raw := range strings.Split(body, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		idx := strings.Index(raw, ":")
		if idx < 0 {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(raw[:idx]))
		if err != nil {
			return nil, errors.Newf(errors.ErrCategoryRecode, errors.CodeBadValue,
				"recode %q: bad code in line %q", name, raw)
		}
		lines = append(lines, codeLine{code: code, formula: strings.TrimSpace(raw[idx+1:])})
	}
	if len(lines) == 0 {
		return nil, errors.Newf(errors.ErrCategoryRecode, errors.CodeBadValue,
			"recode %q has no code lines", name)
	}
	return lines, nil
}

// labelFor resolves the display label for a derived code.
func labelFor(codes map[int]string, code int) string {
	if label, ok := codes[code]; ok {
		return label
	}
	return fmt.Sprintf("Code %d", code)
}

// singleRef extracts the single bracketed variable reference a recode
// formula must consist of (answers, combination, subtotal).
func singleRef(name, body string) (string, error) {
	refs := formula.ExtractVariables(body)
	if len(refs) != 1 {
		return "", errors.Newf(errors.ErrCategoryRecode, errors.CodeBadValue,
			"recode %q must reference exactly one variable, got %d", name, len(refs))
	}
	return refs[0], nil
}
