// Package types provides core data types for the STAATS survey pipeline.
package types

import (
	"sort"
	"strings"
)

// QuestionKind classifies a survey variable and determines how its column
// is interpreted by the condition language and the tabulation engine.
type QuestionKind int

const (
	// SingleChoice is a single-select question; cells hold one integer code.
	SingleChoice QuestionKind = iota

	// MultiChoice is a multi-select question; cells hold a sorted
	// comma-separated list of integer codes as text (e.g. "1,2,4").
	MultiChoice

	// Numeric is a continuous numeric variable.
	Numeric

	// OpenText is free text.
	OpenText
)

// Tag returns the short stable tag used for interchange serialization.
func (k QuestionKind) Tag() string {
	switch k {
	case SingleChoice:
		return "QU"
	case MultiChoice:
		return "QM"
	case Numeric:
		return "N"
	default:
		return "O"
	}
}

// String returns a human-readable kind name.
func (k QuestionKind) String() string {
	switch k {
	case SingleChoice:
		return "SingleChoice"
	case MultiChoice:
		return "MultiChoice"
	case Numeric:
		return "Numeric"
	default:
		return "OpenText"
	}
}

// ParseKind parses a kind from its tag or long-form notation.
// Unrecognized input maps to OpenText, mirroring the permissive behavior
// of legacy configuration sheets.
func ParseKind(s string) QuestionKind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QU", "QUALI UNIQUE", "SINGLECHOICE", "SINGLE":
		return SingleChoice
	case "QM", "QUALI MULTIPLE", "MULTICHOICE", "MULTI":
		return MultiChoice
	case "N", "NUMERIC":
		return Numeric
	default:
		return OpenText
	}
}

// Question is a survey variable definition: the schema entry that tells the
// engines how a column must be interpreted.
type Question struct {
	// Name is the variable name, unique within a DataMap (e.g. "Q1").
	Name string `json:"-"`

	// Kind is the variable kind.
	Kind QuestionKind `json:"kind"`

	// Title is the question label.
	Title string `json:"title"`

	// Codes maps integer codes to labels. Meaningful only for
	// SingleChoice and MultiChoice questions.
	Codes map[int]string `json:"codes,omitempty"`
}

// ValidValue reports whether a cell value is acceptable for this question.
// Null is always acceptable.
func (q *Question) ValidValue(v Value) bool {
	if v.IsNull() {
		return true
	}

	switch q.Kind {
	case Numeric:
		_, ok := v.Number()
		return ok
	case SingleChoice:
		n, ok := v.Number()
		if !ok {
			return false
		}
		_, known := q.Codes[int(n)]
		return known
	case MultiChoice:
		codes, err := v.Codes()
		if err != nil {
			return false
		}
		for _, c := range codes {
			if _, known := q.Codes[c]; !known {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// SortedCodes returns the question's codes in ascending order.
func (q *Question) SortedCodes() []int {
	codes := make([]int, 0, len(q.Codes))
	for c := range q.Codes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}
