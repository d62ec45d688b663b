package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	valueNull valueKind = iota
	valueNumber
	valueText
)

// Value is a nullable cell value. A cell is either null ("no answer"),
// a number, or text. MultiChoice columns store their code lists as text
// in the sorted comma-separated encoding (e.g. "1,2,4").
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// NumberValue returns a numeric cell value.
func NumberValue(f float64) Value {
	return Value{kind: valueNumber, num: f}
}

// TextValue returns a text cell value.
func TextValue(s string) Value {
	return Value{kind: valueText, text: s}
}

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool {
	return v.kind == valueNull
}

// Number returns the cell as a number. Text cells are parsed; the second
// return value is false for null cells and unparseable text.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.num, true
	case valueText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Text returns the cell as text. Numbers are formatted with minimal digits;
// the second return value is false for null cells.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case valueText:
		return v.text, true
	case valueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Codes parses the cell as a MultiChoice code list. A numeric cell yields a
// single-element list. Null cells yield a nil list and no error.
func (v Value) Codes() ([]int, error) {
	switch v.kind {
	case valueNull:
		return nil, nil
	case valueNumber:
		return []int{int(v.num)}, nil
	default:
		var codes []int
		for _, part := range strings.Split(v.text, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			c, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid code %q in cell %q", part, v.text)
			}
			codes = append(codes, c)
		}
		return codes, nil
	}
}

// EncodeCodes serializes a code list into the MultiChoice cell encoding:
// sorted ascending, deduplicated, comma-separated. An empty list encodes
// as null.
func EncodeCodes(codes []int) Value {
	if len(codes) == 0 {
		return Null()
	}

	sorted := make([]int, len(codes))
	copy(sorted, codes)
	sort.Ints(sorted)

	parts := make([]string, 0, len(sorted))
	for i, c := range sorted {
		if i > 0 && c == sorted[i-1] {
			continue
		}
		parts = append(parts, strconv.Itoa(c))
	}
	return TextValue(strings.Join(parts, ","))
}
