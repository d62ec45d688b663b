package formula

import (
	"strconv"
	"strings"

	"github.com/staats/staats/internal/errors"
)

// BinPredicate is a parsed class bin formula: a conjunction of comparisons
// of the placeholder X against numeric constants, such as "X>=18 and X<30".
type BinPredicate struct {
	terms []binTerm
}

type binTerm struct {
	op    Operator
	value float64
}

// ParseBinPredicate parses a bin formula. The grammar is closed: the
// placeholder X (case insensitive), the scalar comparison operators, numeric
// constants and the word "and". Anything else is a parse error.
func ParseBinPredicate(s string) (*BinPredicate, error) {
	p := &binScanner{src: s}
	var terms []binTerm
	for {
		term, err := p.term()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
		p.skipSpace()
		if p.done() {
			break
		}
		if err := p.keyword("and"); err != nil {
			return nil, err
		}
	}
	return &BinPredicate{terms: terms}, nil
}

// Matches reports whether x satisfies every comparison in the predicate.
func (p *BinPredicate) Matches(x float64) bool {
	for _, t := range p.terms {
		var ok bool
		switch t.op {
		case OpEq:
			ok = x == t.value
		case OpNe:
			ok = x != t.value
		case OpGt:
			ok = x > t.value
		case OpLt:
			ok = x < t.value
		case OpGe:
			ok = x >= t.value
		case OpLe:
			ok = x <= t.value
		}
		if !ok {
			return false
		}
	}
	return true
}

type binScanner struct {
	src string
	pos int
}

func (p *binScanner) done() bool {
	return p.pos >= len(p.src)
}

func (p *binScanner) skipSpace() {
	for !p.done() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *binScanner) fail(format string, args ...interface{}) error {
	args = append(args, p.src)
	return errors.NewParseError(format+" in bin formula %q", args...)
}

// term scans one X-comparison.
func (p *binScanner) term() (binTerm, error) {
	p.skipSpace()
	if p.done() || (p.src[p.pos] != 'X' && p.src[p.pos] != 'x') {
		return binTerm{}, p.fail("expected X at position %d", p.pos)
	}
	p.pos++

	p.skipSpace()
	op, next, ok := scanOperator(p.src, p.pos)
	if !ok || op.IsSetOperator() {
		return binTerm{}, p.fail("expected comparison operator at position %d", p.pos)
	}
	p.pos = next

	p.skipSpace()
	start := p.pos
	for !p.done() && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.' || p.src[p.pos] == '-' && p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return binTerm{}, p.fail("expected number at position %d", p.pos)
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return binTerm{}, p.fail("bad number %q", p.src[start:p.pos])
	}
	return binTerm{op: op, value: f}, nil
}

// keyword consumes the given lowercase word, case insensitively.
func (p *binScanner) keyword(word string) error {
	start := p.pos
	for !p.done() && isLetter(p.src[p.pos]) {
		p.pos++
	}
	if !strings.EqualFold(p.src[start:p.pos], word) {
		return p.fail("expected %q at position %d", word, start)
	}
	return nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
