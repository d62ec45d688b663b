package formula

import (
	"strconv"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// Expr is a parsed arithmetic expression over numeric constants and
// bracketed column references, e.g. `(["Height"] / 100) * 2`.
type Expr struct {
	root exprNode
	vars []string
}

// ParseArithmetic parses an arithmetic expression. The grammar supports
// +, -, *, /, parentheses, unary minus, numeric literals and ["Var"]
// references.
func ParseArithmetic(s string) (*Expr, error) {
	lx := &arithLexer{src: s}
	if err := lx.advance(); err != nil {
		return nil, err
	}
	e := &Expr{}
	root, err := e.parseExpr(lx)
	if err != nil {
		return nil, err
	}
	if lx.tok.kind != tokEOF {
		return nil, errors.NewParseError("unexpected %q in expression %q", lx.tok.text, s)
	}
	e.root = root
	return e, nil
}

// Variables returns the referenced column names in order of first
// appearance, deduplicated.
func (e *Expr) Variables() []string {
	return e.vars
}

// Evaluate computes the expression for every row. A row where any
// referenced cell is null, non-numeric, or divides by zero yields a null
// result; all other rows yield numbers.
func (e *Expr) Evaluate(data *types.Dataset) ([]types.Value, error) {
	cols := make(map[string][]types.Value, len(e.vars))
	for _, name := range e.vars {
		col, ok := data.Column(name)
		if !ok {
			return nil, errors.NewUnknownVariable(name, "arithmetic expression")
		}
		cols[name] = col
	}

	out := make([]types.Value, data.Len())
	for r := range out {
		if v, ok := e.root.eval(cols, r); ok {
			out[r] = types.NumberValue(v)
		} else {
			out[r] = types.Null()
		}
	}
	return out, nil
}

type exprNode interface {
	eval(cols map[string][]types.Value, row int) (float64, bool)
}

type numberNode float64

func (n numberNode) eval(map[string][]types.Value, int) (float64, bool) {
	return float64(n), true
}

type columnNode string

func (n columnNode) eval(cols map[string][]types.Value, row int) (float64, bool) {
	return cols[string(n)][row].Number()
}

type negateNode struct {
	inner exprNode
}

func (n negateNode) eval(cols map[string][]types.Value, row int) (float64, bool) {
	v, ok := n.inner.eval(cols, row)
	return -v, ok
}

type binaryNode struct {
	op    byte
	left  exprNode
	right exprNode
}

func (n binaryNode) eval(cols map[string][]types.Value, row int) (float64, bool) {
	l, ok := n.left.eval(cols, row)
	if !ok {
		return 0, false
	}
	r, ok := n.right.eval(cols, row)
	if !ok {
		return 0, false
	}
	switch n.op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	case '/':
		if r == 0 {
			return 0, false
		}
		return l / r, true
	}
	return 0, false
}

// parseExpr handles + and - at the lowest precedence.
func (e *Expr) parseExpr(lx *arithLexer) (exprNode, error) {
	left, err := e.parseTerm(lx)
	if err != nil {
		return nil, err
	}
	for lx.tok.kind == tokOp && (lx.tok.text == "+" || lx.tok.text == "-") {
		op := lx.tok.text[0]
		if err := lx.advance(); err != nil {
			return nil, err
		}
		right, err := e.parseTerm(lx)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseTerm handles * and /.
func (e *Expr) parseTerm(lx *arithLexer) (exprNode, error) {
	left, err := e.parseFactor(lx)
	if err != nil {
		return nil, err
	}
	for lx.tok.kind == tokOp && (lx.tok.text == "*" || lx.tok.text == "/") {
		op := lx.tok.text[0]
		if err := lx.advance(); err != nil {
			return nil, err
		}
		right, err := e.parseFactor(lx)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseFactor handles literals, references, parentheses and unary minus.
func (e *Expr) parseFactor(lx *arithLexer) (exprNode, error) {
	switch lx.tok.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(lx.tok.text, 64)
		if err != nil {
			return nil, errors.NewParseError("bad number %q in expression %q", lx.tok.text, lx.src)
		}
		if err := lx.advance(); err != nil {
			return nil, err
		}
		return numberNode(f), nil

	case tokRef:
		name := lx.tok.text
		if !contains(e.vars, name) {
			e.vars = append(e.vars, name)
		}
		if err := lx.advance(); err != nil {
			return nil, err
		}
		return columnNode(name), nil

	case tokOp:
		switch lx.tok.text {
		case "-":
			if err := lx.advance(); err != nil {
				return nil, err
			}
			inner, err := e.parseFactor(lx)
			if err != nil {
				return nil, err
			}
			return negateNode{inner: inner}, nil
		case "(":
			if err := lx.advance(); err != nil {
				return nil, err
			}
			inner, err := e.parseExpr(lx)
			if err != nil {
				return nil, err
			}
			if lx.tok.kind != tokOp || lx.tok.text != ")" {
				return nil, errors.NewParseError("missing closing parenthesis in expression %q", lx.src)
			}
			if err := lx.advance(); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, errors.NewParseError("unexpected %q in expression %q", lx.tok.text, lx.src)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

type arithTokenKind int

const (
	tokEOF arithTokenKind = iota
	tokNumber
	tokRef
	tokOp
)

type arithToken struct {
	kind arithTokenKind
	text string
}

type arithLexer struct {
	src string
	pos int
	tok arithToken
}

// advance scans the next token into lx.tok.
func (lx *arithLexer) advance() error {
	for lx.pos < len(lx.src) && (lx.src[lx.pos] == ' ' || lx.src[lx.pos] == '\t') {
		lx.pos++
	}
	if lx.pos >= len(lx.src) {
		lx.tok = arithToken{kind: tokEOF, text: "end of expression"}
		return nil
	}

	c := lx.src[lx.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		start := lx.pos
		for lx.pos < len(lx.src) && (lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' || lx.src[lx.pos] == '.') {
			lx.pos++
		}
		lx.tok = arithToken{kind: tokNumber, text: lx.src[start:lx.pos]}
		return nil

	case c == '[':
		if lx.pos+1 >= len(lx.src) || lx.src[lx.pos+1] != '"' {
			return errors.NewParseError("malformed reference in expression %q", lx.src)
		}
		j := lx.pos + 2
		for j < len(lx.src) && lx.src[j] != '"' {
			j++
		}
		if j >= len(lx.src) || j == lx.pos+2 || j+1 >= len(lx.src) || lx.src[j+1] != ']' {
			return errors.NewParseError("malformed reference in expression %q", lx.src)
		}
		lx.tok = arithToken{kind: tokRef, text: lx.src[lx.pos+2 : j]}
		lx.pos = j + 2
		return nil

	case c == '+' || c == '-' || c == '*' || c == '/' || c == '(' || c == ')':
		lx.tok = arithToken{kind: tokOp, text: string(c)}
		lx.pos++
		return nil
	}
	return errors.NewParseError("unexpected character %q in expression %q", string(c), lx.src)
}
