package engine

import (
	"fmt"
	"math"
	"strconv"
)

// Resolve evaluates a coordinate expression against the given container
// dimensions. Expressions combine numeric literals, percentage literals
// ("50%" evaluates to 0.5), the symbols width and height, the four
// arithmetic operators, and parentheses.
//
// Resolve never fails: a malformed expression, an unknown symbol, or a
// non-finite result (division by zero) yields 0. A single bad coordinate
// must not abort rendering of the whole path.
func Resolve(expr string, width, height float64) float64 {
	p := exprParser{input: expr, width: width, height: height}
	v, err := p.parse()
	if err != nil {
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// exprParser is a recursive-descent parser over the expression grammar:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary }
//	unary   = "-" unary | primary
//	primary = number ["%"] | "width" | "height" | "(" sum ")"
//
// Symbols are matched as whole identifiers, so "height" inside an unrelated
// identifier does not resolve. There is no access to anything beyond the two
// dimension values; the evaluation is side-effect free.
type exprParser struct {
	input         string
	pos           int
	width, height float64
}

func (p *exprParser) parse() (float64, error) {
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected %q at offset %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

func (p *exprParser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.accept('+'):
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v += rhs
		case p.accept('-'):
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.accept('*'):
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case p.accept('/'):
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.accept('-') {
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	c := p.input[p.pos]
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if !p.accept(')') {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return v, nil

	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()

	case isIdentChar(c):
		return p.parseSymbol()
	}

	return 0, fmt.Errorf("unexpected %q at offset %d", c, p.pos)
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '.' {
			if seenDot {
				return 0, fmt.Errorf("malformed number at offset %d", start)
			}
			seenDot = true
		} else if c < '0' || c > '9' {
			break
		}
		p.pos++
	}

	text := p.input[start:p.pos]
	if text == "" || text == "." {
		return 0, fmt.Errorf("malformed number at offset %d", start)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q", text)
	}

	// Percentage literals are fractional terms: "50%" is 0.5.
	if p.accept('%') {
		v /= 100
	}
	return v, nil
}

func (p *exprParser) parseSymbol() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
		p.pos++
	}

	switch p.input[start:p.pos] {
	case "width":
		return p.width, nil
	case "height":
		return p.height, nil
	}
	return 0, fmt.Errorf("unknown symbol %q", p.input[start:p.pos])
}

func (p *exprParser) accept(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
