package expr

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

const (
	// MaxNesting bounds how deeply parentheses and unary operators may nest.
	MaxNesting = 200
	// MaxInputRunes bounds the length of an expression.
	MaxInputRunes = 4096
)

type parser struct {
	tokens []token
	pos    int
	depth  int
}

// Parse turns input into an expression tree. It does not check whether the
// tree is safe to evaluate.
func Parse(input string) (Node, error) {
	if utf8.RuneCountInString(input) > MaxInputRunes {
		return nil, fmt.Errorf("%w: expression longer than %d characters", ErrSyntax, MaxInputRunes)
	}
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.current().kind == tokEOF {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
	}
	return node, nil
}

func (p *parser) current() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(ops ...string) bool {
	tok := p.current()
	if tok.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if tok.text == op {
			return true
		}
	}
	return false
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.current().kind != kind {
		tok := p.current()
		return fmt.Errorf("%w: expected %s at %d", ErrSyntax, what, tok.pos)
	}
	p.advance()
	return nil
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	for p.isOp("<", ">", "<=", ">=", "==", "!=") {
		op := p.advance().text
		right, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		left = Compare{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseArith() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.advance().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "//", "%") {
		op := p.advance().text
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxNesting {
		return nil, fmt.Errorf("%w: expression nested too deeply", ErrSyntax)
	}
	if p.isOp("+", "-", "~") {
		op := p.advance().text
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return UnaryOp{Op: op, Operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower binds ** tighter than a unary operator on its left and
// associates to the right: -2**-2 is -(2**(-2)).
func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("**") {
		return base, nil
	}
	p.advance()
	exponent, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return BinaryOp{Op: "**", Left: base, Right: exponent}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	node, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().kind {
		case tokLParen:
			p.advance()
			args, err := p.parseList(tokRParen, ")")
			if err != nil {
				return nil, err
			}
			node = Call{Func: node, Args: args}
		case tokDot:
			p.advance()
			tok := p.current()
			if tok.kind != tokName {
				return nil, fmt.Errorf("%w: expected attribute name at %d", ErrSyntax, tok.pos)
			}
			p.advance()
			node = Attribute{Value: node, Attr: tok.text}
		case tokLBracket:
			p.advance()
			index, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRBracket, "]"); err != nil {
				return nil, err
			}
			node = Subscript{Value: node, Index: index}
		default:
			return node, nil
		}
	}
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.current()
	switch tok.kind {
	case tokInt:
		p.advance()
		value, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, fmt.Errorf("%w: integer literal %s out of range", ErrArithmetic, tok.text)
			}
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return NumberLit{Value: Int(value)}, nil
	case tokFloat:
		p.advance()
		value, err := strconv.ParseFloat(tok.text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return NumberLit{Value: Float(value)}, nil
	case tokString:
		p.advance()
		return StringLit{Value: tok.text}, nil
	case tokName:
		p.advance()
		return Name{ID: tok.text}, nil
	case tokLParen:
		p.advance()
		elts, trailingComma, err := p.parseElements(tokRParen, ")")
		if err != nil {
			return nil, err
		}
		if len(elts) == 1 && !trailingComma {
			return elts[0], nil
		}
		return Tuple{Elts: elts}, nil
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
	}
}

func (p *parser) parseList(closing tokenKind, what string) ([]Node, error) {
	elts, _, err := p.parseElements(closing, what)
	return elts, err
}

func (p *parser) parseElements(closing tokenKind, what string) ([]Node, bool, error) {
	var elts []Node
	trailingComma := false
	for p.current().kind != closing {
		elt, err := p.parseComparison()
		if err != nil {
			return nil, false, err
		}
		elts = append(elts, elt)
		trailingComma = false
		if p.current().kind != tokComma {
			break
		}
		p.advance()
		trailingComma = true
	}
	if err := p.expect(closing, what); err != nil {
		return nil, false, err
	}
	return elts, trailingComma, nil
}
