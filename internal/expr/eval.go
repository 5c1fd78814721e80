package expr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyntax     = errors.New("invalid expression")
	ErrDisallowed = errors.New("expression not allowed")
	ErrArithmetic = errors.New("arithmetic error")
)

// Evaluate parses input, checks it against the arithmetic allowlist and
// computes it. Float results are rounded to six decimal places.
func Evaluate(input string) (Number, error) {
	root, err := Parse(strings.TrimSpace(input))
	if err != nil {
		return Number{}, err
	}
	if err := Validate(root); err != nil {
		return Number{}, err
	}
	value, err := eval(root)
	if err != nil {
		return Number{}, err
	}
	return round6(value), nil
}

func eval(node Node) (Number, error) {
	switch n := node.(type) {
	case NumberLit:
		return checkFinite(n.Value)
	case UnaryOp:
		operand, err := eval(n.Operand)
		if err != nil {
			return Number{}, err
		}
		switch n.Op {
		case "+":
			return operand, nil
		case "-":
			return negate(operand)
		}
		return Number{}, fmt.Errorf("%w: unary operator %q", ErrDisallowed, n.Op)
	case BinaryOp:
		left, err := eval(n.Left)
		if err != nil {
			return Number{}, err
		}
		right, err := eval(n.Right)
		if err != nil {
			return Number{}, err
		}
		return applyBinary(n.Op, left, right)
	}
	return Number{}, fmt.Errorf("%w: %s node", ErrDisallowed, node.Kind())
}
