package expr

import "fmt"

var allowedUnary = map[string]bool{
	"+": true,
	"-": true,
}

var allowedBinary = map[string]bool{
	"+":  true,
	"-":  true,
	"*":  true,
	"/":  true,
	"%":  true,
	"**": true,
}

// Validate rejects any tree that contains something other than numeric
// literals and the allowed unary and binary operators.
func Validate(root Node) error {
	var rejected error
	Walk(root, func(node Node) bool {
		switch n := node.(type) {
		case NumberLit:
			return true
		case UnaryOp:
			if allowedUnary[n.Op] {
				return true
			}
			rejected = fmt.Errorf("%w: unary operator %q", ErrDisallowed, n.Op)
		case BinaryOp:
			if allowedBinary[n.Op] {
				return true
			}
			rejected = fmt.Errorf("%w: binary operator %q", ErrDisallowed, n.Op)
		default:
			rejected = fmt.Errorf("%w: %s node", ErrDisallowed, node.Kind())
		}
		return false
	})
	return rejected
}
