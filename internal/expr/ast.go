package expr

// Node is a parsed expression. The parser accepts more than the evaluator
// allows; Validate decides what may run.
type Node interface {
	Kind() NodeKind
	Children() []Node
}

type NodeKind string

const (
	KindNumber    NodeKind = "number"
	KindString    NodeKind = "string"
	KindName      NodeKind = "name"
	KindUnary     NodeKind = "unary"
	KindBinary    NodeKind = "binary"
	KindCompare   NodeKind = "compare"
	KindCall      NodeKind = "call"
	KindAttribute NodeKind = "attribute"
	KindSubscript NodeKind = "subscript"
	KindTuple     NodeKind = "tuple"
)

type NumberLit struct {
	Value Number
}

type StringLit struct {
	Value string
}

type Name struct {
	ID string
}

type UnaryOp struct {
	Op      string
	Operand Node
}

type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

type Compare struct {
	Op    string
	Left  Node
	Right Node
}

type Call struct {
	Func Node
	Args []Node
}

type Attribute struct {
	Value Node
	Attr  string
}

type Subscript struct {
	Value Node
	Index Node
}

type Tuple struct {
	Elts []Node
}

func (NumberLit) Kind() NodeKind { return KindNumber }
func (StringLit) Kind() NodeKind { return KindString }
func (Name) Kind() NodeKind      { return KindName }
func (UnaryOp) Kind() NodeKind   { return KindUnary }
func (BinaryOp) Kind() NodeKind  { return KindBinary }
func (Compare) Kind() NodeKind   { return KindCompare }
func (Call) Kind() NodeKind      { return KindCall }
func (Attribute) Kind() NodeKind { return KindAttribute }
func (Subscript) Kind() NodeKind { return KindSubscript }
func (Tuple) Kind() NodeKind     { return KindTuple }

func (NumberLit) Children() []Node   { return nil }
func (StringLit) Children() []Node   { return nil }
func (Name) Children() []Node        { return nil }
func (n UnaryOp) Children() []Node   { return []Node{n.Operand} }
func (n BinaryOp) Children() []Node  { return []Node{n.Left, n.Right} }
func (n Compare) Children() []Node   { return []Node{n.Left, n.Right} }
func (n Attribute) Children() []Node { return []Node{n.Value} }
func (n Subscript) Children() []Node { return []Node{n.Value, n.Index} }
func (n Tuple) Children() []Node     { return n.Elts }

func (n Call) Children() []Node {
	children := make([]Node, 0, len(n.Args)+1)
	children = append(children, n.Func)
	return append(children, n.Args...)
}

// Walk visits node and every descendant depth first. Returning false from
// visit stops the walk.
func Walk(node Node, visit func(Node) bool) bool {
	if node == nil {
		return true
	}
	if !visit(node) {
		return false
	}
	for _, child := range node.Children() {
		if !Walk(child, visit) {
			return false
		}
	}
	return true
}
