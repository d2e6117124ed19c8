package rules

import (
	"fmt"
	"strings"
)

// Node represents a single node of a filtering rule tree.
// Nodes are immutable once constructed: rewrites produce new nodes
// and share unchanged subtrees.
type Node interface {
	isNode()
	String() string

	// Traverse walks the subtree rooted at this node bottom-up and
	// invokes the matching visitor callback with the already-computed
	// child results. rec is the ambient record context; it is passed
	// through unchanged to every callback.
	Traverse(v Visitor, rec any) (any, error)
}

// Number marks literal nodes that participate in generic numeric
// arithmetic (integers and floats).
type Number interface {
	Node
	isNumber()
}

// LogicalOp identifies a logical binary operator.
type LogicalOp int

const (
	_ LogicalOp = iota
	OpOr
	OpAnd
	OpXor
)

func (op LogicalOp) String() string {
	switch op {
	case OpOr:
		return "or"
	case OpAnd:
		return "and"
	case OpXor:
		return "xor"
	default:
		return "logical?"
	}
}

// CompareOp identifies a comparison operator.
type CompareOp int

const (
	_ CompareOp = iota
	OpLike
	OpIn
	OpIs
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

func (op CompareOp) String() string {
	switch op {
	case OpLike:
		return "like"
	case OpIn:
		return "in"
	case OpIs:
		return "is"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	default:
		return "compare?"
	}
}

// MathOp identifies an arithmetic operator.
type MathOp int

const (
	_ MathOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (op MathOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "math?"
	}
}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	_ UnaryOp = iota
	OpNot
	OpExists
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "not"
	case OpExists:
		return "exists"
	default:
		return "unary?"
	}
}

// IPv4Node is an IPv4 address or address-range literal. Value holds the
// raw string form until the compiler parses it into an iprange.Range.
type IPv4Node struct {
	Value any
}

func (IPv4Node) isNode() {}
func (n IPv4Node) String() string {
	return fmt.Sprintf("ipv4(%v)", n.Value)
}

// IPv6Node is an IPv6 address or address-range literal.
type IPv6Node struct {
	Value any
}

func (IPv6Node) isNode() {}
func (n IPv6Node) String() string {
	return fmt.Sprintf("ipv6(%v)", n.Value)
}

// DatetimeNode is an absolute point in time. Value holds the raw string
// or numeric form until the compiler normalizes it to a UTC time.Time.
type DatetimeNode struct {
	Value any
}

func (DatetimeNode) isNode() {}
func (n DatetimeNode) String() string {
	return fmt.Sprintf("datetime(%v)", n.Value)
}

// IntegerNode is a signed integer literal.
type IntegerNode struct {
	Value int64
}

func (IntegerNode) isNode()   {}
func (IntegerNode) isNumber() {}
func (n IntegerNode) String() string {
	return fmt.Sprintf("%d", n.Value)
}

// FloatNode is a floating point literal.
type FloatNode struct {
	Value float64
}

func (FloatNode) isNode()   {}
func (FloatNode) isNumber() {}
func (n FloatNode) String() string {
	return fmt.Sprintf("%g", n.Value)
}

// ConstantNode is any other atomic literal, typically a string.
// It passes through compilation unmodified.
type ConstantNode struct {
	Value any
}

func (ConstantNode) isNode() {}
func (n ConstantNode) String() string {
	if s, ok := n.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", n.Value)
}

// VariableNode references zero or more values inside a record by
// semantic path. Path may contain array index segments, e.g.
// "Source.IP4[0]". Path is never empty.
type VariableNode struct {
	Path string
}

func (VariableNode) isNode() {}
func (n VariableNode) String() string {
	return n.Path
}

// ListNode is a fixed literal list. Item homogeneity is a convention,
// not a structural guarantee.
type ListNode struct {
	Items []Node
}

func (ListNode) isNode() {}
func (n ListNode) String() string {
	return "[" + joinNodes(n.Items) + "]"
}

// IPListNode is a list literal whose items are already-resolved IP
// range literals. It is produced only by the compiler.
type IPListNode struct {
	Items []Node
}

func (IPListNode) isNode() {}
func (n IPListNode) String() string {
	return "iplist[" + joinNodes(n.Items) + "]"
}

// LogicalNode is a logical binary operation.
type LogicalNode struct {
	Op    LogicalOp
	Left  Node
	Right Node
}

func (LogicalNode) isNode() {}
func (n LogicalNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// ComparisonNode is a comparison binary operation.
type ComparisonNode struct {
	Op    CompareOp
	Left  Node
	Right Node
}

func (ComparisonNode) isNode() {}
func (n ComparisonNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// MathNode is an arithmetic binary operation.
type MathNode struct {
	Op    MathOp
	Left  Node
	Right Node
}

func (MathNode) isNode() {}
func (n MathNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// UnaryNode is a single-operand operation.
type UnaryNode struct {
	Op      UnaryOp
	Operand Node
}

func (UnaryNode) isNode() {}
func (n UnaryNode) String() string {
	return fmt.Sprintf("(%s %s)", n.Op, n.Operand)
}

func joinNodes(items []Node) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}
