package filter

import (
	"errors"
	"fmt"

	"github.com/sievelabs/sieve/internal/iprange"
	"github.com/sievelabs/sieve/internal/jpath"
	"github.com/sievelabs/sieve/internal/rules"
	"github.com/sievelabs/sieve/internal/timestamp"
)

// ErrParseLiteral is wrapped by every compilation failure caused by a
// malformed literal. A malformed literal in the rule text is a
// configuration error, detected once per rule before any record is
// evaluated.
var ErrParseLiteral = errors.New("cannot parse literal")

// Coercion pairs the two coercion functions for one semantic path: one
// for a scalar value operand and one for wrapping a coerced item list
// into the right list literal.
type Coercion struct {
	Scalar func(n rules.Node) (rules.Node, error)
	List   func(items []rules.Node) rules.Node
}

// Schema maps canonical (index-stripped) field paths to the coercion
// applied to values those fields are compared against. It is plain
// configuration data injected into a Compiler; hosts extend it without
// touching compiler code.
type Schema map[string]Coercion

// DatetimeCoercion builds the coercion for timestamp-valued paths.
func DatetimeCoercion() Coercion {
	return Coercion{
		Scalar: CoerceDatetime,
		List:   func(items []rules.Node) rules.Node { return rules.ListNode{Items: items} },
	}
}

// IPv4Coercion builds the coercion for IPv4-valued paths.
func IPv4Coercion() Coercion {
	return Coercion{
		Scalar: CoerceIPv4,
		List:   func(items []rules.Node) rules.Node { return rules.IPListNode{Items: items} },
	}
}

// IPv6Coercion builds the coercion for IPv6-valued paths.
func IPv6Coercion() Coercion {
	return Coercion{
		Scalar: CoerceIPv6,
		List:   func(items []rules.Node) rules.Node { return rules.IPListNode{Items: items} },
	}
}

// DefaultSchema returns the coercion table for IDEA-style security
// event records.
func DefaultSchema() Schema {
	dt := DatetimeCoercion()
	v4 := IPv4Coercion()
	v6 := IPv6Coercion()
	return Schema{
		"CreateTime":   dt,
		"DetectTime":   dt,
		"EventTime":    dt,
		"CeaseTime":    dt,
		"WinStartTime": dt,
		"WinEndTime":   dt,
		"Source.IP4":   v4,
		"Target.IP4":   v4,
		"Source.IP6":   v6,
		"Target.IP6":   v6,
	}
}

// Compiler rewrites a freshly parsed rule tree once so that repeated
// evaluation runs against correctly typed, pre-parsed literals, and
// folds arithmetic over literal numeric operands. It is a pure
// function from tree to tree: the input tree is never mutated and
// unchanged subtrees are shared by reference.
type Compiler struct {
	schema Schema
	ops    Operators
}

// NewCompiler returns a compiler using the given coercion schema and
// arithmetic capability.
func NewCompiler(schema Schema, operators Operators) *Compiler {
	return &Compiler{schema: schema, ops: operators}
}

// Compile rewrites rule into its type-specialized form. Compiling an
// already compiled tree is a no-op rebuild, so Compile is idempotent.
func (c *Compiler) Compile(rule rules.Node) (rules.Node, error) {
	out, err := rule.Traverse(c, nil)
	if err != nil {
		return nil, err
	}
	return out.(rules.Node), nil
}

func (c *Compiler) IPv4(n rules.IPv4Node, _ any) (any, error) {
	return CoerceIPv4(n)
}

func (c *Compiler) IPv6(n rules.IPv6Node, _ any) (any, error) {
	return CoerceIPv6(n)
}

func (c *Compiler) Datetime(n rules.DatetimeNode, _ any) (any, error) {
	return CoerceDatetime(n)
}

func (c *Compiler) Integer(n rules.IntegerNode, _ any) (any, error) {
	return n, nil
}

func (c *Compiler) Float(n rules.FloatNode, _ any) (any, error) {
	return n, nil
}

func (c *Compiler) Constant(n rules.ConstantNode, _ any) (any, error) {
	return n, nil
}

func (c *Compiler) Variable(n rules.VariableNode, _ any) (any, error) {
	return n, nil
}

func (c *Compiler) List(_ rules.ListNode, items []any, _ any) (any, error) {
	return rules.ListNode{Items: nodeItems(items)}, nil
}

func (c *Compiler) IPList(_ rules.IPListNode, items []any, _ any) (any, error) {
	return rules.IPListNode{Items: nodeItems(items)}, nil
}

func (c *Compiler) Logical(n rules.LogicalNode, left, right any, _ any) (any, error) {
	return rules.LogicalNode{Op: n.Op, Left: left.(rules.Node), Right: right.(rules.Node)}, nil
}

// Comparison re-types the value side of a comparison when exactly one
// side is a variable whose canonical path appears in the schema. With
// both or neither side a variable the node is rebuilt unchanged.
func (c *Compiler) Comparison(n rules.ComparisonNode, left, right any, _ any) (any, error) {
	l := left.(rules.Node)
	r := right.(rules.Node)

	variable, value, valueIsRight := splitComparison(l, r)
	if variable == nil {
		return rules.ComparisonNode{Op: n.Op, Left: l, Right: r}, nil
	}

	coercion, ok := c.schema[jpath.Canonical(variable.Path)]
	if ok {
		coerced, err := applyCoercion(coercion, value)
		if err != nil {
			return nil, err
		}
		if valueIsRight {
			r = coerced
		} else {
			l = coerced
		}
	}
	return rules.ComparisonNode{Op: n.Op, Left: l, Right: r}, nil
}

// Math folds arithmetic over two literal numeric operands into a
// single literal, using the same arithmetic capability the evaluator
// uses at run time. A sequence result becomes a list literal.
func (c *Compiler) Math(n rules.MathNode, left, right any, _ any) (any, error) {
	l := left.(rules.Node)
	r := right.(rules.Node)

	li, lInt := l.(rules.IntegerNode)
	ri, rInt := r.(rules.IntegerNode)
	if lInt && rInt {
		result, err := c.ops.Math(n.Op, li.Value, ri.Value)
		if err != nil {
			return nil, err
		}
		return foldIntegers(result), nil
	}

	ln, lNum := l.(rules.Number)
	rn, rNum := r.(rules.Number)
	if lNum && rNum {
		result, err := c.ops.Math(n.Op, numberValue(ln), numberValue(rn))
		if err != nil {
			return nil, err
		}
		return foldFloats(result), nil
	}

	return rules.MathNode{Op: n.Op, Left: l, Right: r}, nil
}

func (c *Compiler) Unary(n rules.UnaryNode, operand any, _ any) (any, error) {
	return rules.UnaryNode{Op: n.Op, Operand: operand.(rules.Node)}, nil
}

// splitComparison returns the variable side and the value side when
// exactly one side is a variable reference, nil otherwise.
func splitComparison(l, r rules.Node) (*rules.VariableNode, rules.Node, bool) {
	lv, lok := l.(rules.VariableNode)
	rv, rok := r.(rules.VariableNode)
	switch {
	case lok && !rok:
		return &lv, r, true
	case rok && !lok:
		return &rv, l, false
	default:
		return nil, nil, false
	}
}

func applyCoercion(coercion Coercion, value rules.Node) (rules.Node, error) {
	switch v := value.(type) {
	case rules.ListNode:
		items := make([]rules.Node, len(v.Items))
		for i, item := range v.Items {
			coerced, err := coercion.Scalar(item)
			if err != nil {
				return nil, err
			}
			items[i] = coerced
		}
		return coercion.List(items), nil
	default:
		if _, ok := literalValue(value); !ok {
			// non-literal value side is left as compiled
			return value, nil
		}
		return coercion.Scalar(value)
	}
}

// CoerceIPv4 coerces a literal node into a parsed IPv4 range literal.
// An already parsed IPv4 range passes through.
func CoerceIPv4(n rules.Node) (rules.Node, error) {
	return coerceIP(n, iprange.ParseV4, iprange.Range.IsV4, func(r iprange.Range) rules.Node {
		return rules.IPv4Node{Value: r}
	})
}

// CoerceIPv6 coerces a literal node into a parsed IPv6 range literal.
func CoerceIPv6(n rules.Node) (rules.Node, error) {
	return coerceIP(n, iprange.ParseV6, iprange.Range.IsV6, func(r iprange.Range) rules.Node {
		return rules.IPv6Node{Value: r}
	})
}

func coerceIP(n rules.Node, parse func(string) (iprange.Range, error), family func(iprange.Range) bool, wrap func(iprange.Range) rules.Node) (rules.Node, error) {
	raw, ok := literalValue(n)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a literal", ErrParseLiteral, n)
	}
	if r, ok := raw.(iprange.Range); ok {
		if !family(r) {
			return nil, fmt.Errorf("%w: %s has the wrong address family", ErrParseLiteral, r)
		}
		return wrap(r), nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not an IP literal", ErrParseLiteral, raw)
	}
	r, err := parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseLiteral, err)
	}
	return wrap(r), nil
}

// CoerceDatetime coerces a literal node into a UTC instant literal. An
// already parsed instant passes through; otherwise the numeric epoch
// form is tried first and the RFC3339-like form second.
func CoerceDatetime(n rules.Node) (rules.Node, error) {
	raw, ok := literalValue(n)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a literal", ErrParseLiteral, n)
	}
	t, err := timestamp.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrParseLiteral, err, raw)
	}
	return rules.DatetimeNode{Value: t}, nil
}

// literalValue extracts the raw held value of a literal node. The
// second result is false for variables, lists and operator nodes.
func literalValue(n rules.Node) (any, bool) {
	switch t := n.(type) {
	case rules.IPv4Node:
		return t.Value, true
	case rules.IPv6Node:
		return t.Value, true
	case rules.DatetimeNode:
		return t.Value, true
	case rules.IntegerNode:
		return t.Value, true
	case rules.FloatNode:
		return t.Value, true
	case rules.ConstantNode:
		return t.Value, true
	default:
		return nil, false
	}
}

func nodeItems(items []any) []rules.Node {
	nodes := make([]rules.Node, len(items))
	for i, item := range items {
		nodes[i] = item.(rules.Node)
	}
	return nodes
}

func numberValue(n rules.Number) any {
	switch t := n.(type) {
	case rules.IntegerNode:
		return t.Value
	case rules.FloatNode:
		return t.Value
	default:
		return nil
	}
}

func foldIntegers(result any) rules.Node {
	if seq, ok := result.([]any); ok {
		items := make([]rules.Node, len(seq))
		for i, v := range seq {
			items[i] = rules.IntegerNode{Value: asInt64(v)}
		}
		return rules.ListNode{Items: items}
	}
	return rules.IntegerNode{Value: asInt64(result)}
}

func foldFloats(result any) rules.Node {
	if seq, ok := result.([]any); ok {
		items := make([]rules.Node, len(seq))
		for i, v := range seq {
			items[i] = rules.FloatNode{Value: asFloat64(v)}
		}
		return rules.ListNode{Items: items}
	}
	return rules.FloatNode{Value: asFloat64(result)}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return 0
	}
}
