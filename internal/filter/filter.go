// Package filter holds the two behaviors defined over filtering rule
// trees: direct evaluation against a concrete record (Evaluator) and
// one-pass type-directed compilation (Compiler). Both are stateless
// traversers plugged into the rules traversal protocol and both
// consume the operator evaluation capability through the Operators
// interface.
package filter

import (
	"github.com/sievelabs/sieve/internal/jpath"
	"github.com/sievelabs/sieve/internal/ops"
	"github.com/sievelabs/sieve/internal/rules"
)

// Operators is the operator evaluation capability consumed by the
// traversers. Arithmetic may broadcast element-wise when an operand is
// a sequence, returning a sequence in that case.
type Operators interface {
	Logical(op rules.LogicalOp, left, right any) (any, error)
	Comparison(op rules.CompareOp, left, right any) (any, error)
	Math(op rules.MathOp, left, right any) (any, error)
	Unary(op rules.UnaryOp, operand any) (any, error)
}

// Evaluator applies a rule tree to a concrete record and produces its
// truth value or scalar result. It is stateless and safe for
// concurrent use.
type Evaluator struct {
	ops Operators
}

// NewEvaluator returns an evaluator backed by the given operator
// capability.
func NewEvaluator(operators Operators) *Evaluator {
	return &Evaluator{ops: operators}
}

// Eval evaluates rule against record and returns the raw result.
func (e *Evaluator) Eval(rule rules.Node, record any) (any, error) {
	return rule.Traverse(e, record)
}

// Match evaluates rule against record and reduces the result to its
// truth value.
func (e *Evaluator) Match(rule rules.Node, record any) (bool, error) {
	v, err := e.Eval(rule, record)
	if err != nil {
		return false, err
	}
	return ops.Truthy(v), nil
}

func (e *Evaluator) IPv4(n rules.IPv4Node, _ any) (any, error) {
	return n.Value, nil
}

func (e *Evaluator) IPv6(n rules.IPv6Node, _ any) (any, error) {
	return n.Value, nil
}

func (e *Evaluator) Datetime(n rules.DatetimeNode, _ any) (any, error) {
	return n.Value, nil
}

func (e *Evaluator) Integer(n rules.IntegerNode, _ any) (any, error) {
	return n.Value, nil
}

func (e *Evaluator) Float(n rules.FloatNode, _ any) (any, error) {
	return n.Value, nil
}

func (e *Evaluator) Constant(n rules.ConstantNode, _ any) (any, error) {
	return n.Value, nil
}

// Variable resolves to the full ordered sequence of values found at
// the node's path. Zero, one and many values are all passed through
// as-is; downstream operators own the singular-vs-sequence handling.
func (e *Evaluator) Variable(n rules.VariableNode, rec any) (any, error) {
	return jpath.Values(rec, n.Path), nil
}

func (e *Evaluator) List(_ rules.ListNode, items []any, _ any) (any, error) {
	return items, nil
}

func (e *Evaluator) IPList(_ rules.IPListNode, items []any, _ any) (any, error) {
	return items, nil
}

func (e *Evaluator) Logical(n rules.LogicalNode, left, right any, _ any) (any, error) {
	return e.ops.Logical(n.Op, left, right)
}

func (e *Evaluator) Comparison(n rules.ComparisonNode, left, right any, _ any) (any, error) {
	return e.ops.Comparison(n.Op, left, right)
}

func (e *Evaluator) Math(n rules.MathNode, left, right any, _ any) (any, error) {
	return e.ops.Math(n.Op, left, right)
}

func (e *Evaluator) Unary(n rules.UnaryNode, operand any, _ any) (any, error) {
	return e.ops.Unary(n.Op, operand)
}
