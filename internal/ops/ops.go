// Package ops implements the operator evaluation primitives consumed
// by the rule tree traversers: logical connectives, comparisons,
// arithmetic and unary operations over the dynamic values produced by
// record evaluation.
//
// Operands may be scalars or ordered sequences ([]any). Comparisons
// normalize both sides to sequences and match existentially: the
// comparison holds when some pair of elements satisfies the operator.
// An empty sequence on either side never matches. Arithmetic
// broadcasts element-wise when exactly one operand is a sequence.
package ops

import (
	"errors"
	"fmt"
	"math"
	"net/netip"
	"regexp"
	"time"

	"github.com/sievelabs/sieve/internal/iprange"
	"github.com/sievelabs/sieve/internal/rules"
	"github.com/sievelabs/sieve/internal/timestamp"
)

// ErrUnsupportedOperand is wrapped by every error caused by operand
// types an operator cannot combine.
var ErrUnsupportedOperand = errors.New("unsupported operand type")

// Std is the standard stateless operator implementation.
type Std struct{}

// New returns the standard operator implementation.
func New() Std { return Std{} }

// Logical evaluates a logical connective over operand truthiness.
func (Std) Logical(op rules.LogicalOp, left, right any) (any, error) {
	l, r := Truthy(left), Truthy(right)
	switch op {
	case rules.OpAnd:
		return l && r, nil
	case rules.OpOr:
		return l || r, nil
	case rules.OpXor:
		return l != r, nil
	default:
		return nil, fmt.Errorf("unknown logical operator %v", op)
	}
}

// Comparison evaluates a comparison over two operands, either of which
// may be a sequence. An empty side yields false.
func (Std) Comparison(op rules.CompareOp, left, right any) (any, error) {
	ls, rs := sequence(left), sequence(right)
	if len(ls) == 0 || len(rs) == 0 {
		return false, nil
	}

	switch op {
	case rules.OpIs:
		if len(ls) != len(rs) {
			return false, nil
		}
		for i := range ls {
			ok, err := compareScalar(rules.OpEq, ls[i], rs[i])
			if err != nil {
				return nil, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case rules.OpIn:
		for _, l := range ls {
			ok, err := member(l, rs)
			if err != nil {
				return nil, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	default:
		for _, l := range ls {
			for _, r := range rs {
				ok, err := compareScalar(op, l, r)
				if err != nil {
					return nil, err
				}
				if ok {
					return true, nil
				}
			}
		}
		return false, nil
	}
}

// Math evaluates an arithmetic operation. Single-element sequences are
// unwrapped first; when exactly one operand remains a sequence the
// operation broadcasts element-wise and returns a sequence.
func (Std) Math(op rules.MathOp, left, right any) (any, error) {
	left, right = unwrapSingle(left), unwrapSingle(right)
	ls, lok := left.([]any)
	rs, rok := right.([]any)
	switch {
	case lok && rok:
		return nil, fmt.Errorf("%w: %v over two sequences", ErrUnsupportedOperand, op)
	case lok:
		out := make([]any, len(ls))
		for i, l := range ls {
			v, err := scalarMath(op, l, right)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case rok:
		out := make([]any, len(rs))
		for i, r := range rs {
			v, err := scalarMath(op, left, r)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return scalarMath(op, left, right)
	}
}

// Unary evaluates a unary operation.
func (Std) Unary(op rules.UnaryOp, operand any) (any, error) {
	switch op {
	case rules.OpNot:
		return !Truthy(operand), nil
	case rules.OpExists:
		if seq, ok := operand.([]any); ok {
			return len(seq) > 0, nil
		}
		return operand != nil, nil
	default:
		return nil, fmt.Errorf("unknown unary operator %v", op)
	}
}

// Truthy reports the truth value of an evaluation result. Empty
// sequences, empty strings, zero numbers, false and nil are falsy;
// everything else is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func sequence(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func unwrapSingle(v any) any {
	if seq, ok := v.([]any); ok && len(seq) == 1 {
		return seq[0]
	}
	return v
}

func member(l any, rs []any) (bool, error) {
	for _, r := range rs {
		ok, err := compareScalar(rules.OpEq, l, r)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// compareScalar compares two scalar values under op, coercing across
// the domain types the language knows about: an IP range on one side
// pulls the other into the address domain, a time instant pulls the
// other into the time domain. Coercion failure of a record value is a
// non-match, not an error; operand types the operator cannot combine
// at all are an error.
func compareScalar(op rules.CompareOp, l, r any) (bool, error) {
	if isRange(l) || isRange(r) {
		return compareRanges(op, l, r)
	}
	if isTime(l) || isTime(r) {
		return compareTimes(op, l, r)
	}
	if lf, ok := floatValue(l); ok {
		if rf, ok := floatValue(r); ok {
			return compareOrdered(op, compareFloats(lf, rf))
		}
	}
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return compareStrings(op, ls, rs)
		}
	}
	if lb, ok := l.(bool); ok {
		if rb, ok := r.(bool); ok {
			switch op {
			case rules.OpEq:
				return lb == rb, nil
			case rules.OpNe:
				return lb != rb, nil
			}
		}
	}
	return false, fmt.Errorf("%w: cannot compare %T with %T", ErrUnsupportedOperand, l, r)
}

func compareStrings(op rules.CompareOp, l, r string) (bool, error) {
	if op == rules.OpLike {
		re, err := regexp.Compile(r)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", r, err)
		}
		return re.MatchString(l), nil
	}
	switch {
	case l == r:
		return compareOrdered(op, 0)
	case l < r:
		return compareOrdered(op, -1)
	default:
		return compareOrdered(op, 1)
	}
}

func compareRanges(op rules.CompareOp, l, r any) (bool, error) {
	lr, lok := toRange(l)
	rr, rok := toRange(r)
	if !lok || !rok {
		return false, nil
	}
	switch op {
	case rules.OpEq, rules.OpIs, rules.OpLike, rules.OpIn:
		// an address matches a range when it falls inside it
		return lr.Overlaps(rr), nil
	case rules.OpNe:
		return !lr.Overlaps(rr), nil
	default:
		return compareOrdered(op, lr.Compare(rr))
	}
}

func compareTimes(op rules.CompareOp, l, r any) (bool, error) {
	lt, err := timestamp.Parse(l)
	if err != nil {
		return false, nil
	}
	rt, err := timestamp.Parse(r)
	if err != nil {
		return false, nil
	}
	return compareOrdered(op, lt.Compare(rt))
}

func compareOrdered(op rules.CompareOp, c int) (bool, error) {
	switch op {
	case rules.OpEq, rules.OpLike:
		return c == 0, nil
	case rules.OpNe:
		return c != 0, nil
	case rules.OpGt:
		return c > 0, nil
	case rules.OpGe:
		return c >= 0, nil
	case rules.OpLt:
		return c < 0, nil
	case rules.OpLe:
		return c <= 0, nil
	default:
		return false, fmt.Errorf("unknown comparison operator %v", op)
	}
}

func scalarMath(op rules.MathOp, l, r any) (any, error) {
	if li, ok := intValue(l); ok {
		if ri, ok := intValue(r); ok {
			return intMath(op, li, ri)
		}
	}
	lf, lok := floatValue(l)
	rf, rok := floatValue(r)
	if !lok || !rok {
		return nil, fmt.Errorf("%w: %T %v %T", ErrUnsupportedOperand, l, op, r)
	}
	return floatMath(op, lf, rf)
}

func intMath(op rules.MathOp, l, r int64) (any, error) {
	switch op {
	case rules.OpAdd:
		return l + r, nil
	case rules.OpSub:
		return l - r, nil
	case rules.OpMul:
		return l * r, nil
	case rules.OpDiv:
		if r == 0 {
			return nil, errors.New("division by zero")
		}
		return l / r, nil
	case rules.OpMod:
		if r == 0 {
			return nil, errors.New("division by zero")
		}
		return l % r, nil
	default:
		return nil, fmt.Errorf("unknown math operator %v", op)
	}
}

func floatMath(op rules.MathOp, l, r float64) (any, error) {
	switch op {
	case rules.OpAdd:
		return l + r, nil
	case rules.OpSub:
		return l - r, nil
	case rules.OpMul:
		return l * r, nil
	case rules.OpDiv:
		if r == 0 {
			return nil, errors.New("division by zero")
		}
		return l / r, nil
	case rules.OpMod:
		if r == 0 {
			return nil, errors.New("division by zero")
		}
		return math.Mod(l, r), nil
	default:
		return nil, fmt.Errorf("unknown math operator %v", op)
	}
}

func compareFloats(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func intValue(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	default:
		return 0, false
	}
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func isRange(v any) bool {
	_, ok := v.(iprange.Range)
	return ok
}

func isTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

func toRange(v any) (iprange.Range, bool) {
	switch t := v.(type) {
	case iprange.Range:
		return t, true
	case netip.Addr:
		return iprange.FromAddr(t), true
	case string:
		r, err := iprange.Parse(t)
		if err != nil {
			return iprange.Range{}, false
		}
		return r, true
	default:
		return iprange.Range{}, false
	}
}
