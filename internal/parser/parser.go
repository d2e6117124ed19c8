// Package parser turns filter expression source text into a rule tree.
//
// Grammar, lowest precedence first:
//
//	expr    := xor { ("or" | "||") xor }
//	xor     := and { ("xor" | "^^") and }
//	and     := unary { ("and" | "&&") unary }
//	unary   := ("not" | "!" | "exists") unary | comp
//	comp    := sum [ compareOp sum ]
//	sum     := product { ("+" | "-") product }
//	product := factor { ("*" | "/" | "%") factor }
//	factor  := literal | variable | list | "(" expr ")"
//	list    := "[" factor { "," factor } "]"
//
// IPv4, IPv6 and datetime literals are recognized by shape at the
// lexical level and carried as raw strings; the compiler parses them
// into typed values.
package parser

import (
	"fmt"
	"strconv"

	"github.com/sievelabs/sieve/internal/rules"
)

// Parse parses one filter expression into a rule tree.
func Parse(source string) (rules.Node, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tkEOF {
		return nil, p.errorf("unexpected %q after expression", p.peek().text)
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tkEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return token{}, fmt.Errorf("at offset %d: expected %s, found %q", t.pos, what, t.text)
	}
	return t, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("at offset %d: "+format, append([]any{p.peek().pos}, args...)...)
}

func (p *parser) parseExpr() (rules.Node, error) {
	return p.parseLogical(tkOr, rules.OpOr, func() (rules.Node, error) {
		return p.parseLogical(tkXor, rules.OpXor, func() (rules.Node, error) {
			return p.parseLogical(tkAnd, rules.OpAnd, p.parseUnary)
		})
	})
}

func (p *parser) parseLogical(kind tokenKind, op rules.LogicalOp, sub func() (rules.Node, error)) (rules.Node, error) {
	left, err := sub()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == kind {
		p.next()
		right, err := sub()
		if err != nil {
			return nil, err
		}
		left = rules.LogicalNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (rules.Node, error) {
	switch p.peek().kind {
	case tkNot:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return rules.UnaryNode{Op: rules.OpNot, Operand: operand}, nil
	case tkExists:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return rules.UnaryNode{Op: rules.OpExists, Operand: operand}, nil
	default:
		return p.parseComparison()
	}
}

var compareOps = map[tokenKind]rules.CompareOp{
	tkLike: rules.OpLike,
	tkIn:   rules.OpIn,
	tkIs:   rules.OpIs,
	tkEq:   rules.OpEq,
	tkNe:   rules.OpNe,
	tkGt:   rules.OpGt,
	tkGe:   rules.OpGe,
	tkLt:   rules.OpLt,
	tkLe:   rules.OpLe,
}

func (p *parser) parseComparison() (rules.Node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	op, ok := compareOps[p.peek().kind]
	if !ok {
		return left, nil
	}
	p.next()
	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return rules.ComparisonNode{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseSum() (rules.Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		var op rules.MathOp
		switch p.peek().kind {
		case tkAdd:
			op = rules.OpAdd
		case tkSub:
			op = rules.OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = rules.MathNode{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseProduct() (rules.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op rules.MathOp
		switch p.peek().kind {
		case tkMul:
			op = rules.OpMul
		case tkDiv:
			op = rules.OpDiv
		case tkMod:
			op = rules.OpMod
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = rules.MathNode{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseFactor() (rules.Node, error) {
	t := p.peek()
	switch t.kind {
	case tkLParen:
		p.next()
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen, `")"`); err != nil {
			return nil, err
		}
		return node, nil
	case tkLBracket:
		return p.parseList()
	default:
		return p.parseScalar()
	}
}

func (p *parser) parseList() (rules.Node, error) {
	if _, err := p.expect(tkLBracket, `"["`); err != nil {
		return nil, err
	}
	var items []rules.Node
	if p.peek().kind != tkRBracket {
		for {
			item, err := p.parseScalar()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if p.peek().kind != tkComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tkRBracket, `"]"`); err != nil {
		return nil, err
	}
	return rules.ListNode{Items: items}, nil
}

func (p *parser) parseScalar() (rules.Node, error) {
	t := p.next()
	switch t.kind {
	case tkString:
		return rules.ConstantNode{Value: t.text}, nil
	case tkInteger:
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("at offset %d: invalid integer %q: %w", t.pos, t.text, err)
		}
		return rules.IntegerNode{Value: v}, nil
	case tkFloat:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("at offset %d: invalid float %q: %w", t.pos, t.text, err)
		}
		return rules.FloatNode{Value: v}, nil
	case tkIPv4:
		return rules.IPv4Node{Value: t.text}, nil
	case tkIPv6:
		return rules.IPv6Node{Value: t.text}, nil
	case tkDatetime:
		return rules.DatetimeNode{Value: t.text}, nil
	case tkVariable:
		return rules.VariableNode{Path: t.text}, nil
	default:
		return nil, fmt.Errorf("at offset %d: expected a value, found %q", t.pos, t.text)
	}
}
