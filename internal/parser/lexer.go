package parser

import (
	"fmt"
	"regexp"
	"strings"
)

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkString
	tkInteger
	tkFloat
	tkIPv4
	tkIPv6
	tkDatetime
	tkVariable
	tkLParen
	tkRParen
	tkLBracket
	tkRBracket
	tkComma
	tkOr
	tkXor
	tkAnd
	tkNot
	tkExists
	tkLike
	tkIn
	tkIs
	tkEq
	tkNe
	tkGt
	tkGe
	tkLt
	tkLe
	tkAdd
	tkSub
	tkMul
	tkDiv
	tkMod
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// literal token patterns, tried in order at the current offset
var (
	datetimeTokRE = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}[Tt][0-9]{2}:[0-9]{2}:[0-9]{2}(?:\.[0-9]+)?(?:[Zz]|[+-][0-9]{2}:[0-9]{2})`)
	ipv4TokRE     = regexp.MustCompile(`^[0-9]{1,3}(?:\.[0-9]{1,3}){3}(?:/[0-9]{1,2}|-[0-9]{1,3}(?:\.[0-9]{1,3}){3})?`)
	ipv6TokRE     = regexp.MustCompile(`^[0-9A-Fa-f:]*:[0-9A-Fa-f:.]+(?:/[0-9]{1,3}|-[0-9A-Fa-f:.]+)?`)
	floatTokRE    = regexp.MustCompile(`^[0-9]+\.[0-9]+`)
	integerTokRE  = regexp.MustCompile(`^[0-9]+`)
	variableTokRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\[(?:[0-9]+|\*)\])?(?:\.[A-Za-z_][A-Za-z0-9_]*(?:\[(?:[0-9]+|\*)\])?)*`)
)

var keywords = map[string]tokenKind{
	"or":     tkOr,
	"xor":    tkXor,
	"and":    tkAnd,
	"not":    tkNot,
	"exists": tkExists,
	"like":   tkLike,
	"in":     tkIn,
	"is":     tkIs,
	"eq":     tkEq,
	"ne":     tkNe,
	"gt":     tkGt,
	"ge":     tkGe,
	"lt":     tkLt,
	"le":     tkLe,
}

var symbols = []struct {
	text string
	kind tokenKind
}{
	{"||", tkOr},
	{"^^", tkXor},
	{"&&", tkAnd},
	{"==", tkEq},
	{"!=", tkNe},
	{"<>", tkNe},
	{"=~", tkLike},
	{"<=", tkLe},
	{">=", tkGe},
	{"!", tkNot},
	{"<", tkLt},
	{">", tkGt},
	{"+", tkAdd},
	{"-", tkSub},
	{"*", tkMul},
	{"/", tkDiv},
	{"%", tkMod},
	{"(", tkLParen},
	{")", tkRParen},
	{"[", tkLBracket},
	{"]", tkRBracket},
	{",", tkComma},
}

// tokenize splits source into tokens. Literal shapes (datetime, IP,
// numbers) are recognized lexically; their validity is checked during
// compilation.
func tokenize(source string) ([]token, error) {
	var tokens []token
	pos := 0
	for pos < len(source) {
		rest := source[pos:]

		if rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r' {
			pos++
			continue
		}

		if rest[0] == '"' || rest[0] == '\'' {
			text, size, err := scanString(rest)
			if err != nil {
				return nil, fmt.Errorf("at offset %d: %w", pos, err)
			}
			tokens = append(tokens, token{kind: tkString, text: text, pos: pos})
			pos += size
			continue
		}

		if tok, size := scanLiteral(rest, pos); size > 0 {
			tokens = append(tokens, tok)
			pos += size
			continue
		}

		if m := variableTokRE.FindString(rest); m != "" {
			kind, ok := keywords[strings.ToLower(m)]
			if !ok {
				kind = tkVariable
			}
			tokens = append(tokens, token{kind: kind, text: m, pos: pos})
			pos += len(m)
			continue
		}

		matched := false
		for _, sym := range symbols {
			if strings.HasPrefix(rest, sym.text) {
				tokens = append(tokens, token{kind: sym.kind, text: sym.text, pos: pos})
				pos += len(sym.text)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("at offset %d: unexpected character %q", pos, rest[0])
		}
	}
	tokens = append(tokens, token{kind: tkEOF, pos: pos})
	return tokens, nil
}

func scanLiteral(rest string, pos int) (token, int) {
	c := rest[0]
	if c >= '0' && c <= '9' {
		if m := datetimeTokRE.FindString(rest); m != "" {
			return token{kind: tkDatetime, text: m, pos: pos}, len(m)
		}
		if m := ipv4TokRE.FindString(rest); m != "" {
			return token{kind: tkIPv4, text: m, pos: pos}, len(m)
		}
	}
	if isHexOrColon(c) {
		if m := ipv6TokRE.FindString(rest); m != "" && strings.Contains(m, ":") {
			return token{kind: tkIPv6, text: m, pos: pos}, len(m)
		}
	}
	if c >= '0' && c <= '9' {
		if m := floatTokRE.FindString(rest); m != "" {
			return token{kind: tkFloat, text: m, pos: pos}, len(m)
		}
		if m := integerTokRE.FindString(rest); m != "" {
			return token{kind: tkInteger, text: m, pos: pos}, len(m)
		}
	}
	return token{}, 0
}

func scanString(rest string) (string, int, error) {
	quote := rest[0]
	for i := 1; i < len(rest); i++ {
		if rest[i] == quote {
			return rest[1:i], i + 1, nil
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal")
}

func isHexOrColon(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		return true
	case c == ':':
		return true
	default:
		return false
	}
}
