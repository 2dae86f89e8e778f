package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrSyntax marks an expression that could not be parsed.
var ErrSyntax = errors.New("expression syntax error")

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokRef
	tokNumber
	tokString
	tokIdent
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Parse parses the textual form of an expression.
func Parse(src string) (Expression, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, toks: toks}

	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}

	return e, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level tables.
func MustParse(src string) Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return e
}

// lexBracedName reads the name of a ${...} reference up to the closing brace.
// A backslash escapes the next byte. n counts the consumed bytes including
// the closing brace.
func lexBracedName(src string) (name string, n int, ok bool) {
	var b strings.Builder

	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if i+1 == len(src) {
				return "", 0, false
			}

			i++
			b.WriteByte(src[i])
		case '}':
			return b.String(), i + 1, true
		default:
			b.WriteByte(src[i])
		}
	}

	return "", 0, false
}

func lex(src string) ([]token, error) {
	var toks []token

	for i := 0; i < len(src); {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '$':
			start := i
			i++

			if i < len(src) && src[i] == '{' {
				name, n, ok := lexBracedName(src[i+1:])
				if !ok {
					return nil, fmt.Errorf("%w: unterminated ${ at %d in %q", ErrSyntax, start, src)
				}

				toks = append(toks, token{kind: tokRef, text: name, pos: start})
				i += 1 + n

				continue
			}

			j := i
			for j < len(src) && isIdentRune(rune(src[j])) {
				j++
			}

			if j == i {
				return nil, fmt.Errorf("%w: empty reference at %d in %q", ErrSyntax, start, src)
			}

			toks = append(toks, token{kind: tokRef, text: src[i:j], pos: start})
			i = j

		case c == '\'' || c == '"':
			s, n, err := lexString(src[i:])
			if err != nil {
				return nil, fmt.Errorf("%w: %v at %d in %q", ErrSyntax, err, i, src)
			}

			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i += n

		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}

			toks = append(toks, token{kind: tokNumber, text: src[i:j], pos: i})
			i = j

		case isIdentRune(rune(c)):
			j := i
			for j < len(src) && isIdentRune(rune(src[j])) {
				j++
			}

			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j

		default:
			if op := matchPunct(src[i:]); op != "" {
				toks = append(toks, token{kind: tokPunct, text: op, pos: i})
				i += len(op)

				continue
			}

			r, _ := utf8.DecodeRuneInString(src[i:])

			return nil, fmt.Errorf("%w: unexpected character %q at %d in %q", ErrSyntax, r, i, src)
		}
	}

	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

var puncts = []string{"++", "==", "!=", "<=", ">=", "<", ">", "+", "-", "*", "/", "(", ")", ".", ","}

func matchPunct(s string) string {
	for _, p := range puncts {
		if strings.HasPrefix(s, p) {
			return p
		}
	}

	return ""
}

func lexString(s string) (string, int, error) {
	quoteChar := s[0]

	var b strings.Builder

	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", 0, errors.New("dangling escape")
			}

			i++
			b.WriteByte(s[i])
		case quoteChar:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}

	return "", 0, errors.New("unterminated string")
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}

	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d in %q", ErrSyntax, fmt.Sprintf(format, args...), t.pos, p.src)
}

// binaryLevels lists infix operators from lowest to highest precedence.
var binaryLevels = [][]string{
	{"or"},
	{"and"},
	{"==", "!=", "<", "<=", ">", ">="},
	{"++"},
	{"+", "-"},
	{"*", "/"},
}

func (p *parser) parseOr() (Expression, error) {
	return p.parseLevel(0)
}

func (p *parser) parseLevel(level int) (Expression, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseLevel(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if !p.isOperator(t, binaryLevels[level]) {
			return left, nil
		}

		p.next()

		right, err := p.parseLevel(level + 1)
		if err != nil {
			return nil, err
		}

		left = &Chain{Operand: left, Action: infixActions[t.text], Args: []Expression{right}}
	}
}

func (p *parser) isOperator(t token, ops []string) bool {
	if t.kind != tokPunct && t.kind != tokIdent {
		return false
	}

	for _, op := range ops {
		if t.text == op {
			return true
		}
	}

	return false
}

func (p *parser) parseUnary() (Expression, error) {
	if t := p.peek(); t.kind == tokPunct && t.text == "-" {
		p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		if lit, ok := operand.(*Literal); ok {
			if f, ok := lit.Value.(float64); ok {
				return &Literal{Value: -f}, nil
			}
		}

		return &Chain{Operand: &Literal{Value: float64(0)}, Action: "subtract", Args: []Expression{operand}}, nil
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expression, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t.kind != tokPunct || t.text != "." {
			return e, nil
		}

		p.next()

		name := p.next()
		if name.kind != tokIdent {
			return nil, p.errorf(name, "expected action name after '.'")
		}

		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}

		e = &Chain{Operand: e, Action: name.text, Args: args}
	}
}

func (p *parser) parseArgs() ([]Expression, error) {
	open := p.next()
	if open.kind != tokPunct || open.text != "(" {
		return nil, p.errorf(open, "expected '('")
	}

	var args []Expression

	if t := p.peek(); t.kind == tokPunct && t.text == ")" {
		p.next()
		return args, nil
	}

	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		t := p.next()
		if t.kind == tokPunct && t.text == ")" {
			return args, nil
		}

		if t.kind != tokPunct || t.text != "," {
			return nil, p.errorf(t, "expected ',' or ')'")
		}
	}
}

func (p *parser) parsePrimary() (Expression, error) {
	t := p.next()

	switch t.kind {
	case tokRef:
		return &Ref{Name: t.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf(t, "bad number %q", t.text)
		}

		return &Literal{Value: f}, nil
	case tokString:
		return &Literal{Value: t.text}, nil
	case tokIdent:
		switch t.text {
		case "true":
			return &Literal{Value: true}, nil
		case "false":
			return &Literal{Value: false}, nil
		case "null":
			return &Literal{Value: nil}, nil
		}

		return &Literal{Value: t.text, Bare: true}, nil
	case tokPunct:
		if t.text == "(" {
			e, err := p.parseOr()
			if err != nil {
				return nil, err
			}

			if closing := p.next(); closing.kind != tokPunct || closing.text != ")" {
				return nil, p.errorf(closing, "expected ')'")
			}

			return e, nil
		}
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of expression")
	}

	return nil, p.errorf(t, "unexpected %q", t.text)
}
