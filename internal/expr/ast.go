package expr

import (
	"strconv"
	"strings"
)

// MainName is the name of the distinguished aggregation scope: a reference to
// $main denotes the whole filtered dataset rather than a column.
const MainName = "main"

// Expression is a node of the expression tree. Implementations are immutable.
type Expression interface {
	// String prints the expression in the syntax accepted by Parse.
	String() string
	// Canonical returns the structural op tree used for equality.
	Canonical() Node
}

// Ref references a column by name, or the dataset when the name is MainName.
type Ref struct {
	Name string
}

// Literal is a constant. Value holds a string, float64, bool or nil.
type Literal struct {
	Value any
	// Bare marks a string literal written as an unquoted identifier.
	Bare bool
}

// Chain applies Action to Operand with the given arguments.
// Infix operators are chains too: "$a ++ $b" is Chain{$a, concat, [$b]}.
type Chain struct {
	Operand Expression
	Action  string
	Args    []Expression
}

// NewRef returns a reference expression.
func NewRef(name string) *Ref { return &Ref{Name: name} }

// Main returns the $main reference.
func Main() *Ref { return &Ref{Name: MainName} }

// Aggregate returns $main.<action>(arg), or $main.<action>() when arg is nil.
func Aggregate(action string, arg Expression) *Chain {
	c := &Chain{Operand: Main(), Action: action}
	if arg != nil {
		c.Args = []Expression{arg}
	}

	return c
}

func (r *Ref) String() string {
	if isIdent(r.Name) {
		return "$" + r.Name
	}

	return "${" + bracedEscaper.Replace(r.Name) + "}"
}

// bracedEscaper escapes the bytes that would end or escape a ${...} name.
var bracedEscaper = strings.NewReplacer(`\`, `\\`, `}`, `\}`)

// IsMain reports whether r references the dataset.
func (r *Ref) IsMain() bool { return r.Name == MainName }

// Type returns the primitive type of the literal value.
func (l *Literal) Type() Type {
	switch l.Value.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case float64:
		return TypeNumber
	case string:
		return TypeString
	default:
		return TypeUnknown
	}
}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		if l.Bare && isIdent(v) {
			return v
		}

		return quote(v)
	default:
		return "null"
	}
}

func (c *Chain) String() string {
	act, known := lookupAction(c.Action)
	if known && act.infix != "" && len(c.Args) == 1 {
		left := c.Operand.String()
		if needsParens(c.Operand, act.prec, false) {
			left = "(" + left + ")"
		}

		right := c.Args[0].String()
		if needsParens(c.Args[0], act.prec, true) {
			right = "(" + right + ")"
		}

		return left + " " + act.infix + " " + right
	}

	operand := c.Operand.String()
	if isInfix(c.Operand) {
		operand = "(" + operand + ")"
	}

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return operand + "." + c.Action + "(" + strings.Join(args, ",") + ")"
}

func isInfix(e Expression) bool {
	c, ok := e.(*Chain)
	if !ok {
		return false
	}

	act, known := lookupAction(c.Action)

	return known && act.infix != "" && len(c.Args) == 1
}

// needsParens decides whether a child of an infix node with precedence prec
// must be wrapped. Infix actions are left associative.
func needsParens(child Expression, prec int, right bool) bool {
	if !isInfix(child) {
		return false
	}

	act, _ := lookupAction(child.(*Chain).Action)
	if act.prec < prec {
		return true
	}

	return right && act.prec == prec
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !isIdentRune(r) {
			return false
		}
	}

	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func quote(s string) string {
	var b strings.Builder

	b.WriteByte('\'')

	for _, r := range s {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	b.WriteByte('\'')

	return b.String()
}
