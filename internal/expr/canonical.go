package expr

import (
	"fmt"
)

// Op names of the canonical tree.
const (
	OpRef     = "ref"
	OpLiteral = "literal"
	OpChain   = "chain"
)

// Node is the canonical op tree of an expression. Two expressions are
// structurally equal when their canonical trees are Equal; surface details
// such as parentheses, quoting style or bare identifiers do not survive.
type Node struct {
	Op         string      `yaml:"op"`
	Name       string      `yaml:"name,omitempty"`
	Value      any         `yaml:"value,omitempty"`
	Expression *Node       `yaml:"expression,omitempty"`
	Action     *ActionNode `yaml:"action,omitempty"`
}

// ActionNode is the action part of a chain node. Expression holds the first
// argument; Args holds the remaining ones.
type ActionNode struct {
	Action     string `yaml:"action"`
	Expression *Node  `yaml:"expression,omitempty"`
	Args       []Node `yaml:"args,omitempty"`
}

// Canonical returns the canonical tree of e.
func Canonical(e Expression) Node {
	return e.Canonical()
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Canonical().Equal(b.Canonical())
}

func (r *Ref) Canonical() Node {
	return Node{Op: OpRef, Name: r.Name}
}

func (l *Literal) Canonical() Node {
	return Node{Op: OpLiteral, Value: l.Value}
}

func (c *Chain) Canonical() Node {
	operand := c.Operand.Canonical()
	action := &ActionNode{Action: c.Action}

	for i, arg := range c.Args {
		n := arg.Canonical()
		if i == 0 {
			action.Expression = &n
			continue
		}

		action.Args = append(action.Args, n)
	}

	return Node{Op: OpChain, Expression: &operand, Action: action}
}

// Equal reports whether two canonical trees are identical.
func (n Node) Equal(o Node) bool {
	if n.Op != o.Op || n.Name != o.Name {
		return false
	}

	if !literalEqual(n.Value, o.Value) {
		return false
	}

	if !nodePtrEqual(n.Expression, o.Expression) {
		return false
	}

	if (n.Action == nil) != (o.Action == nil) {
		return false
	}

	if n.Action == nil {
		return true
	}

	a, b := n.Action, o.Action
	if a.Action != b.Action || !nodePtrEqual(a.Expression, b.Expression) || len(a.Args) != len(b.Args) {
		return false
	}

	for i := range a.Args {
		if !a.Args[i].Equal(b.Args[i]) {
			return false
		}
	}

	return true
}

func nodePtrEqual(a, b *Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(*b)
}

func literalEqual(a, b any) bool {
	na, errA := normalizeValue(a)
	nb, errB := normalizeValue(b)

	if errA != nil || errB != nil {
		return false
	}

	return na == nb
}

// normalizeValue maps decoded YAML scalars onto the literal value domain.
func normalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("%w: unsupported literal value %v (%T)", ErrSyntax, v, v)
	}
}

// FromCanonical rebuilds an expression from its canonical tree.
func FromCanonical(n Node) (Expression, error) {
	switch n.Op {
	case OpRef:
		if n.Name == "" {
			return nil, fmt.Errorf("%w: ref node without a name", ErrSyntax)
		}

		return &Ref{Name: n.Name}, nil

	case OpLiteral:
		v, err := normalizeValue(n.Value)
		if err != nil {
			return nil, err
		}

		return &Literal{Value: v}, nil

	case OpChain:
		if n.Expression == nil || n.Action == nil || n.Action.Action == "" {
			return nil, fmt.Errorf("%w: chain node needs an expression and an action", ErrSyntax)
		}

		operand, err := FromCanonical(*n.Expression)
		if err != nil {
			return nil, err
		}

		c := &Chain{Operand: operand, Action: n.Action.Action}

		if n.Action.Expression != nil {
			arg, err := FromCanonical(*n.Action.Expression)
			if err != nil {
				return nil, err
			}

			c.Args = append(c.Args, arg)
		}

		for _, a := range n.Action.Args {
			arg, err := FromCanonical(a)
			if err != nil {
				return nil, err
			}

			c.Args = append(c.Args, arg)
		}

		return c, nil

	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrSyntax, n.Op)
	}
}
