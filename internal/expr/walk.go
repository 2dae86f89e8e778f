package expr

// Walk visits e and its sub-expressions in pre-order: operand before
// arguments, arguments left to right. Returning false from fn prunes the
// children of the current node.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}

	if c, ok := e.(*Chain); ok {
		Walk(c.Operand, fn)

		for _, a := range c.Args {
			Walk(a, fn)
		}
	}
}

// References returns the names of the attributes e refers to, unique and in
// order of first encounter. $main is not an attribute and is excluded.
func References(e Expression) []string {
	var (
		names []string
		seen  = make(map[string]struct{})
	)

	Walk(e, func(x Expression) bool {
		r, ok := x.(*Ref)
		if !ok || r.IsMain() {
			return true
		}

		if _, dup := seen[r.Name]; !dup {
			seen[r.Name] = struct{}{}
			names = append(names, r.Name)
		}

		return true
	})

	return names
}

// CountMain returns the number of $main references in e.
func CountMain(e Expression) int {
	n := 0

	Walk(e, func(x Expression) bool {
		if r, ok := x.(*Ref); ok && r.IsMain() {
			n++
		}

		return true
	})

	return n
}

// ContainsMain reports whether e references $main at least once.
func ContainsMain(e Expression) bool {
	return CountMain(e) > 0
}

// Rename returns a copy of e with every reference renamed through table.
// Names absent from the table are kept. e itself is never modified.
func Rename(e Expression, table map[string]string) Expression {
	switch x := e.(type) {
	case *Ref:
		if to, ok := table[x.Name]; ok && !x.IsMain() {
			return &Ref{Name: to}
		}

		return &Ref{Name: x.Name}

	case *Literal:
		return &Literal{Value: x.Value, Bare: x.Bare}

	case *Chain:
		c := &Chain{Operand: Rename(x.Operand, table), Action: x.Action}
		if len(x.Args) > 0 {
			c.Args = make([]Expression, len(x.Args))
			for i, a := range x.Args {
				c.Args[i] = Rename(a, table)
			}
		}

		return c

	default:
		return e
	}
}

// Substitute returns a copy of e where references named in table are replaced
// by the mapped expressions. Replacement expressions are not walked again.
func Substitute(e Expression, table map[string]Expression) Expression {
	switch x := e.(type) {
	case *Ref:
		if to, ok := table[x.Name]; ok && !x.IsMain() {
			return to
		}

		return x

	case *Chain:
		c := &Chain{Operand: Substitute(x.Operand, table), Action: x.Action}
		for _, a := range x.Args {
			c.Args = append(c.Args, Substitute(a, table))
		}

		return c

	default:
		return e
	}
}

// Usage is one observation of an attribute reference together with the type
// its context implies.
type Usage struct {
	Name string
	Type Type
	// Strong is false when Type is only the STRING fallback.
	Strong bool
	// Unique is set for arguments of approximate distinct counts.
	Unique bool
}

// Usages lists every attribute reference in e in walk order with the type
// implied by where it appears. hint is the type expected of e as a whole;
// pass TypeUnknown when nothing is known.
func Usages(e Expression, hint Type) []Usage {
	var out []Usage

	collectUsages(e, hint, false, &out)

	return out
}

func collectUsages(e Expression, hint Type, unique bool, out *[]Usage) {
	switch x := e.(type) {
	case *Ref:
		if x.IsMain() {
			return
		}

		u := Usage{Name: x.Name, Type: hint, Strong: true, Unique: unique}
		if hint == TypeUnknown || hint == TypeDataset || hint == TypeNull {
			u.Type, u.Strong = TypeString, false
		}

		*out = append(*out, u)

	case *Chain:
		act, ok := lookupAction(x.Action)
		if !ok {
			collectUsages(x.Operand, TypeUnknown, false, out)

			for _, a := range x.Args {
				collectUsages(a, TypeUnknown, false, out)
			}

			return
		}

		operandHint := TypeUnknown
		if len(act.input) > 0 {
			operandHint = act.input[0]
		}

		switch act.rule {
		case argsSameType:
			if act.result == TypeUnknown {
				// fallback: both sides carry the outer expectation
				operandHint = hint
			}

			argHint := operandHint

			if t := literalType(x.Args); t != TypeUnknown {
				operandHint = t
			}

			if t := literalType([]Expression{x.Operand}); t != TypeUnknown {
				argHint = t
			}

			collectUsages(x.Operand, operandHint, false, out)

			for _, a := range x.Args {
				collectUsages(a, argHint, false, out)
			}

		case argsTyped:
			collectUsages(x.Operand, operandHint, false, out)

			for i, a := range x.Args {
				argHint := TypeUnknown
				if i == 0 {
					argHint = act.arg[0]
				}

				collectUsages(a, argHint, false, out)
			}

		default:
			collectUsages(x.Operand, operandHint, false, out)

			for _, a := range x.Args {
				argHint := TypeUnknown
				if act.unique {
					argHint = TypeString
				}

				collectUsages(a, argHint, act.unique, out)
			}
		}
	}
}

// literalType returns the type of the first argument when it is a non-null
// literal.
func literalType(args []Expression) Type {
	if len(args) == 0 {
		return TypeUnknown
	}

	if l, ok := args[0].(*Literal); ok && l.Value != nil {
		return l.Type()
	}

	return TypeUnknown
}
