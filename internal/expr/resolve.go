package expr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrReference marks a reference to an attribute the catalog does not know.
	ErrReference = errors.New("reference error")
	// ErrTypeMismatch marks an action applied to operands of the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// Catalog answers attribute type lookups during resolution.
type Catalog interface {
	AttributeType(name string) (Type, bool)
}

// CatalogFunc adapts a function to the Catalog interface.
type CatalogFunc func(name string) (Type, bool)

// AttributeType implements Catalog.
func (f CatalogFunc) AttributeType(name string) (Type, bool) { return f(name) }

// ResolveError is returned by Resolve. Its message is user facing and is
// surfaced verbatim in data source issues.
type ResolveError struct {
	Kind    error
	Message string
}

func (e *ResolveError) Error() string { return e.Message }

// Is matches the error kind sentinel.
func (e *ResolveError) Is(target error) bool { return target == e.Kind }

func referenceErrorf(format string, args ...any) error {
	return &ResolveError{Kind: ErrReference, Message: fmt.Sprintf(format, args...)}
}

func typeErrorf(format string, args ...any) error {
	return &ResolveError{Kind: ErrTypeMismatch, Message: fmt.Sprintf(format, args...)}
}

// Resolve type-checks e against catalog and returns its result type.
// $main resolves to DATASET.
func Resolve(e Expression, catalog Catalog) (Type, error) {
	switch x := e.(type) {
	case *Ref:
		if x.IsMain() {
			return TypeDataset, nil
		}

		t, ok := catalog.AttributeType(x.Name)
		if !ok {
			return TypeUnknown, referenceErrorf("could not resolve %s", x)
		}

		return t, nil

	case *Literal:
		return x.Type(), nil

	case *Chain:
		return resolveChain(x, catalog)

	default:
		return TypeUnknown, typeErrorf("unsupported expression %T", e)
	}
}

func resolveChain(c *Chain, catalog Catalog) (Type, error) {
	act, ok := lookupAction(c.Action)
	if !ok {
		return TypeUnknown, typeErrorf("unknown action '%s'", c.Action)
	}

	operand, err := Resolve(c.Operand, catalog)
	if err != nil {
		return TypeUnknown, err
	}

	if !act.accepts(act.input, operand) {
		return TypeUnknown, typeErrorf("%s must have input of type %s (is %s)", c.Action, typeList(act.input), operand)
	}

	if n := len(c.Args); n < act.minArgs || n > act.maxArgs {
		return TypeUnknown, typeErrorf("%s must have %s (has %d)", c.Action, arity(act.minArgs, act.maxArgs), n)
	}

	switch act.rule {
	case argsTyped:
		arg, err := Resolve(c.Args[0], catalog)
		if err != nil {
			return TypeUnknown, err
		}

		if !act.accepts(act.arg, arg) {
			return TypeUnknown, typeErrorf("%s must have expression of type %s (is %s)", c.Action, typeList(act.arg), arg)
		}

		for _, extra := range c.Args[1:] {
			if _, err := Resolve(extra, catalog); err != nil {
				return TypeUnknown, err
			}
		}

	case argsAny:
		for _, a := range c.Args {
			if _, err := Resolve(a, catalog); err != nil {
				return TypeUnknown, err
			}
		}

	case argsSameType:
		arg, err := Resolve(c.Args[0], catalog)
		if err != nil {
			return TypeUnknown, err
		}

		if !compatible(operand, arg) {
			return TypeUnknown, typeErrorf("%s must have expression of type %s (is %s)", c.Action, operand, arg)
		}

	case argsLiterals:
		for _, a := range c.Args {
			if _, ok := a.(*Literal); !ok {
				return TypeUnknown, typeErrorf("%s must have literal arguments (got %s)", c.Action, a)
			}
		}

	case argsNone:
	}

	if act.result == TypeUnknown {
		return operand, nil
	}

	return act.result, nil
}

// compatible reports whether two operand types may be compared or merged.
// NULL is compatible with everything and sets match their element type.
func compatible(a, b Type) bool {
	if a == b || a == TypeNull || b == TypeNull {
		return true
	}

	return elementType(a) == elementType(b)
}

func elementType(t Type) Type {
	switch t {
	case TypeSetString:
		return TypeString
	case TypeSetNumber:
		return TypeNumber
	default:
		return t
	}
}

func typeList(ts []Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}

	return strings.Join(names, " or ")
}

func arity(lo, hi int) string {
	switch {
	case lo == hi && lo == 0:
		return "no arguments"
	case lo == hi && lo == 1:
		return "1 argument"
	case lo == hi:
		return fmt.Sprintf("%d arguments", lo)
	default:
		return fmt.Sprintf("%d to %d arguments", lo, hi)
	}
}
