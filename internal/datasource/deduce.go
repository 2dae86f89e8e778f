package datasource

import (
	"schema-reconciler/internal/expr"
)

// DeduceAttributes infers the attribute catalog implied by the dimensions and
// measures alone. References are typed by the context they appear in and
// references to derived dimensions are followed down to physical columns.
// The result is ordered by first encounter, dimensions before measures.
func (ds *DataSource) DeduceAttributes() Attributes {
	var (
		out    Attributes
		index  = make(map[string]int)
		strong = make(map[string]bool)
	)

	observe := func(usages []expr.Usage) {
		for _, u := range usages {
			i, seen := index[u.Name]
			if !seen {
				index[u.Name] = len(out)
				strong[u.Name] = u.Strong
				out = append(out, attributeFromUsage(u))

				continue
			}

			a := &out[i]
			if u.Strong && !strong[u.Name] {
				a.Type = u.Type
				strong[u.Name] = true
			}

			if u.Unique {
				a.Special = SpecialUnique
			}
		}
	}

	expand := newDimensionExpander(ds.Dimensions)

	for _, d := range ds.Dimensions {
		observe(expr.Usages(expand.expand(d.Name, d.Expression), d.Kind.hint()))
	}

	for _, m := range ds.Measures {
		observe(expr.Usages(expand.expand("", m.Expression), expr.TypeNumber))
	}

	return out
}

func attributeFromUsage(u expr.Usage) Attribute {
	a := Attribute{Name: u.Name, Type: u.Type}
	if u.Unique {
		a.Special = SpecialUnique
	}

	return a
}

// dimensionExpander substitutes references to derived dimensions with the
// dimension's own expression.
type dimensionExpander struct {
	derived map[string]expr.Expression
}

func newDimensionExpander(dims []Dimension) *dimensionExpander {
	x := &dimensionExpander{derived: make(map[string]expr.Expression)}

	for _, d := range dims {
		if r, ok := d.Expression.(*expr.Ref); ok && r.Name == d.Name {
			continue
		}

		x.derived[d.Name] = d.Expression
	}

	return x
}

// expand rewrites e, which belongs to the dimension called self ("" for a
// measure). A dimension never expands into itself and cycles stop at the
// first repeated name.
func (x *dimensionExpander) expand(self string, e expr.Expression) expr.Expression {
	visiting := map[string]bool{}
	if self != "" {
		visiting[self] = true
	}

	return x.expandIn(e, visiting)
}

func (x *dimensionExpander) expandIn(e expr.Expression, visiting map[string]bool) expr.Expression {
	table := map[string]expr.Expression{}

	for _, name := range expr.References(e) {
		target, ok := x.derived[name]
		if !ok || visiting[name] {
			continue
		}

		visiting[name] = true
		table[name] = x.expandIn(target, visiting)
		delete(visiting, name)
	}

	if len(table) == 0 {
		return e
	}

	return expr.Substitute(e, table)
}
