package datasource

import (
	"fmt"

	"schema-reconciler/internal/diagnostic"
	"schema-reconciler/internal/expr"
	"schema-reconciler/internal/naming"
)

// AddAttributes merges a freshly introspected catalog into ds and returns the
// new data source. Unsafe attribute names are renamed and every expression is
// rewritten accordingly, the catalog is replaced wholesale and uncovered
// attributes get synthesized dimensions or measures when the introspection
// mode allows it. Calling it again with the same catalog changes nothing.
//
// Skipped syntheses and renames are reported as diagnostics.
func (ds *DataSource) AddAttributes(newAttrs Attributes) (*DataSource, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	out := ds.clone()

	renames := out.renameTable(newAttrs, &diags)
	out.applyRenames(renames)
	out.Attributes = renamedAttributes(newAttrs, renames)

	s := &synthesizer{ds: out, diags: &diags, covered: out.existingShapes()}

	for _, a := range out.Attributes {
		s.synthesize(a)
	}

	if out.DefaultSortMeasure == "" && len(out.Measures) > 0 {
		out.DefaultSortMeasure = out.Measures[0].Name
	}

	if out.TimeAttribute == "" {
		if d, ok := out.TimeDimension(); ok {
			if r, ok := d.Expression.(*expr.Ref); ok {
				out.TimeAttribute = r.Name
			}
		}
	}

	return out, diags
}

// renameTable maps every unsafe attribute name to a sanitized name that is
// unique within the catalog. Iteration follows catalog order so the table is
// deterministic.
func (ds *DataSource) renameTable(attrs Attributes, diags *diagnostic.Diagnostics) map[string]string {
	taken := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if naming.IsURLSafe(a.Name) {
			taken[a.Name] = true
		}
	}

	renames := map[string]string{}

	for _, a := range attrs {
		if naming.IsURLSafe(a.Name) {
			continue
		}

		sanitized, ok := naming.Disambiguate(naming.SanitizeName(a.Name), func(n string) bool { return taken[n] }, ds.settings.SuffixLimit)
		if !ok {
			diags.AddWarning(diagnostic.CodeSynthesisSkipped,
				fmt.Sprintf("no URL safe name available for attribute '%s'", a.Name), ds.Name, a.Name)

			continue
		}

		taken[sanitized] = true
		renames[a.Name] = sanitized

		diags.AddInfo(diagnostic.CodeAttributeRenamed,
			fmt.Sprintf("attribute '%s' renamed to '%s'", a.Name, sanitized), ds.Name, a.Name)
	}

	return renames
}

// applyRenames rewrites every reference held by the data source.
func (ds *DataSource) applyRenames(renames map[string]string) {
	if len(renames) == 0 {
		return
	}

	for i := range ds.Dimensions {
		ds.Dimensions[i].Expression = expr.Rename(ds.Dimensions[i].Expression, renames)
	}

	for i := range ds.Measures {
		ds.Measures[i].Expression = expr.Rename(ds.Measures[i].Expression, renames)
	}

	for i := range ds.DefaultSplits {
		ds.DefaultSplits[i].Expression = expr.Rename(ds.DefaultSplits[i].Expression, renames)
	}

	for i := range ds.AttributeOverrides {
		if to, ok := renames[ds.AttributeOverrides[i].Name]; ok {
			ds.AttributeOverrides[i].Name = to
		}
	}

	if ds.DefaultFilter != nil {
		ds.DefaultFilter = expr.Rename(ds.DefaultFilter, renames)
	}

	if ds.SubsetFilter != nil {
		ds.SubsetFilter = expr.Rename(ds.SubsetFilter, renames)
	}

	if to, ok := renames[ds.TimeAttribute]; ok {
		ds.TimeAttribute = to
	}
}

// renamedAttributes applies renames to a copy of attrs. A renamed physical
// column keeps its original name as derivation.
func renamedAttributes(attrs Attributes, renames map[string]string) Attributes {
	out := make(Attributes, len(attrs))

	for i, a := range attrs {
		if to, ok := renames[a.Name]; ok {
			if a.Derivation == nil {
				a.Derivation = expr.NewRef(a.Name)
			}

			a.Name = to
		}

		out[i] = a
	}

	return out
}

// existingShapes returns the canonical trees of every existing dimension
// and measure expression.
func (ds *DataSource) existingShapes() []expr.Node {
	var nodes []expr.Node

	for _, d := range ds.Dimensions {
		nodes = append(nodes, expr.Canonical(d.Expression))
	}

	for _, m := range ds.Measures {
		nodes = append(nodes, expr.Canonical(m.Expression))
	}

	return nodes
}

// coverageShapes lists the expressions that count as exposing attribute
// name: the direct reference, its distinct count and every aggregate the
// policy can synthesize.
func coverageShapes(name string, policy AggregatePolicy) []expr.Expression {
	ref := expr.NewRef(name)
	shapes := []expr.Expression{ref, expr.Aggregate("countDistinct", ref)}

	for _, agg := range policy.Aggregates() {
		shapes = append(shapes, expr.Aggregate(agg, ref))
	}

	return shapes
}

type synthesizer struct {
	ds      *DataSource
	diags   *diagnostic.Diagnostics
	covered []expr.Node
}

func (s *synthesizer) isCovered(name string) bool {
	for _, shape := range coverageShapes(name, s.ds.settings.Aggregates) {
		c := expr.Canonical(shape)
		for _, n := range s.covered {
			if n.Equal(c) {
				return true
			}
		}
	}

	return false
}

func (s *synthesizer) skip(a Attribute, format string, args ...any) {
	s.diags.AddInfo(diagnostic.CodeSynthesisSkipped, fmt.Sprintf(format, args...), s.ds.Name, a.Name)
}

func (s *synthesizer) synthesize(a Attribute) {
	mode := s.ds.Introspection
	if !naming.IsURLSafe(a.Name) || s.isCovered(a.Name) {
		return
	}

	switch {
	case a.Special == SpecialHistogram:
		return

	case a.Special == SpecialUnique:
		if mode.AutofillMeasures() {
			s.addMeasure(a, expr.Aggregate("countDistinct", expr.NewRef(a.Name)))
		}

	case a.Type == expr.TypeTime:
		if _, ok := s.ds.TimeDimension(); ok || !mode.AutofillDimensions() {
			return
		}

		s.addDimension(a, KindTime)

	case a.Unsplittable:
		if !mode.AutofillMeasures() {
			return
		}

		if a.Type != expr.TypeNumber {
			s.skip(a, "unsplittable attribute '%s' of type %s has no default aggregate", a.Name, a.Type)
			return
		}

		s.addMeasure(a, s.ds.settings.Aggregates.Expression(a.Name))

	case a.Type == expr.TypeString || a.Type == expr.TypeNumber || a.Type == expr.TypeBoolean:
		if mode.AutofillDimensions() {
			s.addDimension(a, kindOf(a.Type))
		}

	default:
		if mode.AutofillDimensions() || mode.AutofillMeasures() {
			s.skip(a, "attribute '%s' of type %s is not synthesized", a.Name, a.Type)
		}
	}
}

func kindOf(t expr.Type) Kind {
	switch t {
	case expr.TypeNumber:
		return KindNumber
	case expr.TypeBoolean:
		return KindBoolean
	case expr.TypeTime:
		return KindTime
	default:
		return KindString
	}
}

func (s *synthesizer) freeName(a Attribute) (string, bool) {
	name, ok := naming.Disambiguate(a.Name, s.taken, s.ds.settings.SuffixLimit)
	if !ok {
		s.diags.AddWarning(diagnostic.CodeSynthesisSkipped,
			fmt.Sprintf("name '%s' is already used and no free variant was found", a.Name), s.ds.Name, a.Name)
	}

	return name, ok
}

func (s *synthesizer) taken(name string) bool {
	_, dim := s.ds.Dimension(name)
	_, measure := s.ds.Measure(name)

	return dim || measure
}

func (s *synthesizer) addDimension(a Attribute, kind Kind) {
	name, ok := s.freeName(a)
	if !ok {
		return
	}

	d := Dimension{
		Name:       name,
		Title:      naming.Title(name),
		Kind:       kind,
		Expression: expr.NewRef(a.Name),
	}

	s.ds.Dimensions = append(s.ds.Dimensions, d)
	s.covered = append(s.covered, expr.Canonical(d.Expression))
	s.diags.AddInfo(diagnostic.CodeSynthesized, fmt.Sprintf("dimension '%s' added", name), s.ds.Name, a.Name)
}

func (s *synthesizer) addMeasure(a Attribute, e expr.Expression) {
	name, ok := s.freeName(a)
	if !ok {
		return
	}

	m := Measure{
		Name:       name,
		Title:      naming.Title(name),
		Expression: e,
		Format:     DefaultMeasureFormat,
	}

	s.ds.Measures = append(s.ds.Measures, m)
	s.covered = append(s.covered, expr.Canonical(e))
	s.diags.AddInfo(diagnostic.CodeSynthesized, fmt.Sprintf("measure '%s' added", name), s.ds.Name, a.Name)
}
