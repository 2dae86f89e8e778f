package datasource

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"schema-reconciler/internal/expr"
)

// Special tags an attribute whose values need dedicated handling.
type Special string

const (
	SpecialNone      Special = ""
	SpecialUnique    Special = "unique"
	SpecialHistogram Special = "histogram"
)

// Attribute is a physical or derived column of the underlying store.
type Attribute struct {
	Name         string
	Type         expr.Type
	Special      Special
	Unsplittable bool
	// Derivation is the expression over physical columns that produces the
	// attribute, or nil for a physical column.
	Derivation expr.Expression
}

// Attributes is an ordered attribute catalog. Names are unique.
type Attributes []Attribute

// Get returns the attribute with the given name.
func (as Attributes) Get(name string) (Attribute, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}

	return Attribute{}, false
}

// Names returns the attribute names in catalog order.
func (as Attributes) Names() []string {
	names := make([]string, len(as))
	for i, a := range as {
		names[i] = a.Name
	}

	return names
}

// AttributeType implements expr.Catalog.
func (as Attributes) AttributeType(name string) (expr.Type, bool) {
	a, ok := as.Get(name)
	if !ok {
		return expr.TypeUnknown, false
	}

	return a.Type, true
}

// attributeYAML is the persisted shape of an Attribute.
type attributeYAML struct {
	Name         string      `yaml:"name"`
	Type         expr.Type   `yaml:"type,omitempty"`
	Special      Special     `yaml:"special,omitempty"`
	Unsplittable bool        `yaml:"unsplittable,omitempty"`
	Unsplitable  bool        `yaml:"unsplitable,omitempty"`
	Derivation   expr.Source `yaml:"derivation,omitempty"`
}

// UnmarshalYAML implements custom YAML unmarshaling for Attribute.
// A missing type defaults to STRING; the historical "unsplitable" spelling
// is accepted.
func (a *Attribute) UnmarshalYAML(node *yaml.Node) error {
	var raw attributeYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Name == "" {
		return fmt.Errorf("line %d: attribute must have a name", node.Line)
	}

	switch raw.Special {
	case SpecialNone, SpecialUnique, SpecialHistogram:
	default:
		return fmt.Errorf("line %d: attribute '%s' has unknown special '%s'", node.Line, raw.Name, raw.Special)
	}

	out := Attribute{
		Name:         raw.Name,
		Type:         raw.Type,
		Special:      raw.Special,
		Unsplittable: raw.Unsplittable || raw.Unsplitable,
	}

	if out.Type == expr.TypeUnknown {
		out.Type = expr.TypeString
	}

	if !raw.Derivation.IsZero() {
		d, err := raw.Derivation.Parse()
		if err != nil {
			return fmt.Errorf("attribute '%s' derivation: %w", raw.Name, err)
		}

		out.Derivation = d
	}

	*a = out

	return nil
}

// MarshalYAML implements custom YAML marshaling for Attribute.
func (a Attribute) MarshalYAML() (any, error) {
	return attributeYAML{
		Name:         a.Name,
		Type:         a.Type,
		Special:      a.Special,
		Unsplittable: a.Unsplittable,
		Derivation:   expr.SourceOf(a.Derivation),
	}, nil
}
