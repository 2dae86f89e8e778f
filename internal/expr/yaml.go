package expr

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Source is an expression as it appears in a configuration file: either the
// textual syntax or a canonical op tree. It is parsed lazily so that the
// caller can attach the offending field to syntax errors.
type Source struct {
	Text string
	Tree *Node
}

// SourceOf returns the textual source of e.
func SourceOf(e Expression) Source {
	if e == nil {
		return Source{}
	}

	return Source{Text: e.String()}
}

// IsZero reports whether no expression was given.
func (s Source) IsZero() bool {
	return s.Text == "" && s.Tree == nil
}

// Parse builds the expression.
func (s Source) Parse() (Expression, error) {
	if s.Tree != nil {
		return FromCanonical(*s.Tree)
	}

	return Parse(s.Text)
}

// UnmarshalYAML accepts a scalar string or an op tree mapping.
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = Source{Text: node.Value}
		return nil
	case yaml.MappingNode:
		var n Node
		if err := node.Decode(&n); err != nil {
			return err
		}

		*s = Source{Tree: &n}

		return nil
	default:
		return fmt.Errorf("line %d: expression must be a string or an op tree", node.Line)
	}
}

// MarshalYAML emits the textual form when one is known.
func (s Source) MarshalYAML() (any, error) {
	if s.Text != "" || s.Tree == nil {
		return s.Text, nil
	}

	e, err := FromCanonical(*s.Tree)
	if err != nil {
		return s.Tree, nil
	}

	return e.String(), nil
}
