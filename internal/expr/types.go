package expr

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:generate go tool stringer -type=Type -linecomment -output=type_string.go

// Type is the primitive type of an attribute or of a resolved expression.
type Type int

const (
	TypeUnknown     Type = iota // UNKNOWN
	TypeNull                    // NULL
	TypeBoolean                 // BOOLEAN
	TypeNumber                  // NUMBER
	TypeTime                    // TIME
	TypeString                  // STRING
	TypeNumberRange             // NUMBER_RANGE
	TypeTimeRange               // TIME_RANGE
	TypeSetString               // SET/STRING
	TypeSetNumber               // SET/NUMBER
	TypeDataset                 // DATASET
)

// ParseType parses the textual name of a Type. Matching is case-insensitive
// and accepts "SET_STRING" style spellings for set types.
func ParseType(s string) (Type, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.Replace(norm, "SET_", "SET/", 1)

	for t := TypeNull; t <= TypeDataset; t++ {
		if t.String() == norm {
			return t, nil
		}
	}

	return TypeUnknown, fmt.Errorf("unknown type %q", s)
}

// IsNumeric reports whether t is NUMBER or NUMBER_RANGE.
func (t Type) IsNumeric() bool {
	return t == TypeNumber || t == TypeNumberRange
}

// IsTemporal reports whether t is TIME or TIME_RANGE.
func (t Type) IsTemporal() bool {
	return t == TypeTime || t == TypeTimeRange
}

// IsSet reports whether t is one of the set types.
func (t Type) IsSet() bool {
	return t == TypeSetString || t == TypeSetNumber
}

// UnmarshalYAML implements custom YAML unmarshaling for Type.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseType(s)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalYAML implements custom YAML marshaling for Type.
func (t Type) MarshalYAML() (any, error) {
	return t.String(), nil
}
