package introspect

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"schema-reconciler/internal/datasource"
)

// Static serves attributes from a fixed catalog keyed by data source name or
// source.
type Static struct {
	catalog map[string]datasource.Attributes
}

// NewStatic returns a catalog-backed introspector.
func NewStatic(catalog map[string]datasource.Attributes) *Static {
	return &Static{catalog: catalog}
}

// LoadStaticFile reads a catalog file:
//
//	wiki:
//	  - name: __time
//	    type: TIME
//	  - name: page
func LoadStaticFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	return ParseStatic(data)
}

// ParseStatic parses catalog YAML.
func ParseStatic(data []byte) (*Static, error) {
	var catalog map[string]datasource.Attributes
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	return NewStatic(catalog), nil
}

// Introspect looks ds up by name first, then by source.
func (s *Static) Introspect(_ context.Context, ds *datasource.DataSource) (datasource.Attributes, error) {
	if attrs, ok := s.catalog[ds.Name]; ok {
		return attrs, nil
	}

	if attrs, ok := s.catalog[ds.Source]; ok && ds.Source != "" {
		return attrs, nil
	}

	return nil, fmt.Errorf("%w: '%s'", ErrUnknownSource, ds.Name)
}
