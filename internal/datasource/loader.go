package datasource

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"schema-reconciler/internal/diagnostic"
)

// LoadFile loads a single data source from a YAML file.
func LoadFile(path string, s Settings) (*DataSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data source file %s: %w", path, err)
	}

	return Parse(data, s)
}

// Parse builds a single data source from YAML data.
func Parse(data []byte, s Settings) (*DataSource, error) {
	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse data source YAML: %w", err)
	}

	return FromConfig(raw, s)
}

// File is a configuration file holding several data sources.
type File struct {
	DataSources []map[string]any `yaml:"dataSources"`
}

// LoadAllFile reads a multi data source file. See LoadAll.
func LoadAllFile(path string, s Settings) ([]*DataSource, diagnostic.Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostic.Diagnostics{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return LoadAll(data, s)
}

// LoadAll builds every data source of a multi data source file. A data
// source that fails to build is reported in the diagnostics and skipped;
// the others still load. The error is reserved for unreadable files.
func LoadAll(data []byte, s Settings) ([]*DataSource, diagnostic.Diagnostics, error) {
	var (
		f     File
		diags diagnostic.Diagnostics
	)

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, diags, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	var out []*DataSource

	for i, raw := range f.DataSources {
		name, _ := raw["name"].(string)

		ds, err := FromConfig(raw, s)
		if err != nil {
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}

			diags.AddError(diagnostic.CodeLoadFailed, err.Error(), name, "")

			continue
		}

		out = append(out, ds)
	}

	return out, diags, nil
}

// Marshal serializes a data source to YAML.
func Marshal(ds *DataSource) ([]byte, error) {
	return yaml.Marshal(ds.ToConfig())
}

// MarshalAll serializes several data sources as a multi data source file.
func MarshalAll(dss []*DataSource) ([]byte, error) {
	var doc struct {
		DataSources []Config `yaml:"dataSources"`
	}

	for _, ds := range dss {
		doc.DataSources = append(doc.DataSources, ds.ToConfig())
	}

	return yaml.Marshal(doc)
}

// WriteFile writes a data source to the given path.
func WriteFile(ds *DataSource, path string) error {
	data, err := Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to marshal data source: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write data source file %s: %w", path, err)
	}

	return nil
}
