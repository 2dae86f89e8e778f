package datasource

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"schema-reconciler/internal/expr"
)

// StringOrArray represents a value that can be either a single string or an
// array of strings in YAML.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// Config is the persisted shape of a data source.
type Config struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	ClusterName string `yaml:"clusterName,omitempty"`
	Source      string `yaml:"source,omitempty"`

	Introspection Introspection `yaml:"introspection,omitempty"`
	RefreshRule   *RefreshRule  `yaml:"refreshRule,omitempty"`

	Attributes         Attributes `yaml:"attributes,omitempty"`
	AttributeOverrides Attributes `yaml:"attributeOverrides,omitempty"`

	TimeAttribute           string        `yaml:"timeAttribute,omitempty"`
	DefaultTimezone         string        `yaml:"defaultTimezone,omitempty"`
	DefaultDuration         string        `yaml:"defaultDuration,omitempty"`
	DefaultFilter           expr.Source   `yaml:"defaultFilter,omitempty"`
	SubsetFilter            expr.Source   `yaml:"subsetFilter,omitempty"`
	DefaultSortMeasure      string        `yaml:"defaultSortMeasure,omitempty"`
	DefaultSelectedMeasures StringOrArray `yaml:"defaultSelectedMeasures,omitempty"`
	DefaultPinnedDimensions StringOrArray `yaml:"defaultPinnedDimensions,omitempty"`
	DefaultSplits           []SplitConfig `yaml:"defaultSplits,omitempty"`

	Options map[string]any `yaml:"options,omitempty"`

	Dimensions []DimensionConfig `yaml:"dimensions,omitempty"`
	Measures   []MeasureConfig   `yaml:"measures,omitempty"`
}

// DimensionConfig is the persisted shape of a dimension.
type DimensionConfig struct {
	Name       string      `yaml:"name"`
	Title      string      `yaml:"title,omitempty"`
	Kind       Kind        `yaml:"kind,omitempty"`
	Expression expr.Source `yaml:"expression,omitempty"`
	URL        string      `yaml:"url,omitempty"`
}

// MeasureConfig is the persisted shape of a measure.
type MeasureConfig struct {
	Name       string      `yaml:"name"`
	Title      string      `yaml:"title,omitempty"`
	Expression expr.Source `yaml:"expression,omitempty"`
	Format     string      `yaml:"format,omitempty"`
}

// SplitConfig is the persisted shape of a default split.
type SplitConfig struct {
	Expression expr.Source `yaml:"expression"`
}

// ToConfig returns the persisted shape of ds. Values equal to their defaults
// are still written so the output is self describing, except the measure
// format.
func (ds *DataSource) ToConfig() Config {
	cfg := Config{
		Name:                    ds.Name,
		Title:                   ds.Title,
		Description:             ds.Description,
		ClusterName:             ds.ClusterName,
		Source:                  ds.Source,
		Introspection:           ds.Introspection,
		Attributes:              ds.Attributes,
		AttributeOverrides:      ds.AttributeOverrides,
		TimeAttribute:           ds.TimeAttribute,
		DefaultTimezone:         ds.DefaultTimezone,
		DefaultDuration:         ds.DefaultDuration,
		DefaultFilter:           expr.SourceOf(ds.DefaultFilter),
		SubsetFilter:            expr.SourceOf(ds.SubsetFilter),
		DefaultSortMeasure:      ds.DefaultSortMeasure,
		DefaultSelectedMeasures: ds.DefaultSelectedMeasures,
		DefaultPinnedDimensions: ds.DefaultPinnedDimensions,
		Options:                 ds.Options,
	}

	rule := ds.RefreshRule
	cfg.RefreshRule = &rule

	for _, s := range ds.DefaultSplits {
		cfg.DefaultSplits = append(cfg.DefaultSplits, SplitConfig{Expression: expr.SourceOf(s.Expression)})
	}

	for _, d := range ds.Dimensions {
		cfg.Dimensions = append(cfg.Dimensions, DimensionConfig{
			Name:       d.Name,
			Title:      d.Title,
			Kind:       d.Kind,
			Expression: expr.SourceOf(d.Expression),
			URL:        d.URL,
		})
	}

	for _, m := range ds.Measures {
		mc := MeasureConfig{
			Name:       m.Name,
			Title:      m.Title,
			Expression: expr.SourceOf(m.Expression),
		}

		if m.Format != DefaultMeasureFormat {
			mc.Format = m.Format
		}

		cfg.Measures = append(cfg.Measures, mc)
	}

	return cfg
}
