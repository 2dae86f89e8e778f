package datasource

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"schema-reconciler/internal/common"
	"schema-reconciler/internal/expr"
	"schema-reconciler/internal/legacy"
	"schema-reconciler/internal/naming"
)

// FromConfig builds a data source from a decoded configuration tree. Legacy
// shaped input is migrated first. Naming and config failures are fatal;
// expression type problems are left for Issues.
func FromConfig(raw map[string]any, s Settings) (*DataSource, error) {
	if legacy.IsLegacy(raw) {
		migrated, err := legacy.Migrate(raw)
		if err != nil {
			return nil, err
		}

		raw = migrated
	}

	cfg, err := decodeConfig(raw)
	if err != nil {
		return nil, err
	}

	return New(cfg, s)
}

// decodeConfig maps the generic tree onto Config, rejecting unknown fields.
func decodeConfig(raw map[string]any) (Config, error) {
	var cfg Config

	data, err := yaml.Marshal(raw)
	if err != nil {
		return cfg, common.ConfigErrorf("", "can not encode data source config: %v", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return cfg, common.ConfigErrorf("", "malformed data source config: %v", err)
	}

	return cfg, nil
}

// New builds a data source from its persisted shape.
func New(cfg Config, s Settings) (*DataSource, error) {
	s = s.withDefaults()

	if err := naming.AssertURLSafe(cfg.Name, dataSourceNameContext); err != nil {
		return nil, err
	}

	dimensionNames := make([]string, len(cfg.Dimensions))
	for i, d := range cfg.Dimensions {
		dimensionNames[i] = d.Name
	}

	measureNames := make([]string, len(cfg.Measures))
	for i, m := range cfg.Measures {
		measureNames[i] = m.Name
	}

	if cfg.DefaultSortMeasure != "" && !slices.Contains(measureNames, cfg.DefaultSortMeasure) {
		return nil, common.ConfigErrorf("defaultSortMeasure", "can not find defaultSortMeasure '%s'", cfg.DefaultSortMeasure)
	}

	for _, n := range dimensionNames {
		if err := naming.AssertURLSafe(n, "dimension"); err != nil {
			return nil, err
		}
	}

	for _, n := range measureNames {
		if err := naming.AssertURLSafe(n, "measure"); err != nil {
			return nil, err
		}
	}

	if err := naming.AssertNoDuplicates(cfg.Name, dimensionNames, measureNames); err != nil {
		return nil, err
	}

	ds := &DataSource{
		Name:                    cfg.Name,
		Title:                   cfg.Title,
		Description:             cfg.Description,
		ClusterName:             cfg.ClusterName,
		Source:                  cfg.Source,
		Attributes:              slices.Clone(cfg.Attributes),
		AttributeOverrides:      slices.Clone(cfg.AttributeOverrides),
		TimeAttribute:           cfg.TimeAttribute,
		DefaultSortMeasure:      cfg.DefaultSortMeasure,
		DefaultSelectedMeasures: slices.Clone([]string(cfg.DefaultSelectedMeasures)),
		DefaultPinnedDimensions: slices.Clone([]string(cfg.DefaultPinnedDimensions)),
		Introspection:           cfg.Introspection,
		DefaultTimezone:         cfg.DefaultTimezone,
		DefaultDuration:         cfg.DefaultDuration,
		settings:                s,
	}

	if err := ds.applyDefaults(cfg); err != nil {
		return nil, err
	}

	for i, dc := range cfg.Dimensions {
		d, err := buildDimension(dc)
		if err != nil {
			return nil, common.ConfigErrorf(fmt.Sprintf("dimensions[%d]", i), "dimension '%s': %v", dc.Name, err)
		}

		ds.Dimensions = append(ds.Dimensions, d)
	}

	for i, mc := range cfg.Measures {
		m, err := buildMeasure(mc, s.Aggregates)
		if err != nil {
			return nil, common.ConfigErrorf(fmt.Sprintf("measures[%d]", i), "measure '%s': %v", mc.Name, err)
		}

		ds.Measures = append(ds.Measures, m)
	}

	for i, sc := range cfg.DefaultSplits {
		e, err := sc.Expression.Parse()
		if err != nil {
			return nil, common.ConfigErrorf(fmt.Sprintf("defaultSplits[%d]", i), "default split: %v", err)
		}

		ds.DefaultSplits = append(ds.DefaultSplits, Split{Expression: e})
	}

	if ds.DefaultSortMeasure == "" && len(ds.Measures) > 0 {
		ds.DefaultSortMeasure = ds.Measures[0].Name
	}

	return ds, nil
}

func (ds *DataSource) applyDefaults(cfg Config) error {
	if ds.Title == "" {
		ds.Title = naming.Title(ds.Name)
	}

	if ds.ClusterName == "" {
		ds.ClusterName = ds.settings.DefaultCluster
	}

	if ds.Introspection == "" {
		ds.Introspection = IntrospectionAll
	}

	if !ds.Introspection.valid() {
		return common.ConfigErrorf("introspection", "invalid introspection '%s'", ds.Introspection)
	}

	ds.RefreshRule = RefreshRule{Rule: DefaultRefreshRule, Refresh: DefaultRefreshPeriod}
	if cfg.RefreshRule != nil {
		ds.RefreshRule = *cfg.RefreshRule
	}

	if ds.DefaultTimezone == "" {
		ds.DefaultTimezone = DefaultTimezone
	}

	if ds.DefaultDuration == "" {
		ds.DefaultDuration = DefaultDuration
	}

	if ds.TimeAttribute == "" && ds.ClusterName == DruidCluster {
		ds.TimeAttribute = DruidTimeAttribute
	}

	ds.DefaultFilter = &expr.Literal{Value: true}

	if !cfg.DefaultFilter.IsZero() {
		e, err := cfg.DefaultFilter.Parse()
		if err != nil {
			return common.ConfigErrorf("defaultFilter", "defaultFilter: %v", err)
		}

		ds.DefaultFilter = e
	}

	if !cfg.SubsetFilter.IsZero() {
		e, err := cfg.SubsetFilter.Parse()
		if err != nil {
			return common.ConfigErrorf("subsetFilter", "subsetFilter: %v", err)
		}

		ds.SubsetFilter = e
	}

	if len(cfg.Options) > 0 {
		ds.Options = make(map[string]any, len(cfg.Options))
		for k, v := range cfg.Options {
			ds.Options[k] = v
		}
	}

	return nil
}

func buildDimension(dc DimensionConfig) (Dimension, error) {
	d := Dimension{
		Name:  dc.Name,
		Title: dc.Title,
		Kind:  dc.Kind,
		URL:   dc.URL,
	}

	if d.Title == "" {
		d.Title = naming.Title(d.Name)
	}

	if d.Kind == "" {
		d.Kind = KindString
	}

	if !d.Kind.valid() {
		return d, fmt.Errorf("invalid kind '%s'", d.Kind)
	}

	if dc.Expression.IsZero() {
		d.Expression = expr.NewRef(d.Name)
		return d, nil
	}

	e, err := dc.Expression.Parse()
	if err != nil {
		return d, err
	}

	d.Expression = e

	return d, nil
}

func buildMeasure(mc MeasureConfig, policy AggregatePolicy) (Measure, error) {
	m := Measure{
		Name:   mc.Name,
		Title:  mc.Title,
		Format: mc.Format,
	}

	if m.Title == "" {
		m.Title = naming.Title(m.Name)
	}

	if m.Format == "" {
		m.Format = DefaultMeasureFormat
	}

	if mc.Expression.IsZero() {
		m.Expression = policy.Expression(m.Name)
		return m, nil
	}

	e, err := mc.Expression.Parse()
	if err != nil {
		return m, err
	}

	m.Expression = e

	return m, nil
}
