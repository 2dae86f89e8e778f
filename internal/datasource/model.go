package datasource

import (
	"slices"

	"schema-reconciler/internal/expr"
)

// Kind is the presentation kind of a dimension.
type Kind string

const (
	KindString  Kind = "string"
	KindTime    Kind = "time"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

func (k Kind) valid() bool {
	switch k {
	case KindString, KindTime, KindNumber, KindBoolean:
		return true
	default:
		return false
	}
}

// hint is the type a dimension of this kind expects its expression to have.
func (k Kind) hint() expr.Type {
	switch k {
	case KindTime:
		return expr.TypeTime
	case KindNumber:
		return expr.TypeNumber
	case KindBoolean:
		return expr.TypeBoolean
	default:
		return expr.TypeUnknown
	}
}

// Introspection controls which parts of the schema may be synthesized from
// introspected attributes.
type Introspection string

const (
	IntrospectionNone           Introspection = "none"
	IntrospectionNoAutofill     Introspection = "no-autofill"
	IntrospectionDimensionsOnly Introspection = "autofill-dimensions-only"
	IntrospectionMeasuresOnly   Introspection = "autofill-measures-only"
	IntrospectionAll            Introspection = "autofill-all"
)

func (i Introspection) valid() bool {
	switch i {
	case IntrospectionNone, IntrospectionNoAutofill, IntrospectionDimensionsOnly,
		IntrospectionMeasuresOnly, IntrospectionAll:
		return true
	default:
		return false
	}
}

// AutofillDimensions reports whether dimensions may be synthesized.
func (i Introspection) AutofillDimensions() bool {
	return i == IntrospectionAll || i == IntrospectionDimensionsOnly
}

// AutofillMeasures reports whether measures may be synthesized.
func (i Introspection) AutofillMeasures() bool {
	return i == IntrospectionAll || i == IntrospectionMeasuresOnly
}

// Introspects reports whether the data source is introspected at all.
func (i Introspection) Introspects() bool {
	return i != IntrospectionNone
}

// RefreshRule says when the data source's max time is refreshed.
type RefreshRule struct {
	Rule    string `yaml:"rule"`
	Refresh string `yaml:"refresh,omitempty"`
	Time    string `yaml:"time,omitempty"`
}

// Dimension is a splittable field of a data source.
type Dimension struct {
	Name       string
	Title      string
	Kind       Kind
	Expression expr.Expression
	URL        string
}

// Measure is an aggregated field of a data source.
type Measure struct {
	Name       string
	Title      string
	Expression expr.Expression
	Format     string
}

// Split is a default split applied when the data source is first opened.
type Split struct {
	Expression expr.Expression
}

// Defaults applied at construction.
const (
	DefaultTimezone       = "Etc/UTC"
	DefaultDuration       = "P1D"
	DefaultMeasureFormat  = "0,0.0a"
	DefaultRefreshRule    = "query"
	DefaultRefreshPeriod  = "PT1M"
	DruidCluster          = "druid"
	DruidTimeAttribute    = "__time"
	dataSourceNameContext = "data source"
)

// DataSource is the aggregate root of the reconciliation engine. Values are
// immutable: transforms return a new DataSource that shares no mutable
// state with the receiver.
type DataSource struct {
	Name        string
	Title       string
	Description string
	ClusterName string
	Source      string

	Attributes         Attributes
	AttributeOverrides Attributes
	Dimensions         []Dimension
	Measures           []Measure

	TimeAttribute           string
	DefaultSortMeasure      string
	DefaultSelectedMeasures []string
	DefaultPinnedDimensions []string
	DefaultSplits           []Split
	Introspection           Introspection
	RefreshRule             RefreshRule
	DefaultTimezone         string
	DefaultDuration         string
	DefaultFilter           expr.Expression
	SubsetFilter            expr.Expression

	// Options is the residual bag of legacy options still recognized.
	Options map[string]any

	settings Settings
}

// Settings returns the settings the data source was built with.
func (ds *DataSource) Settings() Settings { return ds.settings }

// Dimension returns the dimension with the given name.
func (ds *DataSource) Dimension(name string) (Dimension, bool) {
	i := slices.IndexFunc(ds.Dimensions, func(d Dimension) bool { return d.Name == name })
	if i < 0 {
		return Dimension{}, false
	}

	return ds.Dimensions[i], true
}

// Measure returns the measure with the given name.
func (ds *DataSource) Measure(name string) (Measure, bool) {
	i := slices.IndexFunc(ds.Measures, func(m Measure) bool { return m.Name == name })
	if i < 0 {
		return Measure{}, false
	}

	return ds.Measures[i], true
}

// TimeDimension returns the first dimension of kind time.
func (ds *DataSource) TimeDimension() (Dimension, bool) {
	i := slices.IndexFunc(ds.Dimensions, func(d Dimension) bool { return d.Kind == KindTime })
	if i < 0 {
		return Dimension{}, false
	}

	return ds.Dimensions[i], true
}

// AttributeType implements expr.Catalog: overrides win over introspected
// attributes.
func (ds *DataSource) AttributeType(name string) (expr.Type, bool) {
	if t, ok := ds.AttributeOverrides.AttributeType(name); ok {
		return t, true
	}

	return ds.Attributes.AttributeType(name)
}

// clone returns a copy with fresh slices. Expressions are immutable and
// shared.
func (ds *DataSource) clone() *DataSource {
	out := *ds
	out.Attributes = slices.Clone(ds.Attributes)
	out.AttributeOverrides = slices.Clone(ds.AttributeOverrides)
	out.Dimensions = slices.Clone(ds.Dimensions)
	out.Measures = slices.Clone(ds.Measures)
	out.DefaultSelectedMeasures = slices.Clone(ds.DefaultSelectedMeasures)
	out.DefaultPinnedDimensions = slices.Clone(ds.DefaultPinnedDimensions)
	out.DefaultSplits = slices.Clone(ds.DefaultSplits)

	if ds.Options != nil {
		out.Options = make(map[string]any, len(ds.Options))
		for k, v := range ds.Options {
			out.Options[k] = v
		}
	}

	return &out
}
