package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-reconciler/internal/diagnostic"
	"schema-reconciler/internal/expr"
)

const stubYAML = `
name: wiki
title: Wiki
clusterName: druid
source: wiki
subsetFilter: null
introspection: autofill-all
defaultTimezone: Etc/UTC
defaultFilter: {op: literal, value: true}
refreshRule:
  refresh: PT1M
  rule: fixed
`

func dimensionNames(ds *DataSource) []string {
	var names []string
	for _, d := range ds.Dimensions {
		names = append(names, d.Name)
	}

	return names
}

func measureNames(ds *DataSource) []string {
	var names []string
	for _, m := range ds.Measures {
		names = append(names, m.Name)
	}

	return names
}

func marshal(t *testing.T, ds *DataSource) string {
	t.Helper()

	data, err := Marshal(ds)
	require.NoError(t, err)

	return string(data)
}

func TestAddAttributesEndToEnd(t *testing.T) {
	ds := mustParse(t, stubYAML)

	first := attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "channel", Type: expr.TypeString},
		Attribute{Name: "count", Type: expr.TypeNumber, Unsplittable: true},
	)

	ds1, diags := ds.AddAttributes(first)
	assert.False(t, diags.HasErrors())

	assert.Equal(t, []Dimension{
		{Name: "__time", Title: "Time", Kind: KindTime, Expression: expr.NewRef("__time")},
		{Name: "channel", Title: "Channel", Kind: KindString, Expression: expr.NewRef("channel")},
	}, ds1.Dimensions)
	assert.Equal(t, []Measure{
		{Name: "count", Title: "Count", Expression: expr.MustParse("$main.sum($count)"), Format: DefaultMeasureFormat},
	}, ds1.Measures)
	assert.Equal(t, "count", ds1.DefaultSortMeasure)
	assert.Equal(t, "__time", ds1.TimeAttribute)
	assert.Equal(t, first, ds1.Attributes)
	assert.Len(t, diags.ByCode(diagnostic.CodeSynthesized), 3)

	// The receiver is untouched.
	assert.Empty(t, ds.Dimensions)
	assert.Empty(t, ds.Attributes)

	second := append(append(Attributes{}, first...), Attribute{Name: "page", Type: expr.TypeString})

	ds2, _ := ds1.AddAttributes(second)
	assert.Equal(t, ds1.Dimensions, ds2.Dimensions[:2])
	assert.Equal(t, ds1.Measures, ds2.Measures)
	assert.Equal(t, []string{"__time", "channel", "page"}, dimensionNames(ds2))
}

func TestAddAttributesIdempotent(t *testing.T) {
	ds := mustParse(t, stubYAML)

	feed := attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "page", Type: expr.TypeString},
		Attribute{Name: "added", Type: expr.TypeNumber},
		Attribute{Name: "unique_user", Type: expr.TypeString, Special: SpecialUnique},
		Attribute{Name: "min_delta", Type: expr.TypeNumber, Unsplittable: true},
		Attribute{Name: "page:#love$", Type: expr.TypeString},
		Attribute{Name: "tags", Type: expr.TypeSetString},
		Attribute{Name: "delta_hist", Type: expr.TypeNumber, Special: SpecialHistogram},
	)

	once, _ := ds.AddAttributes(feed)
	twice, diags := once.AddAttributes(feed)

	assert.Equal(t, marshal(t, once), marshal(t, twice))
	assert.Equal(t, once, twice)
	assert.Empty(t, diags.ByCode(diagnostic.CodeSynthesized))

	again, _ := ds.AddAttributes(feed)
	assert.Equal(t, marshal(t, once), marshal(t, again))
}

func TestAddAttributesNonURLSafe(t *testing.T) {
	ds := mustParse(t, stubYAML)

	out, diags := ds.AddAttributes(attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "page:#love$", Type: expr.TypeString},
		Attribute{Name: "added:#love$", Type: expr.TypeNumber, Unsplittable: true},
		Attribute{Name: "unique_user:#love$", Type: expr.TypeString, Special: SpecialUnique},
	))

	assert.Equal(t, Attributes{
		{Name: "__time", Type: expr.TypeTime},
		{Name: "page_love_", Type: expr.TypeString, Derivation: expr.NewRef("page:#love$")},
		{Name: "added_love_", Type: expr.TypeNumber, Unsplittable: true, Derivation: expr.NewRef("added:#love$")},
		{Name: "unique_user_love_", Type: expr.TypeString, Special: SpecialUnique, Derivation: expr.NewRef("unique_user:#love$")},
	}, out.Attributes)

	assert.Equal(t, []string{"__time", "page_love_"}, dimensionNames(out))
	assert.Equal(t, "Page Love", out.Dimensions[1].Title)
	assert.Equal(t, []string{"added_love_", "unique_user_love_"}, measureNames(out))
	assert.Equal(t, "$main.sum($added_love_)", out.Measures[0].Expression.String())
	assert.Equal(t, "Unique User Love", out.Measures[1].Title)
	assert.Equal(t, "added_love_", out.DefaultSortMeasure)
	assert.Len(t, diags.ByCode(diagnostic.CodeAttributeRenamed), 3)
}

func TestAddAttributesRewritesExistingExpressions(t *testing.T) {
	ds := mustParse(t, stubYAML+`
defaultSortMeasure: added
timeAttribute: "__time"
dimensions:
  - {name: page, expression: "${page:#love$}"}
measures:
  - {name: added, expression: "$main.sum(${added!!!})"}
`)

	out, _ := ds.AddAttributes(attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "page:#love$", Type: expr.TypeString},
		Attribute{Name: "added!!!", Type: expr.TypeNumber, Unsplittable: true},
	))

	assert.Equal(t, "$page_love_", out.Dimensions[0].Expression.String())
	assert.Equal(t, "$main.sum($added_)", out.Measures[0].Expression.String())
	assert.Equal(t, []string{"page", "__time"}, dimensionNames(out))
	assert.Equal(t, []string{"added"}, measureNames(out))
	assert.Empty(t, out.Issues())
}

func TestAddAttributesExistingDimension(t *testing.T) {
	ds := mustParse(t, stubYAML+`
dimensions:
  - {name: added, expression: $added}
  - {name: added_, expression: "${added!!!}"}
`)

	out, _ := ds.AddAttributes(attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "added", Type: expr.TypeNumber},
		Attribute{Name: "added!!!", Type: expr.TypeNumber},
		Attribute{Name: "deleted", Type: expr.TypeNumber, Unsplittable: true},
	))

	assert.Equal(t, []string{"added", "added_", "__time"}, dimensionNames(out))
	assert.Equal(t, []string{"deleted"}, measureNames(out))
}

func TestAddAttributesSkipsHistogramsAndSets(t *testing.T) {
	ds := mustParse(t, stubYAML)

	out, diags := ds.AddAttributes(attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "added", Type: expr.TypeNumber, Unsplittable: true},
		Attribute{Name: "count", Type: expr.TypeNumber, Unsplittable: true},
		Attribute{Name: "delta_hist", Type: expr.TypeNumber, Special: SpecialHistogram},
		Attribute{Name: "page", Type: expr.TypeString},
		Attribute{Name: "page_unique", Type: expr.TypeString, Special: SpecialUnique},
		Attribute{Name: "tags", Type: expr.TypeSetString},
		Attribute{Name: "isRobot", Type: expr.TypeBoolean},
		Attribute{Name: "delta", Type: expr.TypeNumber},
		Attribute{Name: "max_delta", Type: expr.TypeNumber, Unsplittable: true},
	))

	assert.Equal(t, []string{"__time", "page", "isRobot", "delta"}, dimensionNames(out))
	assert.Equal(t, KindBoolean, out.Dimensions[2].Kind)
	assert.Equal(t, KindNumber, out.Dimensions[3].Kind)
	assert.Equal(t, []string{"added", "count", "page_unique", "max_delta"}, measureNames(out))
	assert.Equal(t, "$main.countDistinct($page_unique)", out.Measures[2].Expression.String())
	assert.Equal(t, "$main.max($max_delta)", out.Measures[3].Expression.String())

	skipped := diags.ByCode(diagnostic.CodeSynthesisSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, "tags", skipped[0].Subject)
}

func TestAddAttributesIntrospectionModes(t *testing.T) {
	feed := attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "page", Type: expr.TypeString},
		Attribute{Name: "count", Type: expr.TypeNumber, Unsplittable: true},
	)

	tests := []struct {
		mode       Introspection
		dimensions []string
		measures   []string
	}{
		{IntrospectionNone, nil, nil},
		{IntrospectionNoAutofill, nil, nil},
		{IntrospectionDimensionsOnly, []string{"__time", "page"}, nil},
		{IntrospectionMeasuresOnly, nil, []string{"count"}},
		{IntrospectionAll, []string{"__time", "page"}, []string{"count"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			ds, err := New(Config{Name: "wiki", Introspection: tt.mode}, DefaultSettings())
			require.NoError(t, err)

			out, _ := ds.AddAttributes(feed)
			assert.Equal(t, tt.dimensions, dimensionNames(out))
			assert.Equal(t, tt.measures, measureNames(out))
			assert.Equal(t, feed, out.Attributes)
		})
	}
}

func TestAddAttributesNameCollision(t *testing.T) {
	ds := mustParse(t, stubYAML+`
dimensions:
  - {name: page, expression: "$page_raw.lookup(pages)"}
measures:
  - {name: page_2, expression: $main.count()}
`)

	out, diags := ds.AddAttributes(attrs(Attribute{Name: "page", Type: expr.TypeString}))
	assert.Equal(t, []string{"page", "page_3"}, dimensionNames(out))
	assert.Equal(t, "$page", out.Dimensions[1].Expression.String())
	assert.Empty(t, diags.ByCode(diagnostic.CodeSynthesisSkipped))

	s := DefaultSettings()
	s.SuffixLimit = 2

	tight, err := New(Config{
		Name:       "wiki",
		Dimensions: []DimensionConfig{{Name: "page", Expression: exprSource("$page_raw")}},
		Measures:   []MeasureConfig{{Name: "page_2", Expression: exprSource("$main.count()")}},
	}, s)
	require.NoError(t, err)

	out, diags = tight.AddAttributes(attrs(Attribute{Name: "page", Type: expr.TypeString}))
	assert.Equal(t, []string{"page"}, dimensionNames(out))
	require.Len(t, diags.ByCode(diagnostic.CodeSynthesisSkipped), 1)
}

func TestAddAttributesCustomPolicy(t *testing.T) {
	rules, err := ParseAggregateRules("avg:average, max:max")
	require.NoError(t, err)

	s := DefaultSettings()
	s.Aggregates = AggregatePolicy{Rules: rules, Default: "sum"}
	require.NoError(t, s.Aggregates.Validate())

	ds, err := New(Config{Name: "wiki"}, s)
	require.NoError(t, err)

	feed := attrs(
		Attribute{Name: "avg_latency", Type: expr.TypeNumber, Unsplittable: true},
		Attribute{Name: "min_latency", Type: expr.TypeNumber, Unsplittable: true},
	)

	out, _ := ds.AddAttributes(feed)
	assert.Equal(t, "$main.average($avg_latency)", out.Measures[0].Expression.String())
	assert.Equal(t, "$main.sum($min_latency)", out.Measures[1].Expression.String())

	again, _ := out.AddAttributes(feed)
	assert.Equal(t, out.Measures, again.Measures)
}

func TestAddAttributesRewritesWithoutTouchingInput(t *testing.T) {
	const src = `
name: wiki
timeAttribute: "time:#raw"
defaultSortMeasure: added
dimensions:
  - {name: page, expression: "${page:#love$}"}
measures:
  - {name: added, expression: "$main.sum(${added!!!})"}
`

	ds := mustParse(t, src)

	merged, _ := ds.AddAttributes(attrs(
		Attribute{Name: "time:#raw", Type: expr.TypeTime},
		Attribute{Name: "page:#love$", Type: expr.TypeString},
		Attribute{Name: "added!!!", Type: expr.TypeNumber, Unsplittable: true},
	))

	assert.Equal(t, mustParse(t, src), ds, "input must not change")

	assert.Equal(t, "time_raw", merged.TimeAttribute)
	assert.Equal(t, "added", merged.DefaultSortMeasure)
	assert.Equal(t, "$main.sum($added_)", merged.Measures[0].Expression.String())
	assert.Empty(t, merged.Issues())
}
