package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-reconciler/internal/diagnostic"
	"schema-reconciler/internal/expr"
)

func TestLoadAllContinuesPastFailures(t *testing.T) {
	data := []byte(`
dataSources:
  - name: wiki
    clusterName: druid
    dimensions:
      - name: page
  - name: bad name
  - engine: druid
    name: legacy
    options:
      colorize: true
  - name: twitter
    measures:
      - name: tweets
        expression: $main.count()
`)

	dss, diags, err := LoadAll(data, DefaultSettings())
	require.NoError(t, err)

	require.Len(t, dss, 2)
	assert.Equal(t, "wiki", dss[0].Name)
	assert.Equal(t, "twitter", dss[1].Name)

	failed := diags.ByCode(diagnostic.CodeLoadFailed)
	require.Len(t, failed, 2)
	assert.Equal(t, "bad name", failed[0].DataSource)
	assert.Equal(t, "'bad name' is not a URL safe name. Try 'bad_name' instead?", failed[0].Message)
	assert.Equal(t, "legacy", failed[1].DataSource)
	assert.Equal(t, "unrecognized legacy option 'colorize'", failed[1].Message)
}

func TestLoadAllBadYAML(t *testing.T) {
	_, _, err := LoadAll([]byte("dataSources: [\n"), DefaultSettings())
	require.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	ds := mustParse(t, stubYAML+`
defaultPinnedDimensions: [page]
defaultSplits:
  - expression: $__time
dimensions:
  - {name: page, url: "https://example.com/%s"}
  - {name: pageInBrackets, expression: "'[' ++ $page ++ ']'"}
measures:
  - {name: added, expression: $main.sum($added), format: "0.0"}
  - {name: ratio, expression: "$main.sum($added) / $main.count()"}
`)

	ds, _ = ds.AddAttributes(attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "page:#love$", Type: expr.TypeString},
		Attribute{Name: "page", Type: expr.TypeString},
	))

	data, err := Marshal(ds)
	require.NoError(t, err)

	back, err := Parse(data, DefaultSettings())
	require.NoError(t, err, string(data))
	assert.Equal(t, ds, back, string(data))
}

func TestMarshalRoundTripBraceNames(t *testing.T) {
	ds, _ := mustParse(t, "name: wiki\n").AddAttributes(attrs(
		Attribute{Name: "__time", Type: expr.TypeTime},
		Attribute{Name: "a}b", Type: expr.TypeString},
		Attribute{Name: `c\d`, Type: expr.TypeString},
	))

	data, err := Marshal(ds)
	require.NoError(t, err)

	back, err := Parse(data, DefaultSettings())
	require.NoError(t, err, string(data))
	assert.Equal(t, ds, back, string(data))

	a, ok := back.Attributes.Get("a_b")
	require.True(t, ok)
	assert.Equal(t, "${a\\}b}", a.Derivation.String())
}

func TestWriteAndLoadFile(t *testing.T) {
	ds := mustParse(t, stubYAML)
	path := filepath.Join(t.TempDir(), "wiki.yaml")

	require.NoError(t, WriteFile(ds, path))

	loaded, err := LoadFile(path, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, ds, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), DefaultSettings())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalAll(t *testing.T) {
	wiki := mustParse(t, "name: wiki\n")
	twitter := mustParse(t, "name: twitter\n")

	data, err := MarshalAll([]*DataSource{wiki, twitter})
	require.NoError(t, err)

	dss, diags, err := LoadAll(data, DefaultSettings())
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())
	assert.Equal(t, []*DataSource{wiki, twitter}, dss)
}

func TestAggregatePolicy(t *testing.T) {
	p := DefaultAggregatePolicy()

	tests := []struct {
		name     string
		expected string
	}{
		{"added", "sum"},
		{"min_price", "min"},
		{"maxDelta", "max"},
		{"admin_count", "sum"},
		{"minimum", "sum"},
		{"price:max", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Pick(tt.name))
		})
	}

	assert.Equal(t, []string{"sum", "min", "max"}, p.Aggregates())

	_, err := ParseAggregateRules("avg")
	assert.Error(t, err)

	bad := AggregatePolicy{Default: "count"}
	assert.Error(t, bad.Validate())
}
