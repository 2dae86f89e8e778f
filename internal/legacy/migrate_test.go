package legacy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"schema-reconciler/internal/common"
)

func decode(t *testing.T, src string) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(src), &m))

	return m
}

const wikiLegacy = `
name: wiki
engine: druid
source: wiki
subsetFilter: null
dimensions:
  - kind: time
    name: __time
    expression: $__time
  - name: page
measures:
  - name: added
    expression: $main.sum($added)
options:
  skipIntrospection: true
  attributeOverrides:
    - name: page
      type: STRING
  defaultSplits: __time
  priority: 13
`

func TestIsLegacy(t *testing.T) {
	assert.True(t, IsLegacy(map[string]any{"engine": "druid"}))
	assert.True(t, IsLegacy(map[string]any{"options": map[string]any{}}))
	assert.False(t, IsLegacy(map[string]any{"clusterName": "druid"}))
}

func TestMigrateWiki(t *testing.T) {
	raw := decode(t, wikiLegacy)

	out, err := Migrate(raw)
	require.NoError(t, err)

	expected := decode(t, `
name: wiki
clusterName: druid
source: wiki
subsetFilter: null
introspection: none
attributeOverrides:
  - name: page
    type: STRING
defaultSplits:
  - expression: $__time
defaultSortMeasure: added
refreshRule:
  rule: query
  refresh: PT1M
options:
  priority: 13
dimensions:
  - kind: time
    name: __time
    title: Time
    expression: $__time
  - name: page
    title: Page
measures:
  - name: added
    expression: $main.sum($added)
`)

	assert.Equal(t, expected, out)
}

func TestMigrateDoesNotTouchInput(t *testing.T) {
	raw := decode(t, wikiLegacy)
	before := decode(t, wikiLegacy)

	_, err := Migrate(raw)
	require.NoError(t, err)
	assert.Equal(t, before, raw)
}

func TestMigrateMinimal(t *testing.T) {
	out, err := Migrate(map[string]any{
		"engine":  "druid",
		"options": map[string]any{"skipIntrospection": true, "priority": 13},
	})
	require.NoError(t, err)

	assert.Equal(t, "druid", out["clusterName"])
	assert.Equal(t, "none", out["introspection"])
	assert.Equal(t, map[string]any{"priority": 13}, out["options"])
	assert.NotContains(t, out, "engine")
}

func TestMigrateKeepsExplicitValues(t *testing.T) {
	out, err := Migrate(map[string]any{
		"engine":             "druid",
		"clusterName":        "druid",
		"defaultSortMeasure": "deleted",
		"refreshRule":        map[string]any{"rule": "fixed"},
		"options":            map[string]any{"skipIntrospection": false, "defaultSplits": []any{"page", "user"}},
		"measures":           []any{map[string]any{"name": "added"}},
		"dimensions":         []any{map[string]any{"name": "t", "kind": "time", "expression": "$__time", "title": "T"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "deleted", out["defaultSortMeasure"])
	assert.Equal(t, map[string]any{"rule": "fixed"}, out["refreshRule"])
	assert.NotContains(t, out, "introspection")
	assert.NotContains(t, out, "options")
	assert.Equal(t, []any{
		map[string]any{"expression": "$page"},
		map[string]any{"expression": "$user"},
	}, out["defaultSplits"])
	assert.Equal(t, []any{map[string]any{"name": "t", "kind": "time", "expression": "$__time", "title": "T"}}, out["dimensions"])
}

func TestMigrateErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		field   string
		message string
	}{
		{
			name:    "engine conflicts with clusterName",
			raw:     map[string]any{"engine": "druid", "clusterName": "mysql"},
			field:   "engine",
			message: "engine 'druid' conflicts with clusterName 'mysql'",
		},
		{
			name:    "unknown option",
			raw:     map[string]any{"options": map[string]any{"priority": 1, "colorize": true}},
			field:   "options.colorize",
			message: "unrecognized legacy option 'colorize'",
		},
		{
			name:    "options not a mapping",
			raw:     map[string]any{"options": []any{"x"}},
			field:   "options",
			message: "options must be a mapping (is []interface {})",
		},
		{
			name:    "bad defaultSplits",
			raw:     map[string]any{"options": map[string]any{"defaultSplits": 3}},
			field:   "options.defaultSplits",
			message: "options.defaultSplits must be a string or a list (is int)",
		},
		{
			name:    "bad skipIntrospection",
			raw:     map[string]any{"options": map[string]any{"skipIntrospection": "yes"}},
			field:   "options.skipIntrospection",
			message: "options.skipIntrospection must be a boolean (is string)",
		},
		{
			name: "attributeOverrides twice",
			raw: map[string]any{
				"attributeOverrides": []any{},
				"options":            map[string]any{"attributeOverrides": []any{}},
			},
			field:   "options.attributeOverrides",
			message: "attributeOverrides given both at top level and in options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Migrate(tt.raw)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, common.ErrConfig))
			assert.Equal(t, tt.message, err.Error())

			var cfgErr *common.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
