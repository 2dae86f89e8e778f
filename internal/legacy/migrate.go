package legacy

import (
	"fmt"
	"sort"

	"schema-reconciler/internal/common"
	"schema-reconciler/internal/naming"
)

// Legacy markers.
const (
	keyEngine  = "engine"
	keyOptions = "options"
)

// Options keys understood by the migrator.
const (
	optSkipIntrospection  = "skipIntrospection"
	optAttributeOverrides = "attributeOverrides"
	optDefaultSplits      = "defaultSplits"
	optPriority           = "priority"
)

// retainedOptions are kept in the reduced options bag after migration.
var retainedOptions = []string{optPriority}

// DefaultRefreshRule is applied when a legacy config carries none.
func DefaultRefreshRule() map[string]any {
	return map[string]any{"rule": "query", "refresh": "PT1M"}
}

// IsLegacy reports whether raw carries any legacy marker.
func IsLegacy(raw map[string]any) bool {
	_, engine := raw[keyEngine]
	_, options := raw[keyOptions]

	return engine || options
}

// Migrate returns a migrated copy of raw. raw is never modified.
func Migrate(raw map[string]any) (map[string]any, error) {
	out, _ := deepCopy(raw).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	if err := migrateEngine(out); err != nil {
		return nil, err
	}

	if err := migrateOptions(out); err != nil {
		return nil, err
	}

	if err := migrateDimensions(out); err != nil {
		return nil, err
	}

	if err := defaultSortMeasure(out); err != nil {
		return nil, err
	}

	if _, ok := out["refreshRule"]; !ok {
		out["refreshRule"] = DefaultRefreshRule()
	}

	return out, nil
}

func migrateEngine(out map[string]any) error {
	engine, ok := out[keyEngine]
	if !ok {
		return nil
	}

	delete(out, keyEngine)

	if cluster, ok := out["clusterName"]; ok && cluster != engine {
		return common.ConfigErrorf(keyEngine, "engine '%v' conflicts with clusterName '%v'", engine, cluster)
	}

	name, ok := engine.(string)
	if !ok {
		return common.ConfigErrorf(keyEngine, "engine must be a string (is %T)", engine)
	}

	out["clusterName"] = name

	return nil
}

func migrateOptions(out map[string]any) error {
	rawOptions, ok := out[keyOptions]
	if !ok || rawOptions == nil {
		delete(out, keyOptions)
		return nil
	}

	options, ok := rawOptions.(map[string]any)
	if !ok {
		return common.ConfigErrorf(keyOptions, "options must be a mapping (is %T)", rawOptions)
	}

	reduced := map[string]any{}

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value := options[key]
		field := keyOptions + "." + key

		switch key {
		case optSkipIntrospection:
			skip, ok := value.(bool)
			if !ok {
				return common.ConfigErrorf(field, "options.skipIntrospection must be a boolean (is %T)", value)
			}

			if skip {
				if current, set := out["introspection"]; set && current != "none" {
					return common.ConfigErrorf(field, "options.skipIntrospection conflicts with introspection '%v'", current)
				}

				out["introspection"] = "none"
			}

		case optAttributeOverrides:
			if _, set := out[optAttributeOverrides]; set {
				return common.ConfigErrorf(field, "attributeOverrides given both at top level and in options")
			}

			out[optAttributeOverrides] = value

		case optDefaultSplits:
			splits, err := migrateSplits(value)
			if err != nil {
				return err
			}

			out[optDefaultSplits] = splits

		default:
			if !retained(key) {
				return common.ConfigErrorf(field, "unrecognized legacy option '%s'", key)
			}

			reduced[key] = value
		}
	}

	if len(reduced) == 0 {
		delete(out, keyOptions)
	} else {
		out[keyOptions] = reduced
	}

	return nil
}

func retained(key string) bool {
	for _, k := range retainedOptions {
		if k == key {
			return true
		}
	}

	return false
}

// migrateSplits turns a name or a list of names into reference splits.
func migrateSplits(value any) ([]any, error) {
	const field = keyOptions + "." + optDefaultSplits

	var names []string

	switch v := value.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, common.ConfigErrorf(field, "options.defaultSplits entries must be strings (found %T)", item)
			}

			names = append(names, s)
		}
	default:
		return nil, common.ConfigErrorf(field, "options.defaultSplits must be a string or a list (is %T)", value)
	}

	splits := make([]any, 0, len(names))
	for _, n := range names {
		splits = append(splits, map[string]any{"expression": "$" + n})
	}

	return splits, nil
}

func migrateDimensions(out map[string]any) error {
	raw, ok := out["dimensions"]
	if !ok || raw == nil {
		return nil
	}

	dims, ok := raw.([]any)
	if !ok {
		return common.ConfigErrorf("dimensions", "dimensions must be a list (is %T)", raw)
	}

	for i, item := range dims {
		dim, ok := item.(map[string]any)
		if !ok {
			return common.ConfigErrorf(fmt.Sprintf("dimensions[%d]", i), "dimension must be a mapping (is %T)", item)
		}

		name, _ := dim["name"].(string)

		if _, ok := dim["title"]; !ok && name != "" {
			dim["title"] = naming.Title(name)
		}

		if _, ok := dim["expression"]; !ok && dim["kind"] == "time" && name != "" {
			dim["expression"] = "$" + name
		}
	}

	return nil
}

func defaultSortMeasure(out map[string]any) error {
	if _, ok := out["defaultSortMeasure"]; ok {
		return nil
	}

	raw, ok := out["measures"]
	if !ok || raw == nil {
		return nil
	}

	measures, ok := raw.([]any)
	if !ok {
		return common.ConfigErrorf("measures", "measures must be a list (is %T)", raw)
	}

	if len(measures) == 0 {
		return nil
	}

	if first, ok := measures[0].(map[string]any); ok {
		if name, ok := first["name"].(string); ok {
			out["defaultSortMeasure"] = name
		}
	}

	return nil
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = deepCopy(val)
		}

		return m
	case []any:
		s := make([]any, len(x))
		for i, val := range x {
			s[i] = deepCopy(val)
		}

		return s
	default:
		return v
	}
}
