package datasource

import (
	"fmt"

	"schema-reconciler/internal/expr"
)

// Issues reports every problem found in the dimensions and measures of ds,
// dimensions first, each in declaration order and at most one issue per
// field. It never fails; a data source with issues stays usable.
func (ds *DataSource) Issues() []string {
	var issues []string

	for _, d := range ds.Dimensions {
		if _, err := expr.Resolve(d.Expression, ds); err != nil {
			issues = append(issues, fmt.Sprintf("failed to validate dimension '%s': %v", d.Name, err))
		}
	}

	for _, m := range ds.Measures {
		if msg := ds.measureIssue(m); msg != "" {
			issues = append(issues, fmt.Sprintf("failed to validate measure '%s': %s", m.Name, msg))
		}
	}

	for _, name := range ds.DefaultPinnedDimensions {
		if _, ok := ds.Dimension(name); !ok {
			issues = append(issues, fmt.Sprintf("unknown pinned dimension '%s'", name))
		}
	}

	for _, name := range ds.DefaultSelectedMeasures {
		if _, ok := ds.Measure(name); !ok {
			issues = append(issues, fmt.Sprintf("unknown selected measure '%s'", name))
		}
	}

	return issues
}

func (ds *DataSource) measureIssue(m Measure) string {
	if !expr.ContainsMain(m.Expression) {
		return "measure must contain a $main reference"
	}

	t, err := expr.Resolve(m.Expression, ds)
	if err != nil {
		return err.Error()
	}

	if t != expr.TypeNumber {
		return fmt.Sprintf("measure must resolve to NUMBER (is %s)", t)
	}

	return ""
}
