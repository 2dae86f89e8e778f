package viz

import (
	"slices"

	"schema-reconciler/internal/datasource"
	"schema-reconciler/internal/expr"
)

// Split splits the data by one dimension.
type Split struct {
	Dimension string
}

// Splits is the ordered list of active splits.
type Splits []Split

// EmptySplits is the unsplit state.
var EmptySplits = Splits{}

// SplitOn returns splits over the named dimensions.
func SplitOn(dimensions ...string) Splits {
	out := make(Splits, len(dimensions))
	for i, d := range dimensions {
		out[i] = Split{Dimension: d}
	}

	return out
}

// Len returns the number of splits.
func (s Splits) Len() int { return len(s) }

// Kinds returns the kinds of the split dimensions. Splits on dimensions the
// data source does not define are reported as false.
func (s Splits) Kinds(ds *datasource.DataSource) ([]datasource.Kind, bool) {
	kinds := make([]datasource.Kind, len(s))

	for i, sp := range s {
		d, ok := ds.Dimension(sp.Dimension)
		if !ok {
			return nil, false
		}

		kinds[i] = d.Kind
	}

	return kinds, true
}

// Equal reports whether both lists split on the same dimensions in order.
func (s Splits) Equal(o Splits) bool {
	return slices.Equal(s, o)
}

// DefaultSplits maps the default splits of ds onto its dimensions by
// structural expression equality. Splits matching no dimension are dropped.
func DefaultSplits(ds *datasource.DataSource) Splits {
	out := Splits{}

	for _, sp := range ds.DefaultSplits {
		for _, d := range ds.Dimensions {
			if expr.Equal(sp.Expression, d.Expression) {
				out = append(out, Split{Dimension: d.Name})
				break
			}
		}
	}

	return out
}

// Colors assigns colors to values of one dimension.
type Colors struct {
	Dimension string
	Values    []string
}

// firstDimension returns the first dimension of ds whose kind is in kinds.
func firstDimension(ds *datasource.DataSource, kinds ...datasource.Kind) (datasource.Dimension, bool) {
	for _, d := range ds.Dimensions {
		if slices.Contains(kinds, d.Kind) {
			return d, true
		}
	}

	return datasource.Dimension{}, false
}
