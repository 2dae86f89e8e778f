package viz

import (
	"slices"

	"schema-reconciler/internal/datasource"
)

// ClassMulti marks visualizations that render any number of measures.
const ClassMulti = "multi"

// currentBonus is added to the score of the visualization already shown so
// that it is not replaced by an equally good alternative.
const currentBonus = 1

func bonus(score int, current bool) int {
	if current {
		return score + currentBonus
	}

	return score
}

// Totals shows the aggregate values of the selected measures.
var Totals = Manifest{
	ID:     "totals",
	Title:  "Totals",
	Class:  ClassMulti,
	Handle: handleTotals,
}

func handleTotals(_ *datasource.DataSource, splits Splits, _ *Colors, _ bool) Resolve {
	if splits.Len() == 0 {
		return Ready(10)
	}

	empty := EmptySplits

	return Automatic(3, Adjustment{Splits: &empty})
}

// Table shows one row per split value.
var Table = Manifest{
	ID:     "table",
	Title:  "Table",
	Class:  ClassMulti,
	Handle: handleTable,
}

func handleTable(ds *datasource.DataSource, splits Splits, _ *Colors, current bool) Resolve {
	if splits.Len() == 0 {
		d, ok := firstDimension(ds, datasource.KindString)
		if !ok {
			return NoClaim()
		}

		split := SplitOn(d.Name)

		return Automatic(4, Adjustment{Splits: &split})
	}

	if _, ok := splits.Kinds(ds); !ok {
		return NoClaim()
	}

	if splits.Len() > 1 {
		return Ready(10)
	}

	return Ready(bonus(8, current))
}

// BarChart shows one bar per value of a single categorical split.
var BarChart = Manifest{
	ID:     "bar-chart",
	Title:  "Bar Chart",
	Class:  ClassMulti,
	Handle: handleBarChart,
}

func handleBarChart(ds *datasource.DataSource, splits Splits, _ *Colors, current bool) Resolve {
	kinds, ok := splits.Kinds(ds)
	if !ok || len(kinds) == 0 || !categorical(kinds[0]) {
		return NoClaim()
	}

	if len(kinds) == 1 {
		return Ready(bonus(9, current))
	}

	first := slices.Clone(splits[:1])

	return Automatic(3, Adjustment{Splits: &first})
}

func categorical(k datasource.Kind) bool {
	return k == datasource.KindString || k == datasource.KindBoolean
}

// LineChart plots measures over a single continuous split.
var LineChart = Manifest{
	ID:     "line-chart",
	Title:  "Line Chart",
	Class:  ClassMulti,
	Handle: handleLineChart,
}

func handleLineChart(ds *datasource.DataSource, splits Splits, _ *Colors, _ bool) Resolve {
	if splits.Len() == 0 {
		d, ok := ds.TimeDimension()
		if !ok {
			return NoClaim()
		}

		split := SplitOn(d.Name)

		return Automatic(5, Adjustment{Splits: &split})
	}

	kinds, ok := splits.Kinds(ds)
	if !ok || len(kinds) != 1 {
		return NoClaim()
	}

	if kinds[0] != datasource.KindTime && kinds[0] != datasource.KindNumber {
		return NoClaim()
	}

	return Ready(10)
}

// Builtin returns a registry with the built in visualizations in their
// canonical order.
func Builtin() *Registry {
	r, err := NewRegistry(Totals, Table, LineChart, BarChart)
	if err != nil {
		panic(err)
	}

	return r
}
