package viz

import (
	"slices"
	"sort"

	"schema-reconciler/internal/datasource"
)

// Candidate is the claim of one manifest.
type Candidate struct {
	Manifest Manifest
	Resolve  Resolve

	// order is the registration index, used as tie breaker.
	order int
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by registration order.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Resolve.Score != c[j].Resolve.Score {
		return c[i].Resolve.Score > c[j].Resolve.Score
	}

	return c[i].order < c[j].order
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// Selection is the outcome of Select.
type Selection struct {
	// Manifest is the winning visualization.
	Manifest Manifest
	// Resolve is the winner's original claim.
	Resolve Resolve
	// Splits and Colors are the state to render, with any automatic
	// adjustment applied.
	Splits Splits
	Colors *Colors
	// Adjusted reports whether an adjustment was applied.
	Adjusted bool
	// Candidates lists every claim, best first.
	Candidates CandidateList
}

// Rank evaluates every registered manifest and returns the claims, best
// first. current is the id of the visualization currently shown.
func Rank(r *Registry, ds *datasource.DataSource, splits Splits, colors *Colors, current string) CandidateList {
	var candidates CandidateList

	for i, m := range r.All() {
		res := m.Evaluate(ds, splits, colors, m.ID == current)
		if !res.Claims() {
			continue
		}

		candidates = append(candidates, Candidate{Manifest: m, Resolve: res, order: i})
	}

	sort.Sort(candidates)

	return candidates
}

// Select picks the visualization to render. It returns false when no
// manifest claims the circumstance.
func Select(r *Registry, ds *datasource.DataSource, splits Splits, colors *Colors, current string) (Selection, bool) {
	candidates := Rank(r, ds, splits, colors, current)

	best := candidates.Best()
	if best == nil {
		return Selection{}, false
	}

	sel := Selection{
		Manifest:   best.Manifest,
		Resolve:    best.Resolve,
		Splits:     slices.Clone(splits),
		Colors:     colors,
		Candidates: candidates,
	}

	if best.Resolve.IsAutomatic() {
		adj := best.Resolve.Adjustment
		if adj.Splits != nil {
			sel.Splits = slices.Clone(*adj.Splits)
		}

		if adj.Colors != nil {
			sel.Colors = adj.Colors
			if adj.Colors.Dimension == "" {
				sel.Colors = nil
			}
		}

		sel.Adjusted = true
	}

	return sel, true
}
