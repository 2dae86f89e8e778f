package viz

//go:generate go tool stringer -type=ResolveState -linecomment -output=resolvestate_string.go

// ResolveState is the answer of a manifest to a circumstance.
type ResolveState int

const (
	StateNoClaim   ResolveState = iota // no-claim
	StateReady                         // ready
	StateAutomatic                     // automatic
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 10
)

// Adjustment is the change of analytical state an automatic resolve asks
// for. Nil fields are left unchanged.
type Adjustment struct {
	Splits *Splits
	Colors *Colors
}

// Resolve is the outcome of HandleCircumstance.
type Resolve struct {
	State      ResolveState
	Score      int
	Adjustment Adjustment
}

// Ready claims the circumstance as renderable as is.
func Ready(score int) Resolve {
	return Resolve{State: StateReady, Score: clampScore(score)}
}

// Automatic claims the circumstance provided adj is applied first.
func Automatic(score int, adj Adjustment) Resolve {
	return Resolve{State: StateAutomatic, Score: clampScore(score), Adjustment: adj}
}

// NoClaim declines the circumstance.
func NoClaim() Resolve {
	return Resolve{State: StateNoClaim}
}

// IsReady reports whether r is a ready claim.
func (r Resolve) IsReady() bool { return r.State == StateReady }

// IsAutomatic reports whether r needs an adjustment.
func (r Resolve) IsAutomatic() bool { return r.State == StateAutomatic }

// Claims reports whether r raises any claim.
func (r Resolve) Claims() bool { return r.State != StateNoClaim }

func clampScore(score int) int {
	return min(max(score, MinScore), MaxScore)
}
