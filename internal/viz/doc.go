// Package viz implements the visualization resolution protocol.
//
// Every visualization is described by a Manifest carrying a pure
// HandleCircumstance function. Given a data source and the current analytical
// state (splits and colors) the function answers with a Resolve: ready to
// render with a score, renderable after an automatic adjustment of the state,
// or no claim at all. Select evaluates every registered manifest and picks
// the best one, applying the adjustment of an automatic winner.
package viz
