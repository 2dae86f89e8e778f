package viz

import (
	"errors"
	"fmt"
	"slices"

	"schema-reconciler/internal/datasource"
)

// ErrRegistry marks an invalid manifest registration.
var ErrRegistry = errors.New("manifest registry error")

// HandleCircumstance decides whether a visualization can render the given
// state. It must be a pure function of its arguments. current is true when
// the visualization is the one currently shown.
type HandleCircumstance func(ds *datasource.DataSource, splits Splits, colors *Colors, current bool) Resolve

// Manifest describes one visualization.
type Manifest struct {
	ID    string
	Title string
	// Handle is the resolver of the visualization.
	Handle HandleCircumstance
	// Class groups visualizations sharing a rendering strategy.
	Class string
}

// Evaluate runs the manifest's resolver.
func (m Manifest) Evaluate(ds *datasource.DataSource, splits Splits, colors *Colors, current bool) Resolve {
	return m.Handle(ds, splits, colors, current)
}

// Registry is the closed, explicitly populated list of manifests.
// Registration order breaks score ties during selection.
type Registry struct {
	manifests []Manifest
}

// NewRegistry returns a registry holding the given manifests.
func NewRegistry(manifests ...Manifest) (*Registry, error) {
	r := &Registry{}

	for _, m := range manifests {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register appends m. IDs are unique and every manifest needs a resolver.
func (r *Registry) Register(m Manifest) error {
	if m.ID == "" {
		return fmt.Errorf("%w: manifest without an id", ErrRegistry)
	}

	if m.Handle == nil {
		return fmt.Errorf("%w: manifest '%s' has no resolver", ErrRegistry, m.ID)
	}

	if slices.ContainsFunc(r.manifests, func(o Manifest) bool { return o.ID == m.ID }) {
		return fmt.Errorf("%w: manifest '%s' already registered", ErrRegistry, m.ID)
	}

	r.manifests = append(r.manifests, m)

	return nil
}

// All returns the manifests in registration order.
func (r *Registry) All() []Manifest {
	return slices.Clone(r.manifests)
}

// Get returns the manifest with the given id.
func (r *Registry) Get(id string) (Manifest, bool) {
	i := slices.IndexFunc(r.manifests, func(m Manifest) bool { return m.ID == id })
	if i < 0 {
		return Manifest{}, false
	}

	return r.manifests[i], true
}
