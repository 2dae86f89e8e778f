package arena

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"schema-reconciler/internal/datasource"
)

// ErrNotFound is returned when no version is published under a name.
var ErrNotFound = errors.New("data source not published")

// Version is one published state of a data source.
type Version struct {
	// ID identifies the version across processes.
	ID uuid.UUID
	// Seq increases by one with every publication under the same name.
	Seq        uint64
	Published  time.Time
	DataSource *datasource.DataSource
}

// Arena maps data source names to their published versions.
type Arena struct {
	mu    sync.RWMutex // guards slots, not the versions
	slots map[string]*atomic.Pointer[Version]

	now func() time.Time
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{
		slots: make(map[string]*atomic.Pointer[Version]),
		now:   time.Now,
	}
}

func (a *Arena) slot(name string, create bool) *atomic.Pointer[Version] {
	a.mu.RLock()
	s, ok := a.slots[name]
	a.mu.RUnlock()

	if ok || !create {
		return s
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok = a.slots[name]; !ok {
		s = &atomic.Pointer[Version]{}
		a.slots[name] = s
	}

	return s
}

func (a *Arena) next(prev *Version, ds *datasource.DataSource) *Version {
	v := &Version{
		ID:         uuid.New(),
		Seq:        1,
		Published:  a.now(),
		DataSource: ds,
	}

	if prev != nil {
		v.Seq = prev.Seq + 1
	}

	return v
}

// Publish replaces whatever is published under ds.Name.
func (a *Arena) Publish(ds *datasource.DataSource) *Version {
	s := a.slot(ds.Name, true)

	for {
		prev := s.Load()

		v := a.next(prev, ds)
		if s.CompareAndSwap(prev, v) {
			return v
		}
	}
}

// Current returns the version published under name.
func (a *Arena) Current(name string) (*Version, bool) {
	s := a.slot(name, false)
	if s == nil {
		return nil, false
	}

	v := s.Load()

	return v, v != nil
}

// Update derives a new version from the current one. fn must be pure: when
// another writer publishes first, fn runs again on the newer version. An
// error from fn leaves the published version untouched.
func (a *Arena) Update(name string, fn func(*datasource.DataSource) (*datasource.DataSource, error)) (*Version, error) {
	s := a.slot(name, false)
	if s == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	for {
		prev := s.Load()
		if prev == nil {
			return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
		}

		ds, err := fn(prev.DataSource)
		if err != nil {
			return nil, err
		}

		if ds.Name != name {
			return nil, fmt.Errorf("update of '%s' produced data source '%s'", name, ds.Name)
		}

		v := a.next(prev, ds)
		if s.CompareAndSwap(prev, v) {
			return v, nil
		}
	}
}

// Remove withdraws name.
func (a *Arena) Remove(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.slots, name)
}

// Names returns the published names, sorted.
func (a *Arena) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.slots))
	for name, s := range a.slots {
		if s.Load() != nil {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

// Snapshot returns the current data source of every published name, sorted
// by name.
func (a *Arena) Snapshot() []*datasource.DataSource {
	var out []*datasource.DataSource

	for _, name := range a.Names() {
		if v, ok := a.Current(name); ok {
			out = append(out, v.DataSource)
		}
	}

	return out
}
