package tools

import (
	"iter"
	"sync"
	"sync/atomic"
)

// snapshot is an immutable view of a registry's contents.
type snapshot struct {
	byName map[string]Descriptor
	order  []string
}

var emptySnapshot = &snapshot{byName: map[string]Descriptor{}}

func (s *snapshot) with(d Descriptor) *snapshot {
	next := &snapshot{
		byName: make(map[string]Descriptor, len(s.byName)+1),
		order:  make([]string, len(s.order), len(s.order)+1),
	}
	for k, v := range s.byName {
		next.byName[k] = v
	}
	copy(next.order, s.order)
	next.byName[d.Name()] = d
	next.order = append(next.order, d.Name())
	return next
}

func (s *snapshot) without(name string) *snapshot {
	next := &snapshot{
		byName: make(map[string]Descriptor, len(s.byName)),
		order:  make([]string, 0, len(s.order)),
	}
	for _, n := range s.order {
		if n == name {
			continue
		}
		next.byName[n] = s.byName[n]
		next.order = append(next.order, n)
	}
	return next
}

// Registry maps tool names to descriptors.
//
// Reads load an immutable snapshot and never block. Register and Unregister
// are serialised and publish a new snapshot atomically, so in-flight readers
// keep a consistent view.
type Registry struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(emptySnapshot)
	return r
}

func (r *Registry) load() *snapshot {
	if s := r.snap.Load(); s != nil {
		return s
	}
	return emptySnapshot
}

// Register adds d. Registering a descriptor equal to the one already held
// under the same name is a no-op; any other collision is a DuplicateToolError.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.load()
	if existing, ok := cur.byName[d.Name()]; ok {
		if existing.Equal(d) {
			return nil
		}
		return &DuplicateToolError{Name: d.Name()}
	}
	r.snap.Store(cur.with(d))
	return nil
}

// Unregister removes the tool called name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.load()
	if _, ok := cur.byName[name]; !ok {
		return &UnknownToolError{Name: name}
	}
	r.snap.Store(cur.without(name))
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, error) {
	d, ok := r.load().byName[name]
	if !ok {
		return Descriptor{}, &UnknownToolError{Name: name}
	}
	return d, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.load().byName[name]
	return ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.load().order) }

// Names returns the registered tool names in registration order. The
// sequence reads the snapshot current at the time of the call and may be
// ranged over any number of times.
func (r *Registry) Names() iter.Seq[string] {
	s := r.load()
	return func(yield func(string) bool) {
		for _, n := range s.order {
			if !yield(n) {
				return
			}
		}
	}
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	s := r.load()
	out := make([]Descriptor, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.byName[n])
	}
	return out
}

// Definitions returns all tool definitions in OpenAI function-calling format.
func (r *Registry) Definitions() []map[string]any {
	ds := r.Descriptors()
	list := make([]map[string]any, 0, len(ds))
	for _, d := range ds {
		list = append(list, d.Definition())
	}
	return list
}

// Merge returns a new registry holding r together with others.
func (r *Registry) Merge(others ...*Registry) (*Registry, error) {
	return Merge(append([]*Registry{r}, others...)...)
}

// Merge returns a new registry containing the union of regs. Identical
// descriptors under one name collapse to a single entry; differing ones fail
// with a DuplicateToolError naming the first collision. The inputs are not
// modified.
func Merge(regs ...*Registry) (*Registry, error) {
	merged := &snapshot{byName: map[string]Descriptor{}}
	for _, reg := range regs {
		if reg == nil {
			continue
		}
		s := reg.load()
		for _, n := range s.order {
			d := s.byName[n]
			if existing, ok := merged.byName[n]; ok {
				if !existing.Equal(d) {
					return nil, &DuplicateToolError{Name: n}
				}
				continue
			}
			merged.byName[n] = d
			merged.order = append(merged.order, n)
		}
	}
	out := &Registry{}
	out.snap.Store(merged)
	return out, nil
}

// FromDescriptors builds a registry from ds, failing on the first conflict.
func FromDescriptors(ds ...Descriptor) (*Registry, error) {
	r := NewRegistry()
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}
