package modes

import (
	"fmt"
	"iter"
	"strings"
	"sync"
)

// Registry maps mode identifiers (and their aliases) to definitions.
// It is populated at start-up and read concurrently afterwards.
type Registry struct {
	mu      sync.RWMutex
	defs    map[string]Definition
	aliases map[string]string // alias -> id
	order   []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]Definition),
		aliases: make(map[string]string),
	}
}

// Define adds def under id. Identifiers and aliases are case-insensitive.
func (r *Registry) Define(id string, def Definition) error {
	id = normalize(id)
	def.ID = id
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(id) {
		return &DuplicateModeError{Mode: id}
	}
	aliases := make([]string, 0, len(def.Aliases))
	for _, a := range def.Aliases {
		a = normalize(a)
		if a == "" || a == id {
			continue
		}
		if r.taken(a) {
			return &DuplicateModeError{Mode: a}
		}
		aliases = append(aliases, a)
	}
	def.Aliases = aliases

	r.defs[id] = def
	for _, a := range aliases {
		r.aliases[a] = id
	}
	r.order = append(r.order, id)
	return nil
}

func (r *Registry) taken(name string) bool {
	_, isID := r.defs[name]
	_, isAlias := r.aliases[name]
	return isID || isAlias
}

// Resolve returns the definition for id or one of its aliases.
func (r *Registry) Resolve(id string) (Definition, error) {
	key := normalize(id)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	def, ok := r.defs[key]
	if !ok {
		return Definition{}, &UnknownModeError{Mode: id}
	}
	return def, nil
}

// Has reports whether id resolves.
func (r *Registry) Has(id string) bool {
	_, err := r.Resolve(id)
	return err == nil
}

// ListModes returns the canonical mode identifiers in definition order.
func (r *Registry) ListModes() iter.Seq[string] {
	r.mu.RLock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	r.mu.RUnlock()

	return func(yield func(string) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

// Definitions returns every definition in definition order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// Len returns the number of defined modes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Describe returns a human-readable summary of a mode.
func (r *Registry) Describe(id string) (string, error) {
	def, err := r.Resolve(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", def.Title(), def.ID)
	if def.Description != "" {
		fmt.Fprintf(&sb, "  %s\n", def.Description)
	}
	if len(def.Aliases) > 0 {
		fmt.Fprintf(&sb, "  aliases:  %s\n", strings.Join(def.Aliases, ", "))
	}
	if len(def.Keywords) > 0 {
		fmt.Fprintf(&sb, "  keywords: %s\n", strings.Join(def.Keywords, ", "))
	}
	for _, l := range []struct {
		label string
		names []string
	}{
		{"layer A", def.Tools.A},
		{"layer B", def.Tools.B},
		{"layer C", def.Tools.C},
	} {
		if len(l.names) > 0 {
			fmt.Fprintf(&sb, "  %s:  %s\n", l.label, strings.Join(l.names, ", "))
		}
	}
	return sb.String(), nil
}
