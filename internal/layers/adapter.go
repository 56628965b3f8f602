// Package layers exposes the tools of the three knowledge tiers to the
// coordinator through a uniform adapter contract.
package layers

import (
	"fmt"

	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/tools"
)

// Adapter provides tool descriptors for one layer.
type Adapter interface {
	Layer() schema.Layer
	// GetTool returns the descriptor called name or a *tools.UnknownToolError.
	GetTool(name string) (tools.Descriptor, error)
	// ToolsForMode returns the tools this layer offers to mode.
	ToolsForMode(mode string) []tools.Descriptor
}

// RegistryAdapter serves a layer's tools from a tool registry.
type RegistryAdapter struct {
	layer    schema.Layer
	registry *tools.Registry
	byMode   map[string][]string
}

// NewRegistryAdapter returns an adapter over reg. Every descriptor in reg
// must originate from layer.
func NewRegistryAdapter(layer schema.Layer, reg *tools.Registry) (*RegistryAdapter, error) {
	for _, d := range reg.Descriptors() {
		if d.Layer != layer {
			return nil, fmt.Errorf("%s adapter: tool %q belongs to %s", layer, d.Name(), d.Layer)
		}
	}
	return &RegistryAdapter{layer: layer, registry: reg, byMode: map[string][]string{}}, nil
}

// Restrict limits the tools offered to mode to names. Modes that were never
// restricted are offered every tool of the layer.
func (a *RegistryAdapter) Restrict(mode string, names ...string) *RegistryAdapter {
	a.byMode[mode] = append([]string(nil), names...)
	return a
}

func (a *RegistryAdapter) Layer() schema.Layer { return a.layer }

// Registry returns the underlying tool registry.
func (a *RegistryAdapter) Registry() *tools.Registry { return a.registry }

func (a *RegistryAdapter) GetTool(name string) (tools.Descriptor, error) {
	return a.registry.Get(name)
}

func (a *RegistryAdapter) ToolsForMode(mode string) []tools.Descriptor {
	names, ok := a.byMode[mode]
	if !ok {
		return a.registry.Descriptors()
	}
	out := make([]tools.Descriptor, 0, len(names))
	for _, n := range names {
		if d, err := a.registry.Get(n); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// Set holds one adapter per layer.
type Set map[schema.Layer]Adapter

// NewSet indexes adapters by their layer, rejecting two adapters for one layer.
func NewSet(adapters ...Adapter) (Set, error) {
	s := make(Set, len(adapters))
	for _, a := range adapters {
		if a == nil {
			continue
		}
		if _, dup := s[a.Layer()]; dup {
			return nil, fmt.Errorf("two adapters registered for %s", a.Layer())
		}
		s[a.Layer()] = a
	}
	return s, nil
}

// Registry merges every layer's full tool set into one registry.
func (s Set) Registry() (*tools.Registry, error) {
	var regs []*tools.Registry
	for _, l := range schema.Layers {
		a, ok := s[l]
		if !ok {
			continue
		}
		r, err := tools.FromDescriptors(a.ToolsForMode("")...)
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return tools.Merge(regs...)
}
