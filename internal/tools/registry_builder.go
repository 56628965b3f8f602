package tools

import "github.com/bioreason/bioreason/internal/schema"

// RegistryBuilder accumulates the tools of one layer during start-up.
// Call Build() to produce the Registry.
type RegistryBuilder struct {
	layer schema.Layer
	reg   *Registry
	err   error
}

// NewRegistryBuilder returns a builder whose tools all originate from layer.
func NewRegistryBuilder(layer schema.Layer) *RegistryBuilder {
	return &RegistryBuilder{layer: layer, reg: NewRegistry()}
}

// WithTool adds a tool and returns the builder, enabling chaining.
// The first registration error is kept and reported by Build.
func (b *RegistryBuilder) WithTool(tool schema.Tool) *RegistryBuilder {
	if b.err != nil {
		return b
	}
	b.err = b.reg.Register(NewDescriptor(b.layer, tool))
	return b
}

// Build returns the accumulated Registry or the first registration error.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.reg, nil
}
