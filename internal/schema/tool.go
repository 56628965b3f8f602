// Package schema contains the contracts shared across bioreason packages:
// tools, transcripts and the model-completion provider.
package schema

import (
	"context"
	"encoding/json"
)

// Layer identifies the knowledge tier a tool draws on.
type Layer string

const (
	// LayerA is the parametric memory of a general language model.
	LayerA Layer = "A"
	// LayerB covers specialised models for non-textual data (images, sequences, structures).
	LayerB Layer = "B"
	// LayerC covers external databases, APIs and web resources.
	LayerC Layer = "C"
)

// Layers lists every layer in dispatch order.
var Layers = []Layer{LayerA, LayerB, LayerC}

// Valid reports whether l is one of the known layers.
func (l Layer) Valid() bool {
	return l == LayerA || l == LayerB || l == LayerC
}

func (l Layer) String() string { return "layer_" + string(l) }

// Tool is the invocation handle behind a tool descriptor.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's input.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// OutputSchemer is implemented by tools that document the shape of their result.
type OutputSchemer interface {
	OutputSchema() json.RawMessage
}
