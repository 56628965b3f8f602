package tools

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/bioreason/bioreason/internal/schema"
)

var defaultOutputSchema = json.RawMessage(`{"type":"string"}`)

// Descriptor binds a tool's invocation handle to the layer it originates from.
type Descriptor struct {
	Layer schema.Layer
	Tool  schema.Tool
}

// NewDescriptor returns a Descriptor for tool in layer.
func NewDescriptor(layer schema.Layer, tool schema.Tool) Descriptor {
	return Descriptor{Layer: layer, Tool: tool}
}

func (d Descriptor) Name() string        { return d.Tool.Name() }
func (d Descriptor) Description() string { return d.Tool.Description() }

// InputSchema returns the JSON Schema of the tool's arguments.
func (d Descriptor) InputSchema() json.RawMessage { return d.Tool.Parameters() }

// OutputSchema returns the JSON Schema of the tool's result. Tools that do not
// document one produce plain text.
func (d Descriptor) OutputSchema() json.RawMessage {
	if s, ok := d.Tool.(schema.OutputSchemer); ok {
		if out := s.OutputSchema(); len(out) > 0 {
			return out
		}
	}
	return defaultOutputSchema
}

// Equal reports whether d and o describe the same tool: same name, layer,
// description, schemas and the same invocation handle.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.Tool == nil || o.Tool == nil {
		return d.Tool == nil && o.Tool == nil && d.Layer == o.Layer
	}
	return d.Layer == o.Layer &&
		d.Name() == o.Name() &&
		d.Description() == o.Description() &&
		sameJSON(d.InputSchema(), o.InputSchema()) &&
		sameJSON(d.OutputSchema(), o.OutputSchema()) &&
		sameHandle(d.Tool, o.Tool)
}

// Definition returns the descriptor in OpenAI function-calling format.
func (d Descriptor) Definition() map[string]any {
	var params any
	if err := json.Unmarshal(d.InputSchema(), &params); err != nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        d.Name(),
			"description": d.Description(),
			"parameters":  params,
		},
	}
}

func sameJSON(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// sameHandle compares invocation handles. Pointer and other comparable
// handles compare by ==; handles whose dynamic value cannot be compared
// that way (slices or maps inside) compare structurally.
func sameHandle(a, b schema.Tool) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if eq, ok := compareHandles(a, b); ok {
		return eq
	}
	return reflect.DeepEqual(a, b)
}

// compareHandles reports a == b, or ok=false when the comparison panics on
// a non-comparable value held in an interface field.
func compareHandles(a, b schema.Tool) (eq, ok bool) {
	if !reflect.TypeOf(a).Comparable() {
		return false, false
	}
	defer func() {
		if recover() != nil {
			eq, ok = false, false
		}
	}()
	return a == b, true
}
