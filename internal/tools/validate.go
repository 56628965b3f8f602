package tools

import (
	"encoding/json"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// resolved caches compiled input schemas keyed by their raw text.
var resolved sync.Map // string -> *jsonschema.Resolved

func resolveSchema(raw json.RawMessage) (*jsonschema.Resolved, error) {
	key := string(raw)
	if rs, ok := resolved.Load(key); ok {
		return rs.(*jsonschema.Resolved), nil
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	rs, err := s.Resolve(nil)
	if err != nil {
		return nil, err
	}
	resolved.Store(key, rs)
	return rs, nil
}

// ValidateArgs checks args against d's input schema. Any failure, including
// a malformed schema, is reported as an InputValidationError.
func ValidateArgs(d Descriptor, args map[string]any) error {
	raw := d.InputSchema()
	if len(raw) == 0 {
		return nil
	}
	rs, err := resolveSchema(raw)
	if err != nil {
		return &InputValidationError{Tool: d.Name(), Reason: "unusable input schema: " + err.Error()}
	}
	var instance any = map[string]any{}
	if args != nil {
		instance = args
	}
	if err := rs.Validate(instance); err != nil {
		return &InputValidationError{Tool: d.Name(), Reason: err.Error()}
	}
	return nil
}
