package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTool matches any DuplicateToolError.
	ErrDuplicateTool = errors.New("duplicate tool")
	// ErrUnknownTool matches any UnknownToolError.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInputValidation matches any InputValidationError.
	ErrInputValidation = errors.New("tool input validation failed")
)

// DuplicateToolError reports a name registered twice with different descriptors.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("duplicate tool %q: a different descriptor is already registered", e.Name)
}

func (e *DuplicateToolError) Is(target error) bool { return target == ErrDuplicateTool }

// UnknownToolError reports a lookup of a name that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

func (e *UnknownToolError) Is(target error) bool { return target == ErrUnknownTool }

// InputValidationError reports model-supplied arguments that do not satisfy
// a tool's input schema.
type InputValidationError struct {
	Tool   string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, e.Reason)
}

func (e *InputValidationError) Is(target error) bool { return target == ErrInputValidation }
