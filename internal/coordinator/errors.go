package coordinator

import (
	"errors"
	"fmt"

	"github.com/bioreason/bioreason/internal/schema"
)

var (
	ErrToolResolution = errors.New("tool resolution failed")
	ErrLoopExceeded   = errors.New("reasoning loop exceeded")
)

// ToolResolutionError reports a tool that could not be provided for a query:
// either a mode requires a tool its layer adapter cannot produce, or the model
// kept requesting a tool absent from the merged registry.
type ToolResolutionError struct {
	Mode  string
	Layer schema.Layer
	Tool  string
	// DuringLoop is set when the model requested the tool mid-loop.
	DuringLoop bool
	Err        error
}

func (e *ToolResolutionError) Error() string {
	if e.DuringLoop {
		return fmt.Sprintf("tool resolution failed: model requested unregistered tool %q again after a corrective turn", e.Tool)
	}
	msg := fmt.Sprintf("tool resolution failed for mode %q", e.Mode)
	if e.Tool != "" {
		msg += fmt.Sprintf(": %s tool %q", e.Layer, e.Tool)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolResolutionError) Is(target error) bool { return target == ErrToolResolution }
func (e *ToolResolutionError) Unwrap() error        { return e.Err }

// LoopExceededError reports a query that hit the iteration bound without a
// final answer.
type LoopExceededError struct {
	Mode    string
	MaxIter int
}

func (e *LoopExceededError) Error() string {
	return fmt.Sprintf("reasoning loop exceeded %d iterations without a final answer (mode %s)", e.MaxIter, e.Mode)
}

func (e *LoopExceededError) Is(target error) bool { return target == ErrLoopExceeded }
