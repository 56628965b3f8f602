package modes

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMode matches any UnknownModeError.
	ErrUnknownMode = errors.New("unknown reasoning mode")
	// ErrDuplicateMode matches any DuplicateModeError.
	ErrDuplicateMode = errors.New("duplicate reasoning mode")
)

// UnknownModeError reports a mode identifier that is not defined.
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown reasoning mode %q", e.Mode)
}

func (e *UnknownModeError) Is(target error) bool { return target == ErrUnknownMode }

// DuplicateModeError reports a mode identifier or alias defined twice.
type DuplicateModeError struct {
	Mode string
}

func (e *DuplicateModeError) Error() string {
	return fmt.Sprintf("reasoning mode %q is already defined", e.Mode)
}

func (e *DuplicateModeError) Is(target error) bool { return target == ErrDuplicateMode }
