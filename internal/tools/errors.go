package tools

import (
	"errors"
	"fmt"
)

// Tool registry errors.
var (
	// ErrToolNameEmpty is returned when a tool has no name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolExecuteNil is returned when a tool has no execute function.
	ErrToolExecuteNil = errors.New("tool execute function cannot be nil")

	// ErrToolAlreadyRegistered is returned when a name or alias is taken.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrMissingRequiredArg is returned when a required argument is missing.
	ErrMissingRequiredArg = errors.New("missing required argument")
)

// MissingArgError names the tool and the argument that was absent or blank.
type MissingArgError struct {
	Tool string
	Arg  string
}

func (e *MissingArgError) Error() string {
	return fmt.Sprintf("`%s` is required for %s", e.Arg, e.Tool)
}

// Is makes errors.Is(err, ErrMissingRequiredArg) hold.
func (e *MissingArgError) Is(target error) bool {
	return target == ErrMissingRequiredArg
}
