package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage is returned by Start when no command name was given.
	ErrUsage = errors.New("please specify arguments")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("command already started")
	// ErrStopped is returned by Start after Stop or after a failed Start.
	ErrStopped = errors.New("starter stopped")
	// ErrStopTimeout is returned by Stop when its context ends before the
	// command body unwinds.
	ErrStopTimeout = errors.New("timed out waiting for command to stop")
	// ErrExecution matches every *ExecutionError.
	ErrExecution = errors.New("command execution failed")
)

// ExecutionError is the failure of a command body or of its construction.
type ExecutionError struct {
	Command string
	RunID   string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

// PanicError carries a value recovered from a panicking command body.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
