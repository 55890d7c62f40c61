package command

import (
	"errors"
	"fmt"
)

// ErrEmptyCommand is returned when a request frame contains no command.
var ErrEmptyCommand = errors.New("Empty command")

// UnknownCommandError is returned for a command name with no registered
// handler.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command: %s", e.Name)
}

// ExecutionError wraps a failure from a handler so dispatch errors and
// execution errors stay distinguishable on the wire.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("Execution error: %s", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
