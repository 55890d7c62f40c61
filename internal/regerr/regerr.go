// Package regerr defines the error taxonomy shared by the display
// backends, the command registry and the daemon front-ends. Every error
// that crosses the wire is one of these types so the client can present
// a stable message and callers can branch with errors.As.
package regerr

import "fmt"

// BackendError reports a failure inside a display backend.
type BackendError struct {
	Backend string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("Backend error %s: %s", e.Backend, e.Message)
}

// InvalidArgumentsError reports malformed or missing command arguments.
type InvalidArgumentsError struct {
	Message string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("Invalid arguments: %s", e.Message)
}

// NotFoundError reports a missing resource such as a screen or device.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Resource not found: %s", e.Resource)
}

// ParseError reports unparseable user input.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error: %s", e.Message)
}

// ConversionError reports a value that cannot be represented in the
// target type, such as a refresh rate overflowing uint32.
type ConversionError struct {
	Message string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("Conversion error: %s", e.Message)
}

// SystemError reports an OS level failure outside any single backend.
type SystemError struct {
	Message string
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("System error: %s", e.Message)
}

// Backend builds a BackendError for the named backend.
func Backend(backend, format string, args ...interface{}) error {
	return &BackendError{Backend: backend, Message: fmt.Sprintf(format, args...)}
}

func InvalidArguments(format string, args ...interface{}) error {
	return &InvalidArgumentsError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{Resource: fmt.Sprintf(format, args...)}
}

func Parse(format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

func Conversion(format string, args ...interface{}) error {
	return &ConversionError{Message: fmt.Sprintf(format, args...)}
}

func System(format string, args ...interface{}) error {
	return &SystemError{Message: fmt.Sprintf(format, args...)}
}
