package command

import (
	"fmt"

	"github.com/bnema/regmsg/internal/regerr"
)

// Handler is implemented by every registered command variant.
type Handler interface {
	// Execute runs the command with the arguments following its name.
	Execute(args []string) (string, error)

	// Description is a one line human readable summary.
	Description() string

	// ExpectedArgs returns the required argument count. exact=false
	// means the handler accepts a variable number of arguments and
	// validates them itself.
	ExpectedArgs() (n int, exact bool)
}

// screenArg extracts an optional screen filter from trailing arguments.
// Clients send either a bare screen name or a "--screen NAME" pair.
func screenArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	if args[0] == "--screen" {
		if len(args) > 1 {
			return args[1]
		}
		return ""
	}
	return args[0]
}

// SimpleHandler runs a niladic query returning its reply directly.
type SimpleHandler struct {
	Desc string
	Fn   func() (string, error)
}

func (h *SimpleHandler) Execute(args []string) (string, error) {
	result, err := h.Fn()
	if err != nil {
		return "", &ExecutionError{Err: err}
	}
	return result, nil
}

func (h *SimpleHandler) Description() string { return h.Desc }

func (h *SimpleHandler) ExpectedArgs() (int, bool) { return 0, true }

// ArgHandler runs a command with a fixed argument count, replying with
// a generic success message.
type ArgHandler struct {
	Name string
	Desc string
	N    int
	Fn   func(args []string) error
}

func (h *ArgHandler) Execute(args []string) (string, error) {
	if err := h.Fn(args); err != nil {
		return "", &ExecutionError{Err: err}
	}
	return fmt.Sprintf("%s executed successfully", h.Name), nil
}

func (h *ArgHandler) Description() string { return h.Desc }

func (h *ArgHandler) ExpectedArgs() (int, bool) { return h.N, true }

// ScreenHandler runs a query taking an optional screen filter.
type ScreenHandler struct {
	Desc string
	Fn   func(screen string) (string, error)
}

func (h *ScreenHandler) Execute(args []string) (string, error) {
	result, err := h.Fn(screenArg(args))
	if err != nil {
		return "", &ExecutionError{Err: err}
	}
	return result, nil
}

func (h *ScreenHandler) Description() string { return h.Desc }

func (h *ScreenHandler) ExpectedArgs() (int, bool) { return 0, false }

// ScreenSetterHandler runs a setter taking a value plus an optional
// screen filter.
type ScreenSetterHandler struct {
	Desc string
	Fn   func(screen, value string) error
}

func (h *ScreenSetterHandler) Execute(args []string) (string, error) {
	if len(args) == 0 {
		return "", regerr.InvalidArguments("Missing required argument")
	}
	value := args[0]
	if err := h.Fn(screenArg(args[1:]), value); err != nil {
		return "", &ExecutionError{Err: err}
	}
	return fmt.Sprintf("Set to %s", value), nil
}

func (h *ScreenSetterHandler) Description() string { return h.Desc }

func (h *ScreenSetterHandler) ExpectedArgs() (int, bool) { return 0, false }
