// Package command implements the daemon's command registry and
// dispatcher. Request lines arriving over IPC are parsed, validated for
// arity and routed to the registered handler.
package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/regmsg/internal/logger"
	"github.com/bnema/regmsg/internal/regerr"
)

// Registry maps command names to handlers. It is built once at startup
// and read-only afterwards.
type Registry struct {
	commands map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Handler)}
}

// Register installs a handler under the given name, replacing any
// previous registration.
func (r *Registry) Register(name string, handler Handler) {
	logger.Infof("Registering command: %s", name)
	r.commands[name] = handler
}

// Handle parses and executes a command line. Arity is validated before
// the handler runs so malformed requests never reach a backend.
func (r *Registry) Handle(line string) (string, error) {
	logger.Debugf("Handling command: '%s'", line)

	parts := strings.Fields(line)
	if len(parts) == 0 {
		logger.Warn("Received empty command")
		return "", ErrEmptyCommand
	}

	name, args := parts[0], parts[1:]
	handler, ok := r.commands[name]
	if !ok {
		logger.Warnf("Unknown command: %s", name)
		return "", &UnknownCommandError{Name: name}
	}

	if expected, exact := handler.ExpectedArgs(); exact && len(args) != expected {
		return "", regerr.InvalidArguments("%s expects %d arguments, got %d",
			name, expected, len(args))
	}

	logger.Infof("Executing command: %s with %d args", name, len(args))
	return handler.Execute(args)
}

// ListCommands renders every registered command as sorted
// "name: description" lines.
func (r *Registry) ListCommands() string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, r.commands[name].Description()))
	}
	return strings.Join(lines, "\n")
}
