package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrCommandNotFound is returned when an alias stage names no registered command.
	ErrCommandNotFound = errors.New("command not found")
	// ErrUnknownCommand is returned when an input line names neither an alias nor a command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrArgument is returned for a wrong number of arguments or a malformed argument.
	ErrArgument = errors.New("invalid arguments")
	// ErrQuit is returned by the quit command to end the command loop.
	ErrQuit = errors.New("quit")
)

// Variadic as MaxArgs accepts any number of trailing arguments.
const Variadic = -1

// Func runs a command. It receives the current reference and returns the next one.
type Func func(ctx context.Context, ref string, args []string) (string, error)

// Command is a registered built-in.
type Command struct {
	Name    string
	Usage   string
	Summary string
	MinArgs int
	MaxArgs int
	Run     Func
}

// Call checks the argument count and runs the command.
func (c Command) Call(ctx context.Context, ref string, args []string) (string, error) {
	if len(args) < c.MinArgs || (c.MaxArgs != Variadic && len(args) > c.MaxArgs) {
		return ref, fmt.Errorf("%s takes %s, got %d: %w", c.Name, c.arity(), len(args), ErrArgument)
	}
	return c.Run(ctx, ref, args)
}

func (c Command) arity() string {
	switch {
	case c.MaxArgs == Variadic:
		return fmt.Sprintf("at least %d arguments", c.MinArgs)
	case c.MinArgs == c.MaxArgs:
		return fmt.Sprintf("%d arguments", c.MinArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", c.MinArgs, c.MaxArgs)
	}
}

// Lookup finds commands by name.
type Lookup interface {
	Lookup(name string) (Command, bool)
}

// Registry is the table of built-in commands. Names are case-insensitive.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c. Registering a name twice is an error.
func (r *Registry) Register(c Command) error {
	name := strings.ToLower(c.Name)
	if name == "" || c.Run == nil {
		return fmt.Errorf("command %q: missing name or function", c.Name)
	}
	if _, ok := r.commands[name]; ok {
		return fmt.Errorf("command %s registered twice", name)
	}
	c.Name = name
	r.commands[name] = c
	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[strings.ToLower(name)]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.commands))
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.commands)
}
