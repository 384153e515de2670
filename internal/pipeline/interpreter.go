// Package pipeline tokenizes input lines, compiles aliases into command
// pipelines and dispatches lines to commands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrEmptyLine is returned for a line without tokens.
var ErrEmptyLine = errors.New("please enter a command")

// AliasSource finds compiled aliases by name.
type AliasSource interface {
	Alias(name string) (*Pipeline, bool)
}

// Interpreter dispatches input lines to aliases and commands.
type Interpreter struct {
	commands *Registry
	aliases  AliasSource
	logger   *log.Logger
}

// NewInterpreter creates an interpreter over the given commands and aliases.
func NewInterpreter(commands *Registry, aliases AliasSource, logger *log.Logger) *Interpreter {
	if logger == nil {
		logger = log.Default()
	}
	return &Interpreter{commands: commands, aliases: aliases, logger: logger}
}

// Execute runs one input line against ref and returns the next reference.
// On failure the returned reference is ref itself. A panicking command is
// reported as an error. ErrQuit is passed through for the caller to stop on.
func (in *Interpreter) Execute(ctx context.Context, ref, line string) (string, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return ref, ErrEmptyLine
	}
	name := strings.ToLower(tokens[0])
	args := tokens[1:]

	in.logger.Info("dispatch", "command", name, "args", args, "ref", ref)

	next, err := in.invoke(ctx, name, ref, args)
	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, ErrQuit):
		return ref, ErrQuit
	default:
		in.logger.Warn("command failed", "command", name, "ref", ref, "err", err)
		return ref, err
	}
}

// Call runs the registered command name directly, bypassing aliases.
func (in *Interpreter) Call(ctx context.Context, name, ref string, args []string) (string, error) {
	cmd, ok := in.commands.Lookup(name)
	if !ok {
		return ref, fmt.Errorf("%s: %w", name, ErrCommandNotFound)
	}
	return cmd.Call(ctx, ref, args)
}

func (in *Interpreter) invoke(ctx context.Context, name, ref string, args []string) (next string, err error) {
	defer func() {
		if r := recover(); r != nil {
			in.logger.Error("command panicked", "command", name, "panic", r)
			next, err = ref, fmt.Errorf("%s panicked: %v", name, r)
		}
	}()

	if in.aliases != nil {
		if p, ok := in.aliases.Alias(name); ok {
			return p.Run(ctx, in.commands, ref, args)
		}
	}
	if cmd, ok := in.commands.Lookup(name); ok {
		return cmd.Call(ctx, ref, args)
	}
	return ref, fmt.Errorf("%s: %w", name, ErrUnknownCommand)
}
