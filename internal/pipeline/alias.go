package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// StageSeparator separates the stages of an alias definition.
const StageSeparator = "|>"

// ErrInvalidAlias is returned when an alias definition cannot be compiled.
var ErrInvalidAlias = errors.New("invalid alias")

// ArgKind tells how an argument template is filled in.
type ArgKind int

const (
	// Literal is passed through unchanged.
	Literal ArgKind = iota
	// Positional is replaced by one outer argument.
	Positional
	// Rest is replaced by all outer arguments from its index on.
	Rest
)

// Arg is one argument template of a stage. Index addresses the outer
// argument list, in which index 0 is the reference.
type Arg struct {
	Kind  ArgKind
	Value string
	Index int
}

func (a Arg) String() string {
	switch a.Kind {
	case Positional:
		return "$" + strconv.Itoa(a.Index)
	case Rest:
		return "$N" + strconv.Itoa(a.Index)
	default:
		return a.Value
	}
}

// Stage is one command invocation of a pipeline.
type Stage struct {
	Command string
	Args    []Arg
}

// Pipeline is a compiled alias.
type Pipeline struct {
	Name   string
	Source string
	Stages []Stage
}

// Compile parses an alias definition. Stages are separated by "|>"; in each
// stage the first token names the command and the others are templates:
//
//	$k    outer argument k ($0 is the reference)
//	$N    outer arguments from (sum of the stage's $k indices + 2) on
//	$Nk   outer arguments from k on
//	text  passed through
func Compile(name, def string) (*Pipeline, error) {
	p := &Pipeline{Name: strings.ToLower(name), Source: def}

	for i, raw := range strings.Split(def, StageSeparator) {
		tokens := Tokenize(raw)
		if len(tokens) == 0 {
			return nil, fmt.Errorf("alias %s: stage %d is empty: %w", name, i+1, ErrInvalidAlias)
		}
		stage, err := compileStage(tokens)
		if err != nil {
			return nil, fmt.Errorf("alias %s: stage %d: %w", name, i+1, err)
		}
		p.Stages = append(p.Stages, stage)
	}
	return p, nil
}

func compileStage(tokens []string) (Stage, error) {
	stage := Stage{Command: strings.ToLower(tokens[0])}
	sum := 0
	var implicitRest []int

	for _, tok := range tokens[1:] {
		marker, ok := strings.CutPrefix(tok, "$")
		if !ok {
			stage.Args = append(stage.Args, Arg{Kind: Literal, Value: tok})
			continue
		}

		switch {
		case marker == "N":
			implicitRest = append(implicitRest, len(stage.Args))
			stage.Args = append(stage.Args, Arg{Kind: Rest})
		case strings.HasPrefix(marker, "N"):
			k, err := strconv.Atoi(marker[1:])
			if err != nil || k < 0 {
				return Stage{}, fmt.Errorf("marker %q: %w", tok, ErrInvalidAlias)
			}
			stage.Args = append(stage.Args, Arg{Kind: Rest, Index: k})
		default:
			k, err := strconv.Atoi(marker)
			if err != nil || k < 0 {
				return Stage{}, fmt.Errorf("marker %q: %w", tok, ErrInvalidAlias)
			}
			sum += k
			stage.Args = append(stage.Args, Arg{Kind: Positional, Index: k})
		}
	}

	for _, i := range implicitRest {
		stage.Args[i].Index = sum + 2
	}
	return stage, nil
}

// CompileAll compiles every definition. Definitions that fail are left out
// and reported in the joined error.
func CompileAll(defs map[string]string) (map[string]*Pipeline, error) {
	out := make(map[string]*Pipeline, len(defs))
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		p, err := Compile(name, defs[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[p.Name] = p
	}
	return out, errors.Join(errs...)
}

// Expand fills the templates of stage from outer, where outer[0] is the
// reference the alias was called with.
func (s Stage) Expand(outer []string) ([]string, error) {
	args := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		switch a.Kind {
		case Literal:
			args = append(args, a.Value)
		case Positional:
			if a.Index >= len(outer) {
				return nil, fmt.Errorf("%s needs %d arguments, got %d: %w", a, a.Index, len(outer)-1, ErrArgument)
			}
			args = append(args, outer[a.Index])
		case Rest:
			if a.Index < len(outer) {
				args = append(args, outer[a.Index:]...)
			}
		}
	}
	return args, nil
}

// Run executes the stages left to right, threading the reference through
// them. Every stage command is looked up before the first one runs.
func (p *Pipeline) Run(ctx context.Context, commands Lookup, ref string, args []string) (string, error) {
	resolved := make([]Command, len(p.Stages))
	for i, stage := range p.Stages {
		cmd, ok := commands.Lookup(stage.Command)
		if !ok {
			return ref, fmt.Errorf("alias %s: %s: %w", p.Name, stage.Command, ErrCommandNotFound)
		}
		resolved[i] = cmd
	}

	outer := append([]string{ref}, args...)
	acc := ref
	for i, stage := range p.Stages {
		stageArgs, err := stage.Expand(outer)
		if err != nil {
			return ref, fmt.Errorf("alias %s: %w", p.Name, err)
		}
		next, err := resolved[i].Call(ctx, acc, stageArgs)
		if err != nil {
			return ref, fmt.Errorf("alias %s: %w", p.Name, err)
		}
		acc = next
	}
	return acc, nil
}

// Commands returns the command names used by the stages.
func (p *Pipeline) Commands() []string {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = s.Command
	}
	return names
}
