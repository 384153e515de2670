package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type call struct {
	name string
	ref  string
	args []string
}

// recorder registers commands that log their calls and return name+"("+ref+")".
type recorder struct {
	calls []call
}

func (r *recorder) command(name string) Command {
	return Command{
		Name:    name,
		MaxArgs: Variadic,
		Run: func(ctx context.Context, ref string, args []string) (string, error) {
			r.calls = append(r.calls, call{name: name, ref: ref, args: append([]string(nil), args...)})
			return ref + "+" + name, nil
		},
	}
}

func newRecordingRegistry(t *testing.T, names ...string) (*Registry, *recorder) {
	t.Helper()
	rec := &recorder{}
	reg := NewRegistry()
	for _, n := range names {
		if err := reg.Register(rec.command(n)); err != nil {
			t.Fatalf("Register(%s) failed: %v", n, err)
		}
	}
	return reg, rec
}

func TestCompile(t *testing.T) {
	p, err := Compile("Study", `mkevent $1 uni |> today $N |> x $2 $1 $N |> y $N1 "a b"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := []Stage{
		{Command: "mkevent", Args: []Arg{{Kind: Positional, Index: 1}, {Kind: Literal, Value: "uni"}}},
		{Command: "today", Args: []Arg{{Kind: Rest, Index: 2}}},
		{Command: "x", Args: []Arg{{Kind: Positional, Index: 2}, {Kind: Positional, Index: 1}, {Kind: Rest, Index: 5}}},
		{Command: "y", Args: []Arg{{Kind: Rest, Index: 1}, {Kind: Literal, Value: "a b"}}},
	}
	if p.Name != "study" {
		t.Errorf("expected lower-cased name, got %q", p.Name)
	}
	if diff := cmp.Diff(want, p.Stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Invalid(t *testing.T) {
	for _, def := range []string{"", "a |>", "cmd $x", "cmd $Nx", "cmd $-1"} {
		if _, err := Compile("bad", def); !errors.Is(err, ErrInvalidAlias) {
			t.Errorf("Compile(%q): expected ErrInvalidAlias, got %v", def, err)
		}
	}
}

func TestPipeline_ThreadsReferenceAndSplicesRest(t *testing.T) {
	reg, rec := newRecordingRegistry(t, "cmda", "cmdb")
	p, err := Compile("combo", "cmdA $1 |> cmdB $N")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	got, err := p.Run(context.Background(), reg, "ref", []string{"x", "y", "z"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []call{
		{name: "cmda", ref: "ref", args: []string{"x"}},
		{name: "cmdb", ref: "ref+cmda", args: []string{"y", "z"}},
	}
	if diff := cmp.Diff(want, rec.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if got != "ref+cmda+cmdb" {
		t.Errorf("expected final reference ref+cmda+cmdb, got %q", got)
	}
}

func TestPipeline_ReferenceMarker(t *testing.T) {
	reg, rec := newRecordingRegistry(t, "show")
	p, _ := Compile("again", "show $0 literal $N0")

	if _, err := p.Run(context.Background(), reg, "2024-01-01", []string{"a"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := []string{"2024-01-01", "literal", "2024-01-01", "a"}
	if diff := cmp.Diff(want, rec.calls[0].args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_UnknownStageRunsNothing(t *testing.T) {
	reg, rec := newRecordingRegistry(t, "cmda")
	p, _ := Compile("broken", "cmdA $1 |> missing")

	got, err := p.Run(context.Background(), reg, "ref", []string{"x"})
	if !errors.Is(err, ErrCommandNotFound) {
		t.Fatalf("expected ErrCommandNotFound, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("no stage may run when a command is missing, got %v", rec.calls)
	}
	if got != "ref" {
		t.Errorf("expected reference unchanged, got %q", got)
	}
}

func TestPipeline_MissingPositional(t *testing.T) {
	reg, _ := newRecordingRegistry(t, "cmda")
	p, _ := Compile("short", "cmdA $3")

	_, err := p.Run(context.Background(), reg, "ref", []string{"x"})
	if !errors.Is(err, ErrArgument) {
		t.Errorf("expected ErrArgument, got %v", err)
	}
}

func TestCompileAll_ReportsBadDefinitions(t *testing.T) {
	got, err := CompileAll(map[string]string{
		"good": "today",
		"bad":  "today $zz",
	})
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Errorf("expected error naming the bad alias, got %v", err)
	}
	if _, ok := got["good"]; !ok || len(got) != 1 {
		t.Errorf("expected only the good alias, got %v", got)
	}
}
