package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type aliasMap map[string]*Pipeline

func (m aliasMap) Alias(name string) (*Pipeline, bool) {
	p, ok := m[strings.ToLower(name)]
	return p, ok
}

func newTestInterpreter(t *testing.T, aliases aliasMap, cmds ...Command) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	reg := NewRegistry()
	for _, c := range cmds {
		if err := reg.Register(c); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	return NewInterpreter(reg, aliases, log.New(&buf)), &buf
}

func setRef() Command {
	return Command{
		Name: "setreference", MinArgs: 1, MaxArgs: 1,
		Run: func(ctx context.Context, ref string, args []string) (string, error) {
			return args[0], nil
		},
	}
}

func TestExecute_CaseInsensitiveDispatch(t *testing.T) {
	in, _ := newTestInterpreter(t, nil, setRef())

	got, err := in.Execute(context.Background(), "base", "SetReference 2024-01-01")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "2024-01-01" {
		t.Errorf("expected 2024-01-01, got %q", got)
	}
}

func TestExecute_AliasShadowsCommand(t *testing.T) {
	p, err := Compile("setreference", "setreference fixed")
	if err != nil {
		t.Fatal(err)
	}
	in, _ := newTestInterpreter(t, aliasMap{"setreference": p}, setRef())

	got, err := in.Execute(context.Background(), "base", "setreference other")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "fixed" {
		t.Errorf("expected alias to win, got %q", got)
	}
}

func TestExecute_FailuresKeepReference(t *testing.T) {
	boom := Command{
		Name: "boom", MaxArgs: Variadic,
		Run: func(ctx context.Context, ref string, args []string) (string, error) {
			return "changed", errors.New("boom")
		},
	}
	panics := Command{
		Name: "panics", MaxArgs: 0,
		Run: func(ctx context.Context, ref string, args []string) (string, error) {
			var m map[string]int
			m["x"] = 1
			return "changed", nil
		},
	}
	in, logs := newTestInterpreter(t, nil, setRef(), boom, panics)

	tests := []struct {
		line    string
		wantErr error
	}{
		{"boom", nil},
		{"panics", nil},
		{"nosuch", ErrUnknownCommand},
		{"setreference", ErrArgument},
		{"setreference a b", ErrArgument},
		{"   ", ErrEmptyLine},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := in.Execute(context.Background(), "2024-01-01", tt.line)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if got != "2024-01-01" {
				t.Errorf("reference changed to %q after failure", got)
			}
		})
	}

	if !strings.Contains(logs.String(), "command panicked") {
		t.Errorf("expected the panic to be logged, got:\n%s", logs.String())
	}
}

func TestExecute_Quit(t *testing.T) {
	quit := Command{
		Name: "quit",
		Run: func(ctx context.Context, ref string, args []string) (string, error) {
			return ref, ErrQuit
		},
	}
	in, logs := newTestInterpreter(t, nil, quit)

	_, err := in.Execute(context.Background(), "base", "quit")
	if !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
	if strings.Contains(logs.String(), "command failed") {
		t.Error("quit must not be logged as a failure")
	}
}
