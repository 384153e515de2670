// Package shell runs the interactive command loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mfenderov/chrono/internal/commands"
	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/storage"
)

const maxLineSize = 1024 * 1024

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Shell reads one line per turn and dispatches it.
type Shell struct {
	env    *commands.Env
	interp *pipeline.Interpreter
	in     io.Reader

	session *storage.Session
}

// New creates a shell reading from in and writing to env.Out.
func New(env *commands.Env, interp *pipeline.Interpreter, in io.Reader) *Shell {
	return &Shell{env: env, interp: interp, in: in}
}

// Run loops until quit, end of input or ctx is done, then saves the project.
// It returns the last reference. With a store attached every line is
// recorded in a session.
func (s *Shell) Run(ctx context.Context, ref string) (string, error) {
	s.startSession(ctx)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for {
		if err := ctx.Err(); err != nil {
			return ref, s.shutdown(ctx, err)
		}
		fmt.Fprint(s.env.Out, promptStyle.Render(ref+":")+" ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		next, err := s.interp.Execute(ctx, ref, line)
		s.record(ctx, line, ref, err)
		if errors.Is(err, pipeline.ErrQuit) {
			return ref, s.shutdown(ctx, nil)
		}
		if err != nil {
			fmt.Fprintln(s.env.Out, errorStyle.Render(err.Error()))
			continue
		}
		ref = next
	}

	if err := scanner.Err(); err != nil {
		return ref, errors.Join(err, s.shutdown(ctx, nil))
	}
	fmt.Fprintln(s.env.Out)
	return ref, s.shutdown(ctx, nil)
}

// Session returns the session of the last Run, or nil without a store.
func (s *Shell) Session() *storage.Session {
	return s.session
}

func (s *Shell) startSession(ctx context.Context) {
	s.session = nil
	if s.env.Store == nil {
		return
	}
	session, err := s.env.Store.StartSession(ctx, s.env.Project.Name)
	if err != nil {
		s.env.Logger.Warn("Session history disabled", "err", err)
		return
	}
	s.session = session
}

func (s *Shell) record(ctx context.Context, line, ref string, cmdErr error) {
	if s.session == nil {
		return
	}
	if errors.Is(cmdErr, pipeline.ErrQuit) {
		cmdErr = nil
	}
	if err := s.env.Store.RecordLine(ctx, s.session.ID, line, ref, cmdErr); err != nil {
		s.env.Logger.Debug("Failed to record line", "err", err)
	}
}

// shutdown saves the project and closes the session. cause is returned
// alongside any save failure.
func (s *Shell) shutdown(ctx context.Context, cause error) error {
	// the loop may end because ctx is done; the save must still run
	ctx = context.WithoutCancel(ctx)
	if s.session != nil {
		if err := s.env.Store.CompleteSession(ctx, s.session.ID); err != nil {
			s.env.Logger.Debug("Failed to complete session", "err", err)
		}
	}
	if err := s.env.Save(ctx); err != nil {
		if errors.Is(err, commands.ErrNoStore) {
			return cause
		}
		s.env.Logger.Error("Failed to save on exit", "err", err)
		return errors.Join(cause, err)
	}
	return cause
}
