// Package commands implements the built-in command set. Every command runs
// against an Env, receives the current reference and returns the next one.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/mfenderov/chrono/internal/config"
	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/intelliref"
	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
	"github.com/mfenderov/chrono/internal/sleep"
	"github.com/mfenderov/chrono/internal/snapshot"
	"github.com/mfenderov/chrono/internal/storage"
)

var (
	// ErrWrongCode is returned when a destructive command is not confirmed.
	ErrWrongCode = errors.New("wrong confirmation code")
	// ErrNoStore is returned by persistence commands when no store is attached.
	ErrNoStore = errors.New("no store configured")
	// ErrNoSleepSource is returned when the sleep provider is disabled.
	ErrNoSleepSource = errors.New("no sleep provider linked, check your settings")
	// ErrNoFunction is returned when a day has no value for a function name.
	ErrNoFunction = errors.New("function not set")
)

// SleepSource delivers sleep records for a date range.
type SleepSource interface {
	Fetch(ctx context.Context, start, stop time.Time) ([]sleep.Record, error)
}

// Env is the application context the commands operate on.
type Env struct {
	Project  *project.Project
	Store    *storage.Store
	Settings *config.Settings
	// SettingsPath is re-read by refresh when set.
	SettingsPath string
	Schedule *project.Schedule
	Sleep    SleepSource
	Logger   *log.Logger
	Out      io.Writer
	Now      func() time.Time
	Styles   Styles

	registry *pipeline.Registry
}

// Styles render command output.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
}

// DefaultStyles returns the styles used by the terminal front end.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// NewEnv returns an Env holding p with default settings, output to stdout
// and the wall clock.
func NewEnv(p *project.Project) *Env {
	return &Env{
		Project:  p,
		Settings: config.Default(),
		Logger:   log.Default(),
		Out:      os.Stdout,
		Now:      time.Now,
		Styles:   DefaultStyles(),
	}
}

// Alias implements pipeline.AliasSource over the current project, which may
// be replaced by refresh or restore.
func (e *Env) Alias(name string) (*pipeline.Pipeline, bool) {
	return e.Project.Alias(name)
}

// Registry returns the registry the commands were registered into.
func (e *Env) Registry() *pipeline.Registry {
	return e.registry
}

// Load replaces the current project with the one stored under name. A
// project missing from the store starts empty.
func (e *Env) Load(ctx context.Context, name string) error {
	if e.Store == nil {
		return ErrNoStore
	}
	snap, err := e.Store.LoadProject(ctx, name)
	var p *project.Project
	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.Logger.Info("Starting new project", "name", name)
		p = project.New(name, name)
	case err != nil:
		return fmt.Errorf("failed to load project %s: %w", name, err)
	default:
		p, err = snap.ToProject()
		if err != nil {
			return fmt.Errorf("failed to load project %s: %w", name, err)
		}
	}
	return e.Install(p)
}

// Install makes p the current project, attaching the schedule and the
// aliases defined in the settings. Aliases that fail to parse or compile are
// logged and left out.
func (e *Env) Install(p *project.Project) error {
	defs, err := e.Settings.AliasDefinitions()
	if err != nil {
		e.Logger.Warn("Skipping malformed aliases", "err", err)
	}
	aliases, err := pipeline.CompileAll(defs)
	if err != nil {
		e.Logger.Warn("Skipping aliases", "err", err)
	}
	p.Aliases = aliases
	p.Schedule = e.Schedule
	p.ApplySchedule = e.Settings.Schedule && e.Schedule != nil
	e.Project = p
	return nil
}

// ReloadSettings re-reads SettingsPath. Without a path the settings are kept.
func (e *Env) ReloadSettings() error {
	if e.SettingsPath == "" {
		return nil
	}
	s, err := config.LoadSettings(e.SettingsPath)
	if err != nil {
		return err
	}
	e.Settings = s
	return nil
}

// Save writes the current project to the store.
func (e *Env) Save(ctx context.Context) error {
	if e.Store == nil {
		return ErrNoStore
	}
	if err := e.Store.SaveProject(ctx, snapshot.FromProject(e.Project)); err != nil {
		return fmt.Errorf("failed to save project %s: %w", e.Project.Name, err)
	}
	e.Logger.Debug("Saved project", "name", e.Project.Name, "days", e.Project.Len())
	return nil
}

// backup writes the current project under its backup name.
func (e *Env) backup(ctx context.Context) error {
	if e.Store == nil {
		return ErrNoStore
	}
	return e.Store.Backup(ctx, snapshot.FromProject(e.Project))
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) today() time.Time {
	return event.Date(e.now())
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) println(args ...any) {
	fmt.Fprintln(e.Out, args...)
}

// resolve turns a symbolic date token into a date.
func (e *Env) resolve(token, ref string) (time.Time, error) {
	return intelliref.Resolve(token, ref, e.Project.Dates(), e.now())
}

// span resolves the optional start and stop tokens at args[i] and args[i+1],
// defaulting to the first and last day.
func (e *Env) span(ref string, args []string, i int) (time.Time, time.Time, error) {
	startTok, stopTok := intelliref.TokenStart, intelliref.TokenStop
	if len(args) > i {
		startTok = args[i]
	}
	if len(args) > i+1 {
		stopTok = args[i+1]
	}
	from, err := e.resolve(startTok, ref)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := e.resolve(stopTok, ref)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// refDay returns the day the reference points at.
func (e *Env) refDay(ref string) (*project.Day, error) {
	return e.Project.Day(ref)
}

// checkCode compares code with the configured confirmation code.
func (e *Env) checkCode(code string) error {
	if code != e.Settings.Code {
		e.Logger.Warn("Wrong code", "code", code)
		return ErrWrongCode
	}
	return nil
}

func argInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number: %w", name, s, pipeline.ErrArgument)
	}
	return n, nil
}

func argFloat(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number: %w", name, s, pipeline.ErrArgument)
	}
	return f, nil
}

func argClock(name, s string) (event.Clock, error) {
	c, err := event.ParseClock(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %v: %w", name, err, pipeline.ErrArgument)
	}
	return c, nil
}

// argMinSec parses an "MM:SS" duration into seconds. Minutes may exceed 59.
func argMinSec(name, s string) (float64, error) {
	mm, ss, ok := strings.Cut(strings.TrimSpace(s), ":")
	m, err1 := strconv.Atoi(mm)
	sec, err2 := strconv.ParseFloat(ss, 64)
	if !ok || err1 != nil || err2 != nil || m < 0 || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("%s: %q is not MM:SS: %w", name, s, pipeline.ErrArgument)
	}
	return float64(m*60) + sec, nil
}

// optional returns args[i] or def.
func optional(args []string, i int, def string) string {
	if len(args) > i {
		return args[i]
	}
	return def
}

func (e *Env) tags(raw string) event.Tags {
	tags, rejected := event.SplitTags(raw)
	if len(rejected) > 0 {
		e.Logger.Warn("Dropped reserved tags", "tags", rejected)
	}
	return tags
}
