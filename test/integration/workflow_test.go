package integration_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/mfenderov/chrono/internal/commands"
	"github.com/mfenderov/chrono/internal/config"
	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
	"github.com/mfenderov/chrono/internal/shell"
	"github.com/mfenderov/chrono/internal/storage"
)

const settingsYAML = `
alias: |
  # build a day and tidy it
  work = setreference $1 |> mkevent code dev 09:00 10:00 |> mkevent code dev 10:00 12:00 |> merge
schedule: false
code: "0000"
`

func newSession(t *testing.T, store *storage.Store, settings *config.Settings, input string) (*commands.Env, *shell.Shell, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	logger := log.New(io.Discard)

	env := commands.NewEnv(project.New("life", "life"))
	env.Store = store
	env.Settings = settings
	env.Logger = logger
	env.Out = &out
	env.Now = func() time.Time { return time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC) }

	if err := env.Load(context.Background(), "life"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	reg, err := commands.NewRegistry(env)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	interp := pipeline.NewInterpreter(reg, env, logger)
	return env, shell.New(env, interp, strings.NewReader(input)), &out
}

// TestWorkflow_SessionLifecycle drives two shell sessions against one
// database: the first builds a day through an alias, the second picks up
// the saved state.
func TestWorkflow_SessionLifecycle(t *testing.T) {
	tmpDir := t.TempDir()

	settingsPath := filepath.Join(tmpDir, "settings.yaml")
	if err := os.WriteFile(settingsPath, []byte(settingsYAML), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	store, err := storage.NewStore(filepath.Join(tmpDir, "workflow.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	// === Session 1 ===
	input := strings.Join([]string{
		"work 2024-03-04",
		"mkevent lunch food 12:00 13:00",
		"note review budget",
		"addrun 07:00 25:30 5",
		"quit",
	}, "\n")
	_, sh, out := newSession(t, store, settings, input)
	ref, err := sh.Run(context.Background(), "2024-03-04")
	if err != nil {
		t.Fatalf("session 1 failed: %v\noutput:\n%s", err, out.String())
	}
	if ref != "2024-03-04" {
		t.Errorf("expected reference 2024-03-04, got %q", ref)
	}

	// === Session 2: state survives ===
	env, sh, out := newSession(t, store, settings, "today\n")
	d, err := env.Project.Day("2024-03-04")
	if err != nil {
		t.Fatalf("expected saved day: %v", err)
	}

	var got []string
	for _, e := range d.Slots() {
		got = append(got, e.Start.String()+"-"+e.End.String()+" "+e.What)
	}
	want := []string{"09:00-12:00 code", "12:00-13:00 lunch"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if len(d.Sport.Runs) != 1 || d.Sport.Runs[0].Seconds != 25*60+30 {
		t.Errorf("expected one 25:30 run, got %+v", d.Sport.Runs)
	}
	if len(env.Project.Notes) != 1 || env.Project.Notes[0].Text != "review budget" {
		t.Errorf("expected note 'review budget', got %+v", env.Project.Notes)
	}

	if _, err := sh.Run(context.Background(), "2024-03-04"); err != nil {
		t.Fatalf("session 2 failed: %v", err)
	}
	if !strings.Contains(out.String(), "lunch") {
		t.Errorf("expected today to print the day, got:\n%s", out.String())
	}

	stats, err := store.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Projects != 1 {
		t.Errorf("expected 1 project, got %d", stats.Projects)
	}
}
