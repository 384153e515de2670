package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/mfenderov/chrono/internal/commands"
	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/intelliref"
	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
	"github.com/mfenderov/chrono/internal/sleep"
	"github.com/mfenderov/chrono/internal/storage"
)

// 2024-01-10 is a Wednesday.
var testNow = time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)

type harness struct {
	env *commands.Env
	in  *pipeline.Interpreter
	out *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	env := commands.NewEnv(project.New("test", "test"))
	env.Store = store
	env.Out = &out
	env.Logger = log.New(io.Discard)
	env.Now = func() time.Time { return testNow }
	env.Settings.Code = "1234"

	reg, err := commands.NewRegistry(env)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return &harness{
		env: env,
		in:  pipeline.NewInterpreter(reg, env, env.Logger),
		out: &out,
	}
}

// run executes line and fails the test on error.
func (h *harness) run(t *testing.T, ref, line string) string {
	t.Helper()
	next, err := h.in.Execute(context.Background(), ref, line)
	if err != nil {
		t.Fatalf("%q failed: %v", line, err)
	}
	return next
}

// fail executes line, expects an error and checks the reference is kept.
func (h *harness) fail(t *testing.T, ref, line string) error {
	t.Helper()
	next, err := h.in.Execute(context.Background(), ref, line)
	if err == nil {
		t.Fatalf("%q: expected error, got nil", line)
	}
	if next != ref {
		t.Errorf("%q: expected reference %q kept, got %q", line, ref, next)
	}
	return err
}

func (h *harness) day(t *testing.T, key string) *project.Day {
	t.Helper()
	d, err := h.env.Project.Day(key)
	if err != nil {
		t.Fatalf("day %s: %v", key, err)
	}
	return d
}

func whats(d *project.Day) []string {
	var out []string
	for _, e := range d.Slots() {
		out = append(out, e.Start.String()+"-"+e.End.String()+" "+e.What)
	}
	return out
}

func TestRegistry_HasEveryCommand(t *testing.T) {
	h := newHarness(t)
	names := h.env.Registry().Names()
	for _, want := range []string{
		"setreference", "intelliref", "mkday", "days", "today", "generatedays", "fillemptydays",
		"deleteday", "clear", "clearfuture", "split", "mkevent", "mktime", "times", "getcurrent",
		"end", "deleteevent", "changeevent", "changeeventtime", "changeeventwhat", "changeeventtags",
		"merge", "note", "notes", "deletenote", "deletenoteid", "deletenotes", "addrun", "addpushup",
		"addplank", "addsitup", "delrun", "delpushup", "delplank", "delsitup", "showruns", "runstats",
		"runsum", "ourasleep", "getsleep", "setsleep", "lastnightsleep", "updatefunction",
		"getfunction", "stats", "tags", "tagsummary", "renametag", "deletetag", "deletebytag",
		"topdegrees", "rcc", "gblgetsplitforce", "gbltreeview", "commands", "aliases", "help",
		"save", "refresh", "restore", "lhof", "rhof", "ihof", "quit",
	} {
		if _, ok := h.env.Registry().Lookup(want); !ok {
			t.Errorf("command %s not registered (have %v)", want, names)
		}
	}
}

func TestSetReference(t *testing.T) {
	h := newHarness(t)

	ref := h.run(t, "", "setreference today")
	if ref != "2024-01-10" {
		t.Errorf("expected 2024-01-10, got %q", ref)
	}
	if !h.env.Project.HasDay("2024-01-10") {
		t.Error("expected setreference to create the day")
	}

	h.run(t, ref, "setreference 2024-01-05")
	ref = h.run(t, ref, "intelliref start")
	if ref != "2024-01-05" {
		t.Errorf("expected start to be 2024-01-05, got %q", ref)
	}
	ref = h.run(t, ref, "intelliref i-1")
	if ref != "2024-01-10" {
		t.Errorf("expected i-1 to be 2024-01-10, got %q", ref)
	}

	err := h.fail(t, ref, "intelliref i7")
	if !errors.Is(err, intelliref.ErrInvalidReference) {
		t.Errorf("expected invalid reference, got %v", err)
	}
}

func TestMkEvent_ConflictAndForce(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")

	h.run(t, ref, "mkevent code dev 09:00 11:00")
	err := h.fail(t, ref, "mkevent meeting work 10:00 12:00 0")
	if !errors.Is(err, project.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	h.run(t, ref, "mkevent meeting work 10:00 12:00 1")

	want := []string{"10:00-12:00 meeting"}
	if diff := cmp.Diff(want, whats(h.day(t, ref))); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestMkEvent_CrossesMidnight(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")

	h.run(t, ref, "mkevent party fun 22:00 02:00")

	if diff := cmp.Diff([]string{"22:00-24:00 party"}, whats(h.day(t, "2024-01-10"))); diff != "" {
		t.Errorf("first day mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"00:00-02:00 party"}, whats(h.day(t, "2024-01-11"))); diff != "" {
		t.Errorf("second day mismatch (-want +got):\n%s", diff)
	}
}

func TestMkEvent_CrossesMidnightConflictLeavesDaysUntouched(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, "", "setreference 2024-01-11")
	h.run(t, "2024-01-11", "mkevent nap rest 00:30 02:00")

	err := h.fail(t, ref, "mkevent party fun 23:00 01:00 0")
	if !errors.Is(err, project.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if got := whats(h.day(t, ref)); len(got) != 0 {
		t.Errorf("expected no events on %s, got %v", ref, got)
	}
	if diff := cmp.Diff([]string{"00:30-02:00 nap"}, whats(h.day(t, "2024-01-11"))); diff != "" {
		t.Errorf("next day mismatch (-want +got):\n%s", diff)
	}
}

func TestMkEvent_CrossesMidnightIntoScheduledDayRollsBack(t *testing.T) {
	h := newHarness(t)
	nap := event.Event{Start: event.MustClock("00:30"), End: event.MustClock("02:00"), What: "nap"}
	var week project.Week
	week[3].Events = []event.Event{nap} // Thursday
	h.env.Schedule = &project.Schedule{Weeks: []project.Week{week}}
	h.env.Settings.Schedule = true
	if err := h.env.Install(h.env.Project); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	ref := h.run(t, "", "setreference 2024-01-10")

	h.fail(t, ref, "mkevent party fun 23:00 01:00 0")
	if got := whats(h.day(t, ref)); len(got) != 0 {
		t.Errorf("expected no events on %s, got %v", ref, got)
	}
	if h.env.Project.HasDay("2024-01-11") {
		t.Error("expected the day created for the second half to be removed")
	}
}

func TestMkEvent_Invalid(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")

	h.fail(t, ref, "mkevent x y 09:00 09:00")
	h.fail(t, ref, "mkevent x y 9am 10:00")
	h.fail(t, "2030-01-01", "mkevent x y 09:00 10:00")
	err := h.fail(t, ref, "mkevent")
	if !errors.Is(err, pipeline.ErrArgument) {
		t.Errorf("expected ErrArgument, got %v", err)
	}
}

func TestChangeEvent(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, ref, "mkevent code dev 09:00 10:00")
	h.run(t, ref, "mkevent lunch food 12:00 13:00")

	h.run(t, ref, "changeevent 09:00 10:00 time 08:00 09:30")
	h.run(t, ref, "changeevent 08:00 09:30 what review")
	h.run(t, ref, "changeeventtags 08:00 09:30 work,go")
	h.fail(t, ref, "changeeventtime 12:00 13:00 09:00 12:30")
	h.fail(t, ref, "changeevent 12:00 13:00 colour red")

	d := h.day(t, ref)
	want := []string{"08:00-09:30 review", "12:00-13:00 lunch"}
	if diff := cmp.Diff(want, whats(d)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if got := d.Slots()[0].Tags.String(); got != "go,work" {
		t.Errorf("expected tags go,work, got %q", got)
	}

	h.run(t, ref, "deleteevent 12:00 13:00")
	if d.Len() != 1 {
		t.Errorf("expected 1 event after delete, got %d", d.Len())
	}
	h.fail(t, ref, "deleteevent 12:00 13:00")
}

func TestCurrentAndEnd(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference today")
	h.run(t, ref, "mkevent code dev 14:00 16:00")

	h.run(t, ref, "getcurrent")
	if !strings.Contains(h.out.String(), "code") {
		t.Errorf("expected current event in output, got %q", h.out.String())
	}

	h.run(t, ref, "end")
	if diff := cmp.Diff([]string{"14:00-14:30 code"}, whats(h.day(t, ref))); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeThroughAlias(t *testing.T) {
	h := newHarness(t)
	h.env.Settings.Alias = "mm = setreference $1 |> merge"
	if err := h.env.Install(h.env.Project); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, ref, "mkevent code dev 09:00 10:00")
	h.run(t, ref, "mkevent code dev 10:00 11:00")
	h.run(t, ref, "mkevent code dev 11:00 12:00")

	ref = h.run(t, "start", "mm 2024-01-10")
	if ref != "2024-01-10" {
		t.Errorf("expected alias to set reference, got %q", ref)
	}
	if diff := cmp.Diff([]string{"09:00-12:00 code"}, whats(h.day(t, ref))); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNotes(t *testing.T) {
	h := newHarness(t)

	h.run(t, "", "note buy milk")
	h.run(t, "", `note "call bob"`)
	h.fail(t, "", "note buy milk")

	notes := h.env.Project.Notes
	if len(notes) != 2 || notes[0].Text != "buy milk" || notes[1].Text != "call bob" {
		t.Fatalf("unexpected notes %+v", notes)
	}
	if !notes[0].CreatedAt.Equal(testNow) {
		t.Errorf("expected note stamped %v, got %v", testNow, notes[0].CreatedAt)
	}

	h.run(t, "", "deletenoteid "+notes[1].ID[:8])
	h.run(t, "", "deletenote buy milk")
	if len(h.env.Project.Notes) != 0 {
		t.Errorf("expected no notes, got %+v", h.env.Project.Notes)
	}

	h.run(t, "", "note a")
	h.run(t, "", "note b")
	h.run(t, "", "deletenotes")
	if len(h.env.Project.Notes) != 0 {
		t.Errorf("expected deletenotes to clear the list")
	}
}

func TestSport(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, "", "setreference 2024-01-08")

	h.run(t, ref, "addrun 07:00 50:00 10")
	h.run(t, "2024-01-08", "addrun 07:00 25:00 5")
	h.run(t, ref, "addpushup 08:00 00:30,00:25 20,15")
	h.run(t, ref, "addplank 08:10 01:00")
	h.run(t, ref, "addsitup 08:20 00:45 30")
	h.fail(t, ref, "addpushup 08:00 00:30 20,15")
	h.fail(t, ref, "addrun 07:00 fast 10")

	d := h.day(t, ref)
	if d.Sport.Runs[0].Seconds != 3000 {
		t.Errorf("expected 3000 seconds, got %d", d.Sport.Runs[0].Seconds)
	}
	if diff := cmp.Diff([]float64{30, 25}, d.Sport.PushUps[0].Seconds); diff != "" {
		t.Errorf("push-up times mismatch (-want +got):\n%s", diff)
	}

	h.out.Reset()
	h.run(t, ref, "runsum 2")
	if !strings.Contains(h.out.String(), "You ran 15.00 in 1:15:00") {
		t.Errorf("unexpected runsum output %q", h.out.String())
	}
	h.out.Reset()
	h.run(t, ref, "runstats")
	if !strings.Contains(h.out.String(), "pace of 05:00") {
		t.Errorf("unexpected runstats output %q", h.out.String())
	}

	h.run(t, ref, "delrun 07:00")
	h.run(t, ref, "delplank 08:10")
	if len(d.Sport.Runs) != 0 || len(d.Sport.Planks) != 0 {
		t.Errorf("expected run and plank removed, got %+v", d.Sport)
	}
}

type fakeSleep struct {
	records []sleep.Record
	err     error
	calls   int
}

func (f *fakeSleep) Fetch(ctx context.Context, start, stop time.Time) ([]sleep.Record, error) {
	f.calls++
	return f.records, f.err
}

func TestOuraSleep(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")

	if err := h.fail(t, ref, "ourasleep"); !errors.Is(err, commands.ErrNoSleepSource) {
		t.Errorf("expected ErrNoSleepSource, got %v", err)
	}

	src := &fakeSleep{records: []sleep.Record{
		{Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Start: event.MustClock("23:00"), End: event.MustClock("07:00"), Phases: "44"},
		{Date: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Start: event.MustClock("23:00"), End: event.MustClock("07:00")},
	}}
	h.env.Sleep = src
	h.run(t, ref, "ourasleep")

	s := h.day(t, ref).Sleep
	if s == nil || s.Duration() != 8*time.Hour || s.Phases != "44" {
		t.Errorf("unexpected sleep %+v", s)
	}
	if h.env.Project.HasDay("2024-01-20") {
		t.Error("records for unknown days must not create days")
	}
}

func TestOuraSleep_ProviderFailureLeavesDaysUntouched(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, ref, "setsleep ref 22:00 06:00")

	h.env.Sleep = &fakeSleep{err: sleep.ErrProviderFailure}
	if err := h.fail(t, ref, "ourasleep"); !errors.Is(err, sleep.ErrProviderFailure) {
		t.Errorf("expected ErrProviderFailure, got %v", err)
	}
	if s := h.day(t, ref).Sleep; s == nil || s.Start != event.MustClock("22:00") {
		t.Errorf("expected sleep untouched, got %+v", s)
	}
}

func TestSleepAndFunctions(t *testing.T) {
	h := newHarness(t)
	h.run(t, "", "setreference 2024-01-09")
	ref := h.run(t, "", "setreference 2024-01-10")

	h.run(t, ref, "setsleep 2024-01-09 23:30 07:00 4411")
	h.out.Reset()
	h.run(t, ref, "lastnightsleep")
	if !strings.Contains(h.out.String(), "07:30") {
		t.Errorf("expected 07:30 of sleep, got %q", h.out.String())
	}

	h.run(t, ref, "updatefunction mood 7.5")
	h.out.Reset()
	h.run(t, ref, "getfunction mood")
	if !strings.Contains(h.out.String(), "mood(2024-01-10) = 7.5") {
		t.Errorf("unexpected output %q", h.out.String())
	}
	if err := h.fail(t, ref, "getfunction energy"); !errors.Is(err, commands.ErrNoFunction) {
		t.Errorf("expected ErrNoFunction, got %v", err)
	}
}

func TestDaysGeneration(t *testing.T) {
	h := newHarness(t)

	h.run(t, "", "generatedays 3")
	if diff := cmp.Diff([]string{"2024-01-10", "2024-01-11", "2024-01-12"}, h.env.Project.Keys()); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}

	h.run(t, "", "mkday 2024-01-15")
	h.fail(t, "", "mkday 2024-01-15")
	h.run(t, "", "fillemptydays")
	if h.env.Project.Len() != 6 {
		t.Errorf("expected 6 days after filling, got %v", h.env.Project.Keys())
	}

	h.run(t, "2024-01-15", "deleteday")
	if h.env.Project.HasDay("2024-01-15") {
		t.Error("expected day deleted")
	}
}

func TestSchedule_AppliedToNewDays(t *testing.T) {
	h := newHarness(t)
	standup := event.Event{Start: event.MustClock("09:00"), End: event.MustClock("09:15"), What: "standup"}
	var week project.Week
	week[2].Events = []event.Event{standup} // Wednesday
	h.env.Schedule = &project.Schedule{Weeks: []project.Week{week}}
	h.env.Settings.Schedule = true
	if err := h.env.Install(h.env.Project); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	ref := h.run(t, "", "setreference 2024-01-10")
	if diff := cmp.Diff([]string{"09:00-09:15 standup"}, whats(h.day(t, ref))); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	h.run(t, "", "fillemptydays 2024-01-03 2024-01-09")
	if h.day(t, "2024-01-03").Len() != 0 {
		t.Error("fillemptydays must not apply the schedule")
	}
}

func TestClearRequiresCode(t *testing.T) {
	h := newHarness(t)
	h.run(t, "", "setreference 2024-01-10")
	h.run(t, "", "setreference 2024-01-20")

	if err := h.fail(t, "", "clearfuture 0000"); !errors.Is(err, commands.ErrWrongCode) {
		t.Errorf("expected ErrWrongCode, got %v", err)
	}
	h.run(t, "", "clearfuture 1234")
	if diff := cmp.Diff([]string{"2024-01-10"}, h.env.Project.Keys()); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}

	h.run(t, "", "clear 1234")
	if h.env.Project.Len() != 0 {
		t.Errorf("expected no days, got %v", h.env.Project.Keys())
	}

	h.run(t, "", "restore 1234")
	if diff := cmp.Diff([]string{"2024-01-10"}, h.env.Project.Keys()); diff != "" {
		t.Errorf("restored days mismatch (-want +got):\n%s", diff)
	}
	if h.env.Project.Name != "test" {
		t.Errorf("expected restored project to keep its name, got %q", h.env.Project.Name)
	}
}

func TestSaveAndRefresh(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, ref, "mkevent code dev 09:00 10:00")
	h.run(t, ref, "save")

	h.run(t, ref, "mkevent lunch food 12:00 13:00")
	h.run(t, ref, "refresh")

	if h.day(t, ref).Len() != 2 {
		t.Errorf("expected refresh to keep both events, got %v", whats(h.day(t, ref)))
	}

	ctx := context.Background()
	if _, err := h.env.Store.LoadProject(ctx, "test"+storage.BackupSuffix); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("first save has nothing to back up, got %v", err)
	}
	h.run(t, ref, "save")
	backup, err := h.env.Store.LoadProject(ctx, "test"+storage.BackupSuffix)
	if err != nil {
		t.Fatalf("expected backup after second save: %v", err)
	}
	if len(backup.Days[ref].Events) != 2 {
		t.Errorf("expected backup of the refreshed state, got %+v", backup.Days[ref])
	}
}

func TestRefresh_RereadsSettings(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write settings: %v", err)
		}
	}
	write(`{"code": "1234"}`)
	h.env.SettingsPath = path

	ref := h.run(t, "", "setreference 2024-01-10")
	if err := h.fail(t, ref, "ls"); !errors.Is(err, pipeline.ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}

	write(`{"code": "1234", "alias": "ls = days"}`)
	h.run(t, ref, "refresh")
	h.out.Reset()
	h.run(t, ref, "ls")
	if !strings.Contains(h.out.String(), "2024-01-10") {
		t.Errorf("expected ls to list the days, got %q", h.out.String())
	}
}

func TestRefresh_InvalidSettingsKeepProject(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	h.env.SettingsPath = path

	ref := h.run(t, "", "setreference 2024-01-10")
	h.fail(t, ref, "refresh")
	if !h.env.Project.HasDay(ref) {
		t.Error("expected project kept after failed refresh")
	}
	if h.env.Settings.Code != "1234" {
		t.Errorf("expected settings kept, got code %q", h.env.Settings.Code)
	}
}

func TestInstall_KeepsValidAliases(t *testing.T) {
	h := newHarness(t)
	h.env.Settings.Alias = "no equals sign\nmm = setreference $1 |> merge\nbad = days $x"
	if err := h.env.Install(h.env.Project); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if diff := cmp.Diff([]string{"mm"}, h.env.Project.AliasNames()); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}
	if ref := h.run(t, "", "mm 2024-01-10"); ref != "2024-01-10" {
		t.Errorf("expected alias to set reference, got %q", ref)
	}
}

func TestSplit(t *testing.T) {
	h := newHarness(t)
	h.run(t, "", "setreference 2024-01-01")
	h.run(t, "", "setreference 2024-01-10")

	h.run(t, "", "split 2024-01-05 archive")
	if diff := cmp.Diff([]string{"2024-01-10"}, h.env.Project.Keys()); diff != "" {
		t.Errorf("kept days mismatch (-want +got):\n%s", diff)
	}
	archived, err := h.env.Store.LoadProject(context.Background(), "archive")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if _, ok := archived.Days["2024-01-01"]; !ok || len(archived.Days) != 1 {
		t.Errorf("unexpected archived days %v", archived.Days)
	}
}

func TestSplit_FailedSaveKeepsDays(t *testing.T) {
	h := newHarness(t)
	h.run(t, "", "setreference 2024-01-01")
	h.run(t, "", "setreference 2024-01-10")

	if err := h.env.Store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	h.fail(t, "", "split 2024-01-05 archive")
	if diff := cmp.Diff([]string{"2024-01-01", "2024-01-10"}, h.env.Project.Keys()); diff != "" {
		t.Errorf("days mismatch after failed split (-want +got):\n%s", diff)
	}
}

func TestTagCommands(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, ref, "mkevent code dev,go 09:00 11:00")
	h.run(t, ref, "mkevent review dev 11:00 12:00")
	h.run(t, ref, "mkevent gym sport 18:00 19:00")

	h.out.Reset()
	h.run(t, ref, "tags")
	if got := strings.TrimSpace(h.out.String()); got != "dev, go, sport" {
		t.Errorf("expected dev, go, sport, got %q", got)
	}

	h.out.Reset()
	h.run(t, ref, "rcc 1")
	if !strings.Contains(h.out.String(), "dev, go") || !strings.Contains(h.out.String(), "sport") {
		t.Errorf("unexpected clusters %q", h.out.String())
	}

	h.out.Reset()
	h.run(t, ref, "topdegrees 1")
	if !strings.HasPrefix(h.out.String(), "dev") {
		t.Errorf("expected dev first, got %q", h.out.String())
	}

	if err := h.fail(t, ref, "topdegrees -1"); !errors.Is(err, pipeline.ErrArgument) {
		t.Errorf("expected ErrArgument for negative k, got %v", err)
	}

	h.run(t, ref, "gblgetsplitforce")
	h.run(t, ref, "gbltreeview")

	h.out.Reset()
	h.run(t, ref, "stats dev,go")
	out := h.out.String()
	if !strings.Contains(out, "dev: Daily Avg (hours): 3.00") || !strings.Contains(out, "sum: Daily Avg (hours): 3.00") {
		t.Errorf("unexpected stats %q", out)
	}

	h.run(t, ref, "renametag go golang")
	h.run(t, ref, "deletetag sport")
	h.run(t, ref, "deletebytag golang")
	if diff := cmp.Diff([]string{"11:00-12:00 review", "18:00-19:00 gym"}, whats(h.day(t, ref))); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	h.fail(t, ref, "renametag dev &reserved")
}

func TestAnalysis_NoActivity(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.fail(t, ref, "gblgetsplitforce")
}

func TestHigherOrder(t *testing.T) {
	h := newHarness(t)
	ref := h.run(t, "", "setreference 2024-01-10")
	h.run(t, ref, "mkevent a x 09:00 10:00")
	h.run(t, ref, "mkevent b x 11:00 12:00")
	h.run(t, ref, "mkevent c x 13:00 14:00")

	h.run(t, ref, "ihof 09:00,10:00 0 changeeventwhat first")
	h.run(t, ref, "rhof second changeeventwhat 11:00 12:00")
	h.run(t, ref, "lhof 13:00,14:00 deleteevent")

	want := []string{"09:00-10:00 first", "11:00-12:00 second"}
	if diff := cmp.Diff(want, whats(h.day(t, ref))); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if err := h.fail(t, ref, "lhof a nosuch"); !errors.Is(err, pipeline.ErrCommandNotFound) {
		t.Errorf("expected ErrCommandNotFound, got %v", err)
	}
	h.fail(t, ref, "ihof a 5 notes")
}

func TestMetaCommands(t *testing.T) {
	h := newHarness(t)

	h.run(t, "", "help mkevent")
	if !strings.Contains(h.out.String(), "usage: mkevent") {
		t.Errorf("expected usage, got %q", h.out.String())
	}
	if err := h.fail(t, "", "help nosuch"); !errors.Is(err, pipeline.ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}

	h.out.Reset()
	h.run(t, "", "commands")
	if !strings.Contains(h.out.String(), "gbltreeview") {
		t.Errorf("expected command list, got %q", h.out.String())
	}

	_, err := h.in.Execute(context.Background(), "r", "quit")
	if !errors.Is(err, pipeline.ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
}
