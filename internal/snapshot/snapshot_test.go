package snapshot

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/project"
)

const legacyJSON = `{
  "name": "life",
  "path": "life",
  "todo": [{"text": "buy milk", "datetime": "2024-01-01_09:30:00.123456"}],
  "days": {
    "2024-01-01": {
      "date": "2024-01-01",
      "events": [
        {"start": "10:00:00", "end": "11:00:00", "what": "lecture", "tags": ["uni", "", "&x"]},
        {"start": "08:00:00", "end": "09:00:00", "what": "run", "tags": ["sport"]}
      ],
      "sport": {
        "runs": [{"time": 1800, "distance": 5.2, "start_time": "08:00"}],
        "pushups": [{"times": [30.0, 25.0], "mults": [20, 15], "start_time": "12:00"}],
        "planks": [{"time": 60.0, "start_time": "12:10"}],
        "situps": []
      },
      "sleep": ["23:10:00", "07:05:00", "4422113"]
    }
  },
  "sevents": [{"tdate": "2024-01-03", "start": "23:59:00", "what": "sheet", "tags": ["uni"]}]
}`

func TestDecode_LegacyFile(t *testing.T) {
	snap, err := Decode(strings.NewReader(legacyJSON))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	p, err := snap.ToProject()
	if err != nil {
		t.Fatalf("ToProject failed: %v", err)
	}

	d, err := p.Day("2024-01-01")
	if err != nil {
		t.Fatalf("day missing: %v", err)
	}
	slots := d.Slots()
	if len(slots) != 2 || slots[0].What != "run" {
		t.Fatalf("unexpected slots: %v", slots)
	}
	if diff := cmp.Diff(event.Tags{"uni"}, slots[1].Tags); diff != "" {
		t.Errorf("empty and reserved tags must be dropped (-want +got):\n%s", diff)
	}
	if d.Sleep == nil || d.Sleep.Duration() != 7*time.Hour+55*time.Minute {
		t.Errorf("unexpected sleep: %+v", d.Sleep)
	}
	if len(d.Sport.Runs) != 1 || d.Sport.Runs[0].Seconds != 1800 {
		t.Errorf("unexpected runs: %+v", d.Sport.Runs)
	}
	if len(p.Notes) != 1 || p.Notes[0].ID == "" {
		t.Errorf("expected one note with a generated id, got %+v", p.Notes)
	}
	if len(p.Silent) != 1 || p.Silent[0].At.String() != "23:59" {
		t.Errorf("unexpected silent events: %+v", p.Silent)
	}
}

func TestRoundTrip_PreservesProject(t *testing.T) {
	snap, err := Decode(strings.NewReader(legacyJSON))
	if err != nil {
		t.Fatal(err)
	}
	p, err := snap.ToProject()
	if err != nil {
		t.Fatal(err)
	}
	d, _ := p.Day("2024-01-01")
	d.SetFunction("weight", 71.5)

	first := FromProject(p)

	var buf bytes.Buffer
	if err := Encode(&buf, first); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	again, err := decoded.ToProject()
	if err != nil {
		t.Fatalf("ToProject failed: %v", err)
	}

	if diff := cmp.Diff(first, FromProject(again)); diff != "" {
		t.Errorf("round trip changed the snapshot (-first +second):\n%s", diff)
	}
}

func TestToProject_RejectsOverlap(t *testing.T) {
	snap := &Project{
		Name: "bad",
		Days: map[string]Day{
			"2024-01-01": {
				Date: "2024-01-01",
				Events: []Event{
					{Start: "08:00", End: "10:00", What: "a"},
					{Start: "09:00", End: "11:00", What: "b"},
				},
			},
		},
	}

	if _, err := snap.ToProject(); err == nil {
		t.Error("expected overlapping events to fail the load")
	}
}

func TestWriteFile(t *testing.T) {
	p := project.New("file", "file")
	p.EnsureDay(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	path := filepath.Join(t.TempDir(), "file.json")

	if err := WriteFile(path, FromProject(p)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if _, ok := got.Days["2024-05-01"]; !ok {
		t.Errorf("expected day 2024-05-01, got %v", got.Days)
	}
}
