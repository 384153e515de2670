package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mfenderov/chrono/internal/event"
)

func TestLoadSchedule_MissingFile(t *testing.T) {
	s, err := LoadSchedule(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadSchedule failed: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil schedule, got %+v", s)
	}
}

func TestLoadSchedule_YAML(t *testing.T) {
	path := writeFile(t, "schedule.yml", `
weeks:
  - - - {start: "09:00", end: "10:00", what: standup, tags: [work]}
      - {start: "12:00", what: lunch}
    - []
`)
	s, err := LoadSchedule(path)
	if err != nil {
		t.Fatalf("LoadSchedule failed: %v", err)
	}
	if len(s.Weeks) != 1 {
		t.Fatalf("expected 1 week, got %d", len(s.Weeks))
	}

	// 2024-01-01 is a Monday.
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events, silent := s.For(monday)
	if len(events) != 1 || events[0].What != "standup" || !events[0].Tags.Has("work") {
		t.Errorf("unexpected events %v", events)
	}
	if len(silent) != 1 || silent[0].At != event.MustClock("12:00") || !silent[0].Date.Equal(monday) {
		t.Errorf("unexpected silent events %v", silent)
	}

	events, silent = s.For(monday.AddDate(0, 0, 1))
	if len(events) != 0 || len(silent) != 0 {
		t.Errorf("expected empty Tuesday, got %v %v", events, silent)
	}
}

func TestLoadSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"overlap", `{"weeks": [[[{"start": "09:00", "end": "10:00", "what": "a"}, {"start": "09:30", "end": "11:00", "what": "b"}]]]}`},
		{"bad clock", `{"weeks": [[[{"start": "9am", "what": "a"}]]]}`},
		{"eight days", `{"weeks": [[[], [], [], [], [], [], [], []]]}`},
		{"inverted", `{"weeks": [[[{"start": "10:00", "end": "09:00", "what": "a"}]]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSchedule(writeFile(t, "schedule.json", tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
