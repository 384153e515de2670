package event_test

import (
	"errors"
	"testing"

	"github.com/mfenderov/chrono/internal/event"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    event.Clock
		wantErr bool
	}{
		{in: "08:00", want: 480},
		{in: "00:00", want: 0},
		{in: "23:59", want: 23*60 + 59},
		{in: "24:00", want: event.MinutesPerDay},
		{in: "09:30:15", want: 570},
		{in: "24:01", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := event.ParseClock(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
			if tt.in != "09:30:15" && got.String() != tt.in {
				t.Errorf("expected round trip %q, got %q", tt.in, got.String())
			}
		})
	}
}

func TestNew_RejectsEmptyInterval(t *testing.T) {
	_, err := event.Parse("10:00", "10:00", "nothing", nil)
	if !errors.Is(err, event.ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}

	_, err = event.Parse("11:00", "10:00", "backwards", nil)
	if !errors.Is(err, event.ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	mk := func(s, e string) event.Event {
		ev, err := event.Parse(s, e, "x", nil)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		return ev
	}

	tests := []struct {
		name string
		a, b event.Event
		want bool
	}{
		{"adjacent", mk("08:00", "09:00"), mk("09:00", "10:00"), false},
		{"disjoint", mk("08:00", "09:00"), mk("11:00", "12:00"), false},
		{"partial", mk("08:00", "09:30"), mk("09:00", "10:00"), true},
		{"nested", mk("08:00", "12:00"), mk("09:00", "10:00"), true},
		{"equal starts", mk("08:00", "08:30"), mk("08:00", "12:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTags(t *testing.T) {
	tags, rejected := event.NewTags("uni", "", "mathe", "&secret", "uni")

	if tags.String() != "mathe,uni" {
		t.Errorf("expected sorted unique tags 'mathe,uni', got %q", tags.String())
	}
	if len(rejected) != 1 || rejected[0] != "&secret" {
		t.Errorf("expected '&secret' to be rejected, got %v", rejected)
	}
	if !tags.Has("uni") || tags.Has("relax") {
		t.Errorf("Has reported wrong membership for %v", tags)
	}
}

func TestTags_Union(t *testing.T) {
	a, _ := event.SplitTags("uni,mathe")
	b, _ := event.SplitTags("mathe,focus")

	got := a.Union(b)
	if got.String() != "focus,mathe,uni" {
		t.Errorf("expected 'focus,mathe,uni', got %q", got.String())
	}
	if !got.Equal(b.Union(a)) {
		t.Error("union should not depend on operand order")
	}
}

func TestWeekday(t *testing.T) {
	monday, _ := event.ParseDate("2024-01-01")
	sunday, _ := event.ParseDate("2024-01-07")

	if event.Weekday(monday) != 0 {
		t.Errorf("expected Monday = 0, got %d", event.Weekday(monday))
	}
	if event.Weekday(sunday) != 6 {
		t.Errorf("expected Sunday = 6, got %d", event.Weekday(sunday))
	}
}
