// Package snapshot defines the persisted shape of a project and converts it
// to and from the in-memory model.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// NoteTimeLayout is the layout of a note's datetime field.
const NoteTimeLayout = "2006-01-02_15:04:05.999999"

// Project is the whole persisted state of a project.
type Project struct {
	Name    string         `json:"name"`
	Path    string         `json:"path"`
	Todo    []Note         `json:"todo"`
	Days    map[string]Day `json:"days"`
	SEvents []SilentEvent  `json:"sevents"`
}

// Note is a todo entry.
type Note struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Datetime string `json:"datetime"`
}

// Day is one day with its events and logs.
type Day struct {
	Date      string             `json:"date"`
	Events    []Event            `json:"events"`
	Sport     Sport              `json:"sport"`
	Sleep     []string           `json:"sleep"`
	Functions map[string]float64 `json:"functions,omitempty"`
}

// Event is an interval event with "HH:MM" bounds.
type Event struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	What  string   `json:"what"`
	Tags  []string `json:"tags"`
}

// SilentEvent is a point-in-time event.
type SilentEvent struct {
	TDate string   `json:"tdate"`
	Start string   `json:"start"`
	What  string   `json:"what"`
	Tags  []string `json:"tags"`
}

// Sport is the exercise log of a day.
type Sport struct {
	Runs    []Run    `json:"runs"`
	PushUps []PushUp `json:"pushups"`
	Planks  []Plank  `json:"planks"`
	SitUps  []SitUp  `json:"situps"`
}

// Run is a run; Time is in seconds.
type Run struct {
	Time      int     `json:"time"`
	Distance  float64 `json:"distance"`
	StartTime string  `json:"start_time"`
}

// PushUp is a set of push-up series.
type PushUp struct {
	Times     []float64 `json:"times"`
	Mults     []int     `json:"mults"`
	StartTime string    `json:"start_time"`
}

// Plank is a plank hold.
type Plank struct {
	Time      float64 `json:"time"`
	StartTime string  `json:"start_time"`
}

// SitUp is a sit-up series.
type SitUp struct {
	Time      float64 `json:"time"`
	Mult      int     `json:"mult"`
	StartTime string  `json:"start_time"`
}

// Decode reads a JSON snapshot.
func Decode(r io.Reader) (*Project, error) {
	var p Project
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if p.Days == nil {
		p.Days = make(map[string]Day)
	}
	return &p, nil
}

// Encode writes p as indented JSON.
func Encode(w io.Writer, p *Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile encodes p to path, replacing any existing file.
func WriteFile(path string, p *Project) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatNoteTime renders t for a note's datetime field.
func FormatNoteTime(t time.Time) string {
	return t.Format(NoteTimeLayout)
}

// ParseNoteTime accepts the "date_time" layout as well as RFC 3339.
func ParseNoteTime(s string) (time.Time, error) {
	if t, err := time.Parse(NoteTimeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// date only, as written by hand
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid note datetime %q", s)
}
