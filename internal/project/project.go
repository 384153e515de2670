// Package project holds the mutable state of a chrono project: its days,
// notes, silent events, schedule template and compiled aliases.
package project

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/pipeline"
)

var (
	// ErrNoDay is returned when a date has no day in the project.
	ErrNoDay = errors.New("no such day")
	// ErrDayExists is returned when adding a day for a date that already has one.
	ErrDayExists = errors.New("day already exists")
	// ErrDuplicateNote is returned when a note with the same text is already listed.
	ErrDuplicateNote = errors.New("duplicate note")
	// ErrNoNote is returned when no note matches.
	ErrNoNote = errors.New("no such note")
)

// Project is the unit of state the command loop works on.
type Project struct {
	Name    string
	Path    string
	Notes   []event.Note
	Silent  []event.SilentEvent
	Aliases map[string]*pipeline.Pipeline

	// Schedule is applied to new empty days while ApplySchedule is set.
	Schedule      *Schedule
	ApplySchedule bool

	days map[string]*Day
}

// New creates an empty project.
func New(name, path string) *Project {
	return &Project{
		Name:    name,
		Path:    path,
		Aliases: make(map[string]*pipeline.Pipeline),
		days:    make(map[string]*Day),
	}
}

// Day returns the day stored under the ISO date key.
func (p *Project) Day(key string) (*Day, error) {
	d, ok := p.days[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNoDay)
	}
	return d, nil
}

// HasDay reports whether a day exists for key.
func (p *Project) HasDay(key string) bool {
	_, ok := p.days[key]
	return ok
}

// AddDay stores d. When the schedule is enabled and d has no events, the
// template for d's weekday is copied into it first.
func (p *Project) AddDay(d *Day) error {
	key := d.Key()
	if _, ok := p.days[key]; ok {
		return fmt.Errorf("%s: %w", key, ErrDayExists)
	}

	var errs []error
	if p.ApplySchedule && p.Schedule != nil && d.Len() == 0 {
		events, silent := p.Schedule.For(d.Date)
		for _, e := range events {
			if err := d.AddEvent(e, false); err != nil {
				errs = append(errs, err)
			}
		}
		p.Silent = append(p.Silent, silent...)
	}
	p.days[key] = d
	return errors.Join(errs...)
}

// EnsureDay returns the day for date, creating it when missing.
func (p *Project) EnsureDay(date time.Time) (*Day, bool, error) {
	key := event.DateKey(date)
	if d, ok := p.days[key]; ok {
		return d, false, nil
	}
	d := NewDay(date)
	err := p.AddDay(d)
	return d, true, err
}

// RemoveDay deletes the day stored under key.
func (p *Project) RemoveDay(key string) error {
	if _, ok := p.days[key]; !ok {
		return fmt.Errorf("%s: %w", key, ErrNoDay)
	}
	delete(p.days, key)
	return nil
}

// Len returns the number of days.
func (p *Project) Len() int {
	return len(p.days)
}

// Keys returns the ISO dates of all days in ascending order.
func (p *Project) Keys() []string {
	return slices.Sorted(maps.Keys(p.days))
}

// Dates returns the dates of all days in ascending order.
func (p *Project) Dates() []time.Time {
	days := p.Days()
	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = d.Date
	}
	return dates
}

// Days returns all days sorted by date.
func (p *Project) Days() []*Day {
	keys := p.Keys()
	days := make([]*Day, len(keys))
	for i, k := range keys {
		days[i] = p.days[k]
	}
	return days
}

// Between returns the days in [from, to], sorted by date.
func (p *Project) Between(from, to time.Time) []*Day {
	from, to = event.Date(from), event.Date(to)
	var out []*Day
	for _, d := range p.Days() {
		if !d.Date.Before(from) && !d.Date.After(to) {
			out = append(out, d)
		}
	}
	return out
}

// Clear removes every day.
func (p *Project) Clear() {
	p.days = make(map[string]*Day)
}

// RemoveAfter deletes all days strictly after date and returns how many were removed.
func (p *Project) RemoveAfter(date time.Time) int {
	date = event.Date(date)
	n := 0
	for key, d := range p.days {
		if d.Date.After(date) {
			delete(p.days, key)
			n++
		}
	}
	return n
}

// Through returns a project named name holding the days up to and including
// date. The days are shared with p and stay in it.
func (p *Project) Through(date time.Time, name string) *Project {
	date = event.Date(date)
	older := New(name, name)
	for key, d := range p.days {
		if !d.Date.After(date) {
			older.days[key] = d
		}
	}
	return older
}

// SplitAt moves the days up to and including date into a new project named
// name and keeps the later days.
func (p *Project) SplitAt(date time.Time, name string) *Project {
	older := p.Through(date, name)
	for key := range older.days {
		delete(p.days, key)
	}
	return older
}

// AddNote appends n to the todo list. Notes are unique by text.
func (p *Project) AddNote(n event.Note) error {
	for _, existing := range p.Notes {
		if existing.Text == n.Text {
			return fmt.Errorf("%q: %w", n.Text, ErrDuplicateNote)
		}
	}
	p.Notes = append(p.Notes, n)
	return nil
}

// RemoveNote deletes the note with the given text.
func (p *Project) RemoveNote(text string) error {
	n := len(p.Notes)
	p.Notes = slices.DeleteFunc(p.Notes, func(note event.Note) bool {
		return note.Text == text
	})
	if len(p.Notes) == n {
		return fmt.Errorf("%q: %w", text, ErrNoNote)
	}
	return nil
}

// RemoveNoteAt deletes the note at the one-based position i.
func (p *Project) RemoveNoteAt(i int) error {
	if i < 1 || i > len(p.Notes) {
		return fmt.Errorf("note %d: %w", i, ErrNoNote)
	}
	p.Notes = slices.Delete(p.Notes, i-1, i)
	return nil
}

// RemoveNoteByID deletes the note whose id starts with prefix.
func (p *Project) RemoveNoteByID(prefix string) error {
	if prefix == "" {
		return ErrNoNote
	}
	for i, note := range p.Notes {
		if strings.HasPrefix(note.ID, prefix) {
			p.Notes = slices.Delete(p.Notes, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("id %s: %w", prefix, ErrNoNote)
}

// ClearNotes empties the todo list.
func (p *Project) ClearNotes() int {
	n := len(p.Notes)
	p.Notes = nil
	return n
}

// AddSilent records a point-in-time event.
func (p *Project) AddSilent(s event.SilentEvent) {
	p.Silent = append(p.Silent, s)
}

// Alias implements pipeline.AliasSource.
func (p *Project) Alias(name string) (*pipeline.Pipeline, bool) {
	a, ok := p.Aliases[strings.ToLower(name)]
	return a, ok
}

// AliasNames returns the alias names in sorted order.
func (p *Project) AliasNames() []string {
	return slices.Sorted(maps.Keys(p.Aliases))
}
