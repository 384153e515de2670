package project

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mfenderov/chrono/internal/event"
)

var (
	// ErrConflict is returned when a non-forced insertion overlaps a stored event.
	ErrConflict = errors.New("event overlaps an existing event")
	// ErrEmptyDay is returned by operations that need at least one event.
	ErrEmptyDay = errors.New("day has no events")
	// ErrNoEvent is returned when no event matches the given bounds.
	ErrNoEvent = errors.New("no such event")
)

// Day keeps the events of one calendar date free of overlaps.
type Day struct {
	Date      time.Time
	Sport     Sport
	Sleep     *Sleep
	Functions map[string]float64

	events []event.Event
}

// NewDay creates an empty day for the calendar date of date.
func NewDay(date time.Time) *Day {
	return &Day{
		Date:      event.Date(date),
		Functions: make(map[string]float64),
	}
}

// Key returns the ISO date the day is stored under.
func (d *Day) Key() string {
	return event.DateKey(d.Date)
}

// Len returns the number of interval events.
func (d *Day) Len() int {
	return len(d.events)
}

// Events returns the events in storage order.
func (d *Day) Events() []event.Event {
	return slices.Clone(d.events)
}

// AddEvent inserts e. If e overlaps a stored event the insertion fails with
// ErrConflict, unless force is set, in which case every overlapping event is
// evicted. Evicted events are removed whole, never clipped.
func (d *Day) AddEvent(e event.Event, force bool) error {
	if !d.overlapsAny(e, -1) {
		d.events = append(d.events, e)
		return nil
	}
	if !force {
		return fmt.Errorf("%s on %s: %w", e, d.Key(), ErrConflict)
	}

	kept := make([]event.Event, 0, len(d.events)+1)
	for _, stored := range d.events {
		if !stored.Overlaps(e) {
			kept = append(kept, stored)
		}
	}
	d.events = append(kept, e)
	return nil
}

// Conflicts reports whether e overlaps any stored event.
func (d *Day) Conflicts(e event.Event) bool {
	return d.overlapsAny(e, -1)
}

// overlapsAny reports whether e overlaps a stored event other than the one at skip.
func (d *Day) overlapsAny(e event.Event, skip int) bool {
	for i, stored := range d.events {
		if i != skip && stored.Overlaps(e) {
			return true
		}
	}
	return false
}

// Merge joins adjacent events carrying the same label and tag set until no
// such pair remains. It returns the number of merges performed.
func (d *Day) Merge() (int, error) {
	if len(d.events) == 0 {
		return 0, fmt.Errorf("merge %s: %w", d.Key(), ErrEmptyDay)
	}
	d.sort()

	merged := 0
	// Each merge removes one event, so the loop runs at most len-1 times.
	for bound := len(d.events); bound > 1; bound-- {
		i, j, ok := d.findAdjacent()
		if !ok {
			break
		}
		first, second := d.events[i], d.events[j]
		d.events[i] = event.Event{
			Start: first.Start,
			End:   second.End,
			What:  first.What,
			Tags:  first.Tags.Union(second.Tags),
		}
		d.events = slices.Delete(d.events, j, j+1)
		merged++
	}
	return merged, nil
}

func (d *Day) findAdjacent() (int, int, bool) {
	for i, a := range d.events {
		for j, b := range d.events {
			if i != j && a.End == b.Start && a.What == b.What && a.Tags.Equal(b.Tags) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (d *Day) sort() {
	slices.SortStableFunc(d.events, func(a, b event.Event) int {
		return cmp.Compare(a.Start, b.Start)
	})
}

// Slots returns the events ordered by start time. Ties keep insertion order.
func (d *Day) Slots() []event.Event {
	slots := slices.Clone(d.events)
	slices.SortStableFunc(slots, func(a, b event.Event) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return slots
}

// Bounds returns the earliest start and the latest end of the day.
func (d *Day) Bounds() (event.Clock, event.Clock, error) {
	if len(d.events) == 0 {
		return 0, 0, fmt.Errorf("bounds of %s: %w", d.Key(), ErrEmptyDay)
	}
	lo, hi := d.events[0].Start, d.events[0].End
	for _, e := range d.events[1:] {
		lo = min(lo, e.Start)
		hi = max(hi, e.End)
	}
	return lo, hi, nil
}

func (d *Day) find(start, end event.Clock) (int, error) {
	for i, e := range d.events {
		if e.Start == start && e.End == end {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s-%s on %s: %w", start, end, d.Key(), ErrNoEvent)
}

// RemoveEvent deletes the event spanning exactly [start, end).
func (d *Day) RemoveEvent(start, end event.Clock) error {
	i, err := d.find(start, end)
	if err != nil {
		return err
	}
	d.events = slices.Delete(d.events, i, i+1)
	return nil
}

// Reschedule moves the event [start, end) to [newStart, newEnd). The move is
// refused with ErrConflict if the new interval overlaps any other event.
func (d *Day) Reschedule(start, end, newStart, newEnd event.Clock) error {
	i, err := d.find(start, end)
	if err != nil {
		return err
	}
	moved, err := event.New(newStart, newEnd, d.events[i].What, d.events[i].Tags)
	if err != nil {
		return err
	}
	if d.overlapsAny(moved, i) {
		return fmt.Errorf("%s on %s: %w", moved, d.Key(), ErrConflict)
	}
	d.events[i] = moved
	return nil
}

// Relabel changes the label of the event [start, end).
func (d *Day) Relabel(start, end event.Clock, what string) error {
	i, err := d.find(start, end)
	if err != nil {
		return err
	}
	d.events[i].What = what
	return nil
}

// Retag replaces the tags of the event [start, end).
func (d *Day) Retag(start, end event.Clock, tags event.Tags) error {
	i, err := d.find(start, end)
	if err != nil {
		return err
	}
	d.events[i].Tags = tags
	return nil
}

// EventAt returns the first event, by start time, that contains c.
func (d *Day) EventAt(c event.Clock) (event.Event, bool) {
	for _, e := range d.Slots() {
		if e.Contains(c) {
			return e, true
		}
	}
	return event.Event{}, false
}

// EndEventAt cuts the event containing c so that it ends at c.
func (d *Day) EndEventAt(c event.Clock) (event.Event, error) {
	cur, ok := d.EventAt(c)
	if !ok {
		return event.Event{}, fmt.Errorf("no event at %s on %s: %w", c, d.Key(), ErrNoEvent)
	}
	i, err := d.find(cur.Start, cur.End)
	if err != nil {
		return event.Event{}, err
	}
	ended, err := event.New(cur.Start, c, cur.What, cur.Tags)
	if err != nil {
		return event.Event{}, err
	}
	d.events[i] = ended
	return ended, nil
}

// RenameTag replaces tag from with tag to on every event. It returns the
// number of events changed.
func (d *Day) RenameTag(from, to string) int {
	n := 0
	for i, e := range d.events {
		if e.Tags.Has(from) {
			tags, _ := event.NewTags(append(e.Tags.Without(from), to)...)
			d.events[i].Tags = tags
			n++
		}
	}
	return n
}

// DropTag removes tag from every event and returns the number of events changed.
func (d *Day) DropTag(tag string) int {
	n := 0
	for i, e := range d.events {
		if e.Tags.Has(tag) {
			d.events[i].Tags = e.Tags.Without(tag)
			n++
		}
	}
	return n
}

// RemoveTagged deletes every event carrying tag and returns how many were removed.
func (d *Day) RemoveTagged(tag string) int {
	before := len(d.events)
	d.events = slices.DeleteFunc(d.events, func(e event.Event) bool {
		return e.Tags.Has(tag)
	})
	return before - len(d.events)
}

// TagHours returns the hours spent on events carrying tag.
func (d *Day) TagHours(tag string) float64 {
	var hours float64
	for _, e := range d.events {
		if e.Tags.Has(tag) {
			hours += e.Hours()
		}
	}
	return hours
}

// SetFunction stores a named numeric value for the day.
func (d *Day) SetFunction(name string, value float64) {
	if d.Functions == nil {
		d.Functions = make(map[string]float64)
	}
	d.Functions[name] = value
}

// Function returns the named value, if set.
func (d *Day) Function(name string) (float64, bool) {
	v, ok := d.Functions[name]
	return v, ok
}

func (d *Day) String() string {
	s := d.Key() + ":\n"
	for _, e := range d.Slots() {
		s += "\n" + e.String() + "\n"
	}
	return s
}
