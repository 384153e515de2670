// Package event holds the value types shared by the scheduling model,
// the command set and the analysis engine.
package event

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when an event does not start before it ends.
var ErrInvalidInterval = errors.New("event must start before it ends")

// Event is an interval event covering [Start, End).
type Event struct {
	Start Clock
	End   Clock
	What  string
	Tags  Tags
}

// New builds an event and validates its interval.
func New(start, end Clock, what string, tags Tags) (Event, error) {
	if start >= end {
		return Event{}, fmt.Errorf("%s-%s: %w", start, end, ErrInvalidInterval)
	}
	if start < 0 || end > MinutesPerDay {
		return Event{}, fmt.Errorf("%s-%s: outside of the day", start, end)
	}
	return Event{Start: start, End: end, What: what, Tags: tags}, nil
}

// Parse builds an event from its textual bounds.
func Parse(start, end, what string, tags Tags) (Event, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Event{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Event{}, err
	}
	return New(s, e, what, tags)
}

// Overlaps reports whether e and other share any instant. Events with equal
// starts always overlap.
func (e Event) Overlaps(other Event) bool {
	if e.Start == other.Start {
		return true
	}
	return !(e.End <= other.Start || other.End <= e.Start)
}

// Contains reports whether c falls inside [Start, End].
func (e Event) Contains(c Clock) bool {
	return e.Start <= c && c <= e.End
}

// Length returns the duration of the event.
func (e Event) Length() time.Duration {
	return (e.End - e.Start).Duration()
}

// Hours returns the duration of the event in hours.
func (e Event) Hours() float64 {
	return e.Length().Hours()
}

// Equal compares all fields, treating tags as a set.
func (e Event) Equal(other Event) bool {
	return e.Start == other.Start && e.End == other.End && e.What == other.What && e.Tags.Equal(other.Tags)
}

func (e Event) String() string {
	return fmt.Sprintf("From %s until %s : %s", e.Start, e.End, e.What)
}

// SilentEvent is a point-in-time annotation such as a deadline.
type SilentEvent struct {
	Date time.Time
	At   Clock
	What string
	Tags Tags
}

func (s SilentEvent) String() string {
	return fmt.Sprintf("Date: %s, time: %s, what: %s", DateKey(s.Date), s.At, s.What)
}
