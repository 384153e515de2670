package project

import (
	"time"

	"github.com/mfenderov/chrono/internal/event"
)

// Plan is the template for one weekday.
type Plan struct {
	Events []event.Event
	Silent []event.SilentEvent
}

// Week holds a plan per weekday, Monday first.
type Week [7]Plan

// Schedule is a recurring list of week templates. The week used for a date
// is its ISO week number modulo the number of weeks.
type Schedule struct {
	Weeks []Week
}

// For returns copies of the events and silent events planned for date. The
// silent events are stamped with date.
func (s *Schedule) For(date time.Time) ([]event.Event, []event.SilentEvent) {
	if s == nil || len(s.Weeks) == 0 {
		return nil, nil
	}
	_, week := date.ISOWeek()
	plan := s.Weeks[week%len(s.Weeks)][event.Weekday(date)]

	events := append([]event.Event(nil), plan.Events...)
	silent := make([]event.SilentEvent, len(plan.Silent))
	for i, se := range plan.Silent {
		se.Date = event.Date(date)
		silent[i] = se
	}
	return events, silent
}
