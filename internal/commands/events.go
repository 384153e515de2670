package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
)

// mkevent <what> [tags] [start] [end] [force]
func (e *Env) mkEvent(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	what := args[0]
	tags := e.tags(optional(args, 1, "relax"))
	start, err := argClock("start", optional(args, 2, "08:00"))
	if err != nil {
		return ref, err
	}
	end, err := argClock("end", optional(args, 3, "10:00"))
	if err != nil {
		return ref, err
	}
	force, err := strconv.ParseBool(optional(args, 4, "1"))
	if err != nil {
		return ref, fmt.Errorf("force: %w", pipeline.ErrArgument)
	}

	if start == end {
		return ref, fmt.Errorf("start can't be the same as end: %w", event.ErrInvalidInterval)
	}
	if start < end {
		ev, err := event.New(start, end, what, tags)
		if err != nil {
			return ref, err
		}
		return ref, d.AddEvent(ev, force)
	}

	// The event runs past midnight: [start, 24:00) today, [00:00, end) tomorrow.
	first, err := event.New(start, event.MinutesPerDay, what, tags)
	if err != nil {
		return ref, err
	}
	if end == 0 {
		return ref, d.AddEvent(first, force)
	}
	second, err := event.New(0, end, what, tags)
	if err != nil {
		return ref, err
	}

	nextDate := d.Date.AddDate(0, 0, 1)
	next, err := e.Project.Day(event.DateKey(nextDate))
	if err == nil && !force && next.Conflicts(second) {
		return ref, fmt.Errorf("%s on %s: %w", second, next.Key(), project.ErrConflict)
	}
	if err := d.AddEvent(first, force); err != nil {
		return ref, err
	}
	e.println("Creating 2 events ...")

	next, created, err := e.Project.EnsureDay(nextDate)
	if err != nil {
		e.Logger.Warn("Schedule conflicts", "date", event.DateKey(nextDate), "err", err)
	}
	if err := next.AddEvent(second, force); err != nil {
		// a new day may carry scheduled events; undo the first half
		_ = d.RemoveEvent(first.Start, first.End)
		if created {
			_ = e.Project.RemoveDay(next.Key())
		}
		return ref, err
	}
	return ref, nil
}

// mktime <what> <tags> <start> [date]
func (e *Env) mkTime(ctx context.Context, ref string, args []string) (string, error) {
	at, err := argClock("start", args[2])
	if err != nil {
		return ref, err
	}
	date, err := e.resolve(optional(args, 3, "ref"), ref)
	if err != nil {
		return ref, err
	}
	e.Project.AddSilent(event.SilentEvent{
		Date: date,
		At:   at,
		What: args[0],
		Tags: e.tags(args[1]),
	})
	return ref, nil
}

// times [days] lists the silent events from today on.
func (e *Env) listTimes(ctx context.Context, ref string, args []string) (string, error) {
	n := 1
	if len(args) > 0 {
		var err error
		if n, err = argInt("days", args[0]); err != nil {
			return ref, err
		}
	}
	from := e.today()
	to := from.AddDate(0, 0, n)
	found := 0
	for _, se := range e.Project.Silent {
		if !se.Date.Before(from) && se.Date.Before(to) {
			e.println(se.String())
			found++
		}
	}
	if found == 0 {
		e.println(e.Styles.Dim.Render("no times"))
	}
	return ref, nil
}

func (e *Env) currentDay() (*project.Day, event.Clock, error) {
	now := e.now()
	d, err := e.Project.Day(event.DateKey(now))
	if err != nil {
		return nil, 0, err
	}
	return d, event.ClockOf(now), nil
}

func (e *Env) getCurrent(ctx context.Context, ref string, args []string) (string, error) {
	d, now, err := e.currentDay()
	if err != nil {
		return ref, err
	}
	ev, ok := d.EventAt(now)
	if !ok {
		e.println("no current event")
		return ref, nil
	}
	e.println(e.renderEvent(ev))
	return ref, nil
}

func (e *Env) endCurrent(ctx context.Context, ref string, args []string) (string, error) {
	d, now, err := e.currentDay()
	if err != nil {
		return ref, err
	}
	ended, err := d.EndEventAt(now)
	if err != nil {
		return ref, fmt.Errorf("couldn't end event: %w", err)
	}
	e.println(e.renderEvent(ended))
	return ref, nil
}

func (e *Env) bounds(args []string) (event.Clock, event.Clock, error) {
	start, err := argClock("start", args[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := argClock("end", args[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (e *Env) deleteEvent(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, end, err := e.bounds(args)
	if err != nil {
		return ref, err
	}
	if err := d.RemoveEvent(start, end); err != nil {
		return ref, err
	}
	e.println("removed")
	return ref, nil
}

// changeevent <start> <end> time|what|tags <args...>
func (e *Env) changeEvent(ctx context.Context, ref string, args []string) (string, error) {
	rest := append(args[:2:2], args[3:]...)
	switch args[2] {
	case "time":
		if len(rest) != 4 {
			return ref, fmt.Errorf("changeevent time needs a new start and end: %w", pipeline.ErrArgument)
		}
		return e.changeEventTime(ctx, ref, rest)
	case "what":
		if len(rest) != 3 {
			return ref, fmt.Errorf("changeevent what needs a label: %w", pipeline.ErrArgument)
		}
		return e.changeEventWhat(ctx, ref, rest)
	case "tags":
		if len(rest) != 3 {
			return ref, fmt.Errorf("changeevent tags needs a tag list: %w", pipeline.ErrArgument)
		}
		return e.changeEventTags(ctx, ref, rest)
	default:
		return ref, fmt.Errorf("unknown mode %q: %w", args[2], pipeline.ErrArgument)
	}
}

// changeeventtime <start> <end> [newstart] [newend]
func (e *Env) changeEventTime(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, end, err := e.bounds(args)
	if err != nil {
		return ref, err
	}
	newStart, err := argClock("new start", optional(args, 2, "08:00"))
	if err != nil {
		return ref, err
	}
	newEnd, err := argClock("new end", optional(args, 3, "10:00"))
	if err != nil {
		return ref, err
	}
	return ref, d.Reschedule(start, end, newStart, newEnd)
}

func (e *Env) changeEventWhat(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, end, err := e.bounds(args)
	if err != nil {
		return ref, err
	}
	return ref, d.Relabel(start, end, args[2])
}

func (e *Env) changeEventTags(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, end, err := e.bounds(args)
	if err != nil {
		return ref, err
	}
	return ref, d.Retag(start, end, e.tags(args[2]))
}

// merge joins adjacent equal events on every day.
func (e *Env) mergeAll(ctx context.Context, ref string, args []string) (string, error) {
	total := 0
	for _, d := range e.Project.Days() {
		n, err := d.Merge()
		if errors.Is(err, project.ErrEmptyDay) {
			continue
		}
		if err != nil {
			return ref, err
		}
		total += n
	}
	e.printf("Merged %d events\n", total)
	return ref, nil
}
