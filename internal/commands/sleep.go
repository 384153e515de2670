package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/intelliref"
	"github.com/mfenderov/chrono/internal/project"
)

// ourasleep [start] [stop] fetches the nights from the day before start to stop.
func (e *Env) ouraSleep(ctx context.Context, ref string, args []string) (string, error) {
	if e.Sleep == nil {
		return ref, ErrNoSleepSource
	}
	from, to, err := e.span(ref, args, 0)
	if err != nil {
		return ref, err
	}
	if optional(args, 0, intelliref.TokenStart) == intelliref.TokenStart {
		from = from.AddDate(0, 0, -1)
	}

	ctx, cancel := context.WithTimeout(ctx, e.Settings.OuraTimeout())
	defer cancel()

	e.Logger.Info("Fetching sleep data", "from", event.DateKey(from), "to", event.DateKey(to))
	records, err := e.Sleep.Fetch(ctx, from, to)
	if err != nil {
		return ref, err
	}

	applied := 0
	for _, r := range records {
		d, err := e.Project.Day(event.DateKey(r.Date))
		if err != nil {
			e.Logger.Debug("Skipping sleep for unknown day", "date", event.DateKey(r.Date))
			continue
		}
		d.Sleep = &project.Sleep{Start: r.Start, End: r.End, Phases: r.Phases}
		applied++
	}
	e.printf("Updated sleep on %d days\n", applied)
	return ref, nil
}

func (e *Env) printSleep(key string) error {
	d, err := e.Project.Day(key)
	if err != nil {
		return err
	}
	if d.Sleep == nil {
		e.printf("%s: no sleep recorded\n", key)
		return nil
	}
	e.printf("Sleep %s: %s\n", key, d.Sleep)
	return nil
}

func (e *Env) getSleep(ctx context.Context, ref string, args []string) (string, error) {
	key, err := e.resolveKey(args[0], ref)
	if err != nil {
		return ref, err
	}
	return ref, e.printSleep(key)
}

// setsleep <date> <start> <end> [phases]
func (e *Env) setSleep(ctx context.Context, ref string, args []string) (string, error) {
	key, err := e.resolveKey(args[0], ref)
	if err != nil {
		return ref, err
	}
	d, err := e.Project.Day(key)
	if err != nil {
		return ref, err
	}
	start, err := argClock("start", args[1])
	if err != nil {
		return ref, err
	}
	end, err := argClock("end", args[2])
	if err != nil {
		return ref, err
	}
	d.Sleep = &project.Sleep{Start: start, End: end, Phases: optional(args, 3, "")}
	return ref, nil
}

func (e *Env) lastNightSleep(ctx context.Context, ref string, args []string) (string, error) {
	date, err := e.resolve(intelliref.TokenRef, ref)
	if err != nil {
		return ref, err
	}
	return ref, e.printSleep(event.DateKey(date.AddDate(0, 0, -1)))
}

// updatefunction <name> <value> [date]
func (e *Env) updateFunction(ctx context.Context, ref string, args []string) (string, error) {
	value, err := argFloat("value", args[1])
	if err != nil {
		return ref, err
	}
	key, err := e.resolveKey(optional(args, 2, intelliref.TokenRef), ref)
	if err != nil {
		return ref, err
	}
	d, err := e.Project.Day(key)
	if err != nil {
		return ref, err
	}
	d.SetFunction(args[0], value)
	return ref, nil
}

// getfunction <name> [date]
func (e *Env) getFunction(ctx context.Context, ref string, args []string) (string, error) {
	key, err := e.resolveKey(optional(args, 1, intelliref.TokenRef), ref)
	if err != nil {
		return ref, err
	}
	d, err := e.Project.Day(key)
	if err != nil {
		return ref, err
	}
	v, ok := d.Function(args[0])
	if !ok {
		return ref, fmt.Errorf("%s on %s: %w", args[0], key, ErrNoFunction)
	}
	e.printf("%s(%s) = %s\n", args[0], key, strconv.FormatFloat(v, 'g', -1, 64))
	return ref, nil
}
