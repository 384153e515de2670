package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/project"
	"github.com/mfenderov/chrono/internal/snapshot"
)

func (e *Env) setReference(ctx context.Context, ref string, args []string) (string, error) {
	date, err := e.resolve(args[0], ref)
	if err != nil {
		return ref, err
	}
	_, created, err := e.Project.EnsureDay(date)
	if created {
		e.printf("Couldn't find reference, generated %s\n", event.DateKey(date))
	}
	if err != nil {
		// the day exists, only parts of the schedule were rejected
		e.Logger.Warn("Schedule conflicts", "date", event.DateKey(date), "err", err)
	}
	return event.DateKey(date), nil
}

func (e *Env) intelliRef(ctx context.Context, ref string, args []string) (string, error) {
	key, err := e.resolveKey(args[0], ref)
	if err != nil {
		return ref, err
	}
	e.println(key)
	return key, nil
}

func (e *Env) resolveKey(token, ref string) (string, error) {
	d, err := e.resolve(token, ref)
	if err != nil {
		return "", err
	}
	return event.DateKey(d), nil
}

func (e *Env) mkDay(ctx context.Context, ref string, args []string) (string, error) {
	date, err := e.resolve(args[0], ref)
	if err != nil {
		return ref, err
	}
	if err := e.Project.AddDay(project.NewDay(date)); err != nil {
		return ref, err
	}
	e.printf("Created %s\n", event.DateKey(date))
	return ref, nil
}

func (e *Env) listDays(ctx context.Context, ref string, args []string) (string, error) {
	keys := e.Project.Keys()
	if len(keys) == 0 {
		e.println(e.Styles.Dim.Render("no days"))
		return ref, nil
	}
	e.println(strings.Join(keys, ", "))
	return ref, nil
}

func (e *Env) showToday(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	if _, err := d.Merge(); err != nil && !errors.Is(err, project.ErrEmptyDay) {
		return ref, err
	}
	e.printf("%s", e.renderDay(d))
	return ref, nil
}

func (e *Env) generateDays(ctx context.Context, ref string, args []string) (string, error) {
	n := e.Settings.Thresholds.GenerateDays
	if len(args) > 0 {
		var err error
		if n, err = argInt("days", args[0]); err != nil {
			return ref, err
		}
	}
	created := 0
	day := e.today()
	for range n {
		_, ok, err := e.Project.EnsureDay(day)
		if err != nil {
			e.Logger.Warn("Schedule conflicts", "date", event.DateKey(day), "err", err)
		}
		if ok {
			created++
		}
		day = day.AddDate(0, 0, 1)
	}
	e.printf("Generated %d days\n", created)
	return ref, nil
}

func (e *Env) fillEmptyDays(ctx context.Context, ref string, args []string) (string, error) {
	from, to, err := e.span(ref, args, 0)
	if err != nil {
		return ref, err
	}
	// filled days stay empty, the schedule is not applied
	apply := e.Project.ApplySchedule
	e.Project.ApplySchedule = false
	defer func() { e.Project.ApplySchedule = apply }()

	filled := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if e.Project.HasDay(event.DateKey(d)) {
			continue
		}
		if err := e.Project.AddDay(project.NewDay(d)); err != nil {
			return ref, err
		}
		filled++
	}
	e.printf("Filled %d days\n", filled)
	return ref, nil
}

func (e *Env) deleteDay(ctx context.Context, ref string, args []string) (string, error) {
	if err := e.Project.RemoveDay(ref); err != nil {
		return ref, err
	}
	e.printf("Deleted %s\n", ref)
	return ref, nil
}

func (e *Env) clearDays(ctx context.Context, ref string, args []string) (string, error) {
	if err := e.checkCode(args[0]); err != nil {
		return ref, err
	}
	if err := e.backup(ctx); err != nil {
		return ref, err
	}
	n := e.Project.Len()
	e.Project.Clear()
	e.printf("Cleared %d days\n", n)
	return ref, nil
}

func (e *Env) clearFuture(ctx context.Context, ref string, args []string) (string, error) {
	if err := e.checkCode(args[0]); err != nil {
		return ref, err
	}
	if err := e.backup(ctx); err != nil {
		return ref, err
	}
	n := e.Project.RemoveAfter(e.today())
	e.printf("Cleared %d future days\n", n)
	return ref, nil
}

func (e *Env) splitProject(ctx context.Context, ref string, args []string) (string, error) {
	if e.Store == nil {
		return ref, ErrNoStore
	}
	date, err := e.resolve(args[0], ref)
	if err != nil {
		return ref, err
	}
	name := args[1]
	if name == e.Project.Name {
		return ref, fmt.Errorf("split target must differ from %s", name)
	}
	older := e.Project.Through(date, name)
	if err := e.Store.SaveProject(ctx, snapshot.FromProject(older)); err != nil {
		return ref, fmt.Errorf("failed to split into %s: %w", name, err)
	}
	e.Project.SplitAt(date, name)
	if err := e.Save(ctx); err != nil {
		return ref, err
	}
	e.printf("Moved %d days up to %s into %s\n", older.Len(), event.DateKey(date), name)
	return ref, nil
}
