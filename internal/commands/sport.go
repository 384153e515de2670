package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
)

// addrun <start> <MM:SS> <distance>
func (e *Env) addRun(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, err := argClock("start", args[0])
	if err != nil {
		return ref, err
	}
	secs, err := argMinSec("time", args[1])
	if err != nil {
		return ref, err
	}
	dist, err := argFloat("distance", args[2])
	if err != nil {
		return ref, err
	}
	d.Sport.Runs = append(d.Sport.Runs, project.Run{Start: start, Seconds: int(secs), Distance: dist})
	return ref, nil
}

// addpushup <start> <MM:SS,...> <count,...>
func (e *Env) addPushUp(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, err := argClock("start", args[0])
	if err != nil {
		return ref, err
	}
	rawTimes, rawCounts := strings.Split(args[1], ","), strings.Split(args[2], ",")
	if len(rawTimes) != len(rawCounts) {
		return ref, fmt.Errorf("%d times but %d counts: %w", len(rawTimes), len(rawCounts), pipeline.ErrArgument)
	}
	p := project.PushUp{Start: start}
	for i := range rawTimes {
		secs, err := argMinSec("time", rawTimes[i])
		if err != nil {
			return ref, err
		}
		n, err := argInt("count", rawCounts[i])
		if err != nil {
			return ref, err
		}
		p.Seconds = append(p.Seconds, secs)
		p.Counts = append(p.Counts, n)
	}
	d.Sport.PushUps = append(d.Sport.PushUps, p)
	return ref, nil
}

// addplank <start> <MM:SS>
func (e *Env) addPlank(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, err := argClock("start", args[0])
	if err != nil {
		return ref, err
	}
	secs, err := argMinSec("time", args[1])
	if err != nil {
		return ref, err
	}
	d.Sport.Planks = append(d.Sport.Planks, project.Plank{Start: start, Seconds: secs})
	return ref, nil
}

// addsitup <start> <MM:SS> <count>
func (e *Env) addSitUp(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	start, err := argClock("start", args[0])
	if err != nil {
		return ref, err
	}
	secs, err := argMinSec("time", args[1])
	if err != nil {
		return ref, err
	}
	n, err := argInt("count", args[2])
	if err != nil {
		return ref, err
	}
	d.Sport.SitUps = append(d.Sport.SitUps, project.SitUp{Start: start, Seconds: secs, Count: n})
	return ref, nil
}

// removeSport builds the del* command for kind.
func (e *Env) removeSport(kind string) pipeline.Func {
	return func(ctx context.Context, ref string, args []string) (string, error) {
		d, err := e.refDay(ref)
		if err != nil {
			return ref, err
		}
		start, err := argClock("start", args[0])
		if err != nil {
			return ref, err
		}
		n, err := d.Sport.Remove(kind, start)
		if err != nil {
			return ref, err
		}
		e.printf("Removed %d %s\n", n, kind)
		return ref, nil
	}
}

func (e *Env) showRuns(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	if len(d.Sport.Runs) == 0 {
		e.println("no runs today :(")
		return ref, nil
	}
	for _, r := range d.Sport.Runs {
		e.printf("%s  %.2f km in %s\n", r.Start, r.Distance, formatSeconds(time.Duration(r.Seconds)*time.Second))
	}
	return ref, nil
}

func (e *Env) printRunTotals(label string, t project.RunTotals) {
	if t.Runs == 0 {
		e.println("no runs :(")
		return
	}
	e.printf("%s: You ran %.2f in %s. That makes a pace of %s per kilometer.\n",
		label, t.Distance, formatSeconds(t.Time), formatSeconds(t.Pace()))
}

func (e *Env) runStats(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	e.printRunTotals(ref, project.SumRuns([]*project.Day{d}))
	return ref, nil
}

// runsum [k] totals the runs of the k days before the reference and the reference day.
func (e *Env) runSum(ctx context.Context, ref string, args []string) (string, error) {
	d, err := e.refDay(ref)
	if err != nil {
		return ref, err
	}
	k := e.Settings.Thresholds.RunWindowDays - 1
	if len(args) > 0 {
		if k, err = argInt("k", args[0]); err != nil {
			return ref, err
		}
	}
	days := e.Project.Between(d.Date.AddDate(0, 0, -k), d.Date)
	e.printRunTotals(ref, project.SumRuns(days))
	return ref, nil
}

// formatSeconds renders d as H:MM:SS, or MM:SS below an hour.
func formatSeconds(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
