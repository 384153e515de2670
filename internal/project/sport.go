package project

import (
	"fmt"
	"slices"
	"time"

	"github.com/mfenderov/chrono/internal/event"
)

// Sport kinds, named as in the snapshot.
const (
	KindRuns    = "runs"
	KindPushUps = "pushups"
	KindPlanks  = "planks"
	KindSitUps  = "situps"
)

// Run is a single run. Seconds is the running time.
type Run struct {
	Start    event.Clock
	Seconds  int
	Distance float64
}

// PushUp is a set of push-up series with the duration and count of each.
type PushUp struct {
	Start   event.Clock
	Seconds []float64
	Counts  []int
}

// SitUp is one sit-up series.
type SitUp struct {
	Start   event.Clock
	Seconds float64
	Count   int
}

// Plank is one plank hold.
type Plank struct {
	Start   event.Clock
	Seconds float64
}

// Sport is the exercise log of a day.
type Sport struct {
	Runs    []Run
	PushUps []PushUp
	Planks  []Plank
	SitUps  []SitUp
}

// Empty reports whether nothing was logged.
func (s Sport) Empty() bool {
	return len(s.Runs) == 0 && len(s.PushUps) == 0 && len(s.Planks) == 0 && len(s.SitUps) == 0
}

// Remove deletes the entries of kind that started at start and returns how
// many were removed.
func (s *Sport) Remove(kind string, start event.Clock) (int, error) {
	switch kind {
	case KindRuns:
		n := len(s.Runs)
		s.Runs = slices.DeleteFunc(s.Runs, func(r Run) bool { return r.Start == start })
		return n - len(s.Runs), nil
	case KindPushUps:
		n := len(s.PushUps)
		s.PushUps = slices.DeleteFunc(s.PushUps, func(p PushUp) bool { return p.Start == start })
		return n - len(s.PushUps), nil
	case KindPlanks:
		n := len(s.Planks)
		s.Planks = slices.DeleteFunc(s.Planks, func(p Plank) bool { return p.Start == start })
		return n - len(s.Planks), nil
	case KindSitUps:
		n := len(s.SitUps)
		s.SitUps = slices.DeleteFunc(s.SitUps, func(p SitUp) bool { return p.Start == start })
		return n - len(s.SitUps), nil
	default:
		return 0, fmt.Errorf("unknown sport kind: %s", kind)
	}
}

// RunTotals sums running time and distance over runs.
type RunTotals struct {
	Runs     int
	Time     time.Duration
	Distance float64
}

// Pace returns the time per distance unit, or zero when nothing was run.
func (t RunTotals) Pace() time.Duration {
	if t.Distance <= 0 {
		return 0
	}
	return time.Duration(float64(t.Time) / t.Distance)
}

// SumRuns totals the runs of the given days.
func SumRuns(days []*Day) RunTotals {
	var t RunTotals
	for _, d := range days {
		for _, r := range d.Sport.Runs {
			t.Runs++
			t.Time += time.Duration(r.Seconds) * time.Second
			t.Distance += r.Distance
		}
	}
	return t
}
