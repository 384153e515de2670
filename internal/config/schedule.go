package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/project"
)

// ScheduleEntry is one planned item. An entry without an end is a silent event.
type ScheduleEntry struct {
	Start string   `json:"start" yaml:"start"`
	End   string   `json:"end,omitempty" yaml:"end,omitempty"`
	What  string   `json:"what" yaml:"what"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ScheduleFile is the on-disk schedule: a list of weeks, each a list of up to
// seven weekday lists starting on Monday.
type ScheduleFile struct {
	Weeks [][][]ScheduleEntry `json:"weeks" yaml:"weeks"`
}

// LoadSchedule reads the schedule at path. A missing file yields nil.
func LoadSchedule(path string) (*project.Schedule, error) {
	var f ScheduleFile
	if err := decodeFile(path, &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return f.Build()
}

// Build validates the file and converts it to a schedule.
func (f *ScheduleFile) Build() (*project.Schedule, error) {
	s := &project.Schedule{Weeks: make([]project.Week, len(f.Weeks))}
	for w, days := range f.Weeks {
		if len(days) > len(project.Week{}) {
			return nil, fmt.Errorf("week %d: %d weekdays, at most 7 allowed", w, len(days))
		}
		for d, entries := range days {
			plan, err := buildPlan(entries)
			if err != nil {
				return nil, fmt.Errorf("week %d, day %d: %w", w, d, err)
			}
			s.Weeks[w][d] = plan
		}
	}
	return s, nil
}

func buildPlan(entries []ScheduleEntry) (project.Plan, error) {
	var plan project.Plan
	for _, e := range entries {
		tags, _ := event.NewTags(e.Tags...)
		if e.End == "" {
			at, err := event.ParseClock(e.Start)
			if err != nil {
				return project.Plan{}, err
			}
			plan.Silent = append(plan.Silent, event.SilentEvent{At: at, What: e.What, Tags: tags})
			continue
		}
		ev, err := event.Parse(e.Start, e.End, e.What, tags)
		if err != nil {
			return project.Plan{}, err
		}
		for _, other := range plan.Events {
			if other.Overlaps(ev) {
				return project.Plan{}, fmt.Errorf("%s overlaps %s", ev, other)
			}
		}
		plan.Events = append(plan.Events, ev)
	}
	return plan, nil
}
