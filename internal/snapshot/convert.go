package snapshot

import (
	"fmt"
	"maps"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/project"
)

// FromProject captures the persisted state of p.
func FromProject(p *project.Project) *Project {
	s := &Project{
		Name:    p.Name,
		Path:    p.Path,
		Todo:    make([]Note, 0, len(p.Notes)),
		Days:    make(map[string]Day, p.Len()),
		SEvents: make([]SilentEvent, 0, len(p.Silent)),
	}
	for _, n := range p.Notes {
		s.Todo = append(s.Todo, Note{ID: n.ID, Text: n.Text, Datetime: FormatNoteTime(n.CreatedAt)})
	}
	for _, d := range p.Days() {
		s.Days[d.Key()] = fromDay(d)
	}
	for _, se := range p.Silent {
		s.SEvents = append(s.SEvents, SilentEvent{
			TDate: event.DateKey(se.Date),
			Start: se.At.String(),
			What:  se.What,
			Tags:  tagList(se.Tags),
		})
	}
	return s
}

func fromDay(d *project.Day) Day {
	out := Day{
		Date:      d.Key(),
		Events:    make([]Event, 0, d.Len()),
		Sleep:     []string{},
		Functions: maps.Clone(d.Functions),
	}
	for _, e := range d.Slots() {
		out.Events = append(out.Events, Event{
			Start: e.Start.String(),
			End:   e.End.String(),
			What:  e.What,
			Tags:  tagList(e.Tags),
		})
	}
	if d.Sleep != nil {
		out.Sleep = []string{d.Sleep.Start.String(), d.Sleep.End.String(), d.Sleep.Phases}
	}

	out.Sport = Sport{
		Runs:    make([]Run, 0, len(d.Sport.Runs)),
		PushUps: make([]PushUp, 0, len(d.Sport.PushUps)),
		Planks:  make([]Plank, 0, len(d.Sport.Planks)),
		SitUps:  make([]SitUp, 0, len(d.Sport.SitUps)),
	}
	for _, r := range d.Sport.Runs {
		out.Sport.Runs = append(out.Sport.Runs, Run{Time: r.Seconds, Distance: r.Distance, StartTime: r.Start.String()})
	}
	for _, pu := range d.Sport.PushUps {
		out.Sport.PushUps = append(out.Sport.PushUps, PushUp{Times: pu.Seconds, Mults: pu.Counts, StartTime: pu.Start.String()})
	}
	for _, pl := range d.Sport.Planks {
		out.Sport.Planks = append(out.Sport.Planks, Plank{Time: pl.Seconds, StartTime: pl.Start.String()})
	}
	for _, su := range d.Sport.SitUps {
		out.Sport.SitUps = append(out.Sport.SitUps, SitUp{Time: su.Seconds, Mult: su.Count, StartTime: su.Start.String()})
	}
	return out
}

func tagList(t event.Tags) []string {
	if t == nil {
		return []string{}
	}
	return []string(t)
}

// ToProject rebuilds the in-memory project. Reserved tags are dropped; an
// invalid or overlapping event fails the whole load.
func (s *Project) ToProject() (*project.Project, error) {
	p := project.New(s.Name, s.Path)

	for _, n := range s.Todo {
		created, err := ParseNoteTime(n.Datetime)
		if err != nil {
			return nil, err
		}
		note := event.Note{ID: n.ID, Text: n.Text, CreatedAt: created}
		if note.ID == "" {
			note = event.NewNote(n.Text, created)
		}
		if err := p.AddNote(note); err != nil {
			return nil, err
		}
	}

	for key, sd := range s.Days {
		d, err := toDay(sd)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", key, err)
		}
		if err := p.AddDay(d); err != nil {
			return nil, err
		}
	}

	for _, se := range s.SEvents {
		date, err := event.ParseDate(se.TDate)
		if err != nil {
			return nil, err
		}
		at, err := event.ParseClock(se.Start)
		if err != nil {
			return nil, err
		}
		tags, _ := event.NewTags(se.Tags...)
		p.AddSilent(event.SilentEvent{Date: date, At: at, What: se.What, Tags: tags})
	}
	return p, nil
}

func toDay(sd Day) (*project.Day, error) {
	date, err := event.ParseDate(sd.Date)
	if err != nil {
		return nil, err
	}
	d := project.NewDay(date)

	for _, se := range sd.Events {
		tags, _ := event.NewTags(se.Tags...)
		e, err := event.Parse(se.Start, se.End, se.What, tags)
		if err != nil {
			return nil, err
		}
		if err := d.AddEvent(e, false); err != nil {
			return nil, err
		}
	}

	if len(sd.Sleep) >= 2 {
		start, err := event.ParseClock(sd.Sleep[0])
		if err != nil {
			return nil, fmt.Errorf("sleep: %w", err)
		}
		end, err := event.ParseClock(sd.Sleep[1])
		if err != nil {
			return nil, fmt.Errorf("sleep: %w", err)
		}
		d.Sleep = &project.Sleep{Start: start, End: end}
		if len(sd.Sleep) > 2 {
			d.Sleep.Phases = sd.Sleep[2]
		}
	}

	for name, v := range sd.Functions {
		d.SetFunction(name, v)
	}

	if err := loadSport(&d.Sport, sd.Sport); err != nil {
		return nil, fmt.Errorf("sport: %w", err)
	}
	return d, nil
}

func loadSport(dst *project.Sport, src Sport) error {
	for _, r := range src.Runs {
		at, err := event.ParseClock(r.StartTime)
		if err != nil {
			return err
		}
		dst.Runs = append(dst.Runs, project.Run{Start: at, Seconds: r.Time, Distance: r.Distance})
	}
	for _, pu := range src.PushUps {
		at, err := event.ParseClock(pu.StartTime)
		if err != nil {
			return err
		}
		dst.PushUps = append(dst.PushUps, project.PushUp{Start: at, Seconds: pu.Times, Counts: pu.Mults})
	}
	for _, pl := range src.Planks {
		at, err := event.ParseClock(pl.StartTime)
		if err != nil {
			return err
		}
		dst.Planks = append(dst.Planks, project.Plank{Start: at, Seconds: pl.Time})
	}
	for _, su := range src.SitUps {
		at, err := event.ParseClock(su.StartTime)
		if err != nil {
			return err
		}
		dst.SitUps = append(dst.SitUps, project.SitUp{Start: at, Seconds: su.Time, Count: su.Mult})
	}
	return nil
}
