package project

import (
	"cmp"
	"slices"

	"github.com/mfenderov/chrono/internal/cluster"
)

// TagGraph builds the co-occurrence graph of the tags used in days. Two tags
// are connected when one event carries both.
func TagGraph(days []*Day) *cluster.Graph {
	g := cluster.NewGraph()
	for _, d := range days {
		for _, e := range d.events {
			for i, a := range e.Tags {
				g.AddNode(a)
				for _, b := range e.Tags[i+1:] {
					g.AddEdge(a, b)
				}
			}
		}
	}
	return g
}

// Activity returns the total hours per tag over days.
func Activity(days []*Day) map[string]float64 {
	f := make(map[string]float64)
	for _, d := range days {
		for _, e := range d.events {
			for _, tag := range e.Tags {
				f[tag] += e.Hours()
			}
		}
	}
	return f
}

// TagTotal summarizes the use of one tag.
type TagTotal struct {
	Tag    string
	Hours  float64
	Events int
}

// TagSummary returns per-tag totals ordered by hours, most first. Ties are
// ordered by tag name.
func TagSummary(days []*Day) []TagTotal {
	totals := make(map[string]*TagTotal)
	for _, d := range days {
		for _, e := range d.events {
			for _, tag := range e.Tags {
				t, ok := totals[tag]
				if !ok {
					t = &TagTotal{Tag: tag}
					totals[tag] = t
				}
				t.Hours += e.Hours()
				t.Events++
			}
		}
	}

	out := make([]TagTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b TagTotal) int {
		if c := cmp.Compare(b.Hours, a.Hours); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	return out
}

// OverlapHours returns the hours of events counted more than once when
// summing the hours of several tags separately.
func OverlapHours(d *Day, tags []string) float64 {
	var hours float64
	for _, e := range d.events {
		if shared := e.Tags.Intersect(tags); len(shared) > 1 {
			hours += e.Hours() * float64(len(shared)-1)
		}
	}
	return hours
}
