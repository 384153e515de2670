package commands

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mfenderov/chrono/internal/cluster"
	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
)

// statsWindow is the number of trailing days in the "this week" average.
const statsWindow = 7

func (e *Env) spanDays(ref string, args []string, i int) ([]*project.Day, error) {
	from, to, err := e.span(ref, args, i)
	if err != nil {
		return nil, err
	}
	return e.Project.Between(from, to), nil
}

// stats <tags> [start] [stop]
func (e *Env) stats(ctx context.Context, ref string, args []string) (string, error) {
	days, err := e.spanDays(ref, args, 1)
	if err != nil {
		return ref, err
	}
	if len(days) == 0 {
		return ref, fmt.Errorf("stats: %w", project.ErrNoDay)
	}
	tags := e.tags(args[0])
	recent := days[max(0, len(days)-statsWindow):]

	var total, totalRecent float64
	for _, tag := range tags {
		all := tagHours(days, tag)
		week := tagHours(recent, tag)
		total += all
		totalRecent += week
		e.printf("%s: Daily Avg (hours): %.2f, this week: %.2f hours\n",
			tag, all/float64(len(days)), week/float64(len(recent)))
	}
	if len(tags) > 1 {
		// an event carrying several of the tags counts once in the sum
		for _, d := range days {
			total -= project.OverlapHours(d, tags)
		}
		for _, d := range recent {
			totalRecent -= project.OverlapHours(d, tags)
		}
		e.printf("sum: Daily Avg (hours): %.2f, this week: %.2f hours\n",
			total/float64(len(days)), totalRecent/float64(len(recent)))
	}
	return ref, nil
}

func tagHours(days []*project.Day, tag string) float64 {
	var h float64
	for _, d := range days {
		h += d.TagHours(tag)
	}
	return h
}

func (e *Env) listTags(ctx context.Context, ref string, args []string) (string, error) {
	summary := project.TagSummary(e.Project.Days())
	names := make([]string, len(summary))
	for i, t := range summary {
		names[i] = t.Tag
	}
	slices.Sort(names)
	e.println(strings.Join(names, ", "))
	return ref, nil
}

// tagsummary [start] [stop]
func (e *Env) tagSummary(ctx context.Context, ref string, args []string) (string, error) {
	days, err := e.spanDays(ref, args, 0)
	if err != nil {
		return ref, err
	}
	e.println(e.Styles.Title.Render(fmt.Sprintf("%-20s %8s %7s", "tag", "hours", "events")))
	for _, t := range project.TagSummary(days) {
		e.printf("%-20s %8.2f %7d\n", t.Tag, t.Hours, t.Events)
	}
	return ref, nil
}

func (e *Env) renameTag(ctx context.Context, ref string, args []string) (string, error) {
	if strings.HasPrefix(args[1], "&") {
		return ref, fmt.Errorf("tag %s is reserved", args[1])
	}
	n := 0
	for _, d := range e.Project.Days() {
		n += d.RenameTag(args[0], args[1])
	}
	e.printf("Renamed %s on %d events\n", args[0], n)
	return ref, nil
}

func (e *Env) deleteTag(ctx context.Context, ref string, args []string) (string, error) {
	n := 0
	for _, d := range e.Project.Days() {
		n += d.DropTag(args[0])
	}
	e.printf("Removed %s from %d events\n", args[0], n)
	return ref, nil
}

func (e *Env) deleteByTag(ctx context.Context, ref string, args []string) (string, error) {
	n := 0
	for _, d := range e.Project.Days() {
		n += d.RemoveTagged(args[0])
	}
	e.printf("Deleted %d events tagged %s\n", n, args[0])
	return ref, nil
}

// topdegrees [k] [start] [stop]
func (e *Env) topDegrees(ctx context.Context, ref string, args []string) (string, error) {
	k := 5
	if len(args) > 0 {
		var err error
		if k, err = argInt("k", args[0]); err != nil {
			return ref, err
		}
		if k < 0 {
			return ref, fmt.Errorf("k: %d is negative: %w", k, pipeline.ErrArgument)
		}
	}
	days, err := e.spanDays(ref, args, 1)
	if err != nil {
		return ref, err
	}
	g := project.TagGraph(days)
	nodes := g.Nodes()
	slices.SortStableFunc(nodes, func(a, b string) int {
		return cmp.Compare(g.Degree(b), g.Degree(a))
	})
	for _, n := range nodes[:min(k, len(nodes))] {
		e.printf("%-20s %d\n", n, g.Degree(n))
	}
	return ref, nil
}

// rcc <rho> [start] [stop] prints the clusters of tags with at least rho hours.
func (e *Env) relativeComponents(ctx context.Context, ref string, args []string) (string, error) {
	rho, err := argFloat("rho", args[0])
	if err != nil {
		return ref, err
	}
	days, err := e.spanDays(ref, args, 1)
	if err != nil {
		return ref, err
	}
	clusters := cluster.Clusters(project.TagGraph(days), project.Activity(days), rho)
	for i, c := range clusters {
		e.printf("%d: %s\n", i+1, strings.Join(c, ", "))
	}
	return ref, nil
}

// gblgetsplitforce [start] [stop]
func (e *Env) splitForce(ctx context.Context, ref string, args []string) (string, error) {
	days, err := e.spanDays(ref, args, 0)
	if err != nil {
		return ref, err
	}
	split, err := cluster.SplitForceWithLimit(project.TagGraph(days), project.Activity(days), e.Settings.Thresholds.SplitFanIn)
	if err != nil {
		return ref, err
	}
	e.println(e.Styles.Title.Render(fmt.Sprintf("threshold %.2f hours", split.Threshold)))
	for i, c := range split.Clusters {
		e.printf("%d: %s\n", i+1, strings.Join(c, ", "))
	}
	e.println(e.Styles.Dim.Render(fmt.Sprintf("fan-in: %v", split.FanIn)))
	return ref, nil
}

// gbltreeview [start] [stop] prints the filtration from the coarsest level down.
func (e *Env) treeView(ctx context.Context, ref string, args []string) (string, error) {
	days, err := e.spanDays(ref, args, 0)
	if err != nil {
		return ref, err
	}
	levels, err := cluster.Filtration(project.TagGraph(days), project.Activity(days))
	if err != nil {
		return ref, err
	}
	for depth, level := range levels {
		indent := strings.Repeat("  ", depth)
		e.printf("%s%s\n", indent, e.Styles.Header.Render(fmt.Sprintf(">= %.2f", level.Threshold)))
		for _, c := range level.Clusters {
			e.printf("%s  {%s}\n", indent, strings.Join(c, ", "))
		}
	}
	return ref, nil
}
