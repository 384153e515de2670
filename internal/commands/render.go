package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/project"
)

// eventStyle colors an event by its first tag that has a color of its own.
func (e *Env) eventStyle(ev event.Event) lipgloss.Style {
	color := e.Settings.Color(ev.What)
	for _, tag := range ev.Tags {
		if c, ok := e.Settings.ColorScheme[tag]; ok {
			color = c
			break
		}
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (e *Env) renderEvent(ev event.Event) string {
	line := fmt.Sprintf("%s - %s  %s", ev.Start, ev.End, ev.What)
	if len(ev.Tags) > 0 {
		line += " " + e.Styles.Dim.Render("["+ev.Tags.String()+"]")
	}
	return e.eventStyle(ev).Render(line)
}

func (e *Env) renderDay(d *project.Day) string {
	var b strings.Builder
	b.WriteString(e.Styles.Header.Render(d.Key() + " " + d.Date.Weekday().String()))
	b.WriteString("\n")
	slots := d.Slots()
	if len(slots) == 0 {
		b.WriteString(e.Styles.Dim.Render("  no events"))
		b.WriteString("\n")
	}
	for _, ev := range slots {
		b.WriteString("  ")
		b.WriteString(e.renderEvent(ev))
		b.WriteString("\n")
	}
	if d.Sleep != nil {
		b.WriteString(e.Styles.Dim.Render("  sleep: " + d.Sleep.String()))
		b.WriteString("\n")
	}
	return b.String()
}
