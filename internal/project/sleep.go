package project

import (
	"fmt"
	"time"

	"github.com/mfenderov/chrono/internal/event"
)

// Sleep is the night recorded for a day. Phases holds one character per
// five minutes as delivered by the sleep tracker.
type Sleep struct {
	Start  event.Clock
	End    event.Clock
	Phases string
}

// Duration returns the time slept. A night that starts before midnight and
// ends after it wraps around.
func (s Sleep) Duration() time.Duration {
	d := s.End - s.Start
	if d < 0 {
		d += event.MinutesPerDay
	}
	return d.Duration()
}

func (s Sleep) String() string {
	return fmt.Sprintf("%s - %s => %s", s.Start, s.End, formatDuration(s.Duration()))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
