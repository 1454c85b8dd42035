package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Calendar entry kinds. Festival windows set the event type signal, seasonal
// windows set the season signal.
const (
	CalendarKindFestival = "festival"
	CalendarKindSeason   = "season"
)

// CalendarEntry describes one recurring surge window, e.g. an annual festival
// or a monsoon season block.
type CalendarEntry struct {
	Label        string
	Kind         string // "festival" or "season"
	RRule        string
	DurationDays int
}

type calendarWindow struct {
	label        string
	kind         string
	rule         *rrule.RRule
	durationDays int
}

// SurgeCalendar expands recurring calendar entries into surge context signals
// for a target date.
type SurgeCalendar struct {
	windows []calendarWindow
}

// NewSurgeCalendar parses the recurrence rules of all entries. Entries with a
// non-positive duration default to a single day.
func NewSurgeCalendar(entries []CalendarEntry) (*SurgeCalendar, error) {
	windows := make([]calendarWindow, 0, len(entries))
	for i, entry := range entries {
		rule, err := rrule.StrToRRule(entry.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for calendar entry %d (%s): %w", i, entry.Label, err)
		}

		duration := entry.DurationDays
		if duration <= 0 {
			duration = 1
		}

		windows = append(windows, calendarWindow{
			label:        entry.Label,
			kind:         strings.ToLower(entry.Kind),
			rule:         rule,
			durationDays: duration,
		})
	}

	return &SurgeCalendar{windows: windows}, nil
}

// ContextForDate returns the surge context signals implied by calendar windows
// covering the given date. A festival window sets the event type to its label,
// a season window sets the season to its label. Signals not covered by the
// calendar are left at their zero values for the caller to fill in.
func (c *SurgeCalendar) ContextForDate(date time.Time) SurgeContext {
	var sc SurgeContext

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	for _, window := range c.windows {
		// An occurrence covers the date if it started at most durationDays-1
		// days earlier. Search from one window length before the date so
		// multi-day windows straddling the date are found.
		searchStart := day.AddDate(0, 0, -(window.durationDays - 1))
		window.rule.DTStart(searchStart.AddDate(0, 0, -1))

		occurrences := window.rule.Between(searchStart, day, true)
		if len(occurrences) == 0 {
			continue
		}

		switch window.kind {
		case CalendarKindFestival:
			if sc.EventType == "" {
				sc.EventType = strings.ToLower(window.label)
			}
		case CalendarKindSeason:
			if sc.Season == "" {
				sc.Season = strings.ToLower(window.label)
			}
		}
	}

	return sc
}

// Windows returns the labels of all configured windows in configuration order.
func (c *SurgeCalendar) Windows() []string {
	labels := make([]string, 0, len(c.windows))
	for _, window := range c.windows {
		labels = append(labels, window.label)
	}
	return labels
}

// OccurrencesBetween lists the window occurrences between two dates, used by
// the CLI to preview upcoming surge windows.
func (c *SurgeCalendar) OccurrencesBetween(start, end time.Time) []CalendarOccurrence {
	var result []CalendarOccurrence
	for _, window := range c.windows {
		window.rule.DTStart(start.AddDate(0, 0, -1))
		for _, occurrence := range window.rule.Between(start, end, true) {
			result = append(result, CalendarOccurrence{
				Label:        window.label,
				Kind:         window.kind,
				Start:        occurrence,
				DurationDays: window.durationDays,
			})
		}
	}
	return result
}

// CalendarOccurrence is one concrete expansion of a calendar window.
type CalendarOccurrence struct {
	Label        string
	Kind         string
	Start        time.Time
	DurationDays int
}
