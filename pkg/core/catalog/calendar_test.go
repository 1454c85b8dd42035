package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSurgeCalendar_InvalidRRule(t *testing.T) {
	_, err := NewSurgeCalendar([]CalendarEntry{
		{Label: "diwali", Kind: CalendarKindFestival, RRule: "FREQ=NONSENSE", DurationDays: 3},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diwali")
}

func TestContextForDate_FestivalWindow(t *testing.T) {
	cal, err := NewSurgeCalendar([]CalendarEntry{
		{Label: "Diwali", Kind: CalendarKindFestival, RRule: "FREQ=YEARLY;BYMONTH=10;BYMONTHDAY=20", DurationDays: 3},
	})
	require.NoError(t, err)

	// Window covers Oct 20-22
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"window start", time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC), "diwali"},
		{"window middle", time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), "diwali"},
		{"window end", time.Date(2026, 10, 22, 23, 0, 0, 0, time.UTC), "diwali"},
		{"day after window", time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC), ""},
		{"unrelated date", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := cal.ContextForDate(tt.date)
			assert.Equal(t, tt.want, sc.EventType)
			assert.Empty(t, sc.Season)
		})
	}
}

func TestContextForDate_SeasonWindow(t *testing.T) {
	// Monsoon runs Jun 1 through Sep 30 (122 days)
	cal, err := NewSurgeCalendar([]CalendarEntry{
		{Label: "Monsoon", Kind: CalendarKindSeason, RRule: "FREQ=YEARLY;BYMONTH=6;BYMONTHDAY=1", DurationDays: 122},
	})
	require.NoError(t, err)

	inSeason := cal.ContextForDate(time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "monsoon", inSeason.Season)
	assert.Empty(t, inSeason.EventType)

	outOfSeason := cal.ContextForDate(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, outOfSeason.Season)
}

func TestContextForDate_CombinedSignals(t *testing.T) {
	cal, err := NewSurgeCalendar([]CalendarEntry{
		{Label: "Monsoon", Kind: CalendarKindSeason, RRule: "FREQ=YEARLY;BYMONTH=6;BYMONTHDAY=1", DurationDays: 122},
		{Label: "Holi", Kind: CalendarKindFestival, RRule: "FREQ=YEARLY;BYMONTH=3;BYMONTHDAY=14", DurationDays: 2},
	})
	require.NoError(t, err)

	festivalDay := cal.ContextForDate(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "holi", festivalDay.EventType)
	assert.Empty(t, festivalDay.Season)

	monsoonDay := cal.ContextForDate(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, monsoonDay.EventType)
	assert.Equal(t, "monsoon", monsoonDay.Season)
}

func TestContextForDate_DefaultDuration(t *testing.T) {
	cal, err := NewSurgeCalendar([]CalendarEntry{
		{Label: "diwali", Kind: CalendarKindFestival, RRule: "FREQ=YEARLY;BYMONTH=11;BYMONTHDAY=8"},
	})
	require.NoError(t, err)

	// Zero duration defaults to one day, so only Nov 8 matches
	assert.Equal(t, "diwali", cal.ContextForDate(time.Date(2026, 11, 8, 12, 0, 0, 0, time.UTC)).EventType)
	assert.Empty(t, cal.ContextForDate(time.Date(2026, 11, 9, 12, 0, 0, 0, time.UTC)).EventType)
}

func TestOccurrencesBetween(t *testing.T) {
	cal, err := NewSurgeCalendar([]CalendarEntry{
		{Label: "Diwali", Kind: CalendarKindFestival, RRule: "FREQ=YEARLY;BYMONTH=10;BYMONTHDAY=20", DurationDays: 3},
		{Label: "Monsoon", Kind: CalendarKindSeason, RRule: "FREQ=YEARLY;BYMONTH=6;BYMONTHDAY=1", DurationDays: 122},
	})
	require.NoError(t, err)

	occurrences := cal.OccurrencesBetween(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	require.Len(t, occurrences, 2)

	assert.Equal(t, "Diwali", occurrences[0].Label)
	assert.Equal(t, time.October, occurrences[0].Start.Month())
	assert.Equal(t, 20, occurrences[0].Start.Day())
	assert.Equal(t, "Monsoon", occurrences[1].Label)
	assert.Equal(t, time.June, occurrences[1].Start.Month())
}
