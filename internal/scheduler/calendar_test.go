package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// tenWeeks returns ten Monday-Friday school weeks with the last four Fridays off.
func tenWeeks() []models.CalendarDay {
	start := time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC) // a Monday
	var days []models.CalendarDay
	for week := 0; week < 10; week++ {
		for offset := 0; offset < 7; offset++ {
			date := start.AddDate(0, 0, week*7+offset)
			working := date.Weekday() != time.Saturday && date.Weekday() != time.Sunday
			if date.Weekday() == time.Friday && week >= 6 {
				working = false
			}
			days = append(days, models.CalendarDay{Date: date, IsWorking: working})
		}
	}
	return days
}

func TestAnalyzeCalendarWeightsWeekdays(t *testing.T) {
	analysis := AnalyzeCalendar(tenWeeks(), schoolWeek)

	assert.Equal(t, 10, analysis.WorkingDays[time.Monday])
	assert.Equal(t, 6, analysis.WorkingDays[time.Friday])
	assert.InDelta(t, 1.0, analysis.Reliability[time.Monday], 1e-9)
	assert.InDelta(t, 0.8, analysis.Reliability[time.Friday], 1e-9)
	assert.InDelta(t, 0.5, analysis.Reliability[time.Sunday], 1e-9)

	require.Len(t, analysis.Warnings, 1)
	assert.Contains(t, analysis.Warnings[0], "Friday")
}

func TestAnalyzeCalendarIgnoresDuplicateDates(t *testing.T) {
	days := tenWeeks()
	days = append(days, days[4], days[4])

	analysis := AnalyzeCalendar(days, schoolWeek)
	assert.Equal(t, 6, analysis.WorkingDays[time.Friday])
}

func TestAnalyzeCalendarWithoutData(t *testing.T) {
	analysis := AnalyzeCalendar(nil, schoolWeek)

	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.InDelta(t, 1.0, analysis.Reliability[d], 1e-9)
	}
	assert.Empty(t, analysis.Warnings)
}
