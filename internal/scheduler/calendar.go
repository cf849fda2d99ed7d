package scheduler

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const (
	minReliability     = 0.5
	lowWorkingShare    = 0.8
	dateKeyLayout      = "2006-01-02"
	neutralReliability = 1.0
)

// CalendarAnalysis is the per-weekday view of the session calendar.
type CalendarAnalysis struct {
	WorkingDays map[time.Weekday]int
	Reliability map[time.Weekday]float64
	Warnings    []string
}

// AnalyzeCalendar turns the working-day calendar into a 0.5-1.0 reliability
// weight per weekday, and warns about grid weekdays whose working-day count
// falls below 80% of the busiest one.
func AnalyzeCalendar(days []models.CalendarDay, grid []time.Weekday) CalendarAnalysis {
	out := CalendarAnalysis{
		WorkingDays: make(map[time.Weekday]int, 7),
		Reliability: make(map[time.Weekday]float64, 7),
	}
	seen := make(map[string]bool, len(days))
	for _, day := range days {
		key := day.Date.Format(dateKeyLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		if day.IsWorking {
			out.WorkingDays[day.Date.Weekday()]++
		}
	}

	consider := grid
	if len(consider) == 0 {
		consider = []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	}
	maxCount := 0
	for _, d := range consider {
		if out.WorkingDays[d] > maxCount {
			maxCount = out.WorkingDays[d]
		}
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		if maxCount == 0 {
			out.Reliability[d] = neutralReliability
			continue
		}
		ratio := float64(out.WorkingDays[d]) / float64(maxCount)
		if ratio > 1 {
			ratio = 1
		}
		out.Reliability[d] = minReliability + (1-minReliability)*ratio
	}

	if maxCount == 0 {
		return out
	}
	for _, d := range grid {
		count := out.WorkingDays[d]
		if float64(count) < lowWorkingShare*float64(maxCount) {
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"%s has %d working days in this session, below 80%% of the busiest weekday (%d); heavy subjects are biased away from it",
				d, count, maxCount))
		}
	}
	return out
}
