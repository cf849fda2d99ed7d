package scheduler

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

var schoolWeek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// sixSlotTemplate has a break at 4 and lunch at 5, leaving slots 1,2,3,6 academic.
func sixSlotTemplate() models.TimetableTemplate {
	lunch := 5
	return models.TimetableTemplate{
		ID:                  "tpl-1",
		TotalSlotsPerDay:    6,
		StartTime:           "07:30",
		SlotDurationMinutes: 45,
		BreakSlots:          pq.Int64Array{4},
		LunchSlot:           &lunch,
		IsActive:            true,
	}
}

func newTestLayout(t *testing.T) *Layout {
	t.Helper()
	layout, err := NewLayout(sixSlotTemplate(), schoolWeek, DefaultRules)
	require.NoError(t, err)
	return layout
}

func requirement(subjectID, teacherID string, periods int) Requirement {
	return Requirement{
		SubjectID:        subjectID,
		TeacherID:        teacherID,
		PeriodsPerWeek:   periods,
		MaxPeriodsPerDay: DefaultRules.MaxPeriodsPerSubjectPerDay,
		Preferences:      ResolvePreferences(models.SchedulingPreferences{}, DefaultRules),
	}
}

func countBySubject(result *Result) map[string]int {
	counts := make(map[string]int)
	for _, a := range result.Assignments {
		if a.SlotType == models.SlotTypeRegular {
			counts[a.SubjectID]++
		}
	}
	return counts
}

func busyFrom(result *Result) []BusySlot {
	var busy []BusySlot
	for _, a := range result.Assignments {
		if a.SlotType == models.SlotTypeRegular && a.TeacherID != "" {
			busy = append(busy, BusySlot{TeacherID: a.TeacherID, Coordinate: a.Coordinate})
		}
	}
	return busy
}

func at(result *Result, day time.Weekday, slot int) (Assignment, bool) {
	for _, a := range result.Assignments {
		if a.Coordinate.Day == day && a.Coordinate.Slot == slot {
			return a, true
		}
	}
	return Assignment{}, false
}
