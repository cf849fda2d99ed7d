// Package scheduler builds a weekly timetable for one section.
//
// The package is pure: callers load the template, requirements, calendar and
// the busy slots of other sections, and get back a complete assignment list or
// a structured error. Nothing here touches storage or logs.
package scheduler

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SlotCoordinate identifies one position in the weekly grid.
type SlotCoordinate struct {
	Day  time.Weekday `json:"day"`
	Slot int          `json:"slot"`
}

func (c SlotCoordinate) String() string {
	return fmt.Sprintf("%s/%d", c.Day, c.Slot)
}

// Assignment is one generated grid cell.
type Assignment struct {
	SubjectID  string
	TeacherID  string
	Coordinate SlotCoordinate
	SlotType   models.SlotType
}

// RelaxationLevel orders how permissive placement is. Levels only ever increase within a run.
type RelaxationLevel int

const (
	LevelStrict RelaxationLevel = iota
	LevelRelaxPreferences
	LevelRelaxAvoid
	LevelRelaxMaxPerDay
	LevelEmergency
)

// Levels lists every relaxation level in escalation order.
var Levels = []RelaxationLevel{
	LevelStrict,
	LevelRelaxPreferences,
	LevelRelaxAvoid,
	LevelRelaxMaxPerDay,
	LevelEmergency,
}

func (l RelaxationLevel) String() string {
	switch l {
	case LevelStrict:
		return "STRICT"
	case LevelRelaxPreferences:
		return "RELAX_PREFERENCES"
	case LevelRelaxAvoid:
		return "RELAX_AVOID"
	case LevelRelaxMaxPerDay:
		return "RELAX_MAX_PER_DAY"
	case LevelEmergency:
		return "EMERGENCY"
	}
	return fmt.Sprintf("LEVEL_%d", int(l))
}

// BusySlot is a teacher commitment owned by another section in the same session.
type BusySlot struct {
	TeacherID  string
	Coordinate SlotCoordinate
}

// weekdayRank orders Monday first and Sunday last.
func weekdayRank(d time.Weekday) int {
	return (int(d) + 6) % 7
}
