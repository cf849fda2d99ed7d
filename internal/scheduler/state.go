package scheduler

import (
	"sort"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type teacherSlot struct {
	teacherID string
	coord     SlotCoordinate
}

// State is the per-run bookkeeping: section occupancy, the read-only busy set
// of other sections, and the running per-subject and per-teacher counters.
// A State is created for one run and discarded with it.
type State struct {
	layout *Layout

	remaining        map[string]int
	dayCount         map[string]map[time.Weekday]int
	daySlots         map[string]map[time.Weekday][]int
	teacherDailyLoad map[string]map[time.Weekday]int
	occupied         map[SlotCoordinate]Assignment
	crossSection     map[teacherSlot]bool
	teacherRun       map[teacherSlot]string
}

// NewState seeds a run. Busy slots of other sections only block their
// coordinate; the daily load counters start at zero and track this run.
func NewState(layout *Layout, reqs []Requirement, busy []BusySlot) *State {
	s := &State{
		layout:           layout,
		remaining:        make(map[string]int, len(reqs)),
		dayCount:         make(map[string]map[time.Weekday]int, len(reqs)),
		daySlots:         make(map[string]map[time.Weekday][]int, len(reqs)),
		teacherDailyLoad: make(map[string]map[time.Weekday]int),
		occupied:         make(map[SlotCoordinate]Assignment),
		crossSection:     make(map[teacherSlot]bool, len(busy)),
		teacherRun:       make(map[teacherSlot]string),
	}
	for _, req := range reqs {
		s.remaining[req.SubjectID] = req.PeriodsPerWeek
		s.dayCount[req.SubjectID] = make(map[time.Weekday]int)
		s.daySlots[req.SubjectID] = make(map[time.Weekday][]int)
	}
	for _, b := range busy {
		if b.TeacherID == "" {
			continue
		}
		s.crossSection[teacherSlot{teacherID: b.TeacherID, coord: b.Coordinate}] = true
	}
	return s
}

// IsSlotFree reports whether the section has nothing at c yet in this run.
func (s *State) IsSlotFree(c SlotCoordinate) bool {
	_, taken := s.occupied[c]
	return !taken
}

// IsTeacherFree reports whether the teacher is neither busy in another section
// at c nor already placed at c in this run. A subject without a teacher is
// always free.
func (s *State) IsTeacherFree(teacherID string, c SlotCoordinate) bool {
	if teacherID == "" {
		return true
	}
	key := teacherSlot{teacherID: teacherID, coord: c}
	if s.crossSection[key] {
		return false
	}
	_, placed := s.teacherRun[key]
	return !placed
}

// TeacherBusyElsewhere reports whether the teacher is taken at c by another
// section or by a different subject of this run.
func (s *State) TeacherBusyElsewhere(teacherID, subjectID string, c SlotCoordinate) bool {
	if teacherID == "" {
		return false
	}
	key := teacherSlot{teacherID: teacherID, coord: c}
	if s.crossSection[key] {
		return true
	}
	placed, ok := s.teacherRun[key]
	return ok && placed != subjectID
}

// TeacherConsecutiveSpan counts the contiguous run of this-run placements for
// the teacher around c on the same day, c included.
func (s *State) TeacherConsecutiveSpan(teacherID string, c SlotCoordinate) int {
	if teacherID == "" {
		return 0
	}
	span := 1
	for slot := c.Slot - 1; slot >= 1; slot-- {
		if _, ok := s.teacherRun[teacherSlot{teacherID: teacherID, coord: SlotCoordinate{Day: c.Day, Slot: slot}}]; !ok {
			break
		}
		span++
	}
	for slot := c.Slot + 1; slot <= s.layout.SlotsPerDay; slot++ {
		if _, ok := s.teacherRun[teacherSlot{teacherID: teacherID, coord: SlotCoordinate{Day: c.Day, Slot: slot}}]; !ok {
			break
		}
		span++
	}
	return span
}

// Remaining is the number of periods still to place for the subject.
func (s *State) Remaining(subjectID string) int { return s.remaining[subjectID] }

// DayCount is how many periods of the subject sit on day.
func (s *State) DayCount(subjectID string, day time.Weekday) int {
	return s.dayCount[subjectID][day]
}

// TeacherLoad is the number of periods this run gave the teacher on day.
func (s *State) TeacherLoad(teacherID string, day time.Weekday) int {
	if teacherID == "" {
		return 0
	}
	return s.teacherDailyLoad[teacherID][day]
}

// HasAdjacent reports whether the subject already holds the slot just before or after c.
func (s *State) HasAdjacent(subjectID string, c SlotCoordinate) bool {
	for _, slot := range s.daySlots[subjectID][c.Day] {
		if slot == c.Slot-1 || slot == c.Slot+1 {
			return true
		}
	}
	return false
}

// AssignmentAt returns what the run placed at c, if anything.
func (s *State) AssignmentAt(c SlotCoordinate) (Assignment, bool) {
	a, ok := s.occupied[c]
	return a, ok
}

func (s *State) place(req *Requirement, c SlotCoordinate) {
	s.occupied[c] = Assignment{
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
		Coordinate: c,
		SlotType:   models.SlotTypeRegular,
	}
	if s.remaining[req.SubjectID] > 0 {
		s.remaining[req.SubjectID]--
	}
	s.dayCount[req.SubjectID][c.Day]++
	s.daySlots[req.SubjectID][c.Day] = append(s.daySlots[req.SubjectID][c.Day], c.Slot)
	if req.TeacherID != "" {
		s.teacherRun[teacherSlot{teacherID: req.TeacherID, coord: c}] = req.SubjectID
		s.addTeacherLoad(req.TeacherID, c.Day)
	}
}

func (s *State) addTeacherLoad(teacherID string, day time.Weekday) {
	perDay := s.teacherDailyLoad[teacherID]
	if perDay == nil {
		perDay = make(map[time.Weekday]int)
		s.teacherDailyLoad[teacherID] = perDay
	}
	perDay[day]++
}

// regularAssignments returns the placed periods sorted by day then slot.
func (s *State) regularAssignments() []Assignment {
	out := make([]Assignment, 0, len(s.occupied))
	for _, a := range s.occupied {
		out = append(out, a)
	}
	sortAssignments(out)
	return out
}

func sortAssignments(list []Assignment) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].Coordinate, list[j].Coordinate
		if a.Day != b.Day {
			return weekdayRank(a.Day) < weekdayRank(b.Day)
		}
		return a.Slot < b.Slot
	})
}
