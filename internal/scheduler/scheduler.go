package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Input is everything a run needs, loaded up front.
type Input struct {
	Layout       *Layout
	Requirements []Requirement
	Reliability  map[time.Weekday]float64
	TeacherBusy  []BusySlot
}

// Result is a complete timetable for the section: regular periods plus every
// break and lunch cell, sorted by day then slot.
type Result struct {
	Assignments       []Assignment
	FixedPlaced       int
	PlacementsByLevel map[RelaxationLevel]int
	LevelReached      RelaxationLevel
}

// RegularCount returns the number of subject periods in the result.
func (r *Result) RegularCount() int {
	n := 0
	for _, a := range r.Assignments {
		if a.SlotType == models.SlotTypeRegular {
			n++
		}
	}
	return n
}

// Scheduler runs fixed placement followed by the progressive relaxation loop.
// It is single-use and not safe for concurrent use.
type Scheduler struct {
	layout *Layout
	reqs   []*Requirement
	state  *State
	scorer *Scorer

	fixedPlaced  int
	placements   map[RelaxationLevel]int
	levelReached RelaxationLevel
}

// New validates the input and prepares a run. Capacity is checked here, before
// any placement work.
func New(in Input) (*Scheduler, error) {
	if in.Layout == nil {
		return nil, errors.New("scheduler: layout is required")
	}
	if len(in.Requirements) == 0 {
		return nil, ErrNoSubjects
	}

	reqs := make([]*Requirement, 0, len(in.Requirements))
	seen := make(map[string]bool, len(in.Requirements))
	required := 0
	for i := range in.Requirements {
		req := in.Requirements[i]
		if req.PeriodsPerWeek <= 0 {
			return nil, fmt.Errorf("scheduler: subject %s needs a positive weekly period count", req.SubjectID)
		}
		if seen[req.SubjectID] {
			return nil, fmt.Errorf("scheduler: duplicate requirement for subject %s", req.SubjectID)
		}
		seen[req.SubjectID] = true
		required += req.PeriodsPerWeek
		reqs = append(reqs, &req)
	}
	if available := in.Layout.AcademicCapacity(); required > available {
		return nil, &CapacityError{Required: required, Available: available}
	}

	plain := make([]Requirement, len(reqs))
	for i, r := range reqs {
		plain[i] = *r
	}
	state := NewState(in.Layout, plain, in.TeacherBusy)
	return &Scheduler{
		layout:     in.Layout,
		reqs:       reqs,
		state:      state,
		scorer:     NewScorer(in.Layout, in.Reliability, state),
		placements: make(map[RelaxationLevel]int, len(Levels)),
	}, nil
}

// Generate is New followed by Run.
func Generate(in Input) (*Result, error) {
	s, err := New(in)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

// State exposes the run state for inspection.
func (s *Scheduler) State() *State { return s.state }

// Run places fixed slots, escalates through every relaxation level until all
// periods are placed or no level can place more, then fills breaks and
// validates the outcome.
func (s *Scheduler) Run() (*Result, error) {
	s.PlaceFixed()
	for _, level := range Levels {
		if s.done() {
			break
		}
		for s.TryAssignBest(level) {
		}
	}

	assignments := s.state.regularAssignments()
	assignments = append(assignments, s.nonAcademicCells()...)
	sortAssignments(assignments)

	if err := s.validate(); err != nil {
		return nil, err
	}

	placements := make(map[RelaxationLevel]int, len(s.placements))
	for level, n := range s.placements {
		placements[level] = n
	}
	return &Result{
		Assignments:       assignments,
		FixedPlaced:       s.fixedPlaced,
		PlacementsByLevel: placements,
		LevelReached:      s.levelReached,
	}, nil
}

// PlaceFixed honors fixed slots in requirement order. A fixed coordinate that
// is off-grid, not academic, already taken, or where the teacher is busy is
// skipped and its period is left for the relaxation loop.
func (s *Scheduler) PlaceFixed() int {
	placed := 0
	for _, req := range s.reqs {
		for _, c := range req.Preferences.FixedSlots {
			if s.state.Remaining(req.SubjectID) == 0 {
				break
			}
			if !s.layout.Contains(c) || !s.layout.IsAcademic(c.Slot) {
				continue
			}
			if !s.state.IsSlotFree(c) || !s.state.IsTeacherFree(req.TeacherID, c) {
				continue
			}
			s.state.place(req, c)
			placed++
		}
	}
	s.fixedPlaced += placed
	return placed
}

// TryAssignBest commits the single highest-scoring legal (subject, day, slot)
// at level and reports whether one existed. Ties go to the first candidate
// found in (subject order, day, slot) order.
func (s *Scheduler) TryAssignBest(level RelaxationLevel) bool {
	var (
		best      *Requirement
		bestCoord SlotCoordinate
		bestScore float64
		found     bool
	)
	slots := s.layout.AcademicSlots()
	for _, req := range s.pending() {
		for _, day := range s.layout.Days {
			for _, slot := range slots {
				c := SlotCoordinate{Day: day, Slot: slot}
				if !s.legal(req, c, level) {
					continue
				}
				score := s.scorer.Score(req, c, level)
				if !found || score > bestScore {
					best, bestCoord, bestScore, found = req, c, score, true
				}
			}
		}
	}
	if !found {
		return false
	}
	s.state.place(best, bestCoord)
	s.placements[level]++
	if level > s.levelReached {
		s.levelReached = level
	}
	return true
}

// pending returns subjects with periods left, by priority then remaining periods.
func (s *Scheduler) pending() []*Requirement {
	out := make([]*Requirement, 0, len(s.reqs))
	for _, req := range s.reqs {
		if s.state.Remaining(req.SubjectID) > 0 {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Preferences.Priority, out[j].Preferences.Priority
		if pi != pj {
			return pi > pj
		}
		return s.state.Remaining(out[i].SubjectID) > s.state.Remaining(out[j].SubjectID)
	})
	return out
}

func (s *Scheduler) legal(req *Requirement, c SlotCoordinate, level RelaxationLevel) bool {
	if !s.state.IsSlotFree(c) || !s.state.IsTeacherFree(req.TeacherID, c) {
		return false
	}
	if level >= LevelEmergency {
		return true
	}
	if limit := req.MaxPeriodsPerDay; limit > 0 {
		if level >= LevelRelaxMaxPerDay {
			limit++
		}
		if s.state.DayCount(req.SubjectID, c.Day) >= limit {
			return false
		}
	}
	if level < LevelRelaxAvoid && req.Preferences.AvoidDays[c.Day] {
		return false
	}
	if limit := s.layout.Rules.MaxPeriodsPerTeacherPerDay; limit > 0 && req.TeacherID != "" {
		if s.state.TeacherLoad(req.TeacherID, c.Day) >= limit {
			return false
		}
	}
	return true
}

func (s *Scheduler) done() bool {
	for _, req := range s.reqs {
		if s.state.Remaining(req.SubjectID) > 0 {
			return false
		}
	}
	return true
}

// nonAcademicCells emits every break and lunch cell of every working day.
func (s *Scheduler) nonAcademicCells() []Assignment {
	var out []Assignment
	for _, day := range s.layout.Days {
		for slot := 1; slot <= s.layout.SlotsPerDay; slot++ {
			c := SlotCoordinate{Day: day, Slot: slot}
			switch {
			case s.layout.IsLunch(slot):
				out = append(out, Assignment{Coordinate: c, SlotType: models.SlotTypeLunch})
			case s.layout.IsBreak(slot):
				out = append(out, Assignment{Coordinate: c, SlotType: models.SlotTypeBreak})
			}
		}
	}
	return out
}

func (s *Scheduler) validate() error {
	var diagnostics []SubjectDiagnostic
	for _, req := range s.reqs {
		remaining := s.state.Remaining(req.SubjectID)
		if remaining == 0 {
			continue
		}
		diagnostics = append(diagnostics, s.diagnose(req, remaining))
	}
	if len(diagnostics) == 0 {
		return nil
	}
	return &UnsatisfiableError{Diagnostics: diagnostics}
}

func (s *Scheduler) diagnose(req *Requirement, remaining int) SubjectDiagnostic {
	d := SubjectDiagnostic{
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Required:  req.PeriodsPerWeek,
		Remaining: remaining,
	}
	saturated := req.MaxPeriodsPerDay > 0 && len(s.layout.Days) > 0
	for _, day := range s.layout.Days {
		if saturated && s.state.DayCount(req.SubjectID, day) < req.MaxPeriodsPerDay {
			saturated = false
		}
		if req.TeacherID == "" {
			continue
		}
		for _, slot := range s.layout.AcademicSlots() {
			c := SlotCoordinate{Day: day, Slot: slot}
			if s.state.TeacherBusyElsewhere(req.TeacherID, req.SubjectID, c) {
				d.TeacherBusySlots++
			}
		}
	}
	d.DaysSaturated = saturated
	return d
}
