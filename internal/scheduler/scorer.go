package scheduler

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Scoring weights.
const (
	FixedSlotScore = 10000.0

	baseWeight             = 100.0
	heavySubjectWeight     = 150.0
	heavySubjectPeriods    = 4
	preferredDayBonus      = 50.0
	exactSlotBonus         = 40.0
	edgeSlotBonus          = 30.0
	halfDayBonus           = 20.0
	avoidDayPenalty        = 200.0
	avoidSlotPenalty       = 150.0
	spreadPenalty          = 40.0
	consecutiveBonus       = 60.0
	teacherStretchPenalty  = 50.0
	teacherDailyLoadWeight = 15.0
	edgeSlotWidth          = 2
)

// Scorer rates a candidate placement. It only reads State.
type Scorer struct {
	layout      *Layout
	reliability map[time.Weekday]float64
	state       *State
}

// NewScorer builds a scorer over the run state. Weekdays missing from
// reliability count as fully reliable.
func NewScorer(layout *Layout, reliability map[time.Weekday]float64, state *State) *Scorer {
	return &Scorer{layout: layout, reliability: reliability, state: state}
}

// Score returns the desirability of placing req at c under level. Higher is better.
func (s *Scorer) Score(req *Requirement, c SlotCoordinate, level RelaxationLevel) float64 {
	prefs := req.Preferences
	for _, fixed := range prefs.FixedSlots {
		if fixed == c {
			return FixedSlotScore
		}
	}

	weight := s.weight(c.Day)
	score := baseWeight * weight
	if req.PeriodsPerWeek >= heavySubjectPeriods {
		score += heavySubjectWeight * weight
	}

	if preferenceBonusesApply(level) {
		if prefs.PreferredDays[c.Day] {
			score += preferredDayBonus
		}
		score += s.slotPreferenceBonus(prefs.PreferredSlots, c.Slot)
	}
	if avoidPenaltiesApply(level) {
		if prefs.AvoidDays[c.Day] {
			score -= avoidDayPenalty
		}
		if prefs.AvoidSlots[c.Slot] {
			score -= avoidSlotPenalty
		}
	}

	if prefs.SpreadEvenly {
		score -= spreadPenalty * float64(s.state.DayCount(req.SubjectID, c.Day))
	}
	if prefs.PreferConsecutive && s.state.HasAdjacent(req.SubjectID, c) {
		score += consecutiveBonus
	}

	if req.TeacherID != "" {
		over := s.state.TeacherConsecutiveSpan(req.TeacherID, c) - s.layout.Rules.MaxConsecutiveTeacherHours
		if over > 0 {
			score -= teacherStretchPenalty * float64(over)
		}
		score -= teacherDailyLoadWeight * float64(s.state.TeacherLoad(req.TeacherID, c.Day))
	}
	return score
}

func (s *Scorer) weight(day time.Weekday) float64 {
	if w, ok := s.reliability[day]; ok {
		return w
	}
	return 1
}

func (s *Scorer) slotPreferenceBonus(prefs []models.SlotPreferenceValue, slot int) float64 {
	var bonus float64
	for _, p := range prefs {
		switch p.Symbol {
		case "":
			if p.Slot == slot {
				bonus += exactSlotBonus
			}
		case models.SlotSymbolFirst:
			if slot <= edgeSlotWidth {
				bonus += edgeSlotBonus
			}
		case models.SlotSymbolLast:
			if slot > s.layout.SlotsPerDay-edgeSlotWidth {
				bonus += edgeSlotBonus
			}
		case models.SlotSymbolMorning:
			if s.layout.IsMorning(slot) {
				bonus += halfDayBonus
			}
		case models.SlotSymbolAfternoon:
			if s.layout.IsAfternoon(slot) {
				bonus += halfDayBonus
			}
		}
	}
	return bonus
}

// Preferred day/slot bonuses apply at STRICT and RELAX_AVOID only.
func preferenceBonusesApply(level RelaxationLevel) bool {
	return level == LevelStrict || level == LevelRelaxAvoid
}

// Avoid rules stay soft penalties until RELAX_MAX_PER_DAY removes them.
func avoidPenaltiesApply(level RelaxationLevel) bool {
	return level <= LevelRelaxAvoid
}
