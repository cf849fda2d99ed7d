package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Rules are the generation limits after template values and service defaults are merged.
type Rules struct {
	MaxConsecutiveTeacherHours int
	MaxPeriodsPerSubjectPerDay int
	MaxPeriodsPerTeacherPerDay int
	BalanceSubjectDistribution bool
}

// DefaultRules is used when neither the template nor the service config sets a limit.
var DefaultRules = Rules{
	MaxConsecutiveTeacherHours: 3,
	MaxPeriodsPerSubjectPerDay: 2,
	MaxPeriodsPerTeacherPerDay: 6,
	BalanceSubjectDistribution: true,
}

// Layout is the resolved weekly grid: working days, slots per day and the
// break/lunch positions.
type Layout struct {
	Days         []time.Weekday
	SlotsPerDay  int
	LunchSlot    int
	SlotDuration time.Duration
	Rules        Rules

	start    time.Duration
	breaks   map[int]bool
	academic []int
	dayIndex map[time.Weekday]bool
}

// NewLayout resolves a template against the session's working weekdays.
func NewLayout(tpl models.TimetableTemplate, workingDays []time.Weekday, defaults Rules) (*Layout, error) {
	if tpl.TotalSlotsPerDay < 1 {
		return nil, fmt.Errorf("template %s: total slots per day must be positive", tpl.ID)
	}
	if tpl.SlotDurationMinutes < 1 {
		return nil, fmt.Errorf("template %s: slot duration must be positive", tpl.ID)
	}
	start, err := parseClock(tpl.StartTime)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", tpl.ID, err)
	}
	stored, err := tpl.Rules()
	if err != nil {
		return nil, err
	}

	l := &Layout{
		SlotsPerDay:  tpl.TotalSlotsPerDay,
		SlotDuration: time.Duration(tpl.SlotDurationMinutes) * time.Minute,
		Rules:        mergeRules(stored, defaults),
		start:        start,
		breaks:       make(map[int]bool),
		dayIndex:     make(map[time.Weekday]bool),
	}
	if tpl.LunchSlot != nil && *tpl.LunchSlot >= 1 && *tpl.LunchSlot <= l.SlotsPerDay {
		l.LunchSlot = *tpl.LunchSlot
	}
	for _, b := range tpl.BreakSlots {
		slot := int(b)
		if slot < 1 || slot > l.SlotsPerDay || slot == l.LunchSlot {
			continue
		}
		l.breaks[slot] = true
	}
	for slot := 1; slot <= l.SlotsPerDay; slot++ {
		if l.IsAcademic(slot) {
			l.academic = append(l.academic, slot)
		}
	}
	for _, d := range workingDays {
		if d < time.Sunday || d > time.Saturday || l.dayIndex[d] {
			continue
		}
		l.dayIndex[d] = true
		l.Days = append(l.Days, d)
	}
	sort.Slice(l.Days, func(i, j int) bool { return weekdayRank(l.Days[i]) < weekdayRank(l.Days[j]) })
	return l, nil
}

func mergeRules(stored models.GenerationRules, defaults Rules) Rules {
	rules := defaults
	if stored.MaxConsecutiveHoursTeacher > 0 {
		rules.MaxConsecutiveTeacherHours = stored.MaxConsecutiveHoursTeacher
	}
	if stored.MaxPeriodsPerSubjectPerDay > 0 {
		rules.MaxPeriodsPerSubjectPerDay = stored.MaxPeriodsPerSubjectPerDay
	}
	if stored.MaxPeriodsPerTeacherPerDay > 0 {
		rules.MaxPeriodsPerTeacherPerDay = stored.MaxPeriodsPerTeacherPerDay
	}
	if stored.BalanceSubjectDistribution != nil {
		rules.BalanceSubjectDistribution = *stored.BalanceSubjectDistribution
	}
	return rules
}

// IsBreak reports whether slot is a short break.
func (l *Layout) IsBreak(slot int) bool { return l.breaks[slot] }

// IsLunch reports whether slot is the lunch period.
func (l *Layout) IsLunch(slot int) bool { return l.LunchSlot != 0 && slot == l.LunchSlot }

// IsAcademic reports whether slot can hold a subject.
func (l *Layout) IsAcademic(slot int) bool {
	return slot >= 1 && slot <= l.SlotsPerDay && !l.IsBreak(slot) && !l.IsLunch(slot)
}

// AcademicSlots returns the academic slot numbers of one day in ascending order.
func (l *Layout) AcademicSlots() []int {
	out := make([]int, len(l.academic))
	copy(out, l.academic)
	return out
}

// AcademicCapacity is the number of academic slots in the week.
func (l *Layout) AcademicCapacity() int {
	return len(l.Days) * len(l.academic)
}

// HasDay reports whether d is a working day of the grid.
func (l *Layout) HasDay(d time.Weekday) bool { return l.dayIndex[d] }

// Contains reports whether c lies on the grid, break and lunch slots included.
func (l *Layout) Contains(c SlotCoordinate) bool {
	return l.HasDay(c.Day) && c.Slot >= 1 && c.Slot <= l.SlotsPerDay
}

// IsMorning reports whether slot falls before the lunch boundary.
func (l *Layout) IsMorning(slot int) bool {
	if l.LunchSlot != 0 {
		return slot < l.LunchSlot
	}
	return slot <= (l.SlotsPerDay+1)/2
}

// IsAfternoon reports whether slot falls after the lunch boundary.
func (l *Layout) IsAfternoon(slot int) bool {
	if l.LunchSlot != 0 {
		return slot > l.LunchSlot
	}
	return slot > (l.SlotsPerDay+1)/2
}

// SlotTimes returns the HH:MM start and end of slot.
func (l *Layout) SlotTimes(slot int) (string, string) {
	begin := l.start + time.Duration(slot-1)*l.SlotDuration
	return formatClock(begin), formatClock(begin + l.SlotDuration)
}

func parseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
		}
	}
	return 0, fmt.Errorf("invalid start time %q", raw)
}

func formatClock(d time.Duration) string {
	minutes := int(d/time.Minute) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
