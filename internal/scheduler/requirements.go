package scheduler

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// DefaultPriority applies when a requirement carries no priority.
const DefaultPriority = 5

// Preferences is the resolved form of models.SchedulingPreferences, with
// defaults applied once at load time.
type Preferences struct {
	PreferredDays     map[time.Weekday]bool
	AvoidDays         map[time.Weekday]bool
	PreferredSlots    []models.SlotPreferenceValue
	AvoidSlots        map[int]bool
	PreferConsecutive bool
	SpreadEvenly      bool
	Priority          int
	FixedSlots        []SlotCoordinate
}

// Requirement is one subject to schedule for the section.
type Requirement struct {
	SubjectID        string
	TeacherID        string
	PeriodsPerWeek   int
	MaxPeriodsPerDay int
	Preferences      Preferences
	SpecialRoomType  string
}

// ResolvePreferences applies defaults to a stored preference record.
func ResolvePreferences(raw models.SchedulingPreferences, rules Rules) Preferences {
	p := Preferences{
		PreferredDays:     weekdaySet(raw.PreferredDays),
		AvoidDays:         weekdaySet(raw.AvoidDays),
		AvoidSlots:        make(map[int]bool, len(raw.AvoidSlots)),
		PreferConsecutive: raw.PreferConsecutive,
		SpreadEvenly:      rules.BalanceSubjectDistribution,
		Priority:          DefaultPriority,
	}
	if raw.SpreadEvenly != nil {
		p.SpreadEvenly = *raw.SpreadEvenly
	}
	if raw.Priority != nil {
		p.Priority = clamp(*raw.Priority, 1, 10)
	}
	for _, slot := range raw.AvoidSlots {
		p.AvoidSlots[slot] = true
	}
	for _, pref := range raw.PreferredSlots {
		if pref.Symbol == "" && pref.Slot < 1 {
			continue
		}
		p.PreferredSlots = append(p.PreferredSlots, pref)
	}
	for _, fixed := range raw.FixedSlots {
		if fixed.Day < 0 || fixed.Day > 6 || fixed.Slot < 1 {
			continue
		}
		p.FixedSlots = append(p.FixedSlots, SlotCoordinate{Day: time.Weekday(fixed.Day), Slot: fixed.Slot})
	}
	return p
}

// ResolveTemplate picks the template to use: the explicit id when given,
// otherwise the active default, otherwise the oldest active template.
func ResolveTemplate(templates []models.TimetableTemplate, templateID string) (*models.TimetableTemplate, error) {
	var (
		def    *models.TimetableTemplate
		oldest *models.TimetableTemplate
	)
	for i := range templates {
		tpl := &templates[i]
		if !tpl.IsActive {
			continue
		}
		if templateID != "" {
			if tpl.ID == templateID {
				return tpl, nil
			}
			continue
		}
		if tpl.IsDefault && (def == nil || tpl.CreatedAt.Before(def.CreatedAt)) {
			def = tpl
		}
		if oldest == nil || tpl.CreatedAt.Before(oldest.CreatedAt) {
			oldest = tpl
		}
	}
	if def != nil {
		return def, nil
	}
	if oldest != nil {
		return oldest, nil
	}
	return nil, ErrTemplateMissing
}

// BuildRequirements merges class-wide and section-specific records, a
// section-specific record replacing the class-wide one for the same subject,
// and returns them in initial scheduling order (priority desc, periods desc).
func BuildRequirements(records []models.SubjectRequirement, layout *Layout) ([]Requirement, error) {
	type merged struct {
		record  models.SubjectRequirement
		section bool
	}
	order := make([]string, 0, len(records))
	bySubject := make(map[string]*merged, len(records))
	for _, rec := range records {
		subjectID := strings.TrimSpace(rec.SubjectID)
		if !rec.IsActive || subjectID == "" || rec.PeriodsPerWeek <= 0 {
			continue
		}
		rec.SubjectID = subjectID
		existing, ok := bySubject[subjectID]
		if !ok {
			order = append(order, subjectID)
			bySubject[subjectID] = &merged{record: rec, section: rec.SectionScoped()}
			continue
		}
		if !existing.section && rec.SectionScoped() {
			existing.record = rec
			existing.section = true
		}
	}
	if len(order) == 0 {
		return nil, ErrNoSubjects
	}

	reqs := make([]Requirement, 0, len(order))
	for _, subjectID := range order {
		rec := bySubject[subjectID].record
		raw, err := rec.Preferences()
		if err != nil {
			return nil, err
		}
		req := Requirement{
			SubjectID:        subjectID,
			TeacherID:        trimmedValue(rec.TeacherID),
			PeriodsPerWeek:   rec.PeriodsPerWeek,
			MaxPeriodsPerDay: layout.Rules.MaxPeriodsPerSubjectPerDay,
			Preferences:      ResolvePreferences(raw, layout.Rules),
			SpecialRoomType:  trimmedValue(rec.SpecialRoomType),
		}
		if rec.MaxPeriodsPerDay != nil && *rec.MaxPeriodsPerDay > 0 {
			req.MaxPeriodsPerDay = *rec.MaxPeriodsPerDay
		}
		reqs = append(reqs, req)
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].Preferences.Priority != reqs[j].Preferences.Priority {
			return reqs[i].Preferences.Priority > reqs[j].Preferences.Priority
		}
		return reqs[i].PeriodsPerWeek > reqs[j].PeriodsPerWeek
	})
	return reqs, nil
}

func weekdaySet(days []int) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			set[time.Weekday(d)] = true
		}
	}
	return set
}

func trimmedValue(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
