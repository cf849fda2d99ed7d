package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SubjectRequirement is a subject that must be taught to a class, or to one
// section of it, a number of periods each week.
type SubjectRequirement struct {
	ID                    string         `db:"id" json:"id"`
	TenantID              string         `db:"tenant_id" json:"tenant_id"`
	SessionID             string         `db:"session_id" json:"session_id"`
	ClassID               string         `db:"class_id" json:"class_id"`
	SectionID             *string        `db:"section_id" json:"section_id,omitempty"`
	SubjectID             string         `db:"subject_id" json:"subject_id"`
	TeacherID             *string        `db:"teacher_id" json:"teacher_id,omitempty"`
	PeriodsPerWeek        int            `db:"periods_per_week" json:"periods_per_week"`
	MaxPeriodsPerDay      *int           `db:"max_periods_per_day" json:"max_periods_per_day,omitempty"`
	SchedulingPreferences types.JSONText `db:"scheduling_preferences" json:"scheduling_preferences"`
	SpecialRoomType       *string        `db:"special_room_type" json:"special_room_type,omitempty"`
	IsActive              bool           `db:"is_active" json:"is_active"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
}

// SectionScoped reports whether the record targets a single section rather than the whole class.
func (r SubjectRequirement) SectionScoped() bool {
	return r.SectionID != nil && strings.TrimSpace(*r.SectionID) != ""
}

// Preferences decodes the scheduling preferences column. An empty column yields the zero value.
func (r SubjectRequirement) Preferences() (SchedulingPreferences, error) {
	var prefs SchedulingPreferences
	raw := bytes.TrimSpace(r.SchedulingPreferences)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return prefs, nil
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return SchedulingPreferences{}, fmt.Errorf("decode scheduling preferences for subject %s: %w", r.SubjectID, err)
	}
	return prefs, nil
}

// SchedulingPreferences is the stored, fully optional preference record.
type SchedulingPreferences struct {
	PreferredDays     []int                 `json:"preferredDays,omitempty"`
	AvoidDays         []int                 `json:"avoidDays,omitempty"`
	PreferredSlots    []SlotPreferenceValue `json:"preferredSlots,omitempty"`
	AvoidSlots        []int                 `json:"avoidSlots,omitempty"`
	PreferConsecutive bool                  `json:"preferConsecutive,omitempty"`
	SpreadEvenly      *bool                 `json:"spreadEvenly,omitempty"`
	Priority          *int                  `json:"priority,omitempty"`
	FixedSlots        []FixedSlot           `json:"fixedSlots,omitempty"`
}

// FixedSlot pins a subject to an exact day and slot.
type FixedSlot struct {
	Day  int `json:"day"`
	Slot int `json:"slot"`
}

// Symbolic slot preferences.
const (
	SlotSymbolFirst     = "first"
	SlotSymbolLast      = "last"
	SlotSymbolMorning   = "morning"
	SlotSymbolAfternoon = "afternoon"
)

// SlotPreferenceValue is either an explicit slot number or one of the symbolic
// values first, last, morning or afternoon.
type SlotPreferenceValue struct {
	Slot   int
	Symbol string
}

// UnmarshalJSON accepts numbers, numeric strings and the symbolic names.
func (v *SlotPreferenceValue) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = SlotPreferenceValue{Slot: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("slot preference must be a number or string: %s", string(data))
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		*v = SlotPreferenceValue{Slot: n}
		return nil
	}
	switch s {
	case SlotSymbolFirst, SlotSymbolLast, SlotSymbolMorning, SlotSymbolAfternoon:
		*v = SlotPreferenceValue{Symbol: s}
		return nil
	}
	return fmt.Errorf("unknown slot preference %q", s)
}

// MarshalJSON writes the number or the symbol back out.
func (v SlotPreferenceValue) MarshalJSON() ([]byte, error) {
	if v.Symbol != "" {
		return json.Marshal(v.Symbol)
	}
	return json.Marshal(v.Slot)
}
