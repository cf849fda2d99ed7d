package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// TimetableTemplate describes the daily period layout used by an institution.
type TimetableTemplate struct {
	ID                  string         `db:"id" json:"id"`
	TenantID            string         `db:"tenant_id" json:"tenant_id"`
	Name                string         `db:"name" json:"name"`
	TotalSlotsPerDay    int            `db:"total_slots_per_day" json:"total_slots_per_day"`
	StartTime           string         `db:"start_time" json:"start_time"`
	SlotDurationMinutes int            `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	BreakSlots          pq.Int64Array  `db:"break_slots" json:"break_slots"`
	LunchSlot           *int           `db:"lunch_slot" json:"lunch_slot,omitempty"`
	GenerationRules     types.JSONText `db:"generation_rules" json:"generation_rules"`
	IsDefault           bool           `db:"is_default" json:"is_default"`
	IsActive            bool           `db:"is_active" json:"is_active"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// GenerationRules holds the template-level limits applied by the generator.
// Zero values mean "use the service default".
type GenerationRules struct {
	MaxConsecutiveHoursTeacher int   `json:"maxConsecutiveHoursTeacher"`
	MaxPeriodsPerSubjectPerDay int   `json:"maxPeriodsPerSubjectPerDay"`
	MaxPeriodsPerTeacherPerDay int   `json:"maxPeriodsPerTeacherPerDay"`
	BalanceSubjectDistribution *bool `json:"balanceSubjectDistribution,omitempty"`
}

// Rules decodes the generation rules column.
func (t TimetableTemplate) Rules() (GenerationRules, error) {
	var rules GenerationRules
	if len(t.GenerationRules) == 0 {
		return rules, nil
	}
	if err := json.Unmarshal(t.GenerationRules, &rules); err != nil {
		return GenerationRules{}, fmt.Errorf("decode generation rules for template %s: %w", t.ID, err)
	}
	return rules, nil
}
