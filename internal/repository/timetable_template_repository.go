package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableTemplateRepository reads day/slot layout templates.
type TimetableTemplateRepository struct {
	db *sqlx.DB
}

// NewTimetableTemplateRepository builds repository.
func NewTimetableTemplateRepository(db *sqlx.DB) *TimetableTemplateRepository {
	return &TimetableTemplateRepository{db: db}
}

// ListActive returns the tenant's active templates, oldest first.
func (r *TimetableTemplateRepository) ListActive(ctx context.Context, tenantID string) ([]models.TimetableTemplate, error) {
	const query = `SELECT id, tenant_id, name, total_slots_per_day, start_time, slot_duration_minutes, break_slots, lunch_slot, generation_rules, is_default, is_active, created_at, updated_at
FROM timetable_templates WHERE tenant_id = $1 AND is_active = TRUE ORDER BY created_at ASC, id ASC`
	var templates []models.TimetableTemplate
	if err := r.db.SelectContext(ctx, &templates, query, tenantID); err != nil {
		return nil, fmt.Errorf("list timetable templates: %w", err)
	}
	return templates, nil
}
