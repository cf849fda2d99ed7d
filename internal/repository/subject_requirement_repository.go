package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SubjectRequirementRepository reads the class and section subject assignments
// that drive generation.
type SubjectRequirementRepository struct {
	db *sqlx.DB
}

// NewSubjectRequirementRepository builds repository.
func NewSubjectRequirementRepository(db *sqlx.DB) *SubjectRequirementRepository {
	return &SubjectRequirementRepository{db: db}
}

// ListForSection returns active class-wide and section-specific records in insertion order.
func (r *SubjectRequirementRepository) ListForSection(ctx context.Context, scope models.TimetableScope) ([]models.SubjectRequirement, error) {
	const query = `SELECT id, tenant_id, session_id, class_id, section_id, subject_id, teacher_id, periods_per_week, max_periods_per_day, scheduling_preferences, special_room_type, is_active, created_at
FROM subject_requirements
WHERE tenant_id = $1 AND session_id = $2 AND class_id = $3 AND (section_id IS NULL OR section_id = $4) AND is_active = TRUE
ORDER BY created_at ASC, id ASC`
	var records []models.SubjectRequirement
	if err := r.db.SelectContext(ctx, &records, query, scope.TenantID, scope.SessionID, scope.ClassID, scope.SectionID); err != nil {
		return nil, fmt.Errorf("list subject requirements: %w", err)
	}
	return records, nil
}
