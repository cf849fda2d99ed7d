package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// AcademicSessionRepository reads academic sessions.
type AcademicSessionRepository struct {
	db *sqlx.DB
}

// NewAcademicSessionRepository instantiates a session repository.
func NewAcademicSessionRepository(db *sqlx.DB) *AcademicSessionRepository {
	return &AcademicSessionRepository{db: db}
}

// FindByID returns the tenant's session. sql.ErrNoRows is returned untouched.
func (r *AcademicSessionRepository) FindByID(ctx context.Context, tenantID, id string) (*models.AcademicSession, error) {
	const query = `SELECT id, tenant_id, name, start_date, end_date, weekly_off_days, is_locked, status, created_at, updated_at
FROM academic_sessions WHERE tenant_id = $1 AND id = $2`
	var session models.AcademicSession
	if err := r.db.GetContext(ctx, &session, query, tenantID, id); err != nil {
		return nil, err
	}
	return &session, nil
}
