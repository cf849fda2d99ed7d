package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// CalendarRepository reads the per-date working-day calendar of a session.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListRange returns calendar days of the session between from and to inclusive, ordered by date.
func (r *CalendarRepository) ListRange(ctx context.Context, tenantID, sessionID string, from, to time.Time) ([]models.CalendarDay, error) {
	const query = `SELECT calendar_date, is_working_day FROM academic_calendar_days
WHERE tenant_id = $1 AND session_id = $2 AND calendar_date BETWEEN $3 AND $4 ORDER BY calendar_date ASC`
	var days []models.CalendarDay
	if err := r.db.SelectContext(ctx, &days, query, tenantID, sessionID, from, to); err != nil {
		return nil, fmt.Errorf("list calendar days: %w", err)
	}
	return days, nil
}
