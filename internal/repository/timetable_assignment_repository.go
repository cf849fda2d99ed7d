package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableAssignmentRepository manages persisted section timetables.
type TimetableAssignmentRepository struct {
	db *sqlx.DB
}

// NewTimetableAssignmentRepository builds repository.
func NewTimetableAssignmentRepository(db *sqlx.DB) *TimetableAssignmentRepository {
	return &TimetableAssignmentRepository{db: db}
}

func (r *TimetableAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListTeacherBusy returns the (teacher, day, slot) triples already claimed by
// other sections of the session.
func (r *TimetableAssignmentRepository) ListTeacherBusy(ctx context.Context, scope models.TimetableScope) ([]models.TeacherBusySlot, error) {
	const query = `SELECT teacher_id, day_of_week, slot_number FROM timetable_assignments
WHERE tenant_id = $1 AND session_id = $2 AND section_id <> $3 AND teacher_id IS NOT NULL AND slot_type = 'REGULAR'`
	var busy []models.TeacherBusySlot
	if err := r.db.SelectContext(ctx, &busy, query, scope.TenantID, scope.SessionID, scope.SectionID); err != nil {
		return nil, fmt.Errorf("list teacher busy slots: %w", err)
	}
	return busy, nil
}

// ListBySection returns the section timetable ordered by day/slot.
func (r *TimetableAssignmentRepository) ListBySection(ctx context.Context, scope models.TimetableScope) ([]models.TimetableAssignment, error) {
	const query = `SELECT id, tenant_id, session_id, class_id, section_id, day_of_week, slot_number, slot_type, subject_id, teacher_id, start_time, end_time, created_at
FROM timetable_assignments WHERE tenant_id = $1 AND session_id = $2 AND section_id = $3 ORDER BY day_of_week ASC, slot_number ASC`
	var rows []models.TimetableAssignment
	if err := r.db.SelectContext(ctx, &rows, query, scope.TenantID, scope.SessionID, scope.SectionID); err != nil {
		return nil, fmt.Errorf("list timetable assignments: %w", err)
	}
	return rows, nil
}

// DeleteBySection removes every assignment of the section in the session.
func (r *TimetableAssignmentRepository) DeleteBySection(ctx context.Context, exec sqlx.ExtContext, scope models.TimetableScope) (int64, error) {
	const query = `DELETE FROM timetable_assignments WHERE tenant_id = $1 AND session_id = $2 AND section_id = $3`
	res, err := r.exec(exec).ExecContext(ctx, query, scope.TenantID, scope.SessionID, scope.SectionID)
	if err != nil {
		return 0, fmt.Errorf("delete timetable assignments: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// InsertBatch writes rows one by one so that a uniqueness failure points at
// the offending row. The returned error wraps the driver error.
func (r *TimetableAssignmentRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.TimetableAssignment) error {
	if len(rows) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_assignments (id, tenant_id, session_id, class_id, section_id, day_of_week, slot_number, slot_type, subject_id, teacher_id, start_time, end_time, created_at)
VALUES (:id, :tenant_id, :session_id, :class_id, :section_id, :day_of_week, :slot_number, :slot_type, :subject_id, :teacher_id, :start_time, :end_time, :created_at)`

	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, row); err != nil {
			return &InsertError{DayOfWeek: row.DayOfWeek, SlotNumber: row.SlotNumber, Err: err}
		}
	}
	return nil
}

// InsertError identifies the row a batch insert failed on.
type InsertError struct {
	DayOfWeek  int
	SlotNumber int
	Err        error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert timetable assignment day %d slot %d: %v", e.DayOfWeek, e.SlotNumber, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }
