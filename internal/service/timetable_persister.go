package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type assignmentWriter interface {
	DeleteBySection(ctx context.Context, exec sqlx.ExtContext, scope models.TimetableScope) (int64, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.TimetableAssignment) error
}

type directoryChecker interface {
	MissingSubjectIDs(ctx context.Context, tenantID string, ids []string) ([]string, error)
	MissingTeacherIDs(ctx context.Context, tenantID string, ids []string) ([]string, error)
}

// timetablePersister replaces a section timetable atomically.
type timetablePersister struct {
	assignments assignmentWriter
	directory   directoryChecker
	tx          txProvider
	logger      *zap.Logger
}

func newTimetablePersister(assignments assignmentWriter, directory directoryChecker, tx txProvider, logger *zap.Logger) *timetablePersister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &timetablePersister{assignments: assignments, directory: directory, tx: tx, logger: logger}
}

// Replace verifies the references in rows and swaps them in for the section's
// current timetable inside one transaction. Nothing is written on failure.
func (p *timetablePersister) Replace(ctx context.Context, scope models.TimetableScope, rows []models.TimetableAssignment) (err error) {
	sanitizeAssignments(rows)
	if err = p.verifyReferences(ctx, scope.TenantID, rows); err != nil {
		return err
	}
	if p.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := p.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	removed, err := p.assignments.DeleteBySection(ctx, tx, scope)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing timetable")
		return err
	}
	if err = p.assignments.InsertBatch(ctx, tx, rows); err != nil {
		err = mapInsertError(err)
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
		return err
	}

	p.logger.Debug("timetable replaced",
		zap.String("section_id", scope.SectionID),
		zap.Int64("removed", removed),
		zap.Int("inserted", len(rows)),
	)
	return nil
}

func (p *timetablePersister) verifyReferences(ctx context.Context, tenantID string, rows []models.TimetableAssignment) error {
	if p.directory == nil {
		return nil
	}
	subjects, teachers := referencedIDs(rows)
	missingSubjects, err := p.directory.MissingSubjectIDs(ctx, tenantID, subjects)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify subjects")
	}
	missingTeachers, err := p.directory.MissingTeacherIDs(ctx, tenantID, teachers)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teachers")
	}
	if len(missingSubjects) == 0 && len(missingTeachers) == 0 {
		return nil
	}
	p.logger.Error("timetable references unknown directory entries",
		zap.Strings("missing_subjects", missingSubjects),
		zap.Strings("missing_teachers", missingTeachers),
	)
	return appErrors.WithDetails(appErrors.ErrIntegrityViolation, map[string]interface{}{
		"missingSubjectIds": missingSubjects,
		"missingTeacherIds": missingTeachers,
	})
}

func mapInsertError(err error) error {
	var insertErr *repository.InsertError
	if errors.As(err, &insertErr) && database.IsUniqueViolation(err) {
		wrapped := appErrors.Wrap(err, appErrors.ErrDuplicateSlot.Code, appErrors.ErrDuplicateSlot.Status,
			fmt.Sprintf("slot %d on day %d was written by another run", insertErr.SlotNumber, insertErr.DayOfWeek))
		return appErrors.WithDetails(wrapped, map[string]int{
			"dayOfWeek":  insertErr.DayOfWeek,
			"slotNumber": insertErr.SlotNumber,
		})
	}
	if database.IsForeignKeyViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrIntegrityViolation.Code, appErrors.ErrIntegrityViolation.Status,
			"timetable references a subject or teacher that no longer exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert timetable")
}

// sanitizeAssignments turns blank references into NULLs and strips
// references from break and lunch rows.
func sanitizeAssignments(rows []models.TimetableAssignment) {
	for i := range rows {
		row := &rows[i]
		if row.SlotType != models.SlotTypeRegular {
			row.SubjectID, row.TeacherID = nil, nil
			continue
		}
		row.SubjectID = blankToNil(row.SubjectID)
		row.TeacherID = blankToNil(row.TeacherID)
	}
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func referencedIDs(rows []models.TimetableAssignment) (subjects, teachers []string) {
	subjectSet := make(map[string]struct{})
	teacherSet := make(map[string]struct{})
	for _, row := range rows {
		if row.SubjectID != nil {
			subjectSet[*row.SubjectID] = struct{}{}
		}
		if row.TeacherID != nil {
			teacherSet[*row.TeacherID] = struct{}{}
		}
	}
	return sortedKeys(subjectSet), sortedKeys(teacherSet)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
