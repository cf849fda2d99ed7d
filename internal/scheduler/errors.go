package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateMissing is returned when no active template can be resolved.
	ErrTemplateMissing = errors.New("no active timetable template")
	// ErrNoSubjects is returned when the merged requirement set is empty.
	ErrNoSubjects = errors.New("no subjects configured for section")
)

// CapacityError reports more required periods than academic slots in the week.
type CapacityError struct {
	Required  int `json:"required"`
	Available int `json:"available"`
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("required periods (%d) exceed available academic slots (%d)", e.Required, e.Available)
}

// SubjectDiagnostic explains why one subject ended the run short of periods.
type SubjectDiagnostic struct {
	SubjectID        string `json:"subjectId"`
	TeacherID        string `json:"teacherId,omitempty"`
	Required         int    `json:"required"`
	Remaining        int    `json:"remaining"`
	TeacherBusySlots int    `json:"teacherBusySlots"`
	DaysSaturated    bool   `json:"daysSaturated"`
}

// UnsatisfiableError is returned when every relaxation level has been tried
// and at least one subject still has unplaced periods.
type UnsatisfiableError struct {
	Diagnostics []SubjectDiagnostic `json:"diagnostics"`
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("%d subject(s) could not be fully scheduled", len(e.Diagnostics))
}
