package models

import "time"

// SlotType distinguishes teaching periods from breaks.
type SlotType string

const (
	SlotTypeRegular SlotType = "REGULAR"
	SlotTypeBreak   SlotType = "BREAK"
	SlotTypeLunch   SlotType = "LUNCH"
)

// TimetableAssignment is one persisted (day, slot) row of a section timetable.
type TimetableAssignment struct {
	ID         string    `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	SectionID  string    `db:"section_id" json:"section_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	SlotNumber int       `db:"slot_number" json:"slot_number"`
	SlotType   SlotType  `db:"slot_type" json:"slot_type"`
	SubjectID  *string   `db:"subject_id" json:"subject_id,omitempty"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TeacherBusySlot is a (teacher, day, slot) already claimed by another section.
type TeacherBusySlot struct {
	TeacherID  string `db:"teacher_id"`
	DayOfWeek  int    `db:"day_of_week"`
	SlotNumber int    `db:"slot_number"`
}

// TimetableScope identifies the section timetable being generated or read.
type TimetableScope struct {
	TenantID  string
	SessionID string
	ClassID   string
	SectionID string
}
