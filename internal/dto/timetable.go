package dto

import (
	"time"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// GenerateTimetableRequest asks for a full weekly timetable for one section.
type GenerateTimetableRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	ClassID    string `json:"classId" validate:"required"`
	SectionID  string `json:"sectionId" validate:"required"`
	TemplateID string `json:"templateId,omitempty"`
	Async      bool   `json:"async,omitempty"`
}

// GenerateTimetableResponse summarises a successful run.
type GenerateTimetableResponse struct {
	Success           bool           `json:"success"`
	SlotsCreated      int            `json:"slotsCreated"`
	Warnings          []string       `json:"warnings"`
	LevelReached      string         `json:"levelReached"`
	PlacementsByLevel map[string]int `json:"placementsByLevel"`
	FixedPlaced       int            `json:"fixedPlaced"`
	TemplateID        string         `json:"templateId"`
}

// TimetableRunStatus is the lifecycle of an asynchronous generation.
type TimetableRunStatus string

const (
	TimetableRunPending   TimetableRunStatus = "PENDING"
	TimetableRunRunning   TimetableRunStatus = "RUNNING"
	TimetableRunSucceeded TimetableRunStatus = "SUCCEEDED"
	TimetableRunFailed    TimetableRunStatus = "FAILED"
)

// TimetableRun is the pollable record of an asynchronous generation.
type TimetableRun struct {
	RunID      string                     `json:"runId"`
	TenantID   string                     `json:"-"`
	Status     TimetableRunStatus         `json:"status"`
	Request    GenerateTimetableRequest   `json:"request"`
	Result     *GenerateTimetableResponse `json:"result,omitempty"`
	Error      *appErrors.Error           `json:"error,omitempty"`
	CreatedAt  time.Time                  `json:"createdAt"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
	FinishedAt *time.Time                 `json:"finishedAt,omitempty"`
}

// GenerateAcceptedResponse is returned for asynchronous requests.
type GenerateAcceptedResponse struct {
	RunID  string             `json:"runId"`
	Status TimetableRunStatus `json:"status"`
}

// TimetableSlot is one cell of a persisted timetable.
type TimetableSlot struct {
	SlotNumber int     `json:"slotNumber"`
	SlotType   string  `json:"slotType"`
	SubjectID  *string `json:"subjectId,omitempty"`
	TeacherID  *string `json:"teacherId,omitempty"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
}

// TimetableDay groups a day's slots.
type TimetableDay struct {
	DayOfWeek int             `json:"dayOfWeek"`
	DayName   string          `json:"dayName"`
	Slots     []TimetableSlot `json:"slots"`
}

// TimetableView is the persisted weekly timetable of a section.
type TimetableView struct {
	SessionID string         `json:"sessionId"`
	ClassID   string         `json:"classId"`
	SectionID string         `json:"sectionId"`
	Days      []TimetableDay `json:"days"`
}

// TimetableExportQuery selects the export format.
type TimetableExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
