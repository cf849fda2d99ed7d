package models

import (
	"time"

	"github.com/lib/pq"
)

// SessionStatus tracks the lifecycle of an academic session.
type SessionStatus string

const (
	SessionStatusUpcoming  SessionStatus = "UPCOMING"
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusArchived  SessionStatus = "ARCHIVED"
)

// AcademicSession is the academic year/term a timetable belongs to.
type AcademicSession struct {
	ID            string        `db:"id" json:"id"`
	TenantID      string        `db:"tenant_id" json:"tenant_id"`
	Name          string        `db:"name" json:"name"`
	StartDate     time.Time     `db:"start_date" json:"start_date"`
	EndDate       time.Time     `db:"end_date" json:"end_date"`
	WeeklyOffDays pq.Int64Array `db:"weekly_off_days" json:"weekly_off_days"`
	IsLocked      bool          `db:"is_locked" json:"is_locked"`
	Status        SessionStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// WorkingWeekdays returns the weekdays not listed as weekly off days, Sunday first.
func (s AcademicSession) WorkingWeekdays() []time.Weekday {
	off := make(map[int64]bool, len(s.WeeklyOffDays))
	for _, d := range s.WeeklyOffDays {
		off[d] = true
	}
	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !off[int64(d)] {
			days = append(days, d)
		}
	}
	return days
}

// CalendarDay marks a single date of the session as a working day or not.
type CalendarDay struct {
	Date      time.Time `db:"calendar_date" json:"date"`
	IsWorking bool      `db:"is_working_day" json:"is_working_day"`
}
