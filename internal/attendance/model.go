package attendance

import (
	"database/sql"
	"time"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusHalfDay = "half_day"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusHalfDay:
		return true
	}
	return false
}

// DB row (scan target).
type attendanceRow struct {
	ID            string
	StaffID       string
	Date          string // DATE → "YYYY-MM-DD"
	CheckInTime   sql.NullTime
	CheckOutTime  sql.NullTime
	Status        string
	BreakDuration int
	TotalHours    sql.NullFloat64
	Notes         sql.NullString
}

// Attendance is the one-record-per-staff-per-day model shared between
// Service and Store.
type Attendance struct {
	ID            string
	StaffID       string
	Date          string
	CheckInTime   *time.Time
	CheckOutTime  *time.Time
	Status        string
	BreakDuration int
	TotalHours    *float64
	Notes         *string
}

func (r attendanceRow) toModel() Attendance {
	a := Attendance{
		ID:            r.ID,
		StaffID:       r.StaffID,
		Date:          r.Date,
		Status:        r.Status,
		BreakDuration: r.BreakDuration,
	}
	if r.CheckInTime.Valid {
		t := r.CheckInTime.Time.UTC()
		a.CheckInTime = &t
	}
	if r.CheckOutTime.Valid {
		t := r.CheckOutTime.Time.UTC()
		a.CheckOutTime = &t
	}
	if r.TotalHours.Valid {
		v := r.TotalHours.Float64
		a.TotalHours = &v
	}
	if r.Notes.Valid {
		v := r.Notes.String
		a.Notes = &v
	}
	return a
}

func (a Attendance) toDTO() AttendanceResponse {
	return AttendanceResponse{
		ID:            a.ID,
		StaffID:       a.StaffID,
		Date:          a.Date,
		CheckInTime:   a.CheckInTime,
		CheckOutTime:  a.CheckOutTime,
		Status:        a.Status,
		BreakDuration: a.BreakDuration,
		TotalHours:    a.TotalHours,
		Notes:         a.Notes,
	}
}

// ExportRow joins the record with the profile for CSV output.
type ExportRow struct {
	Date          string
	EmployeeID    string
	FirstName     string
	LastName      string
	Status        string
	CheckInTime   *time.Time
	CheckOutTime  *time.Time
	BreakDuration int
	TotalHours    *float64
	Notes         *string
}
