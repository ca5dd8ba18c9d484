package attendance

import "time"

const (
	SortDateDesc     = "date_desc"
	SortDateAsc      = "date_asc"
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	DefaultSort      = SortDateDesc
	DateLayout       = "2006-01-02"
	ClockLayout      = "15:04"
)

type CheckOutRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type BreakRequest struct {
	BreakMinutes *int `json:"break_minutes" binding:"required"`
}

// MarkRequest is the privileged override path: it can create or move a
// record into any state without the check-in/check-out flow.
type MarkRequest struct {
	StaffID       string  `json:"staff_id" binding:"required"`
	Date          string  `json:"date" binding:"required"` // YYYY-MM-DD
	Status        string  `json:"status" binding:"required"`
	CheckInTime   *string `json:"check_in_time,omitempty"`  // HH:MM
	CheckOutTime  *string `json:"check_out_time,omitempty"` // HH:MM
	BreakDuration *int    `json:"break_duration,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type AttendanceResponse struct {
	ID            string     `json:"id"`
	StaffID       string     `json:"staff_id"`
	Date          string     `json:"date"`
	CheckInTime   *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime  *time.Time `json:"check_out_time,omitempty"`
	Status        string     `json:"status"`
	BreakDuration int        `json:"break_duration"`
	TotalHours    *float64   `json:"total_hours,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

type ListQuery struct {
	StaffID string
	From    *string
	To      *string
	Limit   int
	Offset  int
	Sort    string
}
