package timesession

import "time"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	DateLayout       = "2006-01-02"
	ClockLayout      = "15:04"
)

type StartRequest struct {
	TaskID      *string `json:"task_id,omitempty"`
	Description *string `json:"description,omitempty"`
}

type StopRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type SwitchTaskRequest struct {
	TaskID *string `json:"task_id"` // null clears the task link
}

type DescriptionRequest struct {
	Description string `json:"description" binding:"required"`
}

type ManualEntryRequest struct {
	Date        string  `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime   string  `json:"start_time" binding:"required"` // HH:MM
	EndTime     string  `json:"end_time" binding:"required"`   // HH:MM
	TaskID      *string `json:"task_id,omitempty"`
	Description *string `json:"description,omitempty"`
}

type SessionResponse struct {
	ID           string     `json:"id"`
	StaffID      string     `json:"staff_id"`
	TaskID       *string    `json:"task_id,omitempty"`
	TaskTitle    *string    `json:"task_title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	SessionStart time.Time  `json:"session_start"`
	SessionEnd   *time.Time `json:"session_end,omitempty"`
	Duration     *int       `json:"duration,omitempty"`
	IsActive     bool       `json:"is_active"`
}

type ListQuery struct {
	StaffID string
	From    *string
	To      *string
	Limit   int
	Offset  int

	// UTC instants resolved from From/To in the workday timezone. The service
	// fills these; the store only compares against them. session_start is
	// stored in UTC, so comparing raw date strings would shift the day for
	// any non-UTC workday timezone.
	FromBound *time.Time
	ToBound   *time.Time
}
