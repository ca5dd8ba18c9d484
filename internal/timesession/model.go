package timesession

import (
	"database/sql"
	"time"
)

// DB row (scan target).
type sessionRow struct {
	ID           string
	StaffID      string
	TaskID       sql.NullString
	TaskTitle    sql.NullString
	Description  sql.NullString
	SessionStart time.Time
	SessionEnd   sql.NullTime
	Duration     sql.NullInt64
	IsActive     bool
}

// TimeSession is the Service ↔ Store model. Duration is minutes, computed
// once at stop and never recomputed afterwards.
type TimeSession struct {
	ID           string
	StaffID      string
	TaskID       *string
	TaskTitle    *string
	Description  *string
	SessionStart time.Time
	SessionEnd   *time.Time
	Duration     *int
	IsActive     bool
}

func (r sessionRow) toModel() TimeSession {
	s := TimeSession{
		ID:           r.ID,
		StaffID:      r.StaffID,
		SessionStart: r.SessionStart.UTC(),
		IsActive:     r.IsActive,
	}
	if r.TaskID.Valid {
		v := r.TaskID.String
		s.TaskID = &v
	}
	if r.TaskTitle.Valid {
		v := r.TaskTitle.String
		s.TaskTitle = &v
	}
	if r.Description.Valid {
		v := r.Description.String
		s.Description = &v
	}
	if r.SessionEnd.Valid {
		t := r.SessionEnd.Time.UTC()
		s.SessionEnd = &t
	}
	if r.Duration.Valid {
		v := int(r.Duration.Int64)
		s.Duration = &v
	}
	return s
}

func (s TimeSession) toDTO() SessionResponse {
	return SessionResponse{
		ID:           s.ID,
		StaffID:      s.StaffID,
		TaskID:       s.TaskID,
		TaskTitle:    s.TaskTitle,
		Description:  s.Description,
		SessionStart: s.SessionStart,
		SessionEnd:   s.SessionEnd,
		Duration:     s.Duration,
		IsActive:     s.IsActive,
	}
}
