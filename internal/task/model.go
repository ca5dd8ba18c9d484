package task

import (
	"database/sql"
	"time"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidStatus: the transition graph is deliberately fully connected — any
// status is reachable from any other.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DB row (scan target).
type taskRow struct {
	ID             string
	Title          string
	Description    sql.NullString
	AssignedTo     string
	AssignedBy     string
	Priority       string
	Status         string
	DueDate        sql.NullString
	EstimatedHours sql.NullFloat64
	ActualHours    sql.NullFloat64
	CompletedAt    sql.NullTime
	CreatedAt      time.Time
}

type Task struct {
	ID             string
	Title          string
	Description    *string
	AssignedTo     string
	AssignedBy     string
	Priority       string
	Status         string
	DueDate        *string // YYYY-MM-DD
	EstimatedHours *float64 // fractional, the UI steps by 0.5
	ActualHours    *float64
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

func (r taskRow) toModel() Task {
	t := Task{
		ID:         r.ID,
		Title:      r.Title,
		AssignedTo: r.AssignedTo,
		AssignedBy: r.AssignedBy,
		Priority:   r.Priority,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if r.Description.Valid {
		v := r.Description.String
		t.Description = &v
	}
	if r.DueDate.Valid {
		v := r.DueDate.String
		t.DueDate = &v
	}
	if r.EstimatedHours.Valid {
		v := r.EstimatedHours.Float64
		t.EstimatedHours = &v
	}
	if r.ActualHours.Valid {
		v := r.ActualHours.Float64
		t.ActualHours = &v
	}
	if r.CompletedAt.Valid {
		v := r.CompletedAt.Time.UTC()
		t.CompletedAt = &v
	}
	return t
}

func (t Task) toDTO() TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		AssignedTo:     t.AssignedTo,
		AssignedBy:     t.AssignedBy,
		Priority:       t.Priority,
		Status:         t.Status,
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
	}
}

// Comment is append-only; there is no update or delete path.
type Comment struct {
	ID        string
	TaskID    string
	StaffID   string
	Comment   string
	CreatedAt time.Time

	// Joined from staff_profiles for display.
	FirstName string
	LastName  string
}

func (c Comment) toDTO() CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		StaffID:   c.StaffID,
		Comment:   c.Comment,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CreatedAt: c.CreatedAt,
	}
}
