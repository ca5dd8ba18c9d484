package task

import "time"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	DateLayout       = "2006-01-02"
)

type CreateTaskRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    *string `json:"description,omitempty"`
	AssignedTo     string  `json:"assigned_to" binding:"required"`
	Priority       *string  `json:"priority,omitempty"` // default medium
	DueDate        *string  `json:"due_date,omitempty"` // YYYY-MM-DD
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
}

// UpdateTaskRequest replaces description/due_date/hours wholesale: an omitted
// field clears the stored value. Priority is the exception — omitted keeps
// the current one.
type UpdateTaskRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    *string  `json:"description,omitempty"`
	Priority       *string  `json:"priority,omitempty"`
	DueDate        *string  `json:"due_date,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AddCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type TaskResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	AssignedTo     string     `json:"assigned_to"`
	AssignedBy     string     `json:"assigned_by"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	DueDate        *string    `json:"due_date,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	StaffID   string    `json:"staff_id"`
	Comment   string    `json:"comment"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskDetailResponse struct {
	TaskResponse
	Comments []CommentResponse `json:"comments"`
}

type ListQuery struct {
	AssignedTo string
	Status     *string
	Limit      int
	Offset     int
}
