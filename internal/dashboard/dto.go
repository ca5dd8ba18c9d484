package dashboard

import "time"

const (
	DateLayout = "2006-01-02"
)

// StaffSummary mirrors the get_staff_dashboard_summary procedure row.
type StaffSummary struct {
	PendingTasks        int     `json:"pending_tasks"`
	InProgressTasks     int     `json:"in_progress_tasks"`
	CompletedTasksToday int     `json:"completed_tasks_today"`
	TotalHoursToday     float64 `json:"total_hours_today"`
}

// ManagerSummary mirrors the get_manager_dashboard_summary procedure row.
type ManagerSummary struct {
	TotalStaff   int `json:"total_staff"`
	PresentToday int `json:"present_today"`
	PendingTasks int `json:"pending_tasks"`
	OverdueTasks int `json:"overdue_tasks"`
}

type TodayAttendance struct {
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	TotalHours   *float64   `json:"total_hours,omitempty"`
}

type ActiveSession struct {
	ID           string    `json:"id"`
	TaskID       *string   `json:"task_id,omitempty"`
	TaskTitle    *string   `json:"task_title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	SessionStart time.Time `json:"session_start"`
}

type TaskPick struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// StaffDashboard is everything the personal dashboard page loads at once.
type StaffDashboard struct {
	Summary         StaffSummary     `json:"summary"`
	TodayAttendance *TodayAttendance `json:"today_attendance,omitempty"`
	ActiveSession   *ActiveSession   `json:"active_session,omitempty"`
	TodayMinutes    int              `json:"today_minutes"`
	AvailableTasks  []TaskPick       `json:"available_tasks"`
}

type TeamMember struct {
	StaffID         string `json:"staff_id"`
	EmployeeID      string `json:"employee_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	TodayStatus     string `json:"today_status"` // absent when no record
	PendingTasks    int    `json:"pending_tasks"`
	InProgressTasks int    `json:"in_progress_tasks"`
}

// ManagerDashboard is the team-wide view.
type ManagerDashboard struct {
	Summary        ManagerSummary `json:"summary"`
	ActiveSessions int            `json:"active_sessions"`
	CompletedToday int            `json:"completed_today"`
	Team           []TeamMember   `json:"team"`
}
