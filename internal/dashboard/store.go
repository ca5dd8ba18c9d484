package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"staffhub-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(tx db.DBTX) *Store { return &Store{db: tx} }

// StaffSummary invokes the store-side aggregate procedure. The summary
// columns are owned by the database; this side only scans one row. The day
// window travels in from the caller so "today" means the workday timezone,
// not the DB session timezone.
func (s *Store) StaffSummary(ctx context.Context, staffID, date string, dayStart, dayEnd time.Time) (StaffSummary, error) {
	var out StaffSummary
	err := s.db.QueryRowContext(ctx, `CALL get_staff_dashboard_summary(?, ?, ?, ?)`,
		staffID, date, dayStart.UTC(), dayEnd.UTC()).Scan(
		&out.PendingTasks,
		&out.InProgressTasks,
		&out.CompletedTasksToday,
		&out.TotalHoursToday,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return StaffSummary{}, nil
	}
	return out, err
}

func (s *Store) ManagerSummary(ctx context.Context, date string) (ManagerSummary, error) {
	var out ManagerSummary
	err := s.db.QueryRowContext(ctx, `CALL get_manager_dashboard_summary(?)`, date).Scan(
		&out.TotalStaff,
		&out.PresentToday,
		&out.PendingTasks,
		&out.OverdueTasks,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ManagerSummary{}, nil
	}
	return out, err
}

func (s *Store) TodayAttendance(ctx context.Context, staffID, date string) (*TodayAttendance, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT status, check_in_time, check_out_time, total_hours
	FROM attendance
	WHERE staff_id = ? AND date = ?
	LIMIT 1`, staffID, date)

	var (
		out     TodayAttendance
		in, chk sql.NullTime
		hours   sql.NullFloat64
	)
	err := row.Scan(&out.Status, &in, &chk, &hours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if in.Valid {
		t := in.Time.UTC()
		out.CheckInTime = &t
	}
	if chk.Valid {
		t := chk.Time.UTC()
		out.CheckOutTime = &t
	}
	if hours.Valid {
		v := hours.Float64
		out.TotalHours = &v
	}
	return &out, nil
}

func (s *Store) ActiveSession(ctx context.Context, staffID string) (*ActiveSession, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT s.id, s.task_id, t.title, s.description, s.session_start
	FROM time_sessions s
	LEFT JOIN tasks t ON t.id = s.task_id
	WHERE s.staff_id = ? AND s.is_active = 1
	LIMIT 1`, staffID)

	var (
		out          ActiveSession
		taskID       sql.NullString
		title, descr sql.NullString
	)
	err := row.Scan(&out.ID, &taskID, &title, &descr, &out.SessionStart)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out.SessionStart = out.SessionStart.UTC()
	if taskID.Valid {
		v := taskID.String
		out.TaskID = &v
	}
	if title.Valid {
		v := title.String
		out.TaskTitle = &v
	}
	if descr.Valid {
		v := descr.String
		out.Description = &v
	}
	return &out, nil
}

// TodayMinutes sums closed-session durations started inside the day window.
// session_start is UTC; the bounds already are.
func (s *Store) TodayMinutes(ctx context.Context, staffID string, dayStart, dayEnd time.Time) (int, error) {
	var minutes sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
	SELECT SUM(duration)
	FROM time_sessions
	WHERE staff_id = ? AND is_active = 0
	AND session_start >= ? AND session_start < ?`,
		staffID, dayStart.UTC(), dayEnd.UTC(),
	).Scan(&minutes)
	if err != nil {
		return 0, err
	}
	return int(minutes.Int64), nil
}

func (s *Store) AvailableTasks(ctx context.Context, staffID string) ([]TaskPick, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, title, status
	FROM tasks
	WHERE assigned_to = ? AND status IN ('pending', 'in_progress')
	ORDER BY created_at DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaskPick
	for rows.Next() {
		var t TaskPick
		if err := rows.Scan(&t.ID, &t.Title, &t.Status); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ActiveSessionCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM time_sessions WHERE is_active = 1`).Scan(&n)
	return n, err
}

func (s *Store) CompletedTodayCount(ctx context.Context, dayStart, dayEnd time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM tasks
	WHERE status = 'completed'
	AND completed_at >= ? AND completed_at < ?`,
		dayStart.UTC(), dayEnd.UTC(),
	).Scan(&n)
	return n, err
}

// Team builds the per-staff rollup for the manager view in one pass.
func (s *Store) Team(ctx context.Context, date string) ([]TeamMember, error) {
	const q = `
	SELECT p.id, p.employee_id, p.first_name, p.last_name,
	       COALESCE(a.status, 'absent'),
	       COALESCE(SUM(CASE WHEN t.status = 'pending' THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN t.status = 'in_progress' THEN 1 ELSE 0 END), 0)
	FROM staff_profiles p
	LEFT JOIN attendance a ON a.staff_id = p.id AND a.date = ?
	LEFT JOIN tasks t ON t.assigned_to = p.id
	WHERE p.is_active = 1
	GROUP BY p.id, p.employee_id, p.first_name, p.last_name, a.status
	ORDER BY p.first_name ASC, p.last_name ASC`

	rows, err := s.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamMember
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.StaffID, &m.EmployeeID, &m.FirstName, &m.LastName,
			&m.TodayStatus, &m.PendingTasks, &m.InProgressTasks); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
