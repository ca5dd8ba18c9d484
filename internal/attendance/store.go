package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

// ErrDuplicateDay is returned when the UNIQUE (staff_id, date) key rejects a
// second check-in. Letting the key decide removes the check-then-act window.
var ErrDuplicateDay = errors.New("attendance record already exists for that day")

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type AttendanceStore interface {
	Insert(ctx context.Context, a *Attendance) error
	GetByStaffDate(ctx context.Context, staffID, date string) (*Attendance, error)
	SetCheckOut(ctx context.Context, id string, out time.Time, totalHours float64, notes *string) error
	SetBreak(ctx context.Context, id string, minutes int, totalHours *float64) error
	Upsert(ctx context.Context, a *Attendance) (bool, error)
	List(ctx context.Context, q ListQuery) ([]Attendance, int64, error)
	ExportRows(ctx context.Context, from, to string) ([]ExportRow, error)
}

type Store struct{ db DBTX }

func NewStore(db DBTX) AttendanceStore { return &Store{db: db} }

const selectCols = `
	id, staff_id, DATE_FORMAT(date, '%Y-%m-%d') AS date,
	check_in_time, check_out_time, status, break_duration, total_hours, notes`

func (s *Store) Insert(ctx context.Context, a *Attendance) error {
	const q = `
	INSERT INTO attendance (id, staff_id, date, check_in_time, status, break_duration, notes)
	VALUES (?, ?, ?, ?, ?, 0, ?)`

	_, err := s.db.ExecContext(ctx, q, a.ID, a.StaffID, a.Date, timeOrNil(a.CheckInTime), a.Status, noteOrNil(a.Notes))
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrDuplicateDay
	}
	return err
}

func (s *Store) GetByStaffDate(ctx context.Context, staffID, date string) (*Attendance, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT`+selectCols+`
	FROM attendance
	WHERE staff_id = ? AND date = ?
	LIMIT 1`, staffID, date)

	var r attendanceRow
	err := row.Scan(&r.ID, &r.StaffID, &r.Date, &r.CheckInTime, &r.CheckOutTime,
		&r.Status, &r.BreakDuration, &r.TotalHours, &r.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a := r.toModel()
	return &a, nil
}

func (s *Store) SetCheckOut(ctx context.Context, id string, out time.Time, totalHours float64, notes *string) error {
	if notes != nil {
		const q = `
	UPDATE attendance SET check_out_time = ?, total_hours = ?, notes = ?
	WHERE id = ?`
		_, err := s.db.ExecContext(ctx, q, out.UTC(), totalHours, *notes, id)
		return err
	}
	const q = `
	UPDATE attendance SET check_out_time = ?, total_hours = ?
	WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, out.UTC(), totalHours, id)
	return err
}

func (s *Store) SetBreak(ctx context.Context, id string, minutes int, totalHours *float64) error {
	const q = `
	UPDATE attendance SET break_duration = ?, total_hours = ?
	WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, minutes, floatOrNil(totalHours), id)
	return err
}

// Upsert: INSERT or UPDATE on the (staff_id, date) UNIQUE key.
// Returns created=true on a new row (RowsAffected 1; an update reports 2).
func (s *Store) Upsert(ctx context.Context, a *Attendance) (bool, error) {
	const q = `
	INSERT INTO attendance (id, staff_id, date, check_in_time, check_out_time, status, break_duration, total_hours, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
	check_in_time  = VALUES(check_in_time),
	check_out_time = VALUES(check_out_time),
	status         = VALUES(status),
	break_duration = VALUES(break_duration),
	total_hours    = VALUES(total_hours),
	notes          = VALUES(notes)`

	res, err := s.db.ExecContext(ctx, q,
		a.ID, a.StaffID, a.Date,
		timeOrNil(a.CheckInTime), timeOrNil(a.CheckOutTime),
		a.Status, a.BreakDuration, floatOrNil(a.TotalHours), noteOrNil(a.Notes))
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]Attendance, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT` + selectCols + `
	FROM attendance
	`)
	wheres = append(wheres, "staff_id = ?")
	args = append(args, q.StaffID)
	if q.From != nil && *q.From != "" {
		wheres = append(wheres, "date >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil && *q.To != "" {
		wheres = append(wheres, "date <= ?")
		args = append(args, *q.To)
	}
	buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))

	switch q.Sort {
	case SortDateAsc:
		buf.WriteString(" ORDER BY date ASC, id ASC")
	default:
		buf.WriteString(" ORDER BY date DESC, id DESC")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset))

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Attendance
	for rows.Next() {
		var r attendanceRow
		if err := rows.Scan(&r.ID, &r.StaffID, &r.Date, &r.CheckInTime, &r.CheckOutTime,
			&r.Status, &r.BreakDuration, &r.TotalHours, &r.Notes); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// COUNT reuses the WHERE built above.
	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM attendance WHERE " + strings.Join(wheres, " AND "))
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) ExportRows(ctx context.Context, from, to string) ([]ExportRow, error) {
	const q = `
	SELECT DATE_FORMAT(a.date, '%Y-%m-%d'), p.employee_id, p.first_name, p.last_name,
	       a.status, a.check_in_time, a.check_out_time, a.break_duration, a.total_hours, a.notes
	FROM attendance a
	JOIN staff_profiles p ON p.id = a.staff_id
	WHERE a.date BETWEEN ? AND ?
	ORDER BY a.date ASC, p.employee_id ASC`

	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var (
			r        ExportRow
			in, outT sql.NullTime
			hours    sql.NullFloat64
			notes    sql.NullString
		)
		if err := rows.Scan(&r.Date, &r.EmployeeID, &r.FirstName, &r.LastName,
			&r.Status, &in, &outT, &r.BreakDuration, &hours, &notes); err != nil {
			return nil, err
		}
		if in.Valid {
			t := in.Time.UTC()
			r.CheckInTime = &t
		}
		if outT.Valid {
			t := outT.Time.UTC()
			r.CheckOutTime = &t
		}
		if hours.Valid {
			v := hours.Float64
			r.TotalHours = &v
		}
		if notes.Valid {
			v := notes.String
			r.Notes = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ===== helpers =====

func noteOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
