package timesession

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type SessionStore interface {
	StartIfNone(ctx context.Context, s *TimeSession) (bool, error)
	GetActive(ctx context.Context, staffID string) (*TimeSession, error)
	Stop(ctx context.Context, id string, end time.Time, duration int, description *string) error
	UpdateActiveTask(ctx context.Context, staffID string, taskID *string) (int64, error)
	UpdateActiveDescription(ctx context.Context, staffID, description string) (int64, error)
	InsertClosed(ctx context.Context, s *TimeSession) error
	List(ctx context.Context, q ListQuery) ([]TimeSession, int64, error)
}

type Store struct{ db DBTX }

func NewStore(db DBTX) SessionStore { return &Store{db: db} }

// StartIfNone inserts the new active row only when the caller has no other
// active row, in a single statement. Returns created=false when an active
// session already exists; there is no check-then-act window.
func (s *Store) StartIfNone(ctx context.Context, sess *TimeSession) (bool, error) {
	const q = `
	INSERT INTO time_sessions (id, staff_id, task_id, description, session_start, is_active)
	SELECT ?, ?, ?, ?, ?, 1
	FROM DUAL
	WHERE NOT EXISTS (
		SELECT 1 FROM time_sessions WHERE staff_id = ? AND is_active = 1
	)`

	res, err := s.db.ExecContext(ctx, q,
		sess.ID, sess.StaffID, strOrNil(sess.TaskID), strOrNil(sess.Description),
		sess.SessionStart.UTC(), sess.StaffID)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff == 1, nil
}

const selectCols = `
	s.id, s.staff_id, s.task_id, t.title, s.description,
	s.session_start, s.session_end, s.duration, s.is_active`

func (s *Store) GetActive(ctx context.Context, staffID string) (*TimeSession, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT`+selectCols+`
	FROM time_sessions s
	LEFT JOIN tasks t ON t.id = s.task_id
	WHERE s.staff_id = ? AND s.is_active = 1
	LIMIT 1`, staffID)

	var r sessionRow
	err := row.Scan(&r.ID, &r.StaffID, &r.TaskID, &r.TaskTitle, &r.Description,
		&r.SessionStart, &r.SessionEnd, &r.Duration, &r.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func (s *Store) Stop(ctx context.Context, id string, end time.Time, duration int, description *string) error {
	if description != nil {
		const q = `
	UPDATE time_sessions
	SET session_end = ?, duration = ?, is_active = 0, description = ?
	WHERE id = ?`
		_, err := s.db.ExecContext(ctx, q, end.UTC(), duration, *description, id)
		return err
	}
	const q = `
	UPDATE time_sessions
	SET session_end = ?, duration = ?, is_active = 0
	WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, end.UTC(), duration, id)
	return err
}

func (s *Store) UpdateActiveTask(ctx context.Context, staffID string, taskID *string) (int64, error) {
	const q = `
	UPDATE time_sessions SET task_id = ?
	WHERE staff_id = ? AND is_active = 1`
	res, err := s.db.ExecContext(ctx, q, strOrNil(taskID), staffID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateActiveDescription(ctx context.Context, staffID, description string) (int64, error) {
	const q = `
	UPDATE time_sessions SET description = ?
	WHERE staff_id = ? AND is_active = 1`
	res, err := s.db.ExecContext(ctx, q, description, staffID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) InsertClosed(ctx context.Context, sess *TimeSession) error {
	const q = `
	INSERT INTO time_sessions (id, staff_id, task_id, description, session_start, session_end, duration, is_active)
	VALUES (?, ?, ?, ?, ?, ?, ?, 0)`
	_, err := s.db.ExecContext(ctx, q,
		sess.ID, sess.StaffID, strOrNil(sess.TaskID), strOrNil(sess.Description),
		sess.SessionStart.UTC(), sess.SessionEnd.UTC(), *sess.Duration)
	return err
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]TimeSession, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT` + selectCols + `
	FROM time_sessions s
	LEFT JOIN tasks t ON t.id = s.task_id
	`)
	wheres = append(wheres, "s.staff_id = ?")
	args = append(args, q.StaffID)
	if q.FromBound != nil {
		wheres = append(wheres, "s.session_start >= ?")
		args = append(args, q.FromBound.UTC())
	}
	if q.ToBound != nil {
		wheres = append(wheres, "s.session_start < ?")
		args = append(args, q.ToBound.UTC())
	}
	buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	buf.WriteString(" ORDER BY s.session_start DESC, s.id DESC")

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

	var out []TimeSession
	for rows.Next() {
		var r sessionRow
		if err := rows.Scan(&r.ID, &r.StaffID, &r.TaskID, &r.TaskTitle, &r.Description,
			&r.SessionStart, &r.SessionEnd, &r.Duration, &r.IsActive); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM time_sessions s WHERE " + strings.Join(wheres, " AND "))
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
