package task

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

type TaskStore interface {
	Insert(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error
	InsertComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, taskID string) ([]Comment, error)
	List(ctx context.Context, q ListQuery) ([]Task, int64, error)
	AssigneeActive(ctx context.Context, staffID string) (bool, error)
}

type Store struct{ db DBTX }

func NewStore(db DBTX) TaskStore { return &Store{db: db} }

const selectCols = `
	id, title, description, assigned_to, assigned_by, priority, status,
	DATE_FORMAT(due_date, '%Y-%m-%d') AS due_date,
	estimated_hours, actual_hours, completed_at, created_at`

func (s *Store) Insert(ctx context.Context, t *Task) error {
	const q = `
	INSERT INTO tasks
	  (id, title, description, assigned_to, assigned_by, priority, status, due_date, estimated_hours, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q,
		t.ID, t.Title, strOrNil(t.Description), t.AssignedTo, t.AssignedBy,
		t.Priority, t.Status, strOrNil(t.DueDate), floatOrNil(t.EstimatedHours))
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT`+selectCols+`
	FROM tasks
	WHERE id = ?
	LIMIT 1`, id)

	var r taskRow
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.AssignedTo, &r.AssignedBy,
		&r.Priority, &r.Status, &r.DueDate, &r.EstimatedHours, &r.ActualHours,
		&r.CompletedAt, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := r.toModel()
	return &t, nil
}

func (s *Store) Update(ctx context.Context, t *Task) error {
	const q = `
	UPDATE tasks
	SET title = ?, description = ?, priority = ?, due_date = ?, estimated_hours = ?, actual_hours = ?
	WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q,
		t.Title, strOrNil(t.Description), t.Priority, strOrNil(t.DueDate),
		floatOrNil(t.EstimatedHours), floatOrNil(t.ActualHours), t.ID)
	return err
}

func (s *Store) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	const q = `
	UPDATE tasks SET status = ?, completed_at = ?
	WHERE id = ?`
	var at any
	if completedAt != nil {
		at = completedAt.UTC()
	}
	_, err := s.db.ExecContext(ctx, q, status, at, id)
	return err
}

func (s *Store) InsertComment(ctx context.Context, c *Comment) error {
	const q = `
	INSERT INTO task_comments (id, task_id, staff_id, comment, created_at)
	VALUES (?, ?, ?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.TaskID, c.StaffID, c.Comment)
	return err
}

func (s *Store) ListComments(ctx context.Context, taskID string) ([]Comment, error) {
	const q = `
	SELECT c.id, c.task_id, c.staff_id, c.comment, c.created_at, p.first_name, p.last_name
	FROM task_comments c
	JOIN staff_profiles p ON p.id = c.staff_id
	WHERE c.task_id = ?
	ORDER BY c.created_at ASC, c.id ASC`

	rows, err := s.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.StaffID, &c.Comment, &c.CreatedAt, &c.FirstName, &c.LastName); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]Task, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT` + selectCols + `
	FROM tasks
	`)
	wheres = append(wheres, "assigned_to = ?")
	args = append(args, q.AssignedTo)
	if q.Status != nil && *q.Status != "" {
		wheres = append(wheres, "status = ?")
		args = append(args, *q.Status)
	}
	buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	buf.WriteString(" ORDER BY created_at DESC, id DESC")

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

	var out []Task
	for rows.Next() {
		var r taskRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.AssignedTo, &r.AssignedBy,
			&r.Priority, &r.Status, &r.DueDate, &r.EstimatedHours, &r.ActualHours,
			&r.CompletedAt, &r.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM tasks WHERE " + strings.Join(wheres, " AND "))
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) AssigneeActive(ctx context.Context, staffID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM staff_profiles
	WHERE id = ? AND is_active = 1 LIMIT 1`, staffID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ===== helpers =====

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
