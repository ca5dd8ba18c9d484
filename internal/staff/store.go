package staff

import (
	"context"
	"database/sql"
	"errors"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	ListActive(ctx context.Context) ([]Profile, error)
	UpdateDetails(ctx context.Context, id string, department, position *string) (int64, error)
	Deactivate(ctx context.Context, id string) (int64, error)
}

type Store struct{ db DBTX }

func NewStore(db DBTX) ProfileStore { return &Store{db: db} }

const selectCols = `
	id, employee_id, first_name, last_name, email, department, position,
	role, DATE_FORMAT(hire_date, '%Y-%m-%d') AS hire_date, is_active, created_at`

func (s *Store) GetByID(ctx context.Context, id string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT`+selectCols+`
	FROM staff_profiles
	WHERE id = ?
	LIMIT 1`, id)

	var r profileRow
	err := row.Scan(&r.ID, &r.EmployeeID, &r.FirstName, &r.LastName, &r.Email,
		&r.Department, &r.Position, &r.Role, &r.HireDate, &r.IsActive, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := r.toModel()
	return &p, nil
}

func (s *Store) ListActive(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT`+selectCols+`
	FROM staff_profiles
	WHERE is_active = 1
	ORDER BY first_name ASC, last_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var r profileRow
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.FirstName, &r.LastName, &r.Email,
			&r.Department, &r.Position, &r.Role, &r.HireDate, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

func (s *Store) UpdateDetails(ctx context.Context, id string, department, position *string) (int64, error) {
	const q = `
	UPDATE staff_profiles SET department = ?, position = ?
	WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, strOrNil(department), strOrNil(position), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Deactivate(ctx context.Context, id string) (int64, error) {
	const q = `
	UPDATE staff_profiles SET is_active = 0
	WHERE id = ? AND is_active = 1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
