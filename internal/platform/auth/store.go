package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"staffhub-backend/internal/platform/db"
)

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	IsDisabled   bool
	CreatedAt    time.Time

	// Joined from staff_profiles.
	Role      string
	FirstName string
	LastName  string
}

// NewProfile carries the staff_profiles columns written at registration.
// The profile row shares its primary key with the account row.
type NewProfile struct {
	EmployeeID string
	FirstName  string
	LastName   string
	Email      string
	Department *string
	Position   *string
	Role       string
	HireDate   string // YYYY-MM-DD
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	CreateWithProfile(ctx context.Context, a *Account, p *NewProfile) error
	List(ctx context.Context) ([]Account, error)
}

type Store struct{ db *sql.DB }

func NewStore(sqldb *sql.DB) AccountStore {
	return &Store{db: sqldb}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT a.id, a.email, a.password_hash, a.is_disabled, a.created_at,
       p.role, p.first_name, p.last_name
FROM auth_accounts a
JOIN staff_profiles p ON p.id = a.id
WHERE a.email = ?
LIMIT 1
`
	var a Account
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, email).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&isDisabledInt,
		&a.CreatedAt,
		&a.Role,
		&a.FirstName,
		&a.LastName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.IsDisabled = isDisabledInt != 0
	return &a, nil
}

// CreateWithProfile inserts the account and its staff profile in one
// transaction so a duplicate employee_id never leaves an orphan account.
func (s *Store) CreateWithProfile(ctx context.Context, a *Account, p *NewProfile) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const insAccount = `
INSERT INTO auth_accounts (id, email, password_hash, is_disabled, created_at)
VALUES (?, ?, ?, 0, NOW(6))
`
		if _, err := tx.ExecContext(ctx, insAccount, a.ID, a.Email, a.PasswordHash); err != nil {
			return translateDuplicate(err, ErrEmailTaken)
		}

		const insProfile = `
INSERT INTO staff_profiles
  (id, employee_id, first_name, last_name, email, department, position, role, hire_date, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, NOW(6))
`
		_, err := tx.ExecContext(ctx, insProfile,
			a.ID, p.EmployeeID, p.FirstName, p.LastName, p.Email,
			strOrNil(p.Department), strOrNil(p.Position), p.Role, p.HireDate)
		return translateDuplicate(err, ErrEmployeeIDTaken)
	})
}

func (s *Store) List(ctx context.Context) ([]Account, error) {
	const q = `
SELECT a.id, a.email, a.is_disabled, a.created_at, p.role, p.first_name, p.last_name
FROM auth_accounts a
JOIN staff_profiles p ON p.id = a.id
ORDER BY a.created_at ASC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		var isDisabledInt int
		if err := rows.Scan(&a.ID, &a.Email, &isDisabledInt, &a.CreatedAt, &a.Role, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		a.IsDisabled = isDisabledInt != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

// translateDuplicate maps a MySQL duplicate-key violation (1062) onto the
// given domain sentinel so the uniqueness check happens in the store, not
// with a racy pre-read.
func translateDuplicate(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return sentinel
	}
	return err
}

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
