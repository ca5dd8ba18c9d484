package staff

import (
	"database/sql"
	"time"
)

// DB row (scan target).
type profileRow struct {
	ID         string
	EmployeeID string
	FirstName  string
	LastName   string
	Email      string
	Department sql.NullString
	Position   sql.NullString
	Role       string
	HireDate   sql.NullString // DATE NULL → "YYYY-MM-DD"
	IsActive   bool
	CreatedAt  time.Time
}

// Profile is one record per employee. Deactivation is soft; rows are never
// deleted. Role changes happen by direct table edit, not through the API.
type Profile struct {
	ID         string
	EmployeeID string
	FirstName  string
	LastName   string
	Email      string
	Department *string
	Position   *string
	Role       string
	HireDate   string
	IsActive   bool
	CreatedAt  time.Time
}

func (r profileRow) toModel() Profile {
	p := Profile{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Role:       r.Role,
		HireDate:   r.HireDate.String, // empty when the table edit left it NULL
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if r.Department.Valid {
		v := r.Department.String
		p.Department = &v
	}
	if r.Position.Valid {
		v := r.Position.String
		p.Position = &v
	}
	return p
}

func (p Profile) toDTO() ProfileResponse {
	return ProfileResponse{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Department: p.Department,
		Position:   p.Position,
		Role:       p.Role,
		HireDate:   p.HireDate,
		IsActive:   p.IsActive,
	}
}
