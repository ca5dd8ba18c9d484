package staff

import (
	"database/sql"
	"testing"
	"time"
)

// hire_date is DATE NULL; rows edited directly in the table may carry NULL
// and still have to load.
func TestProfileRowNullHireDate(t *testing.T) {
	var hd sql.NullString
	if err := hd.Scan(nil); err != nil {
		t.Fatalf("scan NULL hire_date: %v", err)
	}

	r := profileRow{
		ID: "p1", EmployeeID: "EMP001", FirstName: "A", LastName: "B",
		Email: "a@example.com", Role: "staff", HireDate: hd, IsActive: true,
		CreatedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}
	m := r.toModel()
	if m.HireDate != "" {
		t.Errorf("hire_date = %q, want empty", m.HireDate)
	}
}

func TestProfileRowHireDate(t *testing.T) {
	var hd sql.NullString
	if err := hd.Scan([]byte("2024-01-01")); err != nil {
		t.Fatalf("scan hire_date: %v", err)
	}

	r := profileRow{
		ID: "p1", EmployeeID: "EMP001", FirstName: "A", LastName: "B",
		Email: "a@example.com", Role: "staff", HireDate: hd, IsActive: true,
		CreatedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}
	if got := r.toModel().HireDate; got != "2024-01-01" {
		t.Errorf("hire_date = %q, want 2024-01-01", got)
	}
}
