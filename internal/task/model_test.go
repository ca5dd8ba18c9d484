package task

import (
	"database/sql"
	"testing"
	"time"
)

// The hours columns are DECIMAL(6,2); the MySQL driver hands them to Scan as
// text bytes. The row type has to accept that and keep the fraction.
func TestTaskRowDecimalHours(t *testing.T) {
	var est, act sql.NullFloat64
	if err := est.Scan([]byte("8.50")); err != nil {
		t.Fatalf("scan estimated_hours: %v", err)
	}
	if err := act.Scan([]byte("2.00")); err != nil {
		t.Fatalf("scan actual_hours: %v", err)
	}

	r := taskRow{
		ID: "t1", Title: "x", AssignedTo: "staff-1", AssignedBy: "mgr-1",
		Priority: PriorityMedium, Status: StatusPending,
		EstimatedHours: est, ActualHours: act,
		CreatedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}
	m := r.toModel()
	if m.EstimatedHours == nil || *m.EstimatedHours != 8.5 {
		t.Errorf("estimated_hours = %v, want 8.5", m.EstimatedHours)
	}
	if m.ActualHours == nil || *m.ActualHours != 2.0 {
		t.Errorf("actual_hours = %v, want 2.0", m.ActualHours)
	}
}

func TestTaskRowNullHours(t *testing.T) {
	r := taskRow{
		ID: "t1", Title: "x", AssignedTo: "staff-1", AssignedBy: "mgr-1",
		Priority: PriorityMedium, Status: StatusPending,
		CreatedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}
	m := r.toModel()
	if m.EstimatedHours != nil || m.ActualHours != nil {
		t.Errorf("hours = %v/%v, want nil/nil", m.EstimatedHours, m.ActualHours)
	}
}
