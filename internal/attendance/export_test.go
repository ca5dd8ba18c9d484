package attendance

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"
)

func TestExportValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeStore(), time.Now())

	cases := []struct {
		name     string
		from, to string
	}{
		{"bad from", "2025/06/01", "2025-06-30"},
		{"bad to", "2025-06-01", "June 30"},
		{"to before from", "2025-06-30", "2025-06-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Export(ctx, tc.from, tc.to)
			var api *APIError
			if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
				t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	in := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, 6, 2, 17, 30, 0, 0, time.UTC)
	hours := 8.0
	notes := "left early, approved"

	rows := []ExportRow{
		{
			Date: "2025-06-02", EmployeeID: "EMP001", FirstName: "Hanako", LastName: "Yamada",
			Status: StatusPresent, CheckInTime: &in, CheckOutTime: &out,
			BreakDuration: 30, TotalHours: &hours, Notes: &notes,
		},
		{
			Date: "2025-06-02", EmployeeID: "EMP002", FirstName: "Taro", LastName: "Suzuki",
			Status: StatusAbsent,
		},
	}

	var buf bytes.Buffer
	if err := writeCSV(&buf, rows, time.UTC); err != nil {
		t.Fatalf("writeCSV: %v", err)
	}

	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(recs))
	}
	if recs[0][0] != "date" || recs[0][9] != "notes" {
		t.Errorf("header = %v", recs[0])
	}

	got := recs[1]
	want := []string{"2025-06-02", "EMP001", "Hanako", "Yamada", StatusPresent,
		"09:00", "17:30", "30", "8.00", notes}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("col %d = %q, want %q", i, got[i], want[i])
		}
	}

	// Absent row leaves the time and hour columns empty.
	if recs[2][5] != "" || recs[2][6] != "" || recs[2][8] != "" {
		t.Errorf("absent row = %v, want empty clock/hour columns", recs[2])
	}
}
