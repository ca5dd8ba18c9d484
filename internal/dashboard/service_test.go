package dashboard

import (
	"testing"
	"time"
)

func TestDayWindow(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("UTC", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
		date, start, end := dayWindow(now, time.UTC)
		if date != "2025-06-02" {
			t.Errorf("date = %s, want 2025-06-02", date)
		}
		if want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
			t.Errorf("start = %v, want %v", start, want)
		}
		if want := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
			t.Errorf("end = %v, want %v", end, want)
		}
	})

	t.Run("local day shifts the UTC bounds", func(t *testing.T) {
		// 00:30 JST on June 2 is still June 1 in UTC; the window must carry
		// the local date with UTC instants starting 15:00 the evening before.
		now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
		date, start, end := dayWindow(now, tokyo)
		if date != "2025-06-02" {
			t.Errorf("date = %s, want 2025-06-02", date)
		}
		if want := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC); !start.Equal(want) {
			t.Errorf("start = %v, want %v", start, want)
		}
		if want := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC); !end.Equal(want) {
			t.Errorf("end = %v, want %v", end, want)
		}
	})

	t.Run("end minus start is one day", func(t *testing.T) {
		_, start, end := dayWindow(time.Now(), tokyo)
		if d := end.Sub(start); d != 24*time.Hour {
			t.Errorf("window = %v, want 24h", d)
		}
	})
}
