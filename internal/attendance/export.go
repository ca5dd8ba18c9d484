package attendance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Export streams a CSV of the date range.
// GET /attendance/export?from=YYYY-MM-DD&to=YYYY-MM-DD&encoding=utf8|sjis
// sjis re-encodes to CP932 so Excel opens the file without mojibake.
func (h *Handler) Export(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	enc := c.DefaultQuery("encoding", "utf8")
	if enc != "utf8" && enc != "sjis" {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "encoding must be utf8 or sjis"))
		return
	}

	rows, err := h.svc.Export(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	charset := "utf-8"
	var w io.Writer = c.Writer
	if enc == "sjis" {
		charset = "Shift_JIS"
		w = transform.NewWriter(c.Writer, japanese.ShiftJIS.NewEncoder())
	}
	c.Header("Content-Type", "text/csv; charset="+charset)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance_%s_%s.csv"`, from, to))
	c.Status(http.StatusOK)

	if err := writeCSV(w, rows, h.svc.workday.loc()); err != nil {
		// Headers are out; nothing left to do but log via gin's recovery path.
		_ = c.Error(err)
	}
}

// Export validates the range and loads the joined rows.
func (s *Service) Export(ctx context.Context, from, to string) ([]ExportRow, error) {
	fromT, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	toT, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if toT.Before(fromT) {
		return nil, ErrInvalid("to must be >= from")
	}
	return s.store.ExportRows(ctx, from, to)
}

func writeCSV(w io.Writer, rows []ExportRow, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"date", "employee_id", "first_name", "last_name", "status",
		"check_in", "check_out", "break_minutes", "total_hours", "notes",
	}); err != nil {
		return err
	}

	for _, r := range rows {
		rec := []string{
			r.Date,
			r.EmployeeID,
			r.FirstName,
			r.LastName,
			r.Status,
			clockOrEmpty(r.CheckInTime, loc),
			clockOrEmpty(r.CheckOutTime, loc),
			strconv.Itoa(r.BreakDuration),
			hoursOrEmpty(r.TotalHours),
			strOrEmpty(r.Notes),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func clockOrEmpty(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(ClockLayout)
}

func hoursOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
