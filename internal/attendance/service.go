package attendance

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== Error model (timesession/task と同型) =====
type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInternal         Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string       { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError  { return &APIError{Code: CodeConflict, Message: msg} }
func ErrForbidden(msg string) *APIError { return &APIError{Code: CodePermissionDenied, Message: msg} }
func ErrInternal(msg string) *APIError  { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		case CodePermissionDenied:
			return 403
		default:
			return 500
		}
	}
	return 500
}

// ===== Clock / IDGen =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Workday fixes the daily present/late cutoff and the timezone the calendar
// day is evaluated in.
type Workday struct {
	Start string // "HH:MM"
	Loc   *time.Location
}

func (w Workday) loc() *time.Location {
	if w.Loc == nil {
		return time.UTC
	}
	return w.Loc
}

// cutoffFor returns the cutoff instant on the given local day.
func (w Workday) cutoffFor(day time.Time) time.Time {
	start := w.Start
	if start == "" {
		start = "09:00"
	}
	t, err := time.ParseInLocation(ClockLayout, start, w.loc())
	if err != nil {
		t, _ = time.ParseInLocation(ClockLayout, "09:00", w.loc())
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, w.loc())
}

// ===== Service =====

type Service struct {
	store   AttendanceStore
	workday Workday
	clock   Clock
	id      IDGen
}

func NewService(db DBTX, wd Workday) *Service {
	return &Service{
		store:   NewStore(db),
		workday: wd,
		clock:   realClock{},
		id:      ulidGen{},
	}
}

// POST /attendance/check-in
// The UNIQUE (staff_id, date) key is the only uniqueness guard; a concurrent
// double check-in loses at the INSERT, not at a pre-read.
func (s *Service) CheckIn(ctx context.Context, staffID string) (AttendanceResponse, error) {
	if staffID == "" {
		return AttendanceResponse{}, ErrInvalid("staff_id is required")
	}

	now := s.clock.Now().In(s.workday.loc())
	day := now.Format(DateLayout)

	status := StatusPresent
	if now.After(s.workday.cutoffFor(now)) {
		status = StatusLate
	}

	id, err := s.id.New()
	if err != nil {
		return AttendanceResponse{}, err
	}

	in := now.UTC()
	rec := &Attendance{
		ID:          id,
		StaffID:     staffID,
		Date:        day,
		CheckInTime: &in,
		Status:      status,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateDay) {
			return AttendanceResponse{}, ErrConflict("you have already checked in today")
		}
		return AttendanceResponse{}, err
	}
	return rec.toDTO(), nil
}

// POST /attendance/check-out
func (s *Service) CheckOut(ctx context.Context, staffID string, notes *string) (AttendanceResponse, error) {
	now := s.clock.Now().In(s.workday.loc())
	day := now.Format(DateLayout)

	rec, err := s.store.GetByStaffDate(ctx, staffID, day)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if rec == nil || rec.CheckInTime == nil {
		return AttendanceResponse{}, ErrNotFound("no check-in record found for today")
	}
	if rec.CheckOutTime != nil {
		return AttendanceResponse{}, ErrConflict("you have already checked out today")
	}

	total := totalHours(*rec.CheckInTime, now, rec.BreakDuration)
	if err := s.store.SetCheckOut(ctx, rec.ID, now, total, notes); err != nil {
		return AttendanceResponse{}, err
	}

	out := now.UTC()
	rec.CheckOutTime = &out
	rec.TotalHours = &total
	if notes != nil {
		rec.Notes = notes
	}
	return rec.toDTO(), nil
}

// PUT /attendance/break
func (s *Service) UpdateBreak(ctx context.Context, staffID string, minutes int) (AttendanceResponse, error) {
	if minutes < 0 || minutes > 1440 {
		return AttendanceResponse{}, ErrInvalid("break_minutes must be between 0 and 1440")
	}

	day := s.clock.Now().In(s.workday.loc()).Format(DateLayout)
	rec, err := s.store.GetByStaffDate(ctx, staffID, day)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if rec == nil {
		return AttendanceResponse{}, ErrNotFound("no attendance record found for today")
	}

	rec.BreakDuration = minutes
	// Break time deducts from total hours, so recompute when already closed.
	var hours *float64
	if rec.CheckInTime != nil && rec.CheckOutTime != nil {
		v := totalHours(*rec.CheckInTime, *rec.CheckOutTime, minutes)
		hours = &v
	}
	if err := s.store.SetBreak(ctx, rec.ID, minutes, hours); err != nil {
		return AttendanceResponse{}, err
	}
	rec.TotalHours = hours
	return rec.toDTO(), nil
}

type MarkInput struct {
	StaffID       string
	Date          string
	Status        string
	CheckInTime   *string // HH:MM, local to the workday timezone
	CheckOutTime  *string
	BreakDuration int
	Notes         *string
}

// Mark is the manager override: upserts an arbitrary (staff, date) record,
// bypassing the check-in/check-out state machine.
func (s *Service) Mark(ctx context.Context, in MarkInput) (AttendanceResponse, bool, error) {
	if in.StaffID == "" || in.Date == "" || in.Status == "" {
		return AttendanceResponse{}, false, ErrInvalid("staff_id, date and status are required")
	}
	if !ValidStatus(in.Status) {
		return AttendanceResponse{}, false, ErrInvalid("status must be present, late, absent or half_day")
	}
	day, err := time.ParseInLocation(DateLayout, in.Date, s.workday.loc())
	if err != nil {
		return AttendanceResponse{}, false, ErrInvalid("date must be YYYY-MM-DD")
	}
	if in.BreakDuration < 0 || in.BreakDuration > 1440 {
		return AttendanceResponse{}, false, ErrInvalid("break_duration must be between 0 and 1440")
	}

	var checkIn, checkOut *time.Time
	if in.CheckInTime != nil && *in.CheckInTime != "" {
		t, err := atClock(day, *in.CheckInTime, s.workday.loc())
		if err != nil {
			return AttendanceResponse{}, false, ErrInvalid("check_in_time must be HH:MM")
		}
		checkIn = &t
	}
	if in.CheckOutTime != nil && *in.CheckOutTime != "" {
		t, err := atClock(day, *in.CheckOutTime, s.workday.loc())
		if err != nil {
			return AttendanceResponse{}, false, ErrInvalid("check_out_time must be HH:MM")
		}
		checkOut = &t
	}
	if checkIn != nil && checkOut != nil && !checkOut.After(*checkIn) {
		return AttendanceResponse{}, false, ErrInvalid("check_out_time must be after check_in_time")
	}

	var hours *float64
	if checkIn != nil && checkOut != nil {
		v := totalHours(*checkIn, *checkOut, in.BreakDuration)
		hours = &v
	}

	id, err := s.id.New()
	if err != nil {
		return AttendanceResponse{}, false, err
	}

	rec := &Attendance{
		ID:            id,
		StaffID:       in.StaffID,
		Date:          in.Date,
		CheckInTime:   checkIn,
		CheckOutTime:  checkOut,
		Status:        in.Status,
		BreakDuration: in.BreakDuration,
		TotalHours:    hours,
		Notes:         in.Notes,
	}
	created, err := s.store.Upsert(ctx, rec)
	if err != nil {
		return AttendanceResponse{}, false, err
	}
	if !created {
		// The pre-generated id was discarded by the upsert; re-read the row.
		cur, err := s.store.GetByStaffDate(ctx, in.StaffID, in.Date)
		if err != nil {
			return AttendanceResponse{}, false, err
		}
		if cur == nil {
			return AttendanceResponse{}, false, ErrInternal("upserted but not found")
		}
		return cur.toDTO(), false, nil
	}
	return rec.toDTO(), true, nil
}

// GET /attendance
func (s *Service) List(ctx context.Context, q ListQuery) ([]AttendanceResponse, int64, error) {
	if q.StaffID == "" {
		return nil, 0, ErrInvalid("staff_id is required")
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	if q.From != nil && *q.From != "" {
		if _, err := time.Parse(DateLayout, *q.From); err != nil {
			return nil, 0, ErrInvalid("from must be YYYY-MM-DD")
		}
	}
	if q.To != nil && *q.To != "" {
		if _, err := time.Parse(DateLayout, *q.To); err != nil {
			return nil, 0, ErrInvalid("to must be YYYY-MM-DD")
		}
	}

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AttendanceResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, total, nil
}

// Today returns today's record for the caller, or nil.
func (s *Service) Today(ctx context.Context, staffID string) (*AttendanceResponse, error) {
	day := s.clock.Now().In(s.workday.loc()).Format(DateLayout)
	rec, err := s.store.GetByStaffDate(ctx, staffID, day)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	dto := rec.toDTO()
	return &dto, nil
}

// ===== helpers =====

// totalHours derives worked hours from the in/out delta minus break minutes,
// clamped at zero, rounded to 2 decimals.
func totalHours(in, out time.Time, breakMinutes int) float64 {
	h := out.Sub(in).Hours() - float64(breakMinutes)/60
	if h < 0 {
		h = 0
	}
	return math.Round(h*100) / 100
}

func atClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(ClockLayout, clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
