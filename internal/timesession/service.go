package timesession

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== Error model (attendance/task と同型) =====
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

// ===== Service =====

type Service struct {
	store SessionStore
	loc   *time.Location
	clock Clock
	id    IDGen
}

// NewService takes the workday timezone; manual-entry clock times are
// interpreted in it.
func NewService(db DBTX, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store: NewStore(db),
		loc:   loc,
		clock: realClock{},
		id:    ulidGen{},
	}
}

// POST /sessions/start
// At most one active session per staff; the conditional insert in the store
// enforces it atomically.
func (s *Service) Start(ctx context.Context, staffID string, taskID, description *string) (SessionResponse, error) {
	if staffID == "" {
		return SessionResponse{}, ErrInvalid("staff_id is required")
	}

	id, err := s.id.New()
	if err != nil {
		return SessionResponse{}, err
	}

	sess := &TimeSession{
		ID:           id,
		StaffID:      staffID,
		TaskID:       normalize(taskID),
		Description:  normalize(description),
		SessionStart: s.clock.Now().UTC(),
		IsActive:     true,
	}
	created, err := s.store.StartIfNone(ctx, sess)
	if err != nil {
		return SessionResponse{}, err
	}
	if !created {
		return SessionResponse{}, ErrConflict("you already have an active time session, stop it first")
	}
	return sess.toDTO(), nil
}

// POST /sessions/stop
func (s *Service) Stop(ctx context.Context, staffID string, notes *string) (SessionResponse, error) {
	active, err := s.store.GetActive(ctx, staffID)
	if err != nil {
		return SessionResponse{}, err
	}
	if active == nil {
		return SessionResponse{}, ErrNotFound("no active time session found")
	}

	end := s.clock.Now().UTC()
	duration := roundMinutes(active.SessionStart, end)
	if err := s.store.Stop(ctx, active.ID, end, duration, normalize(notes)); err != nil {
		return SessionResponse{}, err
	}

	active.SessionEnd = &end
	active.Duration = &duration
	active.IsActive = false
	if n := normalize(notes); n != nil {
		active.Description = n
	}
	return active.toDTO(), nil
}

// PUT /sessions/active/task
// An empty or null task id detaches the session from any task.
func (s *Service) SwitchTask(ctx context.Context, staffID string, taskID *string) error {
	n, err := s.store.UpdateActiveTask(ctx, staffID, normalize(taskID))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("no active time session found")
	}
	return nil
}

// PUT /sessions/active/description
func (s *Service) UpdateDescription(ctx context.Context, staffID, description string) error {
	n, err := s.store.UpdateActiveDescription(ctx, staffID, description)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("no active time session found")
	}
	return nil
}

// POST /sessions/manual
// Inserts an already-closed session with a precomputed duration. Overlap
// with other sessions is not checked.
func (s *Service) ManualEntry(ctx context.Context, staffID string, req ManualEntryRequest) (SessionResponse, error) {
	day, err := time.ParseInLocation(DateLayout, req.Date, s.loc)
	if err != nil {
		return SessionResponse{}, ErrInvalid("date must be YYYY-MM-DD")
	}
	start, err := atClock(day, req.StartTime, s.loc)
	if err != nil {
		return SessionResponse{}, ErrInvalid("start_time must be HH:MM")
	}
	end, err := atClock(day, req.EndTime, s.loc)
	if err != nil {
		return SessionResponse{}, ErrInvalid("end_time must be HH:MM")
	}
	if !end.After(start) {
		return SessionResponse{}, ErrInvalid("end time must be after start time")
	}

	id, err := s.id.New()
	if err != nil {
		return SessionResponse{}, err
	}

	startUTC := start.UTC()
	endUTC := end.UTC()
	duration := roundMinutes(startUTC, endUTC)
	sess := &TimeSession{
		ID:           id,
		StaffID:      staffID,
		TaskID:       normalize(req.TaskID),
		Description:  normalize(req.Description),
		SessionStart: startUTC,
		SessionEnd:   &endUTC,
		Duration:     &duration,
		IsActive:     false,
	}
	if err := s.store.InsertClosed(ctx, sess); err != nil {
		return SessionResponse{}, err
	}
	return sess.toDTO(), nil
}

// GET /sessions
func (s *Service) List(ctx context.Context, q ListQuery) ([]SessionResponse, int64, error) {
	if q.StaffID == "" {
		return nil, 0, ErrInvalid("staff_id is required")
	}
	if q.From != nil && *q.From != "" {
		day, err := time.ParseInLocation(DateLayout, *q.From, s.loc)
		if err != nil {
			return nil, 0, ErrInvalid("from must be YYYY-MM-DD")
		}
		b := day.UTC()
		q.FromBound = &b
	}
	if q.To != nil && *q.To != "" {
		day, err := time.ParseInLocation(DateLayout, *q.To, s.loc)
		if err != nil {
			return nil, 0, ErrInvalid("to must be YYYY-MM-DD")
		}
		b := day.AddDate(0, 0, 1).UTC()
		q.ToBound = &b
	}

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SessionResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, total, nil
}

// GET /sessions/active
func (s *Service) Active(ctx context.Context, staffID string) (*SessionResponse, error) {
	active, err := s.store.GetActive(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}
	dto := active.toDTO()
	return &dto, nil
}

// ===== helpers =====

func roundMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// FormatDuration renders minutes as "Xh Ym" for user-facing messages.
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func atClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(ClockLayout, clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func normalize(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
