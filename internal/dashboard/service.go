package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"staffhub-backend/internal/platform/db"
)

// ===== Error model (attendance/timesession/task と同型) =====
type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInternal         Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodePermissionDenied:
			return 403
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

// Service assembles read-only rollups. Nothing is cached; every request
// recomputes from current store state.
type Service struct {
	db  *sql.DB
	loc *time.Location
}

func NewService(sqldb *sql.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: sqldb, loc: loc}
}

// dayWindow fixes "today" for one request: the local calendar date plus the
// UTC instants bounding it. DATETIME columns hold UTC, so every range check
// compares against the instants, never the date string.
func dayWindow(now time.Time, loc *time.Location) (date string, start, end time.Time) {
	local := now.In(loc)
	date = local.Format(DateLayout)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return date, dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC()
}

// Staff loads the personal dashboard in one read-only transaction so the
// summary and the supplementary queries see a consistent snapshot.
func (s *Service) Staff(ctx context.Context, staffID string) (StaffDashboard, error) {
	if staffID == "" {
		return StaffDashboard{}, ErrInvalid("staff_id is required")
	}

	var out StaffDashboard
	date, dayStart, dayEnd := dayWindow(time.Now(), s.loc)
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		st := NewStore(tx)

		var err error
		if out.Summary, err = st.StaffSummary(ctx, staffID, date, dayStart, dayEnd); err != nil {
			return err
		}
		if out.TodayAttendance, err = st.TodayAttendance(ctx, staffID, date); err != nil {
			return err
		}
		if out.ActiveSession, err = st.ActiveSession(ctx, staffID); err != nil {
			return err
		}
		if out.TodayMinutes, err = st.TodayMinutes(ctx, staffID, dayStart, dayEnd); err != nil {
			return err
		}
		if out.AvailableTasks, err = st.AvailableTasks(ctx, staffID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return StaffDashboard{}, err
	}
	if out.AvailableTasks == nil {
		out.AvailableTasks = []TaskPick{}
	}
	return out, nil
}

// Manager loads the team-wide view. Route-gated to manager/admin.
func (s *Service) Manager(ctx context.Context) (ManagerDashboard, error) {
	var out ManagerDashboard
	date, dayStart, dayEnd := dayWindow(time.Now(), s.loc)
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		st := NewStore(tx)

		var err error
		if out.Summary, err = st.ManagerSummary(ctx, date); err != nil {
			return err
		}
		if out.ActiveSessions, err = st.ActiveSessionCount(ctx); err != nil {
			return err
		}
		if out.CompletedToday, err = st.CompletedTodayCount(ctx, dayStart, dayEnd); err != nil {
			return err
		}
		if out.Team, err = st.Team(ctx, date); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return ManagerDashboard{}, err
	}
	if out.Team == nil {
		out.Team = []TeamMember{}
	}
	return out, nil
}
