package staff

import (
	"context"
	"errors"
	"fmt"
)

// ===== Error model (attendance/timesession/task と同型) =====
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

// ===== Service =====

type Service struct {
	store ProfileStore
}

func NewService(db DBTX) *Service {
	return &Service{store: NewStore(db)}
}

// Me returns the caller's own profile.
func (s *Service) Me(ctx context.Context, staffID string) (ProfileResponse, error) {
	p, err := s.store.GetByID(ctx, staffID)
	if err != nil {
		return ProfileResponse{}, err
	}
	if p == nil {
		// Account exists but profile is missing: ask an admin to fix it up.
		return ProfileResponse{}, ErrNotFound("profile not found, contact your administrator")
	}
	return p.toDTO(), nil
}

// List returns the active staff directory; every authenticated page needs it
// for assignment pickers and the team view.
func (s *Service) List(ctx context.Context) ([]ProfileResponse, error) {
	rows, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProfileResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

// UpdateDetails changes department/position. Admin only (route-gated).
func (s *Service) UpdateDetails(ctx context.Context, id string, department, position *string) error {
	n, err := s.store.UpdateDetails(ctx, id, department, position)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("staff profile not found")
	}
	return nil
}

// Deactivate soft-disables the profile. Already-inactive profiles report a
// conflict so the action is visible.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound("staff profile not found")
	}
	if !p.IsActive {
		return ErrConflict("staff profile is already inactive")
	}

	n, err := s.store.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict("staff profile is already inactive")
	}
	return nil
}
