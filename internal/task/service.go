package task

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== Error model (attendance/timesession と同型) =====
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
	store TaskStore
	clock Clock
	id    IDGen
}

func NewService(db DBTX) *Service {
	return &Service{
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// Create: the route is manager/admin-gated; assigned_by is always the caller.
func (s *Service) Create(ctx context.Context, callerID string, req CreateTaskRequest) (TaskResponse, error) {
	if req.Title == "" || req.AssignedTo == "" {
		return TaskResponse{}, ErrInvalid("title and assigned_to are required")
	}

	priority := PriorityMedium
	if req.Priority != nil && *req.Priority != "" {
		if !ValidPriority(*req.Priority) {
			return TaskResponse{}, ErrInvalid("priority must be low, medium, high or urgent")
		}
		priority = *req.Priority
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := time.Parse(DateLayout, *req.DueDate); err != nil {
			return TaskResponse{}, ErrInvalid("due_date must be YYYY-MM-DD")
		}
	}
	if req.EstimatedHours != nil && *req.EstimatedHours < 0 {
		return TaskResponse{}, ErrInvalid("estimated_hours must be >= 0")
	}

	ok, err := s.store.AssigneeActive(ctx, req.AssignedTo)
	if err != nil {
		return TaskResponse{}, err
	}
	if !ok {
		return TaskResponse{}, ErrNotFound("assigned staff not found or inactive")
	}

	id, err := s.id.New()
	if err != nil {
		return TaskResponse{}, err
	}

	t := &Task{
		ID:             id,
		Title:          req.Title,
		Description:    normalize(req.Description),
		AssignedTo:     req.AssignedTo,
		AssignedBy:     callerID,
		Priority:       priority,
		Status:         StatusPending,
		DueDate:        normalize(req.DueDate),
		EstimatedHours: req.EstimatedHours,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return TaskResponse{}, err
	}
	return t.toDTO(), nil
}

// Update: assignee only. A non-assignee gets an explicit error instead of a
// silently matched zero rows.
func (s *Service) Update(ctx context.Context, callerID, taskID string, req UpdateTaskRequest) (TaskResponse, error) {
	if req.Title == "" {
		return TaskResponse{}, ErrInvalid("title is required")
	}

	t, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		return TaskResponse{}, err
	}
	if t == nil {
		return TaskResponse{}, ErrNotFound("task not found")
	}
	if t.AssignedTo != callerID {
		return TaskResponse{}, ErrForbidden("only the assignee can update this task")
	}

	// An omitted priority keeps the current one; a partial client must not
	// silently downgrade an urgent task.
	priority := t.Priority
	if req.Priority != nil && *req.Priority != "" {
		if !ValidPriority(*req.Priority) {
			return TaskResponse{}, ErrInvalid("priority must be low, medium, high or urgent")
		}
		priority = *req.Priority
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := time.Parse(DateLayout, *req.DueDate); err != nil {
			return TaskResponse{}, ErrInvalid("due_date must be YYYY-MM-DD")
		}
	}
	if (req.EstimatedHours != nil && *req.EstimatedHours < 0) || (req.ActualHours != nil && *req.ActualHours < 0) {
		return TaskResponse{}, ErrInvalid("hours must be >= 0")
	}

	t.Title = req.Title
	t.Description = normalize(req.Description)
	t.Priority = priority
	t.DueDate = normalize(req.DueDate)
	t.EstimatedHours = req.EstimatedHours
	t.ActualHours = req.ActualHours
	if err := s.store.Update(ctx, t); err != nil {
		return TaskResponse{}, err
	}
	return t.toDTO(), nil
}

// UpdateStatus: assignee only. Completing stamps completed_at; leaving the
// completed state clears it again.
func (s *Service) UpdateStatus(ctx context.Context, callerID, taskID, status string) (TaskResponse, error) {
	if !ValidStatus(status) {
		return TaskResponse{}, ErrInvalid("status must be pending, in_progress, completed or cancelled")
	}

	t, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		return TaskResponse{}, err
	}
	if t == nil {
		return TaskResponse{}, ErrNotFound("task not found")
	}
	if t.AssignedTo != callerID {
		return TaskResponse{}, ErrForbidden("only the assignee can update this task")
	}

	var completedAt *time.Time
	if status == StatusCompleted {
		now := s.clock.Now().UTC()
		completedAt = &now
	}
	if err := s.store.UpdateStatus(ctx, taskID, status, completedAt); err != nil {
		return TaskResponse{}, err
	}

	t.Status = status
	t.CompletedAt = completedAt
	return t.toDTO(), nil
}

// AddComment: any authenticated staff may comment; the task must exist.
func (s *Service) AddComment(ctx context.Context, callerID, taskID, comment string) (CommentResponse, error) {
	if comment == "" {
		return CommentResponse{}, ErrInvalid("comment is required")
	}

	t, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		return CommentResponse{}, err
	}
	if t == nil {
		return CommentResponse{}, ErrNotFound("task not found")
	}

	id, err := s.id.New()
	if err != nil {
		return CommentResponse{}, err
	}
	c := &Comment{
		ID:        id,
		TaskID:    taskID,
		StaffID:   callerID,
		Comment:   comment,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return CommentResponse{}, err
	}
	return c.toDTO(), nil
}

// Get returns the task with its comment thread. Visible to the assignee,
// the assigner and managers/admins.
func (s *Service) Get(ctx context.Context, callerID string, privileged bool, taskID string) (TaskDetailResponse, error) {
	t, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		return TaskDetailResponse{}, err
	}
	if t == nil {
		return TaskDetailResponse{}, ErrNotFound("task not found")
	}
	if !privileged && t.AssignedTo != callerID && t.AssignedBy != callerID {
		return TaskDetailResponse{}, ErrForbidden("cannot view this task")
	}

	comments, err := s.store.ListComments(ctx, taskID)
	if err != nil {
		return TaskDetailResponse{}, err
	}
	out := TaskDetailResponse{TaskResponse: t.toDTO(), Comments: make([]CommentResponse, 0, len(comments))}
	for i := 0; i < len(comments); i++ {
		out.Comments = append(out.Comments, comments[i].toDTO())
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]TaskResponse, int64, error) {
	if q.AssignedTo == "" {
		return nil, 0, ErrInvalid("assigned_to is required")
	}
	if q.Status != nil && *q.Status != "" && !ValidStatus(*q.Status) {
		return nil, 0, ErrInvalid("status must be pending, in_progress, completed or cancelled")
	}

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]TaskResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, total, nil
}

func normalize(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
