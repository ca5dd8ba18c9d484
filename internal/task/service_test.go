package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	tasks    map[string]*Task
	comments map[string][]Comment
	active   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:    map[string]*Task{},
		comments: map[string][]Comment{},
		active:   map[string]bool{},
	}
}

func (f *fakeStore) Insert(_ context.Context, t *Task) error {
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) Update(_ context.Context, t *Task) error {
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id, status string, completedAt *time.Time) error {
	t, ok := f.tasks[id]
	if !ok {
		return errors.New("not found")
	}
	t.Status = status
	t.CompletedAt = completedAt
	return nil
}

func (f *fakeStore) InsertComment(_ context.Context, c *Comment) error {
	f.comments[c.TaskID] = append(f.comments[c.TaskID], *c)
	return nil
}

func (f *fakeStore) ListComments(_ context.Context, taskID string) ([]Comment, error) {
	return f.comments[taskID], nil
}

func (f *fakeStore) List(_ context.Context, q ListQuery) ([]Task, int64, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.AssignedTo != q.AssignedTo {
			continue
		}
		if q.Status != nil && *q.Status != "" && t.Status != *q.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) AssigneeActive(_ context.Context, staffID string) (bool, error) {
	return f.active[staffID], nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqID struct{ n int }

func (g *seqID) New() (string, error) {
	g.n++
	return "01TASKID" + string(rune('A'+g.n-1)), nil
}

func newTestService(store *fakeStore, now time.Time) *Service {
	return &Service{store: store, clock: fixedClock{t: now}, id: &seqID{}}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("defaults to medium priority and pending", func(t *testing.T) {
		st := newFakeStore()
		st.active["staff-1"] = true
		svc := newTestService(st, now)

		res, err := svc.Create(ctx, "mgr-1", CreateTaskRequest{Title: "Prepare report", AssignedTo: "staff-1"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.Priority != PriorityMedium {
			t.Errorf("priority = %s, want %s", res.Priority, PriorityMedium)
		}
		if res.Status != StatusPending {
			t.Errorf("status = %s, want %s", res.Status, StatusPending)
		}
		if res.AssignedBy != "mgr-1" {
			t.Errorf("assigned_by = %s, want mgr-1", res.AssignedBy)
		}
	})

	t.Run("inactive assignee rejected", func(t *testing.T) {
		st := newFakeStore()
		svc := newTestService(st, now)

		_, err := svc.Create(ctx, "mgr-1", CreateTaskRequest{Title: "x", AssignedTo: "ghost"})
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeNotFound {
			t.Fatalf("err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("unknown priority rejected", func(t *testing.T) {
		st := newFakeStore()
		st.active["staff-1"] = true
		svc := newTestService(st, now)

		p := "critical"
		_, err := svc.Create(ctx, "mgr-1", CreateTaskRequest{Title: "x", AssignedTo: "staff-1", Priority: &p})
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
			t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
		}
	})

	t.Run("fractional estimated hours kept", func(t *testing.T) {
		st := newFakeStore()
		st.active["staff-1"] = true
		svc := newTestService(st, now)

		est := 2.5
		res, err := svc.Create(ctx, "mgr-1", CreateTaskRequest{
			Title: "Prepare report", AssignedTo: "staff-1", EstimatedHours: &est,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.EstimatedHours == nil || *res.EstimatedHours != 2.5 {
			t.Errorf("estimated_hours = %v, want 2.5", res.EstimatedHours)
		}
	})

	t.Run("missing title rejected", func(t *testing.T) {
		svc := newTestService(newFakeStore(), now)
		_, err := svc.Create(ctx, "mgr-1", CreateTaskRequest{AssignedTo: "staff-1"})
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
			t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	seed := func(st *fakeStore) {
		st.tasks["t1"] = &Task{
			ID: "t1", Title: "old", AssignedTo: "staff-1", AssignedBy: "mgr-1",
			Priority: PriorityMedium, Status: StatusPending, CreatedAt: now,
		}
	}

	t.Run("assignee updates fields", func(t *testing.T) {
		st := newFakeStore()
		seed(st)
		svc := newTestService(st, now)

		hi := PriorityHigh
		res, err := svc.Update(ctx, "staff-1", "t1", UpdateTaskRequest{Title: "new", Priority: &hi})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if res.Title != "new" || res.Priority != PriorityHigh {
			t.Errorf("got title=%s priority=%s", res.Title, res.Priority)
		}
	})

	t.Run("omitted priority keeps the current one", func(t *testing.T) {
		st := newFakeStore()
		st.tasks["t1"] = &Task{
			ID: "t1", Title: "old", AssignedTo: "staff-1", AssignedBy: "mgr-1",
			Priority: PriorityUrgent, Status: StatusPending, CreatedAt: now,
		}
		svc := newTestService(st, now)

		res, err := svc.Update(ctx, "staff-1", "t1", UpdateTaskRequest{Title: "new"})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if res.Priority != PriorityUrgent {
			t.Errorf("priority = %s, want %s (no silent downgrade)", res.Priority, PriorityUrgent)
		}
	})

	t.Run("non-assignee forbidden", func(t *testing.T) {
		st := newFakeStore()
		seed(st)
		svc := newTestService(st, now)

		_, err := svc.Update(ctx, "mgr-1", "t1", UpdateTaskRequest{Title: "new"})
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodePermissionDenied {
			t.Fatalf("err = %v, want PERMISSION_DENIED", err)
		}
	})

	t.Run("missing task is not found", func(t *testing.T) {
		svc := newTestService(newFakeStore(), now)
		_, err := svc.Update(ctx, "staff-1", "nope", UpdateTaskRequest{Title: "new"})
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeNotFound {
			t.Fatalf("err = %v, want NOT_FOUND", err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	seed := func(st *fakeStore, status string, completedAt *time.Time) {
		st.tasks["t1"] = &Task{
			ID: "t1", Title: "x", AssignedTo: "staff-1", AssignedBy: "mgr-1",
			Priority: PriorityMedium, Status: status, CompletedAt: completedAt, CreatedAt: now,
		}
	}

	t.Run("completing stamps completed_at", func(t *testing.T) {
		st := newFakeStore()
		seed(st, StatusInProgress, nil)
		svc := newTestService(st, now)

		res, err := svc.UpdateStatus(ctx, "staff-1", "t1", StatusCompleted)
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if res.CompletedAt == nil || !res.CompletedAt.Equal(now) {
			t.Errorf("completed_at = %v, want %v", res.CompletedAt, now)
		}
	})

	t.Run("reopening clears completed_at", func(t *testing.T) {
		st := newFakeStore()
		done := now.Add(-time.Hour)
		seed(st, StatusCompleted, &done)
		svc := newTestService(st, now)

		res, err := svc.UpdateStatus(ctx, "staff-1", "t1", StatusInProgress)
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if res.CompletedAt != nil {
			t.Errorf("completed_at = %v, want nil", res.CompletedAt)
		}
	})

	t.Run("non-assignee forbidden", func(t *testing.T) {
		st := newFakeStore()
		seed(st, StatusPending, nil)
		svc := newTestService(st, now)

		_, err := svc.UpdateStatus(ctx, "other", "t1", StatusCompleted)
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodePermissionDenied {
			t.Fatalf("err = %v, want PERMISSION_DENIED", err)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		st := newFakeStore()
		seed(st, StatusPending, nil)
		svc := newTestService(st, now)

		_, err := svc.UpdateStatus(ctx, "staff-1", "t1", "done")
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
			t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
		}
	})
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("appends to the thread", func(t *testing.T) {
		st := newFakeStore()
		st.tasks["t1"] = &Task{ID: "t1", Title: "x", AssignedTo: "staff-1", AssignedBy: "mgr-1"}
		svc := newTestService(st, now)

		res, err := svc.AddComment(ctx, "staff-2", "t1", "looks good")
		if err != nil {
			t.Fatalf("AddComment: %v", err)
		}
		if res.Comment != "looks good" || res.StaffID != "staff-2" {
			t.Errorf("got %+v", res)
		}
		if len(st.comments["t1"]) != 1 {
			t.Errorf("comments stored = %d, want 1", len(st.comments["t1"]))
		}
	})

	t.Run("missing task is not found", func(t *testing.T) {
		svc := newTestService(newFakeStore(), now)
		_, err := svc.AddComment(ctx, "staff-1", "nope", "hi")
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeNotFound {
			t.Fatalf("err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("empty comment rejected", func(t *testing.T) {
		svc := newTestService(newFakeStore(), now)
		_, err := svc.AddComment(ctx, "staff-1", "t1", "")
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
			t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
		}
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	seed := func(st *fakeStore) {
		st.tasks["t1"] = &Task{ID: "t1", Title: "x", AssignedTo: "staff-1", AssignedBy: "mgr-1"}
	}

	t.Run("assignee and assigner can view", func(t *testing.T) {
		st := newFakeStore()
		seed(st)
		svc := newTestService(st, now)

		for _, caller := range []string{"staff-1", "mgr-1"} {
			if _, err := svc.Get(ctx, caller, false, "t1"); err != nil {
				t.Errorf("Get as %s: %v", caller, err)
			}
		}
	})

	t.Run("unrelated staff forbidden", func(t *testing.T) {
		st := newFakeStore()
		seed(st)
		svc := newTestService(st, now)

		_, err := svc.Get(ctx, "staff-9", false, "t1")
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodePermissionDenied {
			t.Fatalf("err = %v, want PERMISSION_DENIED", err)
		}
	})

	t.Run("privileged caller can view anything", func(t *testing.T) {
		st := newFakeStore()
		seed(st)
		svc := newTestService(st, now)

		if _, err := svc.Get(ctx, "staff-9", true, "t1"); err != nil {
			t.Fatalf("Get privileged: %v", err)
		}
	})
}
