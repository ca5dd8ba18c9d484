package staff

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	profiles map[string]*Profile
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[string]*Profile{}}
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListActive(_ context.Context) ([]Profile, error) {
	var out []Profile
	for _, p := range f.profiles {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateDetails(_ context.Context, id string, department, position *string) (int64, error) {
	p, ok := f.profiles[id]
	if !ok {
		return 0, nil
	}
	p.Department = department
	p.Position = position
	return 1, nil
}

func (f *fakeStore) Deactivate(_ context.Context, id string) (int64, error) {
	p, ok := f.profiles[id]
	if !ok || !p.IsActive {
		return 0, nil
	}
	p.IsActive = false
	return 1, nil
}

func seed(st *fakeStore, id string, active bool) {
	st.profiles[id] = &Profile{
		ID: id, EmployeeID: "EMP-" + id, FirstName: "A", LastName: "B",
		Email: id + "@example.com", Role: "staff", HireDate: "2024-01-01", IsActive: active,
	}
}

func TestMe(t *testing.T) {
	ctx := context.Background()

	t.Run("returns own profile", func(t *testing.T) {
		st := newFakeStore()
		seed(st, "p1", true)
		svc := &Service{store: st}

		res, err := svc.Me(ctx, "p1")
		if err != nil {
			t.Fatalf("Me: %v", err)
		}
		if res.ID != "p1" || res.EmployeeID != "EMP-p1" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("missing profile is not found", func(t *testing.T) {
		svc := &Service{store: newFakeStore()}
		_, err := svc.Me(ctx, "ghost")
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeNotFound {
			t.Fatalf("err = %v, want NOT_FOUND", err)
		}
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	seed(st, "p1", true)
	seed(st, "p2", false)
	svc := &Service{store: st}

	out, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 || out[0].ID != "p1" {
		t.Errorf("got %+v, want only the active profile", out)
	}
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("updates department and position", func(t *testing.T) {
		st := newFakeStore()
		seed(st, "p1", true)
		svc := &Service{store: st}

		dept, pos := "Engineering", "Lead"
		if err := svc.UpdateDetails(ctx, "p1", &dept, &pos); err != nil {
			t.Fatalf("UpdateDetails: %v", err)
		}
		if got := st.profiles["p1"].Department; got == nil || *got != dept {
			t.Errorf("department = %v, want %q", got, dept)
		}
	})

	t.Run("missing profile is not found", func(t *testing.T) {
		svc := &Service{store: newFakeStore()}
		err := svc.UpdateDetails(ctx, "ghost", nil, nil)
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeNotFound {
			t.Fatalf("err = %v, want NOT_FOUND", err)
		}
	})
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("soft-disables the profile", func(t *testing.T) {
		st := newFakeStore()
		seed(st, "p1", true)
		svc := &Service{store: st}

		if err := svc.Deactivate(ctx, "p1"); err != nil {
			t.Fatalf("Deactivate: %v", err)
		}
		if st.profiles["p1"].IsActive {
			t.Error("profile still active")
		}
	})

	t.Run("already inactive conflicts", func(t *testing.T) {
		st := newFakeStore()
		seed(st, "p1", false)
		svc := &Service{store: st}

		err := svc.Deactivate(ctx, "p1")
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeConflict {
			t.Fatalf("err = %v, want CONFLICT", err)
		}
	})

	t.Run("missing profile is not found", func(t *testing.T) {
		svc := &Service{store: newFakeStore()}
		err := svc.Deactivate(ctx, "ghost")
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeNotFound {
			t.Fatalf("err = %v, want NOT_FOUND", err)
		}
	})
}
