package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kevinelliott/gctlogin/pkg/account"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return store
}

func mustAdd(t *testing.T, s *SQLiteStore, emails ...string) {
	t.Helper()
	for _, e := range emails {
		if err := s.AddUser(context.Background(), account.User{Email: e}); err != nil {
			t.Fatalf("AddUser(%s) error = %v", e, err)
		}
	}
}

func TestSQLiteStoreListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "c@x.io", "a@x.io", "b@x.io")

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}

	want := []string{"c@x.io", "a@x.io", "b@x.io"}
	if len(users) != len(want) {
		t.Fatalf("ListUsers() returned %d users, want %d", len(users), len(want))
	}
	for i, u := range users {
		if u.Email != want[i] {
			t.Errorf("users[%d] = %q, want %q", i, u.Email, want[i])
		}
		if u.Active {
			t.Errorf("users[%d] should not be active", i)
		}
	}
}

func TestSQLiteStoreAddExistingKeepsPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "a@x.io", "b@x.io")
	if err := s.AddUser(ctx, account.User{Email: "a@x.io", Name: "Alice"}); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Email != "a@x.io" || users[0].Name != "Alice" {
		t.Errorf("users[0] = %+v", users[0])
	}
}

func TestSQLiteStoreReAddKeepsName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	steps := []struct {
		name string
		want string
	}{
		{"Alice", "Alice"},
		{"", "Alice"},
		{"Alice Smith", "Alice Smith"},
		{"", "Alice Smith"},
	}
	for _, step := range steps {
		if err := s.AddUser(ctx, account.User{Email: "a@x.io", Name: step.name}); err != nil {
			t.Fatalf("AddUser(%q) error = %v", step.name, err)
		}
		u, err := s.GetUser(ctx, "a@x.io")
		if err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if u.Name != step.want {
			t.Errorf("after AddUser(%q) name = %q, want %q", step.name, u.Name, step.want)
		}
	}
}

func TestSQLiteStoreSetActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "a@x.io", "b@x.io", "c@x.io")

	if err := s.SetActive(ctx, "a@x.io"); err != nil {
		t.Fatalf("SetActive(a) error = %v", err)
	}
	if err := s.SetActive(ctx, "c@x.io"); err != nil {
		t.Fatalf("SetActive(c) error = %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if n := account.CountActive(users); n != 1 {
		t.Errorf("active count = %d, want 1", n)
	}

	active, err := s.ActiveUser(ctx)
	if err != nil {
		t.Fatalf("ActiveUser() error = %v", err)
	}
	if active == nil || active.Email != "c@x.io" {
		t.Errorf("ActiveUser() = %+v, want c@x.io", active)
	}
}

func TestSQLiteStoreSetActiveUnknown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "a@x.io")
	if err := s.SetActive(ctx, "a@x.io"); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	err := s.SetActive(ctx, "nobody@x.io")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetActive(unknown) error = %v, want ErrUserNotFound", err)
	}

	// The failed switch must not have cleared the previous active account.
	active, err := s.ActiveUser(ctx)
	if err != nil {
		t.Fatalf("ActiveUser() error = %v", err)
	}
	if active == nil || active.Email != "a@x.io" {
		t.Errorf("ActiveUser() = %+v, want a@x.io", active)
	}
}

func TestSQLiteStoreClearAndRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "a@x.io", "b@x.io")
	if err := s.SetActive(ctx, "b@x.io"); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	if err := s.ClearActive(ctx); err != nil {
		t.Fatalf("ClearActive() error = %v", err)
	}
	active, err := s.ActiveUser(ctx)
	if err != nil {
		t.Fatalf("ActiveUser() error = %v", err)
	}
	if active != nil {
		t.Errorf("ActiveUser() = %+v, want nil", active)
	}

	if err := s.RemoveUser(ctx, "a@x.io"); err != nil {
		t.Fatalf("RemoveUser() error = %v", err)
	}
	if err := s.RemoveUser(ctx, "a@x.io"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second RemoveUser() error = %v, want ErrUserNotFound", err)
	}

	if _, err := s.GetUser(ctx, "a@x.io"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser(removed) error = %v, want ErrUserNotFound", err)
	}
	u, err := s.GetUser(ctx, "b@x.io")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.Email != "b@x.io" {
		t.Errorf("GetUser() = %+v", u)
	}
}

func TestSQLiteStoreAddedAt(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	mustAdd(t, s, "a@x.io")

	u, err := s.GetUser(context.Background(), "a@x.io")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if !u.AddedAt.Equal(fixed) {
		t.Errorf("AddedAt = %v, want %v", u.AddedAt, fixed)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := s.AddUser(ctx, account.User{Email: "a@x.io"}); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if err := s.SetActive(ctx, "a@x.io"); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	s.Close()

	s2, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s2.Close()
	if err := s2.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	active, err := s2.ActiveUser(ctx)
	if err != nil {
		t.Fatalf("ActiveUser() error = %v", err)
	}
	if active == nil || active.Email != "a@x.io" {
		t.Errorf("ActiveUser() after reopen = %+v", active)
	}
}
