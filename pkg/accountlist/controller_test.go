package accountlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/kevinelliott/gctlogin/pkg/account"
)

type fakeStore struct {
	calls []string
	err   error
}

func (s *fakeStore) SetActiveUser(ctx context.Context, email string) error {
	s.calls = append(s.calls, email)
	return s.err
}

type fakeSignOut struct {
	calls []bool
}

func (f *fakeSignOut) SetSignOutEnabled(enabled bool) {
	f.calls = append(f.calls, enabled)
}

func (f *fakeSignOut) reset() { f.calls = nil }

func newTestController(t *testing.T) (*Controller, *fakeStore, *fakeSignOut) {
	t.Helper()
	store := &fakeStore{}
	signOut := &fakeSignOut{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, signOut, WithLogger(logger)), store, signOut
}

func users(active string, emails ...string) []account.User {
	out := make([]account.User, 0, len(emails))
	for _, e := range emails {
		out = append(out, account.User{Email: e, Active: e == active})
	}
	return out
}

func emails(c *Controller) []string {
	var out []string
	for _, e := range c.Entries() {
		if e.IsPlaceholder() {
			out = append(out, "<placeholder>")
			continue
		}
		out = append(out, e.Email())
	}
	return out
}

func activeEmails(c *Controller) []string {
	var out []string
	for _, e := range c.Entries() {
		if e.IsActive() {
			out = append(out, e.Email())
		}
	}
	return out
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		users      []account.User
		wantOrder  []string
		wantActive int
	}{
		{
			name:       "empty snapshot yields placeholder",
			users:      nil,
			wantOrder:  []string{"<placeholder>"},
			wantActive: NoSelection,
		},
		{
			name:       "active already first",
			users:      users("a", "a", "b", "c"),
			wantOrder:  []string{"a", "b", "c"},
			wantActive: 0,
		},
		{
			name:       "active moved to top",
			users:      users("c", "a", "b", "c", "d"),
			wantOrder:  []string{"c", "a", "b", "d"},
			wantActive: 0,
		},
		{
			name:       "no active keeps order",
			users:      users("", "b", "a", "c"),
			wantOrder:  []string{"b", "a", "c"},
			wantActive: NoSelection,
		},
		{
			name:       "single active user",
			users:      users("a", "a"),
			wantOrder:  []string{"a"},
			wantActive: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store, _ := newTestController(t)

			got := c.Initialize(tt.users)
			if got != tt.wantActive {
				t.Errorf("Initialize() = %d, want %d", got, tt.wantActive)
			}
			if order := emails(c); !reflect.DeepEqual(order, tt.wantOrder) {
				t.Errorf("order = %v, want %v", order, tt.wantOrder)
			}
			if c.Selected() != tt.wantActive {
				t.Errorf("Selected() = %d, want %d", c.Selected(), tt.wantActive)
			}
			if len(store.calls) != 0 {
				t.Errorf("Initialize issued store commands: %v", store.calls)
			}
		})
	}
}

func TestInitializeMultipleActiveLastWins(t *testing.T) {
	c, _, _ := newTestController(t)

	snapshot := []account.User{
		{Email: "a", Active: true},
		{Email: "b"},
		{Email: "c", Active: true},
	}
	c.Initialize(snapshot)

	if order := emails(c); !reflect.DeepEqual(order, []string{"c", "a", "b"}) {
		t.Errorf("order = %v", order)
	}
	if active := activeEmails(c); !reflect.DeepEqual(active, []string{"c"}) {
		t.Errorf("active = %v, want [c]", active)
	}
}

func TestActiveFirst(t *testing.T) {
	tests := []struct {
		name       string
		in         []account.User
		wantOrder  []string
		wantActive string
	}{
		{"empty", nil, nil, ""},
		{"none active", users("", "a", "b"), []string{"a", "b"}, ""},
		{"active first already", users("a", "a", "b"), []string{"a", "b"}, "a"},
		{"active moved", users("c", "a", "b", "c", "d"), []string{"c", "a", "b", "d"}, "c"},
		{
			"several active",
			[]account.User{{Email: "a", Active: true}, {Email: "b"}, {Email: "c", Active: true}},
			[]string{"c", "a", "b"},
			"c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := append([]account.User(nil), tt.in...)
			got := ActiveFirst(tt.in)

			var order []string
			active := ""
			for _, u := range got {
				order = append(order, u.Email)
				if u.Active {
					if active != "" {
						t.Errorf("more than one active user: %v", got)
					}
					active = u.Email
				}
			}
			if !reflect.DeepEqual(order, tt.wantOrder) {
				t.Errorf("order = %v, want %v", order, tt.wantOrder)
			}
			if active != tt.wantActive {
				t.Errorf("active = %q, want %q", active, tt.wantActive)
			}
			if !reflect.DeepEqual(tt.in, snapshot) {
				t.Errorf("input modified: %v", tt.in)
			}
		})
	}
}

func TestInitializeSignOutState(t *testing.T) {
	t.Run("placeholder disables sign out", func(t *testing.T) {
		c, _, signOut := newTestController(t)
		c.Initialize(nil)
		if !c.HasPlaceholder() {
			t.Fatal("expected placeholder list")
		}
		if !reflect.DeepEqual(signOut.calls, []bool{false}) {
			t.Errorf("sign out calls = %v", signOut.calls)
		}
	})

	t.Run("active account enables sign out", func(t *testing.T) {
		c, _, signOut := newTestController(t)
		c.Initialize(users("a", "a", "b"))
		if !reflect.DeepEqual(signOut.calls, []bool{true}) {
			t.Errorf("sign out calls = %v", signOut.calls)
		}
	})

	t.Run("no active disables sign out", func(t *testing.T) {
		c, _, signOut := newTestController(t)
		c.Initialize(users("", "a", "b"))
		if !reflect.DeepEqual(signOut.calls, []bool{false}) {
			t.Errorf("sign out calls = %v", signOut.calls)
		}
	})
}

func TestReinitializeReplacesPlaceholder(t *testing.T) {
	c, _, _ := newTestController(t)

	c.Initialize(nil)
	c.Initialize(users("b", "a", "b"))

	if c.HasPlaceholder() {
		t.Error("placeholder should be gone once accounts exist")
	}
	for _, e := range c.Entries() {
		if e.IsPlaceholder() {
			t.Fatalf("placeholder coexists with accounts: %v", emails(c))
		}
	}
	if order := emails(c); !reflect.DeepEqual(order, []string{"b", "a"}) {
		t.Errorf("order = %v", order)
	}
}

func TestOnSelectionChangedAdjustingIsIgnored(t *testing.T) {
	c, store, signOut := newTestController(t)
	c.Initialize(users("a", "a", "b", "c"))
	signOut.reset()

	c.OnSelectionChanged(2, true)
	c.SelectAdjusting(1)

	if order := emails(c); !reflect.DeepEqual(order, []string{"a", "b", "c"}) {
		t.Errorf("order changed: %v", order)
	}
	if active := activeEmails(c); !reflect.DeepEqual(active, []string{"a"}) {
		t.Errorf("active changed: %v", active)
	}
	if len(store.calls) != 0 || len(signOut.calls) != 0 {
		t.Errorf("side effects: store=%v signOut=%v", store.calls, signOut.calls)
	}
	if !c.Adjusting() {
		t.Error("Adjusting() = false while the selection is in flux")
	}

	c.Select(1)
	if c.Adjusting() {
		t.Error("Adjusting() = true after the selection was committed")
	}
	if order := emails(c); !reflect.DeepEqual(order, []string{"b", "a", "c"}) {
		t.Errorf("order after commit = %v", order)
	}
}

func TestOnSelectionChangedNoSelection(t *testing.T) {
	c, store, signOut := newTestController(t)
	c.Initialize(users("a", "a", "b"))
	signOut.reset()

	c.ClearSelection()

	if !reflect.DeepEqual(signOut.calls, []bool{false}) {
		t.Errorf("sign out calls = %v, want [false]", signOut.calls)
	}
	if len(store.calls) != 0 {
		t.Errorf("store calls = %v", store.calls)
	}
	if order := emails(c); !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Errorf("order changed: %v", order)
	}
}

func TestSelectActiveEntryIsIdempotent(t *testing.T) {
	c, store, _ := newTestController(t)
	c.Initialize(users("a", "a", "b", "c"))

	before := c.Entries()
	c.OnSelectionChanged(0, false)
	c.Select(0)

	if !reflect.DeepEqual(c.Entries(), before) {
		t.Errorf("entries changed: %v", emails(c))
	}
	if c.Selected() != 0 {
		t.Errorf("Selected() = %d, want 0", c.Selected())
	}
	if len(store.calls) != 0 {
		t.Errorf("store calls = %v", store.calls)
	}
}

func TestSelectInactiveEntry(t *testing.T) {
	c, store, signOut := newTestController(t)

	if got := c.Initialize(users("A", "A", "B", "C")); got != 0 {
		t.Fatalf("Initialize() = %d, want 0", got)
	}
	if order := emails(c); !reflect.DeepEqual(order, []string{"A", "B", "C"}) {
		t.Fatalf("order = %v", order)
	}
	signOut.reset()

	c.Select(2)

	if !reflect.DeepEqual(store.calls, []string{"C"}) {
		t.Errorf("SetActiveUser calls = %v, want [C]", store.calls)
	}
	if order := emails(c); !reflect.DeepEqual(order, []string{"C", "A", "B"}) {
		t.Errorf("order = %v, want [C A B]", order)
	}
	if active := activeEmails(c); !reflect.DeepEqual(active, []string{"C"}) {
		t.Errorf("active = %v, want [C]", active)
	}
	if c.Selected() != 0 {
		t.Errorf("Selected() = %d, want 0", c.Selected())
	}
	// One enable for the user's selection; the remove/insert/reselect
	// notifications must not reach the controller.
	if !reflect.DeepEqual(signOut.calls, []bool{true}) {
		t.Errorf("sign out calls = %v, want [true]", signOut.calls)
	}
}

func TestSelectWithoutActiveAccount(t *testing.T) {
	c, store, _ := newTestController(t)
	c.Initialize(users("", "a", "b", "c"))

	c.Select(1)

	if !reflect.DeepEqual(store.calls, []string{"b"}) {
		t.Errorf("store calls = %v", store.calls)
	}
	if order := emails(c); !reflect.DeepEqual(order, []string{"b", "a", "c"}) {
		t.Errorf("order = %v", order)
	}
	if active := activeEmails(c); !reflect.DeepEqual(active, []string{"b"}) {
		t.Errorf("active = %v", active)
	}
}

func TestSelectStoreFailureStillReorders(t *testing.T) {
	c, store, _ := newTestController(t)
	store.err = errors.New("store unavailable")
	c.Initialize(users("a", "a", "b"))

	c.Select(1)

	if len(store.calls) != 1 {
		t.Errorf("store calls = %v, want one", store.calls)
	}
	if order := emails(c); !reflect.DeepEqual(order, []string{"b", "a"}) {
		t.Errorf("order = %v", order)
	}
}

func TestSelectPlaceholder(t *testing.T) {
	c, store, signOut := newTestController(t)
	c.Initialize(nil)
	signOut.reset()

	c.Select(0)

	if len(store.calls) != 0 {
		t.Errorf("store calls = %v", store.calls)
	}
	if len(signOut.calls) != 0 {
		t.Errorf("sign out calls = %v", signOut.calls)
	}
	if !c.HasPlaceholder() {
		t.Error("placeholder list changed")
	}
}

func TestNestedNotificationsAreSwallowed(t *testing.T) {
	c, store, signOut := newTestController(t)
	c.Initialize(users("a", "a", "b", "c"))
	signOut.reset()

	var nested []int
	c.model.SetListener(func(index int, adjusting bool) {
		if c.reorder.held() {
			nested = append(nested, index)
		}
		c.OnSelectionChanged(index, adjusting)
	})

	c.Select(1)

	if len(nested) == 0 {
		t.Fatal("expected the reorder to raise nested notifications")
	}
	if len(store.calls) != 1 {
		t.Errorf("store calls = %v, want exactly one", store.calls)
	}
	if !reflect.DeepEqual(signOut.calls, []bool{true}) {
		t.Errorf("sign out calls = %v, want [true]", signOut.calls)
	}
}

func TestTakeChanged(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Initialize(users("a", "a", "b"))

	if c.TakeChanged() {
		t.Error("TakeChanged() after Initialize = true, want false")
	}

	c.Select(0)
	if c.TakeChanged() {
		t.Error("re-selecting the selected row should not count as a change")
	}

	c.Select(1)
	if !c.TakeChanged() {
		t.Error("TakeChanged() after switching = false, want true")
	}
	if c.TakeChanged() {
		t.Error("TakeChanged() should reset the flag")
	}
}

func TestVisibleRowCount(t *testing.T) {
	c, _, _ := newTestController(t)

	if got := c.VisibleRowCount(3); got != DefaultVisibleRows {
		t.Errorf("empty VisibleRowCount() = %d, want %d", got, DefaultVisibleRows)
	}

	tests := []struct {
		name  string
		size  int
		max   int
		wantN int
	}{
		{"smaller than max", 2, 3, 2},
		{"equal to max", 3, 3, 3},
		{"larger than max", 5, 3, 3},
		{"single", 1, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []account.User
			for i := 0; i < tt.size; i++ {
				list = append(list, account.User{Email: string(rune('a' + i))})
			}
			c.Initialize(list)
			if got := c.VisibleRowCount(tt.max); got != tt.wantN {
				t.Errorf("VisibleRowCount(%d) = %d, want %d", tt.max, got, tt.wantN)
			}
		})
	}
}

func TestIsActiveEntryWithinFirstN(t *testing.T) {
	c, _, _ := newTestController(t)

	c.Initialize(users("", "a", "b", "c", "d"))
	if c.IsActiveEntryWithinFirstN(3) {
		t.Error("no active account, want false")
	}

	c.Initialize(users("d", "a", "b", "c", "d"))
	if !c.IsActiveEntryWithinFirstN(3) {
		t.Error("active moved to top, want true")
	}
	if c.IsActiveEntryWithinFirstN(0) {
		t.Error("n=0, want false")
	}
	if !c.IsActiveEntryWithinFirstN(100) {
		t.Error("n larger than list, want true")
	}

	c.Initialize(nil)
	if c.IsActiveEntryWithinFirstN(3) {
		t.Error("placeholder is never active")
	}
}

func TestViewportHeight(t *testing.T) {
	c, _, _ := newTestController(t)

	c.Initialize(users("a", "a"))
	if _, ok := c.ViewportHeight(3, 2, 3); ok {
		t.Error("single row should use default height")
	}

	c.Initialize(users("", "a", "b"))
	if _, ok := c.ViewportHeight(3, 2, 3); ok {
		t.Error("no active row should use default height")
	}

	c.Initialize(users("b", "a", "b"))
	if h, ok := c.ViewportHeight(3, 2, 3); !ok || h != 5 {
		t.Errorf("ViewportHeight() = %d, %v, want 5, true", h, ok)
	}

	c.Initialize(users("a", "a", "b", "c", "d", "e"))
	if h, ok := c.ViewportHeight(3, 2, 3); !ok || h != 7 {
		t.Errorf("ViewportHeight() = %d, %v, want 7, true", h, ok)
	}
}

func TestEntryAtOutOfRangePanics(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Initialize(users("a", "a"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range index")
		}
	}()
	c.EntryAt(5)
}
