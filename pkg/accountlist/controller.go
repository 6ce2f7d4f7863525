package accountlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/kevinelliott/gctlogin/pkg/account"
)

// DefaultVisibleRows is the row count used before the list is populated.
const DefaultVisibleRows = 3

// ActiveUserSetter switches the active account in the account store.
type ActiveUserSetter interface {
	SetActiveUser(ctx context.Context, email string) error
}

// SignOutControl is the sign-out button of the rendering surface.
type SignOutControl interface {
	SetSignOutEnabled(enabled bool)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for store command failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCommandTimeout bounds each store command issued by the controller.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Controller keeps the account list ordered with the active account first
// and turns selections into active-account changes.
//
// A Controller is not safe for concurrent use; all calls are expected on the
// UI event loop.
type Controller struct {
	model   *Model
	store   ActiveUserSetter
	signOut SignOutControl
	logger  *slog.Logger
	timeout time.Duration

	reorder reentrancyGuard
	changed bool
}

// New creates a controller with an empty list. signOut may be nil.
func New(store ActiveUserSetter, signOut SignOutControl, opts ...Option) *Controller {
	c := &Controller{
		model:   NewModel(),
		store:   store,
		signOut: signOut,
		logger:  slog.Default(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.model.SetListener(c.OnSelectionChanged)
	return c
}

// Initialize rebuilds the list from a store snapshot, in snapshot order, and
// moves the active account to the top. It returns 0 when an account is
// active and NoSelection otherwise.
//
// An empty snapshot yields the single placeholder row.
func (c *Controller) Initialize(users []account.User) int {
	entries, activeIdx := buildEntries(users)

	func() {
		release := c.reorder.acquire()
		defer release()

		c.model.Reset(entries)
		if activeIdx != NoSelection {
			c.model.SetSelected(activeIdx, false)
		}
	}()
	c.changed = false

	switch {
	case c.HasPlaceholder():
		c.setSignOutEnabled(false)
	default:
		c.setSignOutEnabled(activeIdx != NoSelection)
	}

	c.logger.Debug("account list initialized",
		"entries", c.model.Len(),
		"active", activeIdx,
	)
	return activeIdx
}

// ActiveFirst returns a copy of users in display order: snapshot order with
// the active account moved to the front. When several users are marked
// active the last one wins and the others are returned inactive.
func ActiveFirst(users []account.User) []account.User {
	out := append([]account.User(nil), users...)

	active := NoSelection
	for i, u := range out {
		if u.Active {
			active = i
		}
	}
	if active == NoSelection {
		return out
	}

	for i := range out {
		out[i].Active = i == active
	}
	if active > 0 {
		u := out[active]
		copy(out[1:active+1], out[:active])
		out[0] = u
	}
	return out
}

// buildEntries turns a snapshot into rows ordered by ActiveFirst.
func buildEntries(users []account.User) ([]Entry, int) {
	if len(users) == 0 {
		return []Entry{PlaceholderEntry()}, NoSelection
	}

	ordered := ActiveFirst(users)
	entries := make([]Entry, 0, len(ordered))
	for _, u := range ordered {
		entries = append(entries, AccountEntry(u))
	}
	if !ordered[0].Active {
		return entries, NoSelection
	}
	return entries, 0
}

// OnSelectionChanged handles a selection change reported by the list.
// Notifications raised while the controller reorders the list are ignored.
func (c *Controller) OnSelectionChanged(index int, adjusting bool) {
	if c.reorder.held() {
		return
	}
	c.changed = true
	if adjusting {
		return
	}

	if index == NoSelection {
		c.setSignOutEnabled(false)
		return
	}

	entry := c.model.At(index)
	if entry.IsPlaceholder() {
		return
	}
	c.setSignOutEnabled(true)

	if entry.IsActive() {
		return
	}
	c.activate(index, entry)
}

func (c *Controller) activate(index int, entry Entry) {
	c.setActiveUser(entry.Email())

	release := c.reorder.acquire()
	defer release()

	c.model.Remove(index)
	c.model.Insert(0, entry)
	for i := 0; i < c.model.Len(); i++ {
		c.model.Set(i, c.model.At(i).withActive(i == 0))
	}
	c.model.SetSelected(0, false)
}

func (c *Controller) setActiveUser(email string) {
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.store.SetActiveUser(ctx, email); err != nil {
		c.logger.Warn("failed to set active account", "email", email, "error", err)
		return
	}
	c.logger.Info("active account changed", "email", email)
}

func (c *Controller) setSignOutEnabled(enabled bool) {
	if c.signOut != nil {
		c.signOut.SetSignOutEnabled(enabled)
	}
}

// Select moves the selection to index, as a click on that row would.
func (c *Controller) Select(index int) {
	c.model.SetSelected(index, false)
}

// SelectAdjusting moves the selection while it is still in flux, e.g. while
// the user drags or scrolls through rows.
func (c *Controller) SelectAdjusting(index int) {
	c.model.SetSelected(index, true)
}

// Adjusting reports whether the selection was moved by SelectAdjusting and
// has not been committed yet.
func (c *Controller) Adjusting() bool {
	return c.model.IsAdjusting()
}

// ClearSelection removes the selection.
func (c *Controller) ClearSelection() {
	c.model.SetSelected(NoSelection, false)
}

// TakeChanged reports whether any selection change reached the controller
// since the last call, and resets the flag. The surface uses it to tell a
// click that switched accounts from a click on the already active row.
func (c *Controller) TakeChanged() bool {
	changed := c.changed
	c.changed = false
	return changed
}

// VisibleRowCount returns how many rows the viewport should show.
func (c *Controller) VisibleRowCount(maxVisible int) int {
	n := c.model.Len()
	if n == 0 {
		return DefaultVisibleRows
	}
	return min(n, maxVisible)
}

// IsActiveEntryWithinFirstN reports whether one of the first n rows is the
// active account.
func (c *Controller) IsActiveEntryWithinFirstN(n int) bool {
	limit := min(n, c.model.Len())
	for i := 0; i < limit; i++ {
		if c.model.At(i).IsActive() {
			return true
		}
	}
	return false
}

// ViewportHeight returns the height needed to show up to maxVisible rows
// when the active row, which is taller, is among them. ok is false when the
// surface should fall back to its default height.
func (c *Controller) ViewportHeight(maxVisible, rowHeight, activeRowHeight int) (height int, ok bool) {
	n := c.model.Len()
	if n <= 1 || !c.IsActiveEntryWithinFirstN(maxVisible) {
		return 0, false
	}
	rows := min(n, maxVisible)
	return (rows-1)*rowHeight + activeRowHeight, true
}

// HasPlaceholder reports whether the list holds only the placeholder row.
func (c *Controller) HasPlaceholder() bool {
	return c.model.Len() == 1 && c.model.At(0).IsPlaceholder()
}

// Len returns the number of rows.
func (c *Controller) Len() int { return c.model.Len() }

// EntryAt returns the row at index i.
func (c *Controller) EntryAt(i int) Entry { return c.model.At(i) }

// Entries returns a copy of the rows in display order.
func (c *Controller) Entries() []Entry { return c.model.Entries() }

// Selected returns the selected row index or NoSelection.
func (c *Controller) Selected() int { return c.model.Selected() }
