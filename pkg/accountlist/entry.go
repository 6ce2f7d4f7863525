// Package accountlist keeps the ordered list of signed-in accounts shown by
// the accounts panel. The active account always floats to the top and a
// selection on any other row makes it the active one.
package accountlist

import "github.com/kevinelliott/gctlogin/pkg/account"

// EntryKind distinguishes real accounts from the "no accounts" row.
type EntryKind int

const (
	// KindAccount is a signed-in account.
	KindAccount EntryKind = iota
	// KindPlaceholder is the sentinel shown when nobody is signed in.
	KindPlaceholder
)

// String returns the kind name.
func (k EntryKind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Entry is one row of the account list.
type Entry struct {
	kind EntryKind
	user account.User
}

// AccountEntry wraps a user as a list row.
func AccountEntry(u account.User) Entry {
	return Entry{kind: KindAccount, user: u}
}

// PlaceholderEntry returns the "no accounts" row.
func PlaceholderEntry() Entry {
	return Entry{kind: KindPlaceholder}
}

// Kind returns the entry kind.
func (e Entry) Kind() EntryKind { return e.kind }

// IsPlaceholder reports whether e is the "no accounts" row.
func (e Entry) IsPlaceholder() bool { return e.kind == KindPlaceholder }

// User returns the wrapped account. It is the zero User for the placeholder.
func (e Entry) User() account.User { return e.user }

// Email returns the account email, or "" for the placeholder.
func (e Entry) Email() string { return e.user.Email }

// IsActive reports whether the row is the active account.
// The placeholder is never active.
func (e Entry) IsActive() bool {
	return e.kind == KindAccount && e.user.Active
}

func (e Entry) withActive(active bool) Entry {
	if e.kind != KindAccount {
		return e
	}
	e.user.Active = active
	return e
}
