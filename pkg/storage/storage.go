// Package storage persists the list of signed-in accounts.
package storage

import (
	"context"
	"errors"

	"github.com/kevinelliott/gctlogin/pkg/account"
)

// ErrUserNotFound is returned when an operation names an unknown account.
var ErrUserNotFound = errors.New("account not found")

// Store is the account registry. Implementations keep at most one account
// active at any time.
type Store interface {
	// Initialize prepares the underlying storage (creates tables, etc).
	Initialize(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error

	// ListUsers returns all accounts in the order they were added.
	ListUsers(ctx context.Context) ([]account.User, error)

	// GetUser returns a single account.
	GetUser(ctx context.Context, email string) (*account.User, error)

	// AddUser inserts a new account or updates the name of an existing one.
	// An empty name keeps the stored one.
	// The Active flag of u is ignored; use SetActive.
	AddUser(ctx context.Context, u account.User) error

	// RemoveUser deletes an account.
	RemoveUser(ctx context.Context, email string) error

	// SetActive makes email the only active account.
	SetActive(ctx context.Context, email string) error

	// ClearActive leaves no account active.
	ClearActive(ctx context.Context) error

	// ActiveUser returns the active account, or nil if there is none.
	ActiveUser(ctx context.Context) (*account.User, error)
}
