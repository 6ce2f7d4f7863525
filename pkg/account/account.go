// Package account defines the signed-in Google account record.
package account

import (
	"fmt"
	"strings"
	"time"
)

// User is a Google account known to gctlogin.
type User struct {
	// Email identifies the account
	Email string `json:"email" yaml:"email"`

	// Name is an optional display name
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Active marks the account used for plugin operations
	Active bool `json:"active" yaml:"active"`

	// AddedAt is when the account was first signed in
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// IsActive reports whether this is the active account.
func (u User) IsActive() bool { return u.Active }

// UserEmail returns the account identifier.
func (u User) UserEmail() string { return u.Email }

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ValidateEmail performs a light sanity check on an account email.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

// CountActive returns the number of active users in the slice.
func CountActive(users []User) int {
	n := 0
	for _, u := range users {
		if u.Active {
			n++
		}
	}
	return n
}
