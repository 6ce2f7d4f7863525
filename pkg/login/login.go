// Package login manages the signed-in Google accounts: signing in with a
// copy-and-paste verification code, signing out, and switching the active
// account.
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"github.com/kevinelliott/gctlogin/pkg/account"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/storage"
)

// OutOfBandRedirect asks the authorization server to display the
// verification code to the user instead of redirecting.
const OutOfBandRedirect = "urn:ietf:wg:oauth:2.0:oob"

var (
	// ErrEmptyCode is returned when no verification code was entered.
	ErrEmptyCode = errors.New("verification code is required")

	// ErrInvalidEmail is returned for a malformed account email.
	ErrInvalidEmail = errors.New("invalid account email")

	// ErrNoActiveUser is returned by LogOut when nobody is signed in.
	ErrNoActiveUser = errors.New("no active account")
)

// SignIn is what the sign-in dialog collects.
type SignIn struct {
	Email string
	Code  string

	// Name is an optional display name. Empty keeps the stored one.
	Name string
}

// CodeExchanger verifies a verification code with the authorization server.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) error
}

// Manager is the account manager shared by the CLI and the TUI.
type Manager struct {
	store     storage.Store
	oauth     *oauth2.Config
	exchanger CodeExchanger
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithExchanger verifies codes with ex before accounts are stored.
func WithExchanger(ex CodeExchanger) Option {
	return func(m *Manager) { m.exchanger = ex }
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager over store using the OAuth settings in cfg.
func NewManager(store storage.Store, cfg config.OAuthConfig, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		oauth:  OAuth2Config(cfg),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OAuth2Config converts the configured OAuth settings to an oauth2.Config.
func OAuth2Config(cfg config.OAuthConfig) *oauth2.Config {
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = OutOfBandRedirect
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirect,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}
}

// AuthURL returns the URL the user opens to obtain a verification code.
func (m *Manager) AuthURL(state string) string {
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// AllUsers returns all accounts in the order they were added.
func (m *Manager) AllUsers(ctx context.Context) ([]account.User, error) {
	return m.store.ListUsers(ctx)
}

// ActiveUser returns the active account, or nil if nobody is signed in.
func (m *Manager) ActiveUser(ctx context.Context) (*account.User, error) {
	return m.store.ActiveUser(ctx)
}

// SetActiveUser makes email the active account.
func (m *Manager) SetActiveUser(ctx context.Context, email string) error {
	if err := m.store.SetActive(ctx, email); err != nil {
		return fmt.Errorf("failed to set active account: %w", err)
	}
	m.logger.Debug("active account set", "email", email)
	return nil
}

// LogIn verifies the code, records the account and makes it active.
func (m *Manager) LogIn(ctx context.Context, in SignIn) error {
	email := strings.TrimSpace(in.Email)
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)

	if err := account.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	if code == "" {
		return ErrEmptyCode
	}

	if m.exchanger != nil {
		if err := m.exchanger.Exchange(ctx, code); err != nil {
			return fmt.Errorf("failed to verify code: %w", err)
		}
	}

	if err := m.store.AddUser(ctx, account.User{Email: email, Name: name}); err != nil {
		return err
	}
	if err := m.SetActiveUser(ctx, email); err != nil {
		return err
	}

	m.logger.Info("signed in", "email", email)
	return nil
}

// LogOut signs out the active account. If other accounts remain, the first
// of them becomes active.
func (m *Manager) LogOut(ctx context.Context) error {
	active, err := m.store.ActiveUser(ctx)
	if err != nil {
		return err
	}
	if active == nil {
		return ErrNoActiveUser
	}
	return m.Remove(ctx, active.Email)
}

// LogOutAll signs out every account. The active flag is cleared first so
// no intermediate account is promoted while the rest are removed.
func (m *Manager) LogOutAll(ctx context.Context) (int, error) {
	users, err := m.store.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	if err := m.store.ClearActive(ctx); err != nil {
		return 0, err
	}
	for i, u := range users {
		if err := m.store.RemoveUser(ctx, u.Email); err != nil {
			return i, err
		}
		m.logger.Info("signed out", "email", u.Email)
	}
	return len(users), nil
}

// Remove signs out a specific account.
func (m *Manager) Remove(ctx context.Context, email string) error {
	u, err := m.store.GetUser(ctx, email)
	if err != nil {
		return err
	}
	if err := m.store.RemoveUser(ctx, email); err != nil {
		return err
	}
	m.logger.Info("signed out", "email", email)

	if !u.Active {
		return nil
	}

	remaining, err := m.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	return m.SetActiveUser(ctx, remaining[0].Email)
}
