package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kevinelliott/gctlogin/pkg/account"
)

// DatabaseFileName is the SQLite file created inside the data directory.
const DatabaseFileName = "accounts.db"

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	email     TEXT PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	active    INTEGER NOT NULL DEFAULT 0,
	position  INTEGER NOT NULL,
	added_at  TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_single_active
	ON accounts(active) WHERE active = 1;
`

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore opens (creating if needed) the account database in dataDir.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, DatabaseFileName)
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps transactions and the partial index simple.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Initialize creates the schema.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListUsers returns all accounts in insertion order.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]account.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, name, active, added_at FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var users []account.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return users, nil
}

// GetUser returns the account with the given email.
func (s *SQLiteStore) GetUser(ctx context.Context, email string) (*account.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT email, name, active, added_at FROM accounts WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// AddUser appends a new account, or updates the name of an existing one.
// An empty name leaves the stored name untouched.
func (s *SQLiteStore) AddUser(ctx context.Context, u account.User) error {
	addedAt := u.AddedAt
	if addedAt.IsZero() {
		addedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (email, name, active, position, added_at)
		VALUES (?, ?, 0, (SELECT COALESCE(MAX(position), 0) + 1 FROM accounts), ?)
		ON CONFLICT(email) DO UPDATE SET name = COALESCE(NULLIF(excluded.name, ''), accounts.name)`,
		u.Email, u.Name, addedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to add account %s: %w", u.Email, err)
	}
	return nil
}

// RemoveUser deletes an account.
func (s *SQLiteStore) RemoveUser(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to remove account %s: %w", email, err)
	}
	return requireAffected(res, email)
}

// SetActive makes email the only active account.
func (s *SQLiteStore) SetActive(ctx context.Context, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("failed to clear active account: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE accounts SET active = 1 WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to activate account %s: %w", email, err)
	}
	if err := requireAffected(res, email); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearActive leaves no account active.
func (s *SQLiteStore) ClearActive(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE accounts SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("failed to clear active account: %w", err)
	}
	return nil
}

// ActiveUser returns the active account, or nil when none is active.
func (s *SQLiteStore) ActiveUser(ctx context.Context) (*account.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT email, name, active, added_at FROM accounts WHERE active = 1`)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (*account.User, error) {
	var (
		u      account.User
		active int
	)
	if err := sc.Scan(&u.Email, &u.Name, &active, &u.AddedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read account: %w", err)
	}
	u.Active = active == 1
	return &u, nil
}

func requireAffected(res sql.Result, email string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return nil
}
