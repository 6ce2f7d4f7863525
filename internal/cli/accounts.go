package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kevinelliott/gctlogin/pkg/account"
	"github.com/kevinelliott/gctlogin/pkg/accountlist"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/login"
	"github.com/kevinelliott/gctlogin/pkg/storage"
)

const commandTimeout = 30 * time.Second

// NewAccountsCommand creates the accounts management command group.
func NewAccountsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage signed-in accounts",
		Long: `List the Google accounts you have signed in with, switch the active
account, and sign out.`,
	}

	cmd.AddCommand(
		newAccountsListCommand(cfg),
		newAccountsUseCommand(cfg),
		newAccountsLogoutCommand(cfg),
	)

	return cmd
}

func newAccountsListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List signed-in accounts",
		Long:    `List all signed-in accounts. The active account is listed first.`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			mgr, closeFn, err := openManager(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			users, err := mgr.AllUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			items := accountListItems(users, time.Now())

			switch outputFormat(cmd) {
			case "json":
				return outputAccountsJSON(items)
			case "yaml":
				return outputAccountsYAML(items)
			default:
				return outputAccountsTable(items)
			}
		},
	}
}

func newAccountsUseCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "use <email>",
		Short: "Make an account active",
		Long: `Make a signed-in account the active one.

Examples:
  gctlogin accounts use me@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			mgr, closeFn, err := openManager(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := mgr.SetActiveUser(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Active account: %s", args[0])
			notifyTray(cfg, args[0])
			return nil
		},
	}
}

func newAccountsLogoutCommand(cfg *config.Config) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout [email]",
		Short: "Sign out of an account",
		Long: `Sign out of the active account, or of the given account.

When the active account is signed out, the first remaining account
becomes active.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			mgr, closeFn, err := openManager(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			switch {
			case all:
				n, err := mgr.LogOutAll(ctx)
				if n > 0 {
					notifyTray(cfg, "")
				}
				if err != nil {
					return err
				}
				printSuccess("Signed out of %d account(s)", n)
				return nil

			case len(args) == 1:
				if err := mgr.Remove(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Signed out %s", args[0])

			default:
				if err := mgr.LogOut(ctx); err != nil {
					return err
				}
				printSuccess("Signed out")
			}

			active, err := mgr.ActiveUser(ctx)
			if err != nil {
				return err
			}
			if active != nil {
				printInfo("Active account: %s", active.Email)
				notifyTray(cfg, active.Email)
			} else {
				printInfo("No accounts signed in")
				notifyTray(cfg, "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "sign out of every account")

	return cmd
}

// openManager opens the account database and returns a manager over it.
// The returned func closes the database.
func openManager(ctx context.Context, cfg *config.Config) (*login.Manager, func() error, error) {
	store, err := storage.NewSQLiteStore(cfg.DataDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage: %w", err)
	}
	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	opts := []login.Option{login.WithLogger(slog.Default())}
	if cfg.OAuth.VerifyCode {
		opts = append(opts, login.WithExchanger(login.OAuth2Exchanger{Config: login.OAuth2Config(cfg.OAuth)}))
	}
	return login.NewManager(store, cfg.OAuth, opts...), store.Close, nil
}

// AccountListItem represents an account in the list output.
type AccountListItem struct {
	Email   string    `json:"email" yaml:"email"`
	Name    string    `json:"name,omitempty" yaml:"name,omitempty"`
	Active  bool      `json:"active" yaml:"active"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
	Age     string    `json:"-" yaml:"-"`
}

// accountListItems orders users the way the accounts panel does, with the
// active account first.
func accountListItems(users []account.User, now time.Time) []AccountListItem {
	ordered := accountlist.ActiveFirst(users)
	items := make([]AccountListItem, 0, len(ordered))
	for _, u := range ordered {
		item := AccountListItem{
			Email:   u.Email,
			Name:    u.Name,
			Active:  u.Active,
			AddedAt: u.AddedAt,
			Age:     "-",
		}
		if !u.AddedAt.IsZero() {
			item.Age = formatDuration(now.Sub(u.AddedAt)) + " ago"
		}
		items = append(items, item)
	}
	return items
}

func outputAccountsTable(items []AccountListItem) error {
	if len(items) == 0 {
		fmt.Println("No accounts signed in.")
		fmt.Println("\nRun 'gctlogin login' to sign in.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "\tEMAIL\tNAME\tADDED")
	fmt.Fprintln(w, "\t-----\t----\t-----")

	for _, item := range items {
		marker := " "
		if item.Active {
			marker = "●"
		}
		name := item.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, item.Email, name, item.Age)
	}

	return nil
}

func outputAccountsJSON(items []AccountListItem) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

func outputAccountsYAML(items []AccountListItem) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(items)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd %dh", days, int(d.Hours())%24)
}
