package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinelliott/gctlogin/internal/clipboard"
	"github.com/kevinelliott/gctlogin/pkg/account"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/platform"
	"github.com/kevinelliott/gctlogin/pkg/storage"
)

// CheckResult represents the result of a health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string
}

// CheckStatus represents the status of a check.
type CheckStatus int

const (
	CheckOK CheckStatus = iota
	CheckWarning
	CheckError
	CheckSkipped
)

// checkSection is a titled group of checks.
type checkSection struct {
	title   string
	results []CheckResult
}

// NewDoctorCommand creates the doctor command for system health checks.
func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system health and configuration",
		Long: `Run health checks on the account database, the configuration and
the desktop integrations used for sign-in.

Examples:
  gctlogin doctor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			fmt.Println()
			fmt.Println("gctlogin Doctor")
			fmt.Println("===============")
			fmt.Println()

			sections := runDoctor(ctx, cfg)
			for _, s := range sections {
				fmt.Println(s.title)
				fmt.Println(strings.Repeat("-", len(s.title)))
				printResults(s.results)
				fmt.Println()
			}

			ok, warn, errs, skipped := summarize(sections)
			fmt.Println("Summary")
			fmt.Println("-------")
			fmt.Printf("  Passed:   %d\n", ok)
			if warn > 0 {
				printWarning("  Warnings: %d", warn)
			}
			if errs > 0 {
				PrintError("  Errors:   %d", errs)
			}
			if skipped > 0 {
				fmt.Printf("  Skipped:  %d\n", skipped)
			}
			fmt.Println()

			if errs > 0 {
				return fmt.Errorf("health checks failed")
			}
			if warn > 0 {
				printWarning("All checks passed with warnings.")
			} else {
				printSuccess("All checks passed!")
			}
			return nil
		},
	}
}

func runDoctor(ctx context.Context, cfg *config.Config) []checkSection {
	return []checkSection{
		{"System", runSystemChecks()},
		{"Storage", runStorageChecks(ctx, cfg)},
		{"Configuration", runConfigChecks(cfg)},
		{"Integrations", runIntegrationChecks(cfg, exec.LookPath)},
	}
}

func summarize(sections []checkSection) (ok, warn, errs, skipped int) {
	for _, s := range sections {
		for _, r := range s.results {
			switch r.Status {
			case CheckOK:
				ok++
			case CheckWarning:
				warn++
			case CheckError:
				errs++
			case CheckSkipped:
				skipped++
			}
		}
	}
	return ok, warn, errs, skipped
}

func printResults(results []CheckResult) {
	for _, r := range results {
		switch r.Status {
		case CheckOK:
			printSuccess("%s: %s", r.Name, r.Message)
		case CheckWarning:
			printWarning("%s: %s", r.Name, r.Message)
			if r.Fix != "" {
				fmt.Printf("         Fix: %s\n", r.Fix)
			}
		case CheckError:
			PrintError("%s: %s", r.Name, r.Message)
			if r.Fix != "" {
				fmt.Printf("       Fix: %s\n", r.Fix)
			}
		case CheckSkipped:
			printInfo("%s: %s (skipped)", r.Name, r.Message)
		}
	}
}

func runSystemChecks() []CheckResult {
	plat := platform.Current()
	return []CheckResult{
		{Name: "Go Runtime", Status: CheckOK, Message: runtime.Version()},
		{Name: "Platform", Status: CheckOK, Message: fmt.Sprintf("%s/%s", plat.Name(), plat.Architecture())},
	}
}

func runStorageChecks(ctx context.Context, cfg *config.Config) []CheckResult {
	var results []CheckResult

	dataDir := cfg.DataDir()
	results = append(results, CheckResult{
		Name:    "Data Directory",
		Status:  CheckOK,
		Message: dataDir,
	})

	store, err := storage.NewSQLiteStore(dataDir)
	if err != nil {
		return append(results, CheckResult{
			Name:    "Database",
			Status:  CheckError,
			Message: fmt.Sprintf("failed to open: %v", err),
			Fix:     "Check the permissions of " + dataDir,
		})
	}
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		return append(results, CheckResult{
			Name:    "Database",
			Status:  CheckError,
			Message: fmt.Sprintf("failed to initialize: %v", err),
			Fix:     "Delete " + store.Path() + " and sign in again",
		})
	}
	results = append(results, CheckResult{
		Name:    "Database",
		Status:  CheckOK,
		Message: store.Path(),
	})

	users, err := store.ListUsers(ctx)
	if err != nil {
		return append(results, CheckResult{
			Name:    "Accounts",
			Status:  CheckError,
			Message: fmt.Sprintf("failed to read: %v", err),
		})
	}

	active := account.CountActive(users)
	switch {
	case len(users) == 0:
		results = append(results, CheckResult{
			Name:    "Accounts",
			Status:  CheckWarning,
			Message: "no accounts signed in",
			Fix:     "Run 'gctlogin login'",
		})
	case active == 0:
		results = append(results, CheckResult{
			Name:    "Accounts",
			Status:  CheckWarning,
			Message: fmt.Sprintf("%d signed in, none active", len(users)),
			Fix:     "Run 'gctlogin accounts use <email>'",
		})
	case active > 1:
		results = append(results, CheckResult{
			Name:    "Accounts",
			Status:  CheckWarning,
			Message: fmt.Sprintf("%d accounts are marked active", active),
			Fix:     "Run 'gctlogin accounts use <email>' to pick one",
		})
	default:
		results = append(results, CheckResult{
			Name:    "Accounts",
			Status:  CheckOK,
			Message: fmt.Sprintf("%d signed in", len(users)),
		})
	}

	return results
}

func runConfigChecks(cfg *config.Config) []CheckResult {
	var results []CheckResult

	path := config.GetConfigPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		results = append(results, CheckResult{
			Name:    "Config File",
			Status:  CheckWarning,
			Message: "not found, using defaults",
			Fix:     "Run 'gctlogin config init'",
		})
	} else {
		results = append(results, CheckResult{
			Name:    "Config File",
			Status:  CheckOK,
			Message: path,
		})
	}

	switch {
	case cfg.OAuth.ClientID != "":
		results = append(results, CheckResult{Name: "OAuth Client", Status: CheckOK, Message: cfg.OAuth.ClientID})
	case cfg.OAuth.VerifyCode:
		results = append(results, CheckResult{
			Name:    "OAuth Client",
			Status:  CheckError,
			Message: "verify_code is on but client_id is empty",
			Fix:     "Run 'gctlogin config set oauth.client_id <id>'",
		})
	default:
		results = append(results, CheckResult{
			Name:    "OAuth Client",
			Status:  CheckWarning,
			Message: "client_id is empty",
			Fix:     "Run 'gctlogin config set oauth.client_id <id>'",
		})
	}

	links := []struct{ name, value string }{
		{"Play Console Link", cfg.Links.PlayConsoleURL},
		{"Cloud Console Link", cfg.Links.CloudConsoleURL},
		{"Learn More Link", cfg.Links.LearnMoreURL},
	}
	for _, l := range links {
		results = append(results, checkURL(l.name, l.value))
	}

	return results
}

func checkURL(name, value string) CheckResult {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: fmt.Sprintf("invalid url %q", value),
			Fix:     "Run 'gctlogin config init --force' to restore the defaults",
		}
	}
	return CheckResult{Name: name, Status: CheckOK, Message: value}
}

func runIntegrationChecks(cfg *config.Config, lookPath func(string) (string, error)) []CheckResult {
	var results []CheckResult

	if !clipboard.Available() {
		results = append(results, CheckResult{
			Name:    "Clipboard",
			Status:  CheckWarning,
			Message: "not available, copy and paste stay inside gctlogin",
			Fix:     "Install xclip, xsel or wl-clipboard",
		})
	} else {
		results = append(results, CheckResult{Name: "Clipboard", Status: CheckOK, Message: "available"})
	}

	results = append(results, checkBrowser(os.Getenv("BROWSER"), platform.CurrentID(), lookPath))

	if isTrayRunning(cfg) {
		results = append(results, CheckResult{Name: "Tray", Status: CheckOK, Message: "running"})
	} else {
		results = append(results, CheckResult{
			Name:    "Tray",
			Status:  CheckSkipped,
			Message: "not running",
		})
	}

	return results
}

// checkBrowser reports how links will be opened.
func checkBrowser(env string, id platform.ID, lookPath func(string) (string, error)) CheckResult {
	if env != "" {
		return CheckResult{Name: "Browser", Status: CheckOK, Message: "$BROWSER=" + env}
	}

	var opener string
	switch id {
	case platform.Darwin:
		opener = "open"
	case platform.Windows:
		return CheckResult{Name: "Browser", Status: CheckOK, Message: "system default"}
	default:
		opener = "xdg-open"
	}

	if _, err := lookPath(opener); err != nil {
		return CheckResult{
			Name:    "Browser",
			Status:  CheckWarning,
			Message: opener + " not found, links are only printed",
			Fix:     "Set $BROWSER or install xdg-utils",
		}
	}
	return CheckResult{Name: "Browser", Status: CheckOK, Message: opener}
}
