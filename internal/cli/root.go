// Package cli implements the command-line interface for gctlogin.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevinelliott/gctlogin/internal/logging"
	"github.com/kevinelliott/gctlogin/internal/tui/styles"
	"github.com/kevinelliott/gctlogin/pkg/config"
)

// NewRootCommand creates the root command for gctlogin.
func NewRootCommand(cfg *config.Config, version, commit, date string) *cobra.Command {
	var (
		configFile string
		verbose    bool
		format     string
		noColor    bool
		closeLog   func() error
	)

	root := &cobra.Command{
		Use:   "gctlogin",
		Short: "Google account switcher for developer tools",
		Long: `gctlogin keeps track of the Google accounts you have signed in with
and which one is active. The active account is always listed first.

Examples:
  gctlogin accounts list           # List signed-in accounts
  gctlogin accounts use me@x.com   # Make an account active
  gctlogin login --open            # Sign in with a verification code
  gctlogin tui                     # Launch TUI interface
  gctlogin tray start              # Start the system tray switcher`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Reload config if custom path specified
			if configFile != "" {
				loader := config.NewLoader()
				newCfg, err := loader.Load(configFile)
				if err != nil {
					return fmt.Errorf("failed to load config from %s: %w", configFile, err)
				}
				*cfg = *newCfg
			}

			if verbose {
				cfg.Logging.Level = "debug"
			}
			if noColor {
				cfg.UI.UseColors = false
			}
			styles.SetColors(cfg.UI.UseColors)

			// The TUI owns the terminal, so it only logs to a file.
			var fallback io.Writer = os.Stderr
			if cmd.Name() == "tui" {
				fallback = io.Discard
			}
			_, closeFn, err := logging.Setup(cfg.Logging, fallback)
			if err != nil {
				return err
			}
			closeLog = closeFn
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	// Global flags
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&format, "format", "f", "table", "output format (table, json, yaml)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	root.AddCommand(
		NewAccountsCommand(cfg),
		NewLoginCommand(cfg),
		NewCompletionCommand(),
		NewConfigCommand(cfg),
		NewDoctorCommand(cfg),
		NewTrayCommand(cfg),
		NewTUICommand(cfg),
		NewVersionCommand(version, commit, date),
	)

	return root
}

// outputFormat returns the --format value visible to cmd.
func outputFormat(cmd *cobra.Command) string {
	if f := cmd.Flag("format"); f != nil {
		return f.Value.String()
	}
	return "table"
}

// printSuccess prints a success message with a checkmark.
func printSuccess(format string, args ...interface{}) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// printInfo prints an info message.
func printInfo(format string, args ...interface{}) {
	fmt.Printf("ℹ "+format+"\n", args...)
}

// printWarning prints a warning message.
func printWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

// PrintError prints an error message.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
