package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/ipc"
	"github.com/kevinelliott/gctlogin/pkg/platform"
)

const (
	trayTimeout = 2 * time.Second

	// trayBinary is the tray executable shipped next to gctlogin.
	trayBinary = "gctlogin-tray"

	// trayConfigEnv passes --config on to the tray process.
	trayConfigEnv = "GCTLOGIN_CONFIG_FILE"
)

// NewTrayCommand creates the tray management command group.
func NewTrayCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tray",
		Short: "Manage the system tray account switcher",
		Long: `Control the gctlogin system tray process.

The tray shows the active account and lets you switch accounts, sign out,
and open the Google Play Developer Console or the Google Cloud Console.
Other gctlogin commands tell a running tray when the accounts change.`,
	}

	cmd.AddCommand(
		newTrayStartCommand(cfg),
		newTrayStopCommand(cfg),
		newTrayStatusCommand(cfg),
	)

	return cmd
}

func newTrayStartCommand(cfg *config.Config) *cobra.Command {
	var foreground bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the tray",
		Long: `Start the tray in the background.

The tray runs as the gctlogin-tray program installed next to gctlogin.
Use --foreground to keep it attached to the terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTrayRunning(cfg) {
				printInfo("Tray is already running")
				return nil
			}

			trayPath, err := findTrayBinary(os.Executable, exec.LookPath)
			if err != nil {
				return fmt.Errorf("could not find tray binary: %w", err)
			}

			c := exec.Command(trayPath) //nolint:gosec // path comes from findTrayBinary
			c.Env = trayEnv(cmd, os.Environ())

			if foreground {
				fmt.Println("Starting tray in foreground...")
				c.Stdout = os.Stdout
				c.Stderr = os.Stderr
				return c.Run()
			}

			if err := c.Start(); err != nil {
				return fmt.Errorf("failed to start tray: %w", err)
			}

			// Save PID before releasing (Release invalidates the Process)
			pid := c.Process.Pid
			if err := c.Process.Release(); err != nil {
				return fmt.Errorf("failed to detach tray: %w", err)
			}

			printSuccess("Tray started (PID: %d)", pid)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&foreground, "foreground", "F", false, "run in foreground (don't daemonize)")

	return cmd
}

// trayEnv returns the tray's environment, carrying over --config.
func trayEnv(cmd *cobra.Command, environ []string) []string {
	env := append([]string(nil), environ...)
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		env = append(env, trayConfigEnv+"="+f.Value.String())
	}
	return env
}

// findTrayBinary locates gctlogin-tray, preferring the copy installed next
// to the running executable.
func findTrayBinary(executable func() (string, error), lookPath func(string) (string, error)) (string, error) {
	name := trayBinary
	if platform.IsWindows() {
		name += ".exe"
	}

	if exe, err := executable(); err == nil {
		path := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := lookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%s not found next to gctlogin or in PATH", name)
}

func newTrayStopCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the tray",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTrayRunning(cfg) {
				printInfo("Tray is not running")
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if _, err := ipc.Request(ctx, traySocket(cfg), ipc.MessageTypeShutdown, nil); err != nil {
				// The tray may exit before it answers.
				printWarning("Tray may have shut down before acknowledging: %v", err)
			}

			printSuccess("Tray stopped")
			return nil
		},
	}
}

func newTrayStatusCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check tray status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			fmt.Println("Tray Status:")

			resp, err := ipc.Request(ctx, traySocket(cfg), ipc.MessageTypeGetStatus, nil)
			if err != nil {
				fmt.Println("  Running: no")
				return nil
			}

			var status ipc.StatusResponse
			if err := resp.DecodePayload(&status); err != nil {
				return fmt.Errorf("failed to decode tray status: %w", err)
			}

			fmt.Println("  Running: yes")
			fmt.Printf("  PID: %d\n", status.PID)
			fmt.Printf("  Uptime: %s\n", formatDuration(time.Duration(status.Uptime)*time.Second))
			fmt.Printf("  Accounts: %d\n", status.AccountCount)
			if status.ActiveAccount != "" {
				fmt.Printf("  Active account: %s\n", status.ActiveAccount)
			}
			if !status.LastRefresh.IsZero() {
				fmt.Printf("  Last refresh: %s\n", status.LastRefresh.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func traySocket(cfg *config.Config) string {
	return ipc.SocketPath(cfg.DataDir())
}

// isTrayRunning reports whether a tray answers on the socket.
func isTrayRunning(cfg *config.Config) bool {
	ctx, cancel := context.WithTimeout(context.Background(), trayTimeout)
	defer cancel()

	_, err := ipc.Request(ctx, traySocket(cfg), ipc.MessageTypeGetStatus, nil)
	return err == nil
}

// notifyTray tells a running tray that the accounts changed. Having no
// tray is normal.
func notifyTray(cfg *config.Config, active string) {
	ctx, cancel := context.WithTimeout(context.Background(), trayTimeout)
	defer cancel()

	if ipc.Notify(ctx, traySocket(cfg), active) {
		slog.Debug("tray notified", "active", active)
	}
}
