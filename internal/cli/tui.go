package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kevinelliott/gctlogin/internal/browser"
	"github.com/kevinelliott/gctlogin/internal/clipboard"
	"github.com/kevinelliott/gctlogin/internal/tui"
	"github.com/kevinelliott/gctlogin/pkg/config"
)

// NewTUICommand creates the tui command.
func NewTUICommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal user interface",
		Long: `Launch the interactive accounts panel.

The active account is listed first with links to the Google Play Developer
Console and the Google Cloud Console. Selecting another account makes it
active and moves it to the top.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			mgr, closeFn, err := openManager(ctx, cfg)
			cancel()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := tui.Run(cfg, mgr, browser.NewSystem(), clipboard.Default(), slog.Default()); err != nil {
				return err
			}

			// Tell a running tray about whatever the panel changed.
			ctx, cancel = context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			var active string
			if u, err := mgr.ActiveUser(ctx); err == nil && u != nil {
				active = u.Email
			}
			notifyTray(cfg, active)
			return nil
		},
	}
}
