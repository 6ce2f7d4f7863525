// gctlogin-tray - System tray account switcher for gctlogin
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kevinelliott/gctlogin/internal/browser"
	"github.com/kevinelliott/gctlogin/internal/logging"
	"github.com/kevinelliott/gctlogin/internal/systray"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/login"
	"github.com/kevinelliott/gctlogin/pkg/platform"
	"github.com/kevinelliott/gctlogin/pkg/storage"
)

// configFileEnv names a config file to load instead of the default one.
const configFileEnv = "GCTLOGIN_CONFIG_FILE"

func main() {
	plat := platform.Current()

	// Load configuration
	loader := config.NewLoader()
	cfg, err := loader.Load(os.Getenv(configFileEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Initialize storage
	store, err := storage.NewSQLiteStore(cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Initialize(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	cancel()

	mgr := login.NewManager(store, cfg.OAuth, login.WithLogger(logger))

	app := systray.New(cfg, plat, mgr, browser.NewSystem(), logger)

	// Handle shutdown signals in a goroutine
	// (systray.Run must be on main thread for macOS)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutting down", "signal", sig.String())
		app.Quit()
	}()

	// Run systray on main thread (required for macOS)
	// This blocks until systray.Quit() is called
	if err := app.Run(); err != nil {
		logger.Error("tray failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}
