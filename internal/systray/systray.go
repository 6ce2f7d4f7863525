// Package systray provides the system tray account switcher.
package systray

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/kevinelliott/gctlogin/internal/browser"
	"github.com/kevinelliott/gctlogin/pkg/account"
	"github.com/kevinelliott/gctlogin/pkg/accountlist"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/ipc"
	"github.com/kevinelliott/gctlogin/pkg/platform"
)

const commandTimeout = 30 * time.Second

// AccountManager is the account store the tray works against.
type AccountManager interface {
	AllUsers(ctx context.Context) ([]account.User, error)
	SetActiveUser(ctx context.Context, email string) error
	LogOut(ctx context.Context) error
}

// accountMenuItem tracks a menu item for one row of the account list.
type accountMenuItem struct {
	item  *systray.MenuItem
	index int
}

// App represents the system tray application.
type App struct {
	config   *config.Config
	platform platform.Platform
	accounts AccountManager
	opener   browser.Opener
	logger   *slog.Logger

	// ctrl is not safe for concurrent use; menu clicks arrive on their own
	// goroutines, so every access holds mu.
	ctrl        *accountlist.Controller
	signOut     signOutState
	lastRefresh time.Time
	mu          sync.Mutex

	server    *ipc.Server
	startTime time.Time
	quit      func()

	// Menu items
	mStatus      *systray.MenuItem
	mAccounts    *systray.MenuItem
	accountItems []*accountMenuItem
	itemsMu      sync.Mutex
	mSignOut     *systray.MenuItem
	mPlay        *systray.MenuItem
	mCloud       *systray.MenuItem
	mOpenTUI     *systray.MenuItem
	mRefresh     *systray.MenuItem
	mQuit        *systray.MenuItem

	ctx    context.Context
	cancel context.CancelFunc
}

// signOutState records what the controller asks of the Sign Out item.
type signOutState struct {
	enabled bool
}

func (s *signOutState) SetSignOutEnabled(enabled bool) { s.enabled = enabled }

// New creates a new system tray application.
func New(cfg *config.Config, plat platform.Platform, accounts AccountManager, opener browser.Opener, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:   cfg,
		platform: plat,
		accounts: accounts,
		opener:   opener,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		quit:     systray.Quit,
	}
	a.ctrl = accountlist.New(accounts, &a.signOut,
		accountlist.WithLogger(logger),
		accountlist.WithCommandTimeout(commandTimeout),
	)
	return a
}

// Run starts the system tray application and blocks until Quit.
// This must be called from the main goroutine on macOS.
func (a *App) Run() error {
	a.startTime = time.Now()

	a.server = ipc.NewServer(ipc.SocketPath(a.config.DataDir()), ipc.HandlerFunc(a.handleMessage))
	if err := a.server.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start tray listener: %w", err)
	}
	a.logger.Info("tray listening", "socket", a.server.Address())

	systray.Run(a.onReady, a.onExit)
	return nil
}

// Quit triggers a graceful shutdown of the system tray application.
func (a *App) Quit() {
	systray.Quit()
}

func (a *App) onReady() {
	// Set icon and tooltip (no title - icon only)
	icon := getIcon()
	systray.SetTemplateIcon(icon, icon)
	systray.SetTooltip("Google Accounts")

	// Status line
	a.mStatus = systray.AddMenuItem("Loading accounts...", "")
	a.mStatus.Disable()

	// Accounts submenu
	a.mAccounts = systray.AddMenuItem("Switch Account", "Make another account active")
	a.mAccounts.Disable()

	a.mSignOut = systray.AddMenuItem("Sign Out", "Sign out of the active account")
	a.mSignOut.Disable()

	systray.AddSeparator()

	a.mPlay = systray.AddMenuItem("Google Play Developer Console", a.config.Links.PlayConsoleURL)
	a.mCloud = systray.AddMenuItem("Google Cloud Console", a.config.Links.CloudConsoleURL)

	systray.AddSeparator()

	a.mOpenTUI = systray.AddMenuItem("Open Accounts Panel...", "Launch terminal interface")
	a.mRefresh = systray.AddMenuItem("Refresh", "Reload accounts")
	a.mQuit = systray.AddMenuItem("Quit", "")

	go a.refresh() //nolint:errcheck // logged by refresh
	go a.handleMenuClicks()
}

func (a *App) onExit() {
	a.cancel()
	if a.server != nil {
		if err := a.server.Stop(); err != nil {
			a.logger.Warn("failed to stop tray listener", "error", err)
		}
	}
}

// handleMessage answers requests from other gctlogin processes.
func (a *App) handleMessage(ctx context.Context, msg *ipc.Message) (*ipc.Message, error) {
	switch msg.Type {
	case ipc.MessageTypeAccountsChanged:
		var notice ipc.AccountsChangedNotice
		if err := msg.DecodePayload(&notice); err != nil {
			return nil, fmt.Errorf("invalid notice: %w", err)
		}
		a.logger.Debug("accounts changed elsewhere", "active", notice.Active)
		return nil, a.refresh()
	case ipc.MessageTypeGetStatus:
		return ipc.NewMessage(ipc.MessageTypeSuccess, a.status())
	case ipc.MessageTypeShutdown:
		a.logger.Info("shutdown requested")
		go a.quit()
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// status describes the running tray.
func (a *App) status() ipc.StatusResponse {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries := a.ctrl.Entries()
	st := ipc.StatusResponse{
		PID:          os.Getpid(),
		AccountCount: len(menuTitles(entries)),
		LastRefresh:  a.lastRefresh,
	}
	if !a.startTime.IsZero() {
		st.Uptime = int64(time.Since(a.startTime).Seconds())
	}
	if hasAccounts(entries) && entries[0].IsActive() {
		st.ActiveAccount = entries[0].Email()
	}
	return st
}

// handleMenuClicks handles menu item clicks.
func (a *App) handleMenuClicks() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.mSignOut.ClickedCh:
			go a.logOut()
		case <-a.mPlay.ClickedCh:
			go a.openLink(a.config.Links.PlayConsoleURL)
		case <-a.mCloud.ClickedCh:
			go a.openLink(a.config.Links.CloudConsoleURL)
		case <-a.mOpenTUI.ClickedCh:
			go a.openTUI()
		case <-a.mRefresh.ClickedCh:
			go a.refresh() //nolint:errcheck // logged by refresh
		case <-a.mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// load reads the account snapshot into the controller and returns the rows.
func (a *App) load(ctx context.Context) ([]accountlist.Entry, error) {
	users, err := a.accounts.AllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctrl.Initialize(users)
	a.lastRefresh = time.Now()
	return a.ctrl.Entries(), nil
}

// switchTo selects row index, which makes it the active account, and
// returns the rows in their new order.
func (a *App) switchTo(index int) []accountlist.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index >= 0 && index < a.ctrl.Len() {
		a.ctrl.Select(index)
	}
	return a.ctrl.Entries()
}

// signOutEnabled reports the Sign Out state requested by the controller.
func (a *App) signOutEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signOut.enabled && !a.ctrl.HasPlaceholder()
}

func (a *App) refresh() error {
	ctx, cancel := context.WithTimeout(a.ctx, commandTimeout)
	defer cancel()

	entries, err := a.load(ctx)
	if err != nil {
		a.logger.Warn("tray refresh failed", "error", err)
		if a.mStatus != nil {
			a.mStatus.SetTitle("Could not load accounts")
		}
		return err
	}
	a.updateMenu(entries)
	return nil
}

func (a *App) logOut() {
	ctx, cancel := context.WithTimeout(a.ctx, commandTimeout)
	defer cancel()

	if err := a.accounts.LogOut(ctx); err != nil {
		a.logger.Warn("sign out failed", "error", err)
		return
	}
	_ = a.refresh()
}

func (a *App) openLink(url string) {
	ctx, cancel := context.WithTimeout(a.ctx, commandTimeout)
	defer cancel()

	if err := a.opener.Open(ctx, url); err != nil {
		a.logger.Warn("failed to open link", "url", url, "error", err)
	}
}

// updateMenu updates the tray menu to reflect the rows.
func (a *App) updateMenu(entries []accountlist.Entry) {
	// The menu is built in onReady; a notice may arrive before that.
	if a.mStatus == nil {
		return
	}
	a.mStatus.SetTitle(statusTitle(entries))
	systray.SetTooltip(tooltip(entries))

	a.updateAccountsSubmenu(entries)

	if hasAccounts(entries) {
		a.mAccounts.Enable()
		a.mPlay.Enable()
		a.mCloud.Enable()
	} else {
		a.mAccounts.Disable()
		a.mPlay.Disable()
		a.mCloud.Disable()
	}

	if a.signOutEnabled() {
		a.mSignOut.Enable()
	} else {
		a.mSignOut.Disable()
	}
}

// updateAccountsSubmenu updates the accounts submenu with the rows.
func (a *App) updateAccountsSubmenu(entries []accountlist.Entry) {
	a.itemsMu.Lock()
	defer a.itemsMu.Unlock()

	titles := menuTitles(entries)

	// Hide existing items that are no longer needed
	for i, item := range a.accountItems {
		if i >= len(titles) {
			item.item.Hide()
		}
	}

	for i, title := range titles {
		if i < len(a.accountItems) {
			a.accountItems[i].item.SetTitle(title)
			a.accountItems[i].item.Show()
		} else {
			item := a.mAccounts.AddSubMenuItem(title, "")
			menuItem := &accountMenuItem{item: item, index: i}
			a.accountItems = append(a.accountItems, menuItem)

			go a.handleAccountItemClick(menuItem)
		}

		if entries[i].IsActive() {
			a.accountItems[i].item.Check()
		} else {
			a.accountItems[i].item.Uncheck()
		}
	}
}

// handleAccountItemClick handles clicks on an account menu item.
func (a *App) handleAccountItemClick(item *accountMenuItem) {
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-item.item.ClickedCh:
			a.updateMenu(a.switchTo(item.index))
		}
	}
}

// menuTitles returns one submenu title per account row. The placeholder
// row has no entry.
func menuTitles(entries []accountlist.Entry) []string {
	var titles []string
	for _, e := range entries {
		if e.IsPlaceholder() {
			continue
		}
		title := e.Email()
		if name := e.User().Name; name != "" {
			title = fmt.Sprintf("%s (%s)", e.Email(), name)
		}
		titles = append(titles, title)
	}
	return titles
}

func statusTitle(entries []accountlist.Entry) string {
	if !hasAccounts(entries) {
		return "No accounts signed in"
	}
	for _, e := range entries {
		if e.IsActive() {
			return "Active: " + e.User().DisplayName()
		}
	}
	return "No active account"
}

func tooltip(entries []accountlist.Entry) string {
	n := len(menuTitles(entries))
	switch n {
	case 0:
		return "Google Accounts"
	case 1:
		return "Google Accounts (1 account)"
	default:
		return fmt.Sprintf("Google Accounts (%d accounts)", n)
	}
}

func hasAccounts(entries []accountlist.Entry) bool {
	return len(entries) > 0 && !entries[0].IsPlaceholder()
}

// openTUI launches the accounts panel in a new terminal window.
func (a *App) openTUI() {
	binPath, err := findBinary()
	if err != nil {
		a.logger.Warn("could not find gctlogin binary", "error", err)
		return
	}

	cmd, err := terminalCommand(a.platform.ID(), binPath, exec.LookPath)
	if err != nil {
		a.logger.Warn("cannot open accounts panel", "error", err)
		return
	}

	// Start the command (don't wait for it)
	if err := cmd.Start(); err != nil {
		a.logger.Warn("failed to launch accounts panel", "error", err)
		return
	}

	// Release the process so it runs independently
	if cmd.Process != nil {
		cmd.Process.Release()
	}
}

// terminalCommand builds the command that runs `gctlogin tui` in a new
// terminal window.
func terminalCommand(id platform.ID, binPath string, lookPath func(string) (string, error)) (*exec.Cmd, error) {
	switch id {
	case platform.Darwin:
		// Use osascript to open Terminal with the TUI command
		script := fmt.Sprintf(`tell application "Terminal"
			activate
			do script "%s tui"
		end tell`, binPath)
		return exec.Command("osascript", "-e", script), nil
	case platform.Linux:
		// Try common terminal emulators in order of preference
		terminals := []struct {
			name string
			args []string
		}{
			{"gnome-terminal", []string{"--", binPath, "tui"}},
			{"konsole", []string{"-e", binPath, "tui"}},
			{"xfce4-terminal", []string{"-e", binPath + " tui"}},
			{"xterm", []string{"-e", binPath, "tui"}},
		}
		for _, term := range terminals {
			if _, err := lookPath(term.name); err == nil {
				return exec.Command(term.name, term.args...), nil //nolint:gosec // Safe: iterating hardcoded terminal list
			}
		}
		return nil, fmt.Errorf("no supported terminal emulator found")
	case platform.Windows:
		return exec.Command("cmd", "/c", "start", "cmd", "/k", binPath, "tui"), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", id)
	}
}

// findBinary locates the gctlogin binary.
func findBinary() (string, error) {
	name := platform.AppName
	if platform.IsWindows() {
		name += ".exe"
	}

	// gctlogin is installed next to gctlogin-tray.
	if exe, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	// Check common paths
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".local", "bin", name),
			filepath.Join(home, "go", "bin", name),
		)
	}
	paths = append(paths, "/usr/local/bin/"+name, "/usr/bin/"+name)

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%s not found in PATH or common locations", name)
}

// getIcon returns the tray icon.
// 16x16 ring icon (template image for macOS menu bar).
func getIcon() []byte {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0xF3, 0xFF, 0x61, 0x00, 0x00, 0x00,
		0x2B, 0x49, 0x44, 0x41, 0x54, 0x78, 0xDA, 0x63, 0x60, 0x18, 0xAC, 0xE0,
		0x3F, 0x0E, 0x4C, 0xB6, 0x46, 0xA2, 0x0D, 0xA2, 0xC8, 0x80, 0xFF, 0x24,
		0x62, 0x82, 0x06, 0x90, 0x2A, 0x3F, 0x1C, 0x0D, 0xA0, 0x69, 0x4C, 0xD0,
		0x2E, 0x21, 0x51, 0x9C, 0x94, 0xE9, 0x0F, 0x00, 0xF4, 0x09, 0x6B, 0x95,
		0x94, 0x7F, 0x2F, 0x72, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44,
		0xAE, 0x42, 0x60, 0x82,
	}
}
