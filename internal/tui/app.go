// Package tui provides the terminal user interface.
package tui

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kevinelliott/gctlogin/internal/browser"
	"github.com/kevinelliott/gctlogin/internal/clipboard"
	"github.com/kevinelliott/gctlogin/internal/tui/styles"
	"github.com/kevinelliott/gctlogin/pkg/account"
	"github.com/kevinelliott/gctlogin/pkg/accountlist"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/login"
)

// listTop is the first screen line of the account list.
const listTop = 2

const commandTimeout = 30 * time.Second

// AccountManager is the account store the panel works against.
type AccountManager interface {
	AllUsers(ctx context.Context) ([]account.User, error)
	SetActiveUser(ctx context.Context, email string) error
	LogIn(ctx context.Context, in login.SignIn) error
	LogOut(ctx context.Context) error
	AuthURL(state string) string
}

// signOutButton records the state the controller asks for.
type signOutButton struct {
	enabled bool
}

func (b *signOutButton) SetSignOutEnabled(enabled bool) { b.enabled = enabled }

// Model is the accounts panel.
type Model struct {
	// Configuration
	config *config.Config

	// Collaborators
	accounts AccountManager
	opener   browser.Opener
	clip     clipboard.Clipboard
	logger   *slog.Logger

	// Data
	ctrl    *accountlist.Controller
	signOut *signOutButton

	// UI state
	cursor  int
	offset  int
	hover   int
	width   int
	height  int
	loading bool
	status  string
	err     error

	// Components
	dialog  *signInDialog
	spinner spinner.Model

	// Key bindings
	keys keyMap
}

// usersLoadedMsg is sent when the account snapshot has been read.
type usersLoadedMsg struct {
	users []account.User
	err   error
}

// accountsChangedMsg is sent after a sign-in or sign-out finished.
type accountsChangedMsg struct {
	status string
	err    error
}

// urlOpenedMsg reports the result of opening a link.
type urlOpenedMsg struct {
	url string
	err error
}

// New creates a new TUI model.
func New(cfg *config.Config, accounts AccountManager, opener browser.Opener, clip clipboard.Clipboard, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Title

	signOut := &signOutButton{}
	ctrl := accountlist.New(accounts, signOut,
		accountlist.WithLogger(logger),
		accountlist.WithCommandTimeout(commandTimeout),
	)

	return Model{
		config:   cfg,
		accounts: accounts,
		opener:   opener,
		clip:     clip,
		logger:   logger,
		ctrl:     ctrl,
		signOut:  signOut,
		hover:    accountlist.NoSelection,
		keys:     DefaultKeyMap(),
		spinner:  s,
		loading:  true,
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadUsers,
	)
}

// loadUsers reads the account snapshot.
func (m Model) loadUsers() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	users, err := m.accounts.AllUsers(ctx)
	if err != nil {
		return usersLoadedMsg{err: fmt.Errorf("failed to load accounts: %w", err)}
	}
	return usersLoadedMsg{users: users}
}

func (m Model) logIn(in login.SignIn) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := m.accounts.LogIn(ctx, in); err != nil {
			return accountsChangedMsg{err: fmt.Errorf("sign in failed: %w", err)}
		}
		return accountsChangedMsg{status: "Signed in as " + in.Email}
	}
}

func (m Model) logOut() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := m.accounts.LogOut(ctx); err != nil {
		return accountsChangedMsg{err: fmt.Errorf("sign out failed: %w", err)}
	}
	return accountsChangedMsg{status: "Signed out"}
}

func (m Model) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return urlOpenedMsg{url: url, err: m.opener.Open(ctx, url)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case usersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.ctrl.Initialize(msg.users)
		m.cursor, m.offset = 0, 0
		m.syncCursor()
		return m, nil

	case accountsChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.logger.Warn("account command failed", "error", msg.err)
		} else {
			m.err = nil
			m.status = msg.status
		}
		m.loading = true
		return m, m.loadUsers

	case signInSubmittedMsg:
		m.dialog = nil
		return m, m.logIn(msg.signIn)

	case signInCanceledMsg:
		m.dialog = nil
		return m, nil

	case openURLMsg:
		return m, m.openURL(msg.url)

	case urlOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "Opened " + msg.url
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.dialog != nil {
			return m.updateDialog(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.dialog != nil {
			return m, nil
		}
		return m.handleMouse(msg)
	}

	if m.dialog != nil {
		return m.updateDialog(msg)
	}
	return m, nil
}

func (m Model) updateDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	d, cmd := m.dialog.Update(msg)
	m.dialog = &d
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.ctrl.Len() > 0 && m.cursor > 0 {
			m.cursor--
			m.ctrl.SelectAdjusting(m.cursor)
			m.ensureVisible()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.ctrl.Len()-1 {
			m.cursor++
			m.ctrl.SelectAdjusting(m.cursor)
			m.ensureVisible()
		}

	case key.Matches(msg, m.keys.Enter):
		if m.ctrl.Len() > 0 {
			m.activate(m.cursor)
		}

	case key.Matches(msg, m.keys.AddAccount):
		return m.openSignIn()

	case key.Matches(msg, m.keys.SignOut):
		if m.canSignOut() {
			return m, m.logOut
		}

	case key.Matches(msg, m.keys.PlayConsole):
		if m.activeSelected() {
			return m, m.openURL(m.config.Links.PlayConsoleURL)
		}

	case key.Matches(msg, m.keys.Cloud):
		if m.activeSelected() {
			return m, m.openURL(m.config.Links.CloudConsoleURL)
		}

	case key.Matches(msg, m.keys.LearnMore):
		if m.ctrl.HasPlaceholder() {
			return m, m.openURL(m.config.Links.LearnMoreURL)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.loadUsers)
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	idx, line := m.rowAt(msg.Y - listTop)

	switch msg.Action {
	case tea.MouseActionMotion:
		m.hover = idx
		return m, nil

	case tea.MouseActionPress:
	default:
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.offset > 0 {
			m.offset--
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if m.offset < m.ctrl.Len()-1 {
			m.offset++
		}
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}

	if button, ok := m.buttonAt(msg); ok {
		switch button {
		case buttonAdd:
			return m.openSignIn()
		case buttonSignOut:
			return m, m.logOut
		}
		return m, nil
	}
	if idx < 0 {
		return m, nil
	}

	entry := m.ctrl.EntryAt(idx)
	if entry.IsPlaceholder() {
		if line == learnMoreLine {
			return m, m.openURL(m.config.Links.LearnMoreURL)
		}
		return m, nil
	}

	// A click that does not change the selection lands on the already
	// active row; only then are its links live.
	m.ctrl.TakeChanged()
	m.activate(idx)
	if m.ctrl.TakeChanged() || !entry.IsActive() {
		return m, nil
	}

	switch line {
	case playLinkLine:
		return m, m.openURL(m.config.Links.PlayConsoleURL)
	case cloudLinkLine:
		return m, m.openURL(m.config.Links.CloudConsoleURL)
	}
	return m, nil
}

// Buttons on the button row.
const (
	buttonNone = iota
	buttonAdd
	buttonSignOut
)

// buttonAt reports which button, if any, sits at the mouse position. ok is
// false when the position is outside the button row.
func (m Model) buttonAt(msg tea.MouseMsg) (button int, ok bool) {
	top := listTop + m.viewportHeight() + 1
	if msg.Y < top || msg.Y >= top+3 {
		return buttonNone, false
	}

	_, addWidth := buttonsView(m.ctrl.HasPlaceholder(), m.signOut.enabled)
	switch {
	case msg.X < addWidth:
		return buttonAdd, true
	case msg.X >= addWidth+2 && m.canSignOut():
		return buttonSignOut, true
	}
	return buttonNone, true
}

// activate selects row idx through the controller and follows the
// resulting selection.
func (m *Model) activate(idx int) {
	before := m.activeEmail()

	m.cursor = idx
	m.ctrl.Select(idx)
	m.syncCursor()

	if after := m.activeEmail(); after != "" && after != before {
		m.status = "Active account: " + after
	}
}

func (m Model) openSignIn() (Model, tea.Cmd) {
	title := ""
	if m.ctrl.HasPlaceholder() {
		title = signInTitle
	}
	d := newSignInDialog(title, m.accounts.AuthURL(newState()), m.clip)
	m.dialog = &d
	return m, d.Init()
}

func (m Model) canSignOut() bool {
	return m.signOut.enabled && !m.ctrl.HasPlaceholder()
}

func (m Model) activeSelected() bool {
	sel := m.ctrl.Selected()
	return sel != accountlist.NoSelection && m.ctrl.EntryAt(sel).IsActive()
}

func (m Model) activeEmail() string {
	for _, e := range m.ctrl.Entries() {
		if e.IsActive() {
			return e.Email()
		}
	}
	return ""
}

// syncCursor moves the cursor to the controller's selection and keeps it
// on screen.
func (m *Model) syncCursor() {
	if sel := m.ctrl.Selected(); sel != accountlist.NoSelection {
		m.cursor = sel
	}
	if m.cursor >= m.ctrl.Len() {
		m.cursor = max(m.ctrl.Len()-1, 0)
	}
	m.ensureVisible()
}

// viewportHeight is the number of screen lines used by the list.
func (m Model) viewportHeight() int {
	maxRows := m.config.UI.MaxVisibleRows
	if h, ok := m.ctrl.ViewportHeight(maxRows, rowHeight, activeRowHeight); ok {
		return h
	}
	if m.ctrl.HasPlaceholder() {
		return placeholderRowHeight
	}
	return m.ctrl.VisibleRowCount(maxRows) * rowHeight
}

// ensureVisible scrolls so the cursor row is fully on screen.
func (m *Model) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
		return
	}
	height := m.viewportHeight()
	for m.offset < m.cursor {
		used := 0
		for i := m.offset; i <= m.cursor; i++ {
			used += entryHeight(m.ctrl.EntryAt(i))
		}
		if used <= height {
			return
		}
		m.offset++
	}
}

// rowAt maps a line inside the list viewport to a row index and the line
// within that row. It returns NoSelection when y hits no row.
func (m Model) rowAt(y int) (index, line int) {
	if y < 0 || y >= m.viewportHeight() {
		return accountlist.NoSelection, 0
	}
	for i := m.offset; i < m.ctrl.Len(); i++ {
		h := entryHeight(m.ctrl.EntryAt(i))
		if y < h {
			return i, y
		}
		y -= h
	}
	return accountlist.NoSelection, 0
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.dialog != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.dialog.View())
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Google Accounts"))
	b.WriteString("\n\n")
	b.WriteString(m.listView())
	b.WriteString("\n\n")

	buttons, _ := buttonsView(m.ctrl.HasPlaceholder(), m.signOut.enabled)
	b.WriteString(buttons)
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorMessage.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(styles.InfoMessage.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.footerView())

	return b.String()
}

// listView renders exactly viewportHeight lines.
func (m Model) listView() string {
	height := m.viewportHeight()

	if m.loading && m.ctrl.Len() == 0 {
		lines := []string{fmt.Sprintf("%s Loading accounts...", m.spinner.View())}
		for len(lines) < height {
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n")
	}

	var lines []string
	for i := m.offset; i < m.ctrl.Len() && len(lines) < height; i++ {
		selected := i == m.cursor && !m.ctrl.HasPlaceholder()
		lines = append(lines, renderEntry(m.ctrl.EntryAt(i), selected, i == m.hover, m.width)...)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// switchPending reports whether the cursor was moved onto an inactive
// account that enter would activate.
func (m Model) switchPending() bool {
	if !m.ctrl.Adjusting() || m.cursor < 0 || m.cursor >= m.ctrl.Len() {
		return false
	}
	e := m.ctrl.EntryAt(m.cursor)
	return !e.IsPlaceholder() && !e.IsActive()
}

// footerView renders the help line.
func (m Model) footerView() string {
	helpKeys := []string{
		styles.HelpKey.Render("↑/↓") + styles.Help.Render(" move"),
	}
	if m.switchPending() {
		helpKeys = append(helpKeys, styles.HelpKey.Render("enter")+styles.Help.Render(" make active"))
	}
	helpKeys = append(helpKeys, styles.HelpKey.Render("a")+styles.Help.Render(" add"))
	if m.canSignOut() {
		helpKeys = append(helpKeys, styles.HelpKey.Render("x")+styles.Help.Render(" sign out"))
	}
	if m.activeSelected() {
		helpKeys = append(helpKeys,
			styles.HelpKey.Render("p")+styles.Help.Render(" play"),
			styles.HelpKey.Render("c")+styles.Help.Render(" cloud"),
		)
	}
	if m.ctrl.HasPlaceholder() {
		helpKeys = append(helpKeys, styles.HelpKey.Render("l")+styles.Help.Render(" learn more"))
	}
	helpKeys = append(helpKeys, styles.HelpKey.Render("q")+styles.Help.Render(" quit"))

	return strings.Join(helpKeys, "  ")
}

// newState returns a random OAuth state value.
func newState() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "gctlogin"
	}
	return hex.EncodeToString(buf)
}

// Run starts the TUI.
func Run(cfg *config.Config, accounts AccountManager, opener browser.Opener, clip clipboard.Clipboard, logger *slog.Logger) error {
	styles.SetColors(cfg.UI.UseColors)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(New(cfg, accounts, opener, clip, logger), opts...)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
