package systray

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/kevinelliott/gctlogin/pkg/account"
	"github.com/kevinelliott/gctlogin/pkg/accountlist"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/ipc"
	"github.com/kevinelliott/gctlogin/pkg/platform"
)

type fakeManager struct {
	users     []account.User
	setActive []string
}

func (f *fakeManager) AllUsers(ctx context.Context) ([]account.User, error) {
	return f.users, nil
}

func (f *fakeManager) SetActiveUser(ctx context.Context, email string) error {
	f.setActive = append(f.setActive, email)
	return nil
}

func (f *fakeManager) LogOut(ctx context.Context) error { return nil }

type nopOpener struct{}

func (nopOpener) Open(ctx context.Context, url string) error { return nil }

func newTestApp(users ...account.User) (*App, *fakeManager) {
	mgr := &fakeManager{users: users}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.Default(), platform.Current(), mgr, nopOpener{}, logger), mgr
}

func emails(entries []accountlist.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Email())
	}
	return out
}

func TestGetIcon(t *testing.T) {
	icon := getIcon()

	// Icon should not be empty
	if len(icon) == 0 {
		t.Error("getIcon() returned empty slice")
	}

	// Icon should be valid PNG (starts with PNG signature)
	pngSignature := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if !bytes.HasPrefix(icon, pngSignature) {
		t.Error("getIcon() did not return valid PNG data")
	}

	// PNG should end with IEND chunk
	iendSignature := []byte{0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82}
	if !bytes.HasSuffix(icon, iendSignature) {
		t.Error("getIcon() PNG data missing IEND chunk")
	}
}

func TestLoadAndSwitch(t *testing.T) {
	app, mgr := newTestApp(
		account.User{Email: "a@example.com"},
		account.User{Email: "b@example.com", Active: true},
		account.User{Email: "c@example.com"},
	)

	entries, err := app.load(context.Background())
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	want := []string{"b@example.com", "a@example.com", "c@example.com"}
	if got := emails(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("after load = %v, want %v", got, want)
	}
	if !app.signOutEnabled() {
		t.Error("sign out should be enabled with an active account")
	}

	entries = app.switchTo(2)
	want = []string{"c@example.com", "b@example.com", "a@example.com"}
	if got := emails(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("after switch = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(mgr.setActive, []string{"c@example.com"}) {
		t.Errorf("setActive = %v", mgr.setActive)
	}

	// Switching to the active row changes nothing.
	app.switchTo(0)
	if len(mgr.setActive) != 1 {
		t.Errorf("setActive = %v, want one call", mgr.setActive)
	}

	// Out of range indexes are ignored.
	app.switchTo(10)
}

func TestLoadEmpty(t *testing.T) {
	app, _ := newTestApp()

	entries, err := app.load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !entries[0].IsPlaceholder() {
		t.Fatalf("entries = %v, want placeholder", entries)
	}
	if app.signOutEnabled() {
		t.Error("sign out should be disabled with no accounts")
	}
	if titles := menuTitles(entries); len(titles) != 0 {
		t.Errorf("menuTitles = %v, want none", titles)
	}
	if got := statusTitle(entries); got != "No accounts signed in" {
		t.Errorf("statusTitle = %q", got)
	}
	if got := tooltip(entries); got != "Google Accounts" {
		t.Errorf("tooltip = %q", got)
	}
}

func TestHandleMessage(t *testing.T) {
	app, mgr := newTestApp(
		account.User{Email: "a@example.com", Active: true},
		account.User{Email: "b@example.com"},
	)
	ctx := context.Background()

	status := func() ipc.StatusResponse {
		t.Helper()
		msg, _ := ipc.NewMessage(ipc.MessageTypeGetStatus, nil)
		resp, err := app.handleMessage(ctx, msg)
		if err != nil {
			t.Fatalf("get_status error = %v", err)
		}
		var st ipc.StatusResponse
		if err := resp.DecodePayload(&st); err != nil {
			t.Fatal(err)
		}
		return st
	}

	// Nothing is known before the first refresh.
	if st := status(); st.AccountCount != 0 || st.ActiveAccount != "" {
		t.Errorf("initial status = %+v", st)
	}

	// Another process made b active.
	mgr.users = []account.User{
		{Email: "a@example.com"},
		{Email: "b@example.com", Active: true},
	}
	notice, _ := ipc.NewMessage(ipc.MessageTypeAccountsChanged, ipc.AccountsChangedNotice{Active: "b@example.com"})
	if _, err := app.handleMessage(ctx, notice); err != nil {
		t.Fatalf("accounts_changed error = %v", err)
	}

	st := status()
	if st.AccountCount != 2 {
		t.Errorf("AccountCount = %d, want 2", st.AccountCount)
	}
	if st.ActiveAccount != "b@example.com" {
		t.Errorf("ActiveAccount = %q, want b@example.com", st.ActiveAccount)
	}
	if st.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", st.PID, os.Getpid())
	}
	if st.LastRefresh.IsZero() {
		t.Error("LastRefresh should be set after a notice")
	}

	quit := make(chan struct{})
	app.quit = func() { close(quit) }
	shutdown, _ := ipc.NewMessage(ipc.MessageTypeShutdown, nil)
	if _, err := app.handleMessage(ctx, shutdown); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
	select {
	case <-quit:
	case <-time.After(5 * time.Second):
		t.Error("shutdown did not quit the tray")
	}

	unknown := &ipc.Message{Type: ipc.MessageType("bogus")}
	if _, err := app.handleMessage(ctx, unknown); err == nil {
		t.Error("expected error for unknown message type")
	}
}

func TestMenuText(t *testing.T) {
	entries := []accountlist.Entry{
		accountlist.AccountEntry(account.User{Email: "a@example.com", Name: "Alice", Active: true}),
		accountlist.AccountEntry(account.User{Email: "b@example.com"}),
	}

	wantTitles := []string{"a@example.com (Alice)", "b@example.com"}
	if got := menuTitles(entries); !reflect.DeepEqual(got, wantTitles) {
		t.Errorf("menuTitles = %v, want %v", got, wantTitles)
	}
	if got := statusTitle(entries); got != "Active: Alice" {
		t.Errorf("statusTitle = %q", got)
	}
	unnamed := []accountlist.Entry{
		accountlist.AccountEntry(account.User{Email: "b@example.com", Active: true}),
	}
	if got := statusTitle(unnamed); got != "Active: b@example.com" {
		t.Errorf("statusTitle without a name = %q", got)
	}
	if got := tooltip(entries); got != "Google Accounts (2 accounts)" {
		t.Errorf("tooltip = %q", got)
	}
	if got := statusTitle(entries[1:]); got != "No active account" {
		t.Errorf("statusTitle without active = %q", got)
	}
	if got := tooltip(entries[1:]); got != "Google Accounts (1 account)" {
		t.Errorf("tooltip = %q", got)
	}
}

func TestTerminalCommand(t *testing.T) {
	found := func(name string) func(string) (string, error) {
		return func(s string) (string, error) {
			if s == name {
				return "/usr/bin/" + s, nil
			}
			return "", errors.New("not found")
		}
	}

	tests := []struct {
		name     string
		id       platform.ID
		lookPath func(string) (string, error)
		wantArg0 string
		wantErr  bool
	}{
		{"darwin", platform.Darwin, found(""), "osascript", false},
		{"linux konsole", platform.Linux, found("konsole"), "konsole", false},
		{"linux xterm", platform.Linux, found("xterm"), "xterm", false},
		{"linux none", platform.Linux, found(""), "", true},
		{"windows", platform.Windows, found(""), "cmd", false},
		{"unknown", platform.ID("plan9"), found(""), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := terminalCommand(tt.id, "/opt/gctlogin", tt.lookPath)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("terminalCommand() error = %v", err)
			}
			if cmd.Args[0] != tt.wantArg0 {
				t.Errorf("Args[0] = %q, want %q", cmd.Args[0], tt.wantArg0)
			}
		})
	}
}
