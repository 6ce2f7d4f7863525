package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kevinelliott/gctlogin/internal/tui/styles"
	"github.com/kevinelliott/gctlogin/pkg/accountlist"
)

// Row heights in terminal lines. The active row is taller because it
// carries the console links.
const (
	rowHeight            = 2
	activeRowHeight      = 3
	placeholderRowHeight = 3
)

// Line offsets of the clickable links inside a row.
const (
	playLinkLine  = 1
	cloudLinkLine = 2
	learnMoreLine = 2
)

const (
	playConsoleLabel  = "Google Play Developer Console"
	cloudConsoleLabel = "Google Cloud Console"
	learnMoreLabel    = "Learn more"
)

func entryHeight(e accountlist.Entry) int {
	switch e.Kind() {
	case accountlist.KindPlaceholder:
		return placeholderRowHeight
	case accountlist.KindAccount:
		if e.IsActive() {
			return activeRowHeight
		}
	}
	return rowHeight
}

// renderEntry returns exactly entryHeight(e) lines.
func renderEntry(e accountlist.Entry, selected, hovered bool, width int) []string {
	var lines []string

	switch {
	case e.IsPlaceholder():
		lines = []string{
			styles.Subtitle.Render("  No accounts signed in."),
			styles.Help.Render("  Sign in to use Google services from your tools."),
			"  " + styles.Link.Render(learnMoreLabel),
		}

	case e.IsActive():
		u := e.User()
		head := "● " + styles.ActiveAccount.Render(u.Email)
		if u.Name != "" {
			head += styles.Subtitle.Render(fmt.Sprintf(" (%s)", u.Name))
		}
		lines = []string{
			head,
			"  " + styles.Link.Render(playConsoleLabel),
			"  " + styles.Link.Render(cloudConsoleLabel),
		}

	default:
		u := e.User()
		hint := "Select to make active"
		if u.Name != "" {
			hint = u.Name
		}
		lines = []string{
			"○ " + styles.Account.Render(u.Email),
			styles.Help.Render("  " + hint),
		}
	}

	if selected || hovered {
		style := styles.SelectedRow
		if width > 0 {
			style = style.Width(width)
		}
		for i, l := range lines {
			lines[i] = style.Render(l)
		}
	}
	return lines
}

// buttonsView renders the Add Account / Sign In and Sign Out buttons and
// returns the width of the first one for hit testing.
func buttonsView(placeholder, signOutEnabled bool) (string, int) {
	addLabel := "Add Account"
	if placeholder {
		addLabel = "Sign In"
	}
	add := styles.Button.Render(addLabel)

	// With only the placeholder there is nobody to sign out.
	if placeholder {
		return add, lipgloss.Width(add)
	}

	signOut := styles.ButtonDisabled.Render("Sign Out")
	if signOutEnabled {
		signOut = styles.Button.Render("Sign Out")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, add, "  ", signOut), lipgloss.Width(add)
}
