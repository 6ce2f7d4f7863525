// Package styles holds the lipgloss styles shared by the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors
var (
	Primary   = lipgloss.AdaptiveColor{Light: "#1A73E8", Dark: "#8AB4F8"}
	Secondary = lipgloss.AdaptiveColor{Light: "#5F6368", Dark: "#9AA0A6"}
	Success   = lipgloss.AdaptiveColor{Light: "#188038", Dark: "#81C995"}
	Danger    = lipgloss.AdaptiveColor{Light: "#D93025", Dark: "#F28B82"}
	Muted     = lipgloss.AdaptiveColor{Light: "#9AA0A6", Dark: "#5F6368"}
	Highlight = lipgloss.AdaptiveColor{Light: "#E8F0FE", Dark: "#283142"}
)

var (
	// Title is the panel title.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	// Subtitle is secondary heading text.
	Subtitle = lipgloss.NewStyle().
			Foreground(Secondary)

	// ActiveAccount is the email of the active account row.
	ActiveAccount = lipgloss.NewStyle().
			Bold(true).
			Foreground(Success)

	// Account is the email of an inactive row.
	Account = lipgloss.NewStyle()

	// SelectedRow marks the row under the keyboard cursor.
	SelectedRow = lipgloss.NewStyle().
			Background(Highlight)

	// Link is a clickable URL label.
	Link = lipgloss.NewStyle().
		Foreground(Primary).
		Underline(true)

	// Help is dim help text.
	Help = lipgloss.NewStyle().
		Foreground(Muted)

	// HelpKey is the key part of a help entry.
	HelpKey = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	// Button is an enabled push button.
	Button = lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.NormalBorder()).
		BorderForeground(Primary)

	// ButtonDisabled is a greyed out push button.
	ButtonDisabled = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Muted).
			Foreground(Muted)

	// Dialog frames the sign-in dialog.
	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 2)

	// ErrorMessage is inline error text.
	ErrorMessage = lipgloss.NewStyle().
			Foreground(Danger)

	// InfoMessage is inline informational text.
	InfoMessage = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)
)

// SetColors switches colour output on or off for all styles.
func SetColors(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}
