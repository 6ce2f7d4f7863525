package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinelliott/gctlogin/internal/clipboard"
	"github.com/kevinelliott/gctlogin/internal/tui/styles"
	"github.com/kevinelliott/gctlogin/pkg/account"
	"github.com/kevinelliott/gctlogin/pkg/login"
)

const (
	signInTitle    = "Sign in to Google Services"
	signInSubtitle = "Please sign in to Google Services from the link below."
	signInHint     = "Copy and paste the verification code that will be provided into the text box below."

	// codeRequiredMessage is shown when OK is pressed without a code.
	codeRequiredMessage = "Please log in using the Google Login url above, " +
		"and copy and paste the generated verification code."
)

const (
	fieldEmail = iota
	fieldCode
	fieldName
	fieldCount
)

// signInSubmittedMsg carries the completed dialog.
type signInSubmittedMsg struct {
	signIn login.SignIn
}

// signInCanceledMsg is sent when the dialog is dismissed.
type signInCanceledMsg struct{}

// openURLMsg asks the panel to open a URL in the browser.
type openURLMsg struct {
	url string
}

// signInDialog is the modal copy-and-paste sign-in dialog.
type signInDialog struct {
	title  string
	url    string
	inputs []textinput.Model
	focus  int
	err    string
	notice string
	clip   clipboard.Clipboard
	keys   dialogKeyMap
}

// newSignInDialog creates the dialog. An empty message uses the default title.
func newSignInDialog(message, url string, clip clipboard.Clipboard) signInDialog {
	title := signInTitle
	if message != "" {
		title = message
	}

	email := textinput.New()
	email.Prompt = "Account Email:     "
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	code := textinput.New()
	code.Prompt = "Verification Code: "
	code.Placeholder = "paste code here"
	code.CharLimit = 512

	name := textinput.New()
	name.Prompt = "Display Name:      "
	name.Placeholder = "optional"
	name.CharLimit = 128

	return signInDialog{
		title:  title,
		url:    url,
		inputs: []textinput.Model{email, code, name},
		focus:  fieldEmail,
		clip:   clip,
		keys:   defaultDialogKeyMap(),
	}
}

// Init starts the cursor blink.
func (d signInDialog) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles dialog input.
func (d signInDialog) Update(msg tea.Msg) (signInDialog, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, d.keys.Cancel):
			return d, func() tea.Msg { return signInCanceledMsg{} }

		case key.Matches(msg, d.keys.Next):
			d.setFocus((d.focus + 1) % fieldCount)
			return d, nil

		case key.Matches(msg, d.keys.Prev):
			d.setFocus((d.focus + fieldCount - 1) % fieldCount)
			return d, nil

		case key.Matches(msg, d.keys.CopyURL):
			if err := d.clip.Copy(d.url); err != nil {
				d.err = err.Error()
			} else {
				d.err = ""
				d.notice = "Login url copied to clipboard."
			}
			return d, nil

		case key.Matches(msg, d.keys.Paste):
			text, err := d.clip.Paste()
			if err != nil {
				d.err = err.Error()
				return d, nil
			}
			d.inputs[fieldCode].SetValue(text)
			d.setFocus(fieldCode)
			return d, nil

		case key.Matches(msg, d.keys.OpenLink):
			url := d.url
			return d, func() tea.Msg { return openURLMsg{url: url} }

		case key.Matches(msg, d.keys.Submit):
			if !d.validate() {
				return d, nil
			}
			in := d.value()
			return d, func() tea.Msg { return signInSubmittedMsg{signIn: in} }
		}
	}

	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return d, cmd
}

func (d *signInDialog) setFocus(i int) {
	d.inputs[d.focus].Blur()
	d.focus = i
	d.inputs[d.focus].Focus()
}

// validate checks the fields and records the first problem in d.err.
func (d *signInDialog) validate() bool {
	in := d.value()
	if in.Code == "" {
		d.err = codeRequiredMessage
		d.setFocus(fieldCode)
		return false
	}
	if err := account.ValidateEmail(in.Email); err != nil {
		d.err = err.Error()
		d.setFocus(fieldEmail)
		return false
	}
	d.err = ""
	return true
}

// value returns the trimmed field values.
func (d signInDialog) value() login.SignIn {
	return login.SignIn{
		Email: strings.TrimSpace(d.inputs[fieldEmail].Value()),
		Code:  strings.TrimSpace(d.inputs[fieldCode].Value()),
		Name:  strings.TrimSpace(d.inputs[fieldName].Value()),
	}
}

// View renders the dialog.
func (d signInDialog) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(d.title))
	b.WriteString("\n\n")
	b.WriteString(signInSubtitle)
	b.WriteString("\n")
	b.WriteString(signInHint)
	b.WriteString("\n\n")
	b.WriteString(" Google Login Url: ")
	b.WriteString(styles.Link.Render(d.url))
	b.WriteString("\n\n")
	for _, in := range d.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	if d.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMessage.Render(d.err))
		b.WriteString("\n")
	} else if d.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.InfoMessage.Render(d.notice))
		b.WriteString("\n")
	}

	help := []string{
		styles.HelpKey.Render("enter") + styles.Help.Render(" ok"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" cancel"),
		styles.HelpKey.Render("ctrl+y") + styles.Help.Render(" copy url"),
		styles.HelpKey.Render("ctrl+v") + styles.Help.Render(" paste code"),
		styles.HelpKey.Render("ctrl+o") + styles.Help.Render(" open url"),
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(help, "  "))

	return styles.Dialog.Render(b.String())
}
