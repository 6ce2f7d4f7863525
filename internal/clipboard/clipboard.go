// Package clipboard provides text copy and paste for the sign-in dialog.
package clipboard

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes text.
type Clipboard interface {
	Copy(text string) error
	Paste() (string, error)
}

// System is the OS clipboard.
type System struct{}

// Copy writes text to the clipboard.
func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// Paste reads the clipboard, trimming surrounding whitespace so a pasted
// verification code carries no trailing newline.
func (System) Paste() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("clipboard is not supported on this system")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Memory is an in-process clipboard, used when the system one is missing.
type Memory struct {
	text string
}

// Copy implements Clipboard.
func (m *Memory) Copy(text string) error {
	m.text = text
	return nil
}

// Paste implements Clipboard.
func (m *Memory) Paste() (string, error) {
	return strings.TrimSpace(m.text), nil
}

// Available reports whether the system clipboard can be used.
func Available() bool {
	return !clipboard.Unsupported
}

// Default returns the system clipboard when available, otherwise an
// in-memory one.
func Default() Clipboard {
	if clipboard.Unsupported {
		return &Memory{}
	}
	return System{}
}
