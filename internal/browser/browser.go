// Package browser opens URLs in the user's web browser.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/cli/browser"
)

// EnvVarName names an executable that launches the browser when called as
// `$BROWSER <url>`; devcontainers and Codespaces set it.
const EnvVarName = "BROWSER"

// Opener opens a URL.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// System opens URLs with $BROWSER, falling back to the OS default browser.
type System struct {
	getenv  func(string) string
	run     func(ctx context.Context, name string, args ...string) error
	openURL func(url string) error
}

// NewSystem returns the default Opener.
func NewSystem() *System {
	return &System{
		getenv: os.Getenv,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
		openURL: browser.OpenURL,
	}
}

// Open implements Opener.
func (s *System) Open(ctx context.Context, url string) error {
	if env := s.getenv(EnvVarName); env != "" {
		err := s.run(ctx, env, url)
		if err == nil {
			return nil
		}
		slog.Warn("failed to open browser configured by $BROWSER, trying default browser", "error", err)
	}

	if err := s.openURL(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
