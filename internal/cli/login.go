package cli

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinelliott/gctlogin/internal/browser"
	"github.com/kevinelliott/gctlogin/internal/clipboard"
	"github.com/kevinelliott/gctlogin/pkg/config"
	"github.com/kevinelliott/gctlogin/pkg/login"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var (
		email    string
		code     string
		name     string
		openLink bool
		copyLink bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Google Services",
		Long: `Sign in with a copy-and-paste verification code.

The login URL is printed; open it, sign in, and paste the verification code
that Google shows. The new account becomes the active one.

Examples:
  gctlogin login
  gctlogin login --open
  gctlogin login --email me@example.com --code 4/0AX...
  gctlogin login --email me@example.com --name "Play Publisher"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			mgr, closeFn, err := openManager(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			in := login.SignIn{Email: email, Code: code, Name: name}
			if in.Code == "" {
				url := mgr.AuthURL(newState())
				fmt.Println("Please sign in to Google Services from the link below.")
				fmt.Println()
				fmt.Printf("  %s\n\n", url)

				if copyLink {
					if err := clipboard.Default().Copy(url); err != nil {
						printWarning("%v", err)
					} else {
						printInfo("Login url copied to clipboard")
					}
				}
				if openLink {
					if err := browser.NewSystem().Open(ctx, url); err != nil {
						printWarning("%v", err)
					}
				}
			}

			in, err = promptSignIn(os.Stdin, in)
			if err != nil {
				return err
			}

			// Prompting may have taken longer than the command timeout.
			ctx, cancel = context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := mgr.LogIn(ctx, in); err != nil {
				return err
			}
			printSuccess("Signed in as %s", in.Email)
			notifyTray(cfg, in.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&code, "code", "", "verification code")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name for the account (optional)")
	cmd.Flags().BoolVarP(&openLink, "open", "o", false, "open the login url in the browser")
	cmd.Flags().BoolVar(&copyLink, "copy", false, "copy the login url to the clipboard")

	return cmd
}

// promptSignIn reads any fields of in that are still empty from r.
func promptSignIn(r io.Reader, in login.SignIn) (login.SignIn, error) {
	reader := bufio.NewReader(r)

	read := func(prompt string) (string, error) {
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	var err error
	if in.Email == "" {
		if in.Email, err = read("Account Email: "); err != nil {
			return in, err
		}
	}
	if in.Code == "" {
		if in.Code, err = read("Verification Code: "); err != nil {
			return in, err
		}
	}
	return in, nil
}

// newState returns a random OAuth state value.
func newState() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "gctlogin"
	}
	return hex.EncodeToString(buf)
}
