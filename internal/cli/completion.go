package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for generating shell completion scripts.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gctlogin.

To load completions:

Bash:
  $ source <(gctlogin completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ gctlogin completion bash > /etc/bash_completion.d/gctlogin
  # macOS:
  $ gctlogin completion bash > $(brew --prefix)/etc/bash_completion.d/gctlogin

Zsh:
  $ source <(gctlogin completion zsh)
  # To load completions for each session, execute once:
  $ gctlogin completion zsh > "${fpath[1]}/_gctlogin"

Fish:
  $ gctlogin completion fish | source
  # To load completions for each session, execute once:
  $ gctlogin completion fish > ~/.config/fish/completions/gctlogin.fish

PowerShell:
  PS> gctlogin completion powershell | Out-String | Invoke-Expression
  # To load completions for each session, add to your profile:
  PS> gctlogin completion powershell > gctlogin.ps1
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
