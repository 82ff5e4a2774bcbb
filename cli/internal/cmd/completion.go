package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for bash, zsh, fish, or powershell.

To load completions in your shell session, run:

Bash:
  source <(chatctl completion bash)

Zsh:
  source <(chatctl completion zsh)

Fish:
  chatctl completion fish | source

PowerShell:
  chatctl completion powershell | Out-String | Invoke-Expression

To load completions for every new session, execute once:

Bash:
  chatctl completion bash > /etc/bash_completion.d/chatctl

Zsh:
  chatctl completion zsh > /usr/local/share/zsh/site-functions/_chatctl

Fish:
  chatctl completion fish > ~/.config/fish/completions/chatctl.fish

PowerShell:
  chatctl completion powershell >> $PROFILE
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		}
		return fmt.Errorf("unknown shell: %s", args[0])
	},
}
