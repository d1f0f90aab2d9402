package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for bakecheck.

To load completions:

Bash:
  $ source <(bakecheck completion bash)
  # To load completions for each session, execute once:
  $ bakecheck completion bash > /etc/bash_completion.d/bakecheck

Zsh:
  $ bakecheck completion zsh > "${fpath[1]}/_bakecheck"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ bakecheck completion fish > ~/.config/fish/completions/bakecheck.fish

PowerShell:
  PS> bakecheck completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// Completion scripts must not depend on a readable settings file
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		default:
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}
