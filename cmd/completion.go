package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msalah0e/agviewer/internal/layout"
)

// completionCmd generates shell completion scripts.
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate completion scripts for your shell.

  # Bash (add to ~/.bashrc)
  eval "$(agv completion bash)"

  # Zsh (add to ~/.zshrc)
  eval "$(agv completion zsh)"

  # Fish
  agv completion fish | source

  # PowerShell
  agv completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				_ = rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				_ = rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				_ = rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				_ = rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}

	return cmd
}

// layoutCompletionFunc completes layout names with their algorithm.
func layoutCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	for _, name := range layout.Names() {
		completions = append(completions, name+"\t"+layout.Lookup(name).AlgorithmID)
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
