package cli

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// completionCommand prints a shell completion script for popdyn.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for popdyn.

Besides commands and flags, the scripts complete grouping modes
(--group-by), output formats (--format), panel variants (--variant) and
panel names (--override).

  $ source <(popdyn completion bash)
  $ popdyn completion zsh > "${fpath[1]}/_popdyn"
  $ popdyn completion fish > ~/.config/fish/completions/popdyn.fish
  PS> popdyn completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			default:
				return root.GenBashCompletionV2(w, true)
			}
		},
	}
}

// flagValues maps flag names to their fixed set of values.
func flagValues() map[string][]string {
	groupModes := make([]string, len(treemap.GroupModes))
	for i, g := range treemap.GroupModes {
		groupModes[i] = string(g)
	}
	panelIDs := make([]string, len(panels.All))
	for i, id := range panels.All {
		panelIDs[i] = string(id)
	}
	return map[string][]string{
		"group-by": groupModes,
		"format":   slices.Sorted(maps.Keys(pipeline.ValidFormats)),
		"variant":  {string(panels.Asymmetric), string(panels.Focal)},
		"override": panelIDs,
	}
}

// registerFlagCompletions attaches value completions to every command
// under root that defines one of the enumerated flags.
func registerFlagCompletions(root *cobra.Command) {
	values := flagValues()
	var walk func(*cobra.Command)
	walk = func(cmd *cobra.Command) {
		for name, vals := range values {
			if cmd.Flags().Lookup(name) == nil {
				continue
			}
			_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(vals, cobra.ShellCompDirectiveNoFileComp))
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}
