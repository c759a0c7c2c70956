package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/popdyn/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Global flags:
//   - --verbose (-v): debug-level logging
//   - --config: configuration file (default: ~/.config/popdyn/config.{toml,yaml,json})
//
// The configuration is loaded before any subcommand runs and the logger is
// attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "popdyn lays out population dynamics dashboards",
		Long:         `popdyn computes squarified treemaps of weighted governance indicators, ranks the dashboard's action, monitoring and claims panels, and serves both over HTTP or in a terminal dashboard.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)

			cfg, err := loadConfig(configPath, true)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/popdyn/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.panelsCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}
