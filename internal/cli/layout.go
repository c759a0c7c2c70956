package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// layoutFlags are the treemap flags shared by layout, render and watch.
type layoutFlags struct {
	width      float64
	height     float64
	groupBy    string
	padding    float64
	query      string
	categories string
}

// register adds the flags to cmd, seeded from the configured defaults.
func (f *layoutFlags) register(cmd *cobra.Command, c *CLI) {
	cfg := c.Config.Layout
	cmd.Flags().Float64Var(&f.width, "width", cfg.Width, "frame width")
	cmd.Flags().Float64Var(&f.height, "height", cfg.Height, "frame height")
	cmd.Flags().StringVarP(&f.groupBy, "group-by", "g", cfg.GroupBy, "grouping: sector, type, performance, weight")
	cmd.Flags().Float64Var(&f.padding, "padding", cfg.Padding, "inset of each group rectangle")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "only items whose id, name, sector or type contain this text")
	cmd.Flags().StringVar(&f.categories, "category", "", "only these sectors (comma-separated)")
}

// apply copies flags that were set on the command line over opts, so that
// config file values survive for flags left at their defaults.
func (f *layoutFlags) apply(cmd *cobra.Command, opts pipeline.Options) pipeline.Options {
	changed := cmd.Flags().Changed
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("group-by") {
		opts.GroupBy = f.groupBy
	}
	if changed("padding") {
		opts = opts.WithPadding(f.padding)
	}
	opts.Query = f.query
	opts.Categories = parseList(f.categories)
	return opts
}

// layoutCommand creates the layout command for computing treemap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Compute a treemap layout from a dataset",
		Long: `Compute a treemap layout from a dataset.

The dataset is a JSON, TOML or YAML file with an "items" list (and
optionally panel "metrics"). The output is a layout.json file with every
group rectangle and item tile.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.apply(cmd, c.layoutDefaults())
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd, c)

	return cmd
}

// runLayout loads the dataset, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	ds, err := c.loadDataset(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	items := pipeline.Filter(ds.Items, opts)

	spinner := startSpinner(ctx, "Computing treemap...")

	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		spinner.Fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}

	data, err := treemap.MarshalResult(layout)
	if err != nil {
		return fmt.Errorf("serialize layout: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(items), len(layout.Groups), len(layout.Tiles), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
