package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/source"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // output formats: svg, json, png, pdf, txt, dot
	popups   bool     // hover popups in SVG output
	noLabels bool     // omit tile labels in SVG output
	detailed bool     // per-node details in DOT output
	scale    float64  // PNG scale factor
	columns  int      // text grid width
	rows     int      // text grid height
	noCache  bool
}

// renderCommand creates the render command for generating visualizations.
//
// Default settings:
//   - format: svg
//   - width: 800, height: 600 (or the configured layout size)
//   - popups: true
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		flags      layoutFlags
	)
	opts := renderOpts{
		popups:  true,
		scale:   pipeline.DefaultScale,
		columns: pipeline.DefaultColumns,
		rows:    pipeline.DefaultRows,
	}

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset as a treemap",
		Long: `Render a dataset as a treemap.

Supported formats are svg, json, png, pdf, txt (a colored terminal grid)
and dot (the group hierarchy as a Graphviz graph). PNG and PDF output
require rsvg-convert on the PATH.

With a single format and no --output, txt is written to stdout and every
other format to <input>.<format>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			popts := flags.apply(cmd, c.layoutDefaults())
			return c.runRender(cmd.Context(), args[0], popts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf, txt, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.popups, "popups", opts.popups, "show hover popups with item details (svg)")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit tile labels (svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show weights and values on nodes (dot)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "scale factor (png)")
	cmd.Flags().IntVar(&opts.columns, "cols", opts.columns, "grid width in characters (txt)")
	cmd.Flags().IntVar(&opts.rows, "rows", opts.rows, "grid height in lines (txt)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	flags.register(cmd, c)

	return cmd
}

// runRender executes the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, popts pipeline.Options, opts *renderOpts) error {
	ds, err := c.loadDataset(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	popts.Formats = opts.formats
	popts.Popups = opts.popups
	popts.NoLabels = opts.noLabels
	popts.Detailed = opts.detailed
	popts.Scale = opts.scale
	popts.Columns = opts.columns
	popts.Rows = opts.rows

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	toStdout := opts.output == "" && len(opts.formats) == 1 && opts.formats[0] == pipeline.FormatText

	var spinner *Spinner
	if !toStdout {
		spinner = startSpinner(ctx, "Rendering treemap...")
	}

	result, err := runner.Execute(ctx, ds.Items, popts)
	if spinner != nil {
		if err != nil {
			spinner.Fail("Render failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if toStdout {
		_, err := uiOut.Write(result.Artifacts[pipeline.FormatText])
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d format(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.FilteredCount, result.Stats.GroupCount, result.Stats.TileCount,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each rendered format next to the base path and
// returns the written paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	var paths []string
	if len(formats) == 1 && output != "" {
		data := artifacts[formats[0]]
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", output, err)
		}
		return []string{output}, nil
	}

	base := basePath(output, input)
	for _, f := range formats {
		file := base + "." + f
		if err := os.WriteFile(file, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", file, err)
		}
		paths = append(paths, file)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
// Otherwise, output is returned unchanged. Remote inputs are written to the
// working directory under the last segment of the URL path.
func basePath(output, input string) string {
	if output == "" {
		if source.IsRemote(input) {
			input = remoteName(input)
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

func remoteName(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return "dataset"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return u.Hostname()
	}
	return name
}
