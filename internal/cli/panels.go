package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/popdyn/pkg/panels"
)

// panelsOpts holds the command-line flags for the panels command.
type panelsOpts struct {
	viewport int
	variant  string
	override string
	asJSON   bool
}

// panelsCommand creates the panels command, which ranks the dashboard panels
// once and prints the resulting allocation.
func (c *CLI) panelsCommand() *cobra.Command {
	var opts panelsOpts

	cmd := &cobra.Command{
		Use:   "panels [dataset]",
		Short: "Rank the dashboard panels and show their widths",
		Long: `Rank the action, monitoring and claims panels from operational metrics
and show the width each panel gets at a viewport.

Metrics are read from the dataset's "metrics" block when a file is given,
otherwise from the configured store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("viewport") {
				opts.viewport = c.Config.Panels.Viewport
			}
			if !cmd.Flags().Changed("variant") {
				opts.variant = c.Config.Panels.Variant
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runPanels(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().IntVar(&opts.viewport, "viewport", panels.DefaultViewport, "viewport width in pixels")
	cmd.Flags().StringVar(&opts.variant, "variant", string(panels.Asymmetric), "width table: asymmetric, focal")
	cmd.Flags().StringVar(&opts.override, "override", "", "force a hero panel: actions, monitoring, claims")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the allocation as JSON")

	return cmd
}

// runPanels loads metrics, ranks them and prints the allocation.
func (c *CLI) runPanels(ctx context.Context, input string, opts panelsOpts) error {
	variant, err := panels.ParseVariant(opts.variant)
	if err != nil {
		return err
	}

	metrics, err := c.loadMetrics(ctx, input)
	if err != nil {
		return err
	}

	ctrl := panels.NewController(panels.StaticMetrics(metrics),
		panels.WithViewport(opts.viewport),
		panels.WithVariant(variant),
		panels.WithLogger(c.Logger),
	)
	if err := ctrl.Tick(ctx); err != nil {
		return fmt.Errorf("rank panels: %w", err)
	}
	if opts.override != "" {
		id, err := panels.ParsePanelID(opts.override)
		if err != nil {
			return err
		}
		if err := ctrl.Override(ctx, id); err != nil {
			return err
		}
	}
	alloc := ctrl.Current()

	if opts.asJSON {
		enc := json.NewEncoder(uiOut)
		enc.SetIndent("", "  ")
		return enc.Encode(alloc)
	}

	printAllocation(alloc, opts.viewport)
	return nil
}

// loadMetrics reads metrics from a dataset file, or from the store when
// path is empty.
func (c *CLI) loadMetrics(ctx context.Context, path string) (panels.Metrics, error) {
	if path != "" {
		ds, err := c.loadDataset(ctx, path)
		if err != nil {
			return panels.Metrics{}, fmt.Errorf("load dataset %s: %w", path, err)
		}
		return ds.Metrics, nil
	}

	repo, err := c.openStore(ctx)
	if err != nil {
		return panels.Metrics{}, err
	}
	defer repo.Close()

	m, err := repo.Metrics(ctx)
	if err != nil {
		return panels.Metrics{}, fmt.Errorf("read metrics: %w", err)
	}
	return m, nil
}

// panelTable renders an allocation as a table in display order.
func panelTable(a panels.Allocation) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(a.Order))
	for _, id := range a.Order {
		marker := ""
		if id == a.Hero {
			marker = iconHero
		}
		rows = append(rows, []string{
			marker,
			panelTitle(id),
			fmt.Sprintf("%g", a.Scores[id]),
			fmt.Sprintf("%.1f%%", a.Widths[id]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Panel", "Score", "Width").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(a.Order) && a.Order[row] == a.Hero {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

// panelTitle is the display name of a panel.
func panelTitle(id panels.PanelID) string {
	s := string(id)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
