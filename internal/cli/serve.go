package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/server"
	"github.com/matzehuels/popdyn/pkg/store"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	data     string
	interval time.Duration
	noCache  bool
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the treemap and panel API over HTTP",
		Long: `Serve the treemap and panel API over HTTP.

The panel allocation is recomputed from the stored metrics on every
interval until a client hovers, pins or overrides a panel. With --data the
dataset is loaded into the store before the server starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("interval") {
				opts.interval = c.Config.Panels.Interval
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.data, "data", "", "dataset to load into the store on startup")
	cmd.Flags().DurationVar(&opts.interval, "interval", panels.DefaultInterval, "panel recompute interval")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires the store, runner and panel controller into the server and
// blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	repo, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	if opts.data != "" {
		ds, err := c.loadDataset(ctx, opts.data)
		if err != nil {
			return fmt.Errorf("load dataset %s: %w", opts.data, err)
		}
		if err := importDataset(ctx, repo, ds.Items, ds.Metrics, true); err != nil {
			return err
		}
		c.Logger.Info("loaded dataset", "path", opts.data, "items", len(ds.Items))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	c.Config.Panels.Interval = opts.interval
	ctrl, err := c.newController(panels.MetricsFunc(repo.Metrics))
	if err != nil {
		return err
	}
	ctrl.Subscribe(func(a panels.Allocation) {
		c.Logger.Info("hero changed", "hero", a.Hero, "overridden", a.Overridden)
	})
	go func() {
		if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
			c.Logger.Error("panel controller stopped", "err", err)
		}
	}()

	srv := server.New(server.Config{
		Addr:     opts.addr,
		Defaults: c.layoutDefaults(),
		Logger:   c.Logger,
	}, server.Dependencies{
		Store:  repo,
		Runner: runner,
		Panels: ctrl,
	})

	printInfo("Listening on %s", StyleHighlight.Render(opts.addr))
	return srv.Run(ctx)
}

// importDataset writes items and, optionally, metrics to repo.
func importDataset(ctx context.Context, repo store.Repository, items []treemap.Item, m panels.Metrics, withMetrics bool) error {
	if err := repo.PutItems(ctx, items); err != nil {
		return fmt.Errorf("store items: %w", err)
	}
	if !withMetrics {
		return nil
	}
	if err := repo.PutMetrics(ctx, m); err != nil {
		return fmt.Errorf("store metrics: %w", err)
	}
	return nil
}
