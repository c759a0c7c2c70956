package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	popio "github.com/matzehuels/popdyn/pkg/io"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/source"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// reloadSettle is how long a change event waits before the file is read,
// so editors that write in several steps are seen once.
const reloadSettle = 100 * time.Millisecond

// watchCommand creates the watch command, a live terminal dashboard.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    layoutFlags
		interval time.Duration
		noWatch  bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dataset]",
		Short: "Show a live treemap and panel dashboard in the terminal",
		Long: `Show a live treemap and panel dashboard in the terminal.

The hero panel is recomputed from the dataset's metrics on every interval.
Select a panel with tab, then hover (h) or pin (p) it to freeze rotation,
or override (o) the hero until reset (r). The dataset file is reloaded
when it changes on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interval") {
				interval = c.Config.Panels.Interval
			}
			opts := flags.apply(cmd, c.layoutDefaults())
			return c.runWatch(cmd.Context(), args[0], opts, interval, !noWatch, noCache)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", panels.DefaultInterval, "panel recompute interval")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the dataset when the file changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd, c)

	return cmd
}

// runWatch starts the dashboard and blocks until the user quits.
func (c *CLI) runWatch(ctx context.Context, input string, opts pipeline.Options, interval time.Duration, watch, noCache bool) error {
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	ds, err := c.loadDataset(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src := newDatasetSource(ds)
	c.Config.Panels.Interval = interval
	ctrl, err := c.newController(src)
	if err != nil {
		return err
	}

	if watch && source.IsRemote(input) {
		c.Logger.Warn("remote datasets are not watched", "url", input)
		watch = false
	}

	var reloads chan reloadMsg
	if watch {
		reloads = make(chan reloadMsg)
		go watchDataset(ctx, input, reloads, c.Logger)
	}

	// The alternate screen owns the terminal; log output would tear it.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	model := newDashboardModel(ctx, ctrl, runner, src, opts, reloads)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// =============================================================================
// Dataset Source
// =============================================================================

// datasetSource holds the current dataset and serves its metrics to the
// panel controller.
type datasetSource struct {
	mu sync.RWMutex
	ds popio.Dataset
}

func newDatasetSource(ds popio.Dataset) *datasetSource {
	return &datasetSource{ds: ds}
}

// Metrics implements panels.MetricsSource.
func (s *datasetSource) Metrics(context.Context) (panels.Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds.Metrics, nil
}

func (s *datasetSource) items() []treemap.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds.Items
}

func (s *datasetSource) set(ds popio.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
}

// =============================================================================
// File Watcher
// =============================================================================

// watchDataset sends a reloadMsg each time path is written, created or
// renamed over. The parent directory is watched so editors that replace the
// file are seen. It returns when ctx is done.
func watchDataset(ctx context.Context, path string, out chan<- reloadMsg, logger *log.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("cannot watch dataset", "path", path, "err", err)
		return
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		logger.Warn("cannot watch dataset directory", "path", path, "err", err)
		return
	}

	var lastMod time.Time
	if st, err := os.Stat(target); err == nil {
		lastMod = st.ModTime()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			st, err := os.Stat(target)
			if err != nil || !st.ModTime().After(lastMod) {
				continue
			}
			lastMod = st.ModTime()

			time.Sleep(reloadSettle)
			ds, err := popio.ImportFile(target)
			logger.Debug("dataset changed", "path", target, "err", err)
			select {
			case out <- reloadMsg{dataset: ds, err: err}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("dataset watcher error", "err", err)
		}
	}
}
