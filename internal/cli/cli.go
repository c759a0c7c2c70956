package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/popdyn/pkg/cache"
	popio "github.com/matzehuels/popdyn/pkg/io"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/source"
	"github.com/matzehuels/popdyn/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "popdyn"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	logOut io.Writer
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		logOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), ns)
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

// newCache picks Redis when a URL is configured, otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := c.fileCacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	c.Logger.Debug("using file cache", "dir", dir)
	return cache.NewFileCache(dir)
}

// openStore opens the configured repository.
func (c *CLI) openStore(ctx context.Context) (store.Repository, error) {
	repo, err := store.Open(ctx, c.Config.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", storeDriver(c.Config.Store), err)
	}
	c.Logger.Debug("opened store", "driver", storeDriver(c.Config.Store))
	return repo, nil
}

func storeDriver(cfg store.Config) string {
	if cfg.Driver == "" {
		return store.DriverMemory
	}
	return cfg.Driver
}

// newController creates a panel controller reading metrics from src.
func (c *CLI) newController(src panels.MetricsSource) (*panels.Controller, error) {
	cfg := c.Config.Panels
	variant, err := panels.ParseVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}
	return panels.NewController(src,
		panels.WithInterval(cfg.Interval),
		panels.WithViewport(cfg.Viewport),
		panels.WithVariant(variant),
		panels.WithLogger(c.Logger),
	), nil
}

// loadDataset reads a dataset from a file path or an http(s) URL. Remote
// bodies are cached in the configured cache for the source TTL.
func (c *CLI) loadDataset(ctx context.Context, location string) (popio.Dataset, error) {
	var ch cache.Cache = cache.NewNullCache()
	if source.IsRemote(location) {
		var err error
		if ch, err = c.newCache(ctx, false); err != nil {
			return popio.Dataset{}, err
		}
	}
	defer ch.Close()

	cfg := c.Config.Source
	loader := source.NewLoader(ch,
		source.WithTTL(cfg.TTL),
		source.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		source.WithLogger(c.Logger),
	)
	ds, err := loader.Load(ctx, location, cfg.Refresh)
	if err != nil {
		return popio.Dataset{}, err
	}
	c.Logger.Debug("loaded dataset", "location", location, "items", len(ds.Items))
	return ds, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/popdyn/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutDefaults returns pipeline options seeded from the configuration.
func (c *CLI) layoutDefaults() pipeline.Options {
	opts := c.Config.Layout.Options()
	opts.Logger = c.Logger
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseList splits a comma-separated flag value.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
