package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/popdyn/pkg/cache"
	"github.com/matzehuels/popdyn/pkg/observability"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the HTTP server and the dashboard all go through a Runner so
// that caching and logging behave the same everywhere.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete filter → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, items []treemap.Item, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Filter
	filtered := Filter(items, opts)
	observability.Pipeline().OnFilter(ctx, len(items), len(filtered))
	result.Items = filtered
	result.Stats.ItemCount = len(items)
	result.Stats.FilteredCount = len(filtered)
	if !opts.Criteria().Empty() {
		r.Logger.Info("filtered items",
			"total", len(items),
			"matched", len(filtered))
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, filtered, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.GroupCount = len(layout.Groups)
	result.Stats.TileCount = len(layout.Tiles)
	result.CacheInfo.LayoutHit = layoutHit

	layoutData, err := treemap.MarshalResult(layout)
	if err != nil {
		return nil, fmt.Errorf("serialize layout: %w", err)
	}
	result.LayoutHash = cache.Hash(layoutData)

	r.Logger.Info("computed layout",
		"groups", len(layout.Groups),
		"tiles", len(layout.Tiles),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes the treemap for items with caching and
// reports whether it came from the cache. Items are used as given; apply
// [Filter] first when needed. The result is always in its JSON round-tripped
// form, so hits and misses return identical values.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, items []treemap.Item, opts Options) (treemap.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return treemap.Result{}, false, err
	}

	itemsHash, err := cache.HashJSON(items)
	if err != nil {
		return treemap.Result{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(itemsHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit := r.cacheGet(ctx, cacheKey, "layout"); hit {
			cached, err := treemap.UnmarshalResult(data)
			if err == nil {
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
			r.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "error", err)
		}
	}

	observability.Pipeline().OnLayoutStart(ctx, opts.GroupBy, len(items))
	start := time.Now()
	layout, err := ComputeLayout(items, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.GroupBy, len(layout.Tiles), time.Since(start), err)
	if err != nil {
		return treemap.Result{}, false, err
	}

	data, err := treemap.MarshalResult(layout)
	if err != nil {
		return treemap.Result{}, false, fmt.Errorf("serialize layout: %w", err)
	}
	r.cacheSet(ctx, cacheKey, "layout", data, cache.TTLLayout)

	// Return the decoded form so a miss matches a later hit, including
	// Item.Meta values (integers become float64, nested values generic maps).
	normalized, err := treemap.UnmarshalResult(data)
	if err != nil {
		return treemap.Result{}, false, fmt.Errorf("decode layout: %w", err)
	}
	return normalized, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, items []treemap.Item, opts Options) (treemap.Result, error) {
	layout, _, err := r.LayoutWithCacheInfo(ctx, items, opts)
	return layout, err
}

// RenderWithCacheInfo renders all requested formats with caching and
// reports whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout treemap.Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := treemap.MarshalResult(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit := r.cacheGet(ctx, key, "artifact"); hit {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	observability.Pipeline().OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := RenderFromLayout(layout, renderOpts)
	observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.cacheSet(ctx, key, "artifact", data, cache.TTLArtifact)
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout treemap.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheGet reads key and reports a hit. Backend errors count as misses.
func (r *Runner) cacheGet(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
