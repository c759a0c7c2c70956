package pipeline

import (
	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// Filter applies the query and category selection of opts to items.
func Filter(items []treemap.Item, opts Options) []treemap.Item {
	return filter.Apply(items, opts.Criteria())
}

// ComputeLayout builds the treemap for items without caching.
// Options must have been validated with [Options.ValidateForLayout].
func ComputeLayout(items []treemap.Item, opts Options) (treemap.Result, error) {
	opts.Logger.Debug("computing treemap",
		"items", len(items),
		"group_by", opts.GroupBy,
		"width", opts.Width,
		"height", opts.Height)
	return treemap.Build(items, opts.Width, opts.Height, treemap.GroupBy(opts.GroupBy), opts.LayoutOptions()...)
}
