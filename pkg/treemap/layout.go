package treemap

import (
	"github.com/matzehuels/popdyn/pkg/errors"
)

// DefaultPadding is the inset applied to every group rectangle before its
// items are laid out.
const DefaultPadding = 2.0

// Option configures [Layout] and [Build].
type Option func(*config)

type config struct {
	padding    float64
	maxRowSize int
}

// WithPadding sets the group inset. Negative values are treated as zero.
func WithPadding(p float64) Option {
	return func(c *config) { c.padding = max(0, p) }
}

// WithMaxRowSize caps the number of nodes per squarified row.
func WithMaxRowSize(n int) Option {
	return func(c *config) { c.maxRowSize = max(1, n) }
}

// Layout computes the leaf tiles of a two-level treemap of items inside a
// width x height frame. Group containers are used internally and not
// returned; see [Build] for the full result.
//
// An empty item list yields an empty result. Non-positive or non-finite
// dimensions fail with INVALID_DIMENSIONS, negative or non-finite weights with
// INVALID_WEIGHT, and unknown groupings with INVALID_GROUP_BY.
func Layout(items []Item, width, height float64, by GroupBy, opts ...Option) ([]Tile, error) {
	res, err := Build(items, width, height, by, opts...)
	if err != nil {
		return nil, err
	}
	return res.Tiles, nil
}

// Build computes a two-level treemap and returns both the group containers
// and the leaf tiles.
//
// Groups are squarified into the frame with the total item weight as the
// proportionality base. Each group rectangle is inset by the padding, and the
// group's items are squarified into that inner rectangle with the group's own
// weight as the base. Tiles are ordered group by group in placement order.
func Build(items []Item, width, height float64, by GroupBy, opts ...Option) (Result, error) {
	cfg := config{padding: DefaultPadding, maxRowSize: DefaultMaxRowSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validate(items, width, height, by); err != nil {
		return Result{}, err
	}

	res := Result{
		Width:   width,
		Height:  height,
		GroupBy: by,
		Padding: cfg.padding,
		Groups:  []GroupTile{},
		Tiles:   []Tile{},
	}
	if len(items) == 0 {
		return res, nil
	}

	groups := partition(items, by.KeyFunc(items))
	weights := make([]float64, len(groups))
	for i, g := range groups {
		weights[i] = g.weight
	}

	for _, gp := range squarify(weights, res.Frame(), cfg.maxRowSize) {
		g := groups[gp.index]
		inner := gp.rect.Inset(cfg.padding)
		res.Groups = append(res.Groups, GroupTile{
			Key:    g.key,
			Weight: g.weight,
			Count:  len(g.members),
			Outer:  gp.rect,
			Inner:  inner,
		})

		memberWeights := make([]float64, len(g.members))
		for i, it := range g.members {
			memberWeights[i] = it.Weight
		}
		for _, ip := range squarify(memberWeights, inner, cfg.maxRowSize) {
			res.Tiles = append(res.Tiles, Tile{
				Item:  g.members[ip.index],
				Rect:  ip.rect,
				Group: g.key,
			})
		}
	}
	return res, nil
}

// group is one first-level bucket of items.
type group struct {
	key     string
	weight  float64
	members []Item
}

// partition buckets items by key, keeping buckets in order of first
// appearance and members in input order.
func partition(items []Item, key func(Item) string) []group {
	var groups []group
	index := make(map[string]int)
	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].weight += it.Weight
		groups[i].members = append(groups[i].members, it)
	}
	return groups
}

func validate(items []Item, width, height float64, by GroupBy) error {
	if err := errors.ValidateDimension("width", width); err != nil {
		return err
	}
	if err := errors.ValidateDimension("height", height); err != nil {
		return err
	}
	if !by.Valid() {
		return errors.New(errors.ErrCodeInvalidGroupBy,
			"invalid group_by: %q (must be one of: sector, type, performance, weight)", by)
	}
	for _, it := range items {
		if err := errors.ValidateWeight(it.ID, it.Weight); err != nil {
			return err
		}
	}
	return nil
}
