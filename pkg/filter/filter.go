// Package filter narrows an item set before layout.
//
// The dashboard offers a free-text search box and a multi-select of
// sectors. [Apply] combines both: an item is kept when it matches the query
// and belongs to one of the selected categories.
package filter

import (
	"slices"
	"strings"

	"github.com/matzehuels/popdyn/pkg/treemap"
)

// Criteria selects items. The zero value selects everything.
type Criteria struct {
	// Query is matched case-insensitively as a substring of the item's ID,
	// name, sector and type. Surrounding whitespace is ignored.
	Query string `json:"query,omitempty"`

	// Categories restricts items to these sectors (case-insensitive). Empty
	// means all sectors. Items without a sector match "Unassigned".
	Categories []string `json:"categories,omitempty"`
}

// Empty reports whether c selects every item.
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Query) == "" && len(c.normalizedCategories()) == 0
}

// Match reports whether it satisfies c.
func (c Criteria) Match(it treemap.Item) bool {
	return c.matcher()(it)
}

// Apply returns the items matching c in their original order. The input is
// never modified; when c is empty a copy of items is returned.
func Apply(items []treemap.Item, c Criteria) []treemap.Item {
	match := c.matcher()
	out := make([]treemap.Item, 0, len(items))
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Categories returns the distinct sectors of items in first-appearance
// order, the options a category picker offers.
func Categories(items []treemap.Item) []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range items {
		s := sectorOf(it)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (c Criteria) matcher() func(treemap.Item) bool {
	q := strings.ToLower(strings.TrimSpace(c.Query))
	cats := c.normalizedCategories()
	return func(it treemap.Item) bool {
		if len(cats) > 0 && !slices.Contains(cats, strings.ToLower(sectorOf(it))) {
			return false
		}
		if q == "" {
			return true
		}
		for _, field := range []string{it.ID, it.Name, it.Sector, it.Type} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
}

func (c Criteria) normalizedCategories() []string {
	var out []string
	for _, cat := range c.Categories {
		if cat = strings.ToLower(strings.TrimSpace(cat)); cat != "" {
			out = append(out, cat)
		}
	}
	return out
}

func sectorOf(it treemap.Item) string {
	if it.Sector == "" {
		return treemap.BucketUnassigned
	}
	return it.Sector
}
