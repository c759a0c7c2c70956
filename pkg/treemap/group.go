package treemap

import (
	"strings"

	"github.com/matzehuels/popdyn/pkg/errors"
)

// GroupBy selects how items are bucketed into first-level groups.
type GroupBy string

// Supported grouping modes.
const (
	GroupBySector      GroupBy = "sector"
	GroupByType        GroupBy = "type"
	GroupByPerformance GroupBy = "performance"
	GroupByWeight      GroupBy = "weight"
)

// Group keys produced by the derived groupings.
const (
	BucketUnassigned = "Unassigned"
	BucketIndicators = "Indicators"

	BucketExcellent      = "Excellent"
	BucketGood           = "Good"
	BucketNeedsAttention = "Needs Attention"

	BucketHighWeight   = "High Weight"
	BucketMediumWeight = "Medium Weight"
	BucketLowWeight    = "Low Weight"
)

// Performance and weight thresholds.
const (
	excellentRatio = 0.9
	goodRatio      = 0.75

	highWeightShare   = 0.66
	mediumWeightShare = 0.33
)

// GroupModes lists the supported modes in display order.
var GroupModes = []GroupBy{GroupBySector, GroupByType, GroupByPerformance, GroupByWeight}

// ParseGroupBy parses a grouping mode name. The empty string selects
// [GroupBySector].
func ParseGroupBy(s string) (GroupBy, error) {
	g := GroupBy(strings.ToLower(strings.TrimSpace(s)))
	if g == "" {
		return GroupBySector, nil
	}
	if !g.Valid() {
		return "", errors.New(errors.ErrCodeInvalidGroupBy,
			"invalid group_by: %q (must be one of: sector, type, performance, weight)", s)
	}
	return g, nil
}

// Valid reports whether g is one of the supported modes.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupBySector, GroupByType, GroupByPerformance, GroupByWeight:
		return true
	}
	return false
}

func (g GroupBy) String() string { return string(g) }

// KeyFunc returns the function that maps an item to its group key. items is
// the full input set; [GroupByWeight] buckets relative to its largest weight.
func (g GroupBy) KeyFunc(items []Item) func(Item) string {
	switch g {
	case GroupByType:
		return func(Item) string { return BucketIndicators }
	case GroupByPerformance:
		return func(it Item) string { return PerformanceBucket(it.Value, it.Target) }
	case GroupByWeight:
		var maxWeight float64
		for _, it := range items {
			maxWeight = max(maxWeight, it.Weight)
		}
		return func(it Item) string { return WeightBucket(it.Weight, maxWeight) }
	default:
		return func(it Item) string {
			if it.Sector == "" {
				return BucketUnassigned
			}
			return it.Sector
		}
	}
}

// PerformanceBucket classifies value against target: a ratio of at least 0.9
// is Excellent, at least 0.75 is Good, anything else (including a missing
// target) Needs Attention.
func PerformanceBucket(value, target float64) string {
	if target <= 0 {
		return BucketNeedsAttention
	}
	switch r := value / target; {
	case r >= excellentRatio:
		return BucketExcellent
	case r >= goodRatio:
		return BucketGood
	default:
		return BucketNeedsAttention
	}
}

// WeightBucket classifies weight by its share of maxWeight.
func WeightBucket(weight, maxWeight float64) string {
	if maxWeight <= 0 {
		return BucketLowWeight
	}
	switch s := weight / maxWeight; {
	case s >= highWeightShare:
		return BucketHighWeight
	case s >= mediumWeightShare:
		return BucketMediumWeight
	default:
		return BucketLowWeight
	}
}
