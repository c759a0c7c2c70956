package treemap

import (
	"cmp"
	"math"
	"slices"
)

// DefaultMaxRowSize caps how many nodes a single row may hold. Long tails of
// small weights would otherwise make the worst-ratio search quadratic.
const DefaultMaxRowSize = 6

// node is one entry of a sibling set being squarified.
type node struct {
	index  int // position in the caller's slice
	weight float64
	area   float64
}

// placement maps a caller index to its computed rectangle.
type placement struct {
	index int
	rect  Rect
}

// squarify lays out weights inside bounds. Every node receives an area of
// weight/total * bounds.Area(), where total is the sum of weights. Nodes
// with zero weight are skipped; if the total is zero or bounds is degenerate,
// nothing is placed. Placements are returned in layout order (descending
// weight, input order among equal weights).
func squarify(weights []float64, bounds Rect, maxRow int) []placement {
	if bounds.Degenerate() {
		return nil
	}
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return nil
	}
	if maxRow < 1 {
		maxRow = 1
	}

	nodes := make([]node, 0, len(weights))
	scale := bounds.Area() / total
	for i, w := range weights {
		if w > 0 {
			nodes = append(nodes, node{index: i, weight: w, area: w * scale})
		}
	}
	slices.SortStableFunc(nodes, func(a, b node) int {
		return cmp.Compare(b.weight, a.weight)
	})

	out := make([]placement, 0, len(nodes))
	remaining := bounds
	for start := 0; start < len(nodes); {
		if remaining.Degenerate() {
			// Rounding consumed the frame; park the rest as empty rects.
			for _, n := range nodes[start:] {
				out = append(out, placement{index: n.index, rect: Rect{X: remaining.X, Y: remaining.Y}})
			}
			break
		}

		side := remaining.ShortSide()
		end := start + 1
		for end < len(nodes) && end-start < maxRow {
			if worstRatio(nodes[start:end+1], side) > worstRatio(nodes[start:end], side) {
				break
			}
			end++
		}

		out, remaining = layoutRow(out, nodes[start:end], remaining)
		start = end
	}
	return out
}

// worstRatio returns the largest long-to-short side ratio among the
// rectangles row would produce along a side of the given length.
func worstRatio(row []node, side float64) float64 {
	if side <= 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, n := range row {
		sum += n.area
	}
	rowWidth := sum / side
	worst := 0.0
	for _, n := range row {
		h := n.area / rowWidth
		worst = max(worst, rowWidth/h, h/rowWidth)
	}
	return worst
}

// layoutRow places row as a strip along the short side of remaining and
// returns the rectangle left over.
func layoutRow(out []placement, row []node, remaining Rect) ([]placement, Rect) {
	var sum float64
	for _, n := range row {
		sum += n.area
	}

	if remaining.Width > remaining.Height {
		// Column on the left edge, nodes stacked top to bottom.
		thickness := sum / remaining.Height
		y := remaining.Y
		for _, n := range row {
			h := n.area / thickness
			out = append(out, placement{index: n.index, rect: Rect{X: remaining.X, Y: y, Width: thickness, Height: h}})
			y += h
		}
		remaining.X += thickness
		remaining.Width = max(0, remaining.Width-thickness)
		return out, remaining
	}

	// Row on the top edge, nodes placed left to right.
	thickness := sum / remaining.Width
	x := remaining.X
	for _, n := range row {
		w := n.area / thickness
		out = append(out, placement{index: n.index, rect: Rect{X: x, Y: remaining.Y, Width: w, Height: thickness}})
		x += w
	}
	remaining.Y += thickness
	remaining.Height = max(0, remaining.Height-thickness)
	return out, remaining
}
