// Package treemap computes two-level squarified treemap layouts.
//
// A layout turns a flat list of weighted [Item] values into screen-space
// rectangles whose areas are proportional to item weight. Items are first
// bucketed into groups by a [GroupBy] key; the groups are squarified into the
// frame, each group rectangle is inset by a fixed padding, and the group's
// items are squarified into that inner rectangle.
//
// # Squarification
//
// Nodes are sorted by descending weight (stable, so equal weights keep input
// order) and packed greedily into rows along the short side of the remaining
// rectangle. A node joins the current row while doing so does not worsen the
// row's worst aspect ratio, and rows are capped at six nodes. Each flushed row
// takes a strip of uniform thickness off the long side of the remaining
// rectangle.
//
// # Degenerate input
//
// [Layout] and [Build] reject non-positive frame dimensions and negative
// weights with coded errors from pkg/errors. Sibling sets whose total weight
// is zero, zero-weight items, and groups whose padded rectangle collapses
// produce no tiles instead of NaN geometry.
//
// # Usage
//
//	tiles, err := treemap.Layout(items, 800, 600, treemap.GroupBySector)
//	if err != nil {
//	    return err
//	}
//	for _, t := range tiles {
//	    fmt.Printf("%s %.1fx%.1f at (%.1f,%.1f)\n", t.ID, t.Width, t.Height, t.X, t.Y)
//	}
//
// Layouts are pure: identical input produces identical output, and no state is
// shared between calls.
package treemap
