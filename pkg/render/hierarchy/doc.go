// Package hierarchy renders a treemap layout as a node-link tree.
//
// The treemap encodes the grouping hierarchy as nested rectangles; this
// package draws the same hierarchy explicitly with Graphviz: a root node for
// the frame, one node per group and one leaf per item.
//
// # Usage
//
//	dot := hierarchy.ToDOT(res, hierarchy.Options{Detailed: true})
//	svg, err := hierarchy.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := hierarchy.RenderPDF(dot)
//	png, err := hierarchy.RenderPNG(dot, 2.0)
//
// PDF and PNG need rsvg-convert (see [render.ToPDF]).
package hierarchy
