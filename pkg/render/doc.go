// Package render turns treemap layouts into visual outputs.
//
// # Overview
//
// This package contains the rendering side of popdyn. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Treemap sinks (in [treemap/sink] subpackage)
//   - Group hierarchy diagrams (in [hierarchy] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both the treemap sinks and
// the hierarchy renderer use them.
//
//	svg := sink.RenderSVG(result, sink.WithPopups())
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Treemap Sinks
//
// The [treemap/sink] subpackage writes a [treemap.Result] as SVG (group
// frames, colored tiles, labels that fit, optional hover popups), JSON,
// PNG, PDF, or a colored text grid for terminals.
//
// # Hierarchy Diagrams
//
// The [hierarchy] subpackage renders the group structure of a layout as a
// Graphviz tree: the frame at the root, groups below it, items as leaves.
//
//	dot := hierarchy.ToDOT(result, hierarchy.Options{})
//	svg, err := hierarchy.RenderSVG(dot)
//
// [treemap/sink]: github.com/matzehuels/popdyn/pkg/render/treemap/sink
// [hierarchy]: github.com/matzehuels/popdyn/pkg/render/hierarchy
// [treemap.Result]: github.com/matzehuels/popdyn/pkg/treemap.Result
package render
