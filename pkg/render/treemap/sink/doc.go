// Package sink writes treemap layouts in output formats.
//
// Every sink takes a [treemap.Result] as produced by [treemap.Build]:
//
//   - [RenderSVG]: standalone SVG with group frames and colored tiles
//   - [RenderJSON]: the layout plus the colors the SVG would use
//   - [RenderPNG], [RenderPDF]: SVG converted with rsvg-convert
//   - [RenderText]: an ANSI-colored character grid for terminals
//
// Tiles are colored by group. Performance groupings use fixed semantic
// colors (green, amber, red); every other grouping cycles through a
// categorical palette in group order, so the same layout always gets the
// same colors.
package sink
