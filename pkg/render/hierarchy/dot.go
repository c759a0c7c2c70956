package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/popdyn/pkg/render"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

const rootID = "frame"

// Options configures hierarchy rendering.
type Options struct {
	// Detailed adds weight, value and metadata to node labels.
	// When false, groups show their key and items their display name.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT. Groups appear in layout order,
// items in tile order within their group.
func ToDOT(res treemap.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	rootLabel := fmt.Sprintf("%s\n%.0fx%.0f", res.GroupBy, res.Width, res.Height)
	fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fillcolor=lightgrey];\n", rootID, rootLabel)

	for _, g := range res.Groups {
		fmt.Fprintf(&buf, "  %q [%s];\n", groupNode(g.Key), strings.Join(groupAttrs(g, opts.Detailed), ", "))
	}
	for _, t := range res.Tiles {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", itemNode(t.ID), itemLabel(t, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, g := range res.Groups {
		fmt.Fprintf(&buf, "  %q -> %q;\n", rootID, groupNode(g.Key))
	}
	for _, t := range res.Tiles {
		fmt.Fprintf(&buf, "  %q -> %q;\n", groupNode(t.Group), itemNode(t.ID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func groupNode(key string) string { return "group:" + key }
func itemNode(id string) string   { return "item:" + id }

func groupAttrs(g treemap.GroupTile, detailed bool) []string {
	label := g.Key
	if detailed {
		label = fmt.Sprintf("%s\nitems: %d\nweight: %g", g.Key, g.Count, g.Weight)
	}
	return []string{fmt.Sprintf("label=%q", label), "fillcolor=\"#e8eef6\""}
}

func itemLabel(t treemap.Tile, detailed bool) string {
	if !detailed {
		return t.DisplayName()
	}

	parts := []string{fmt.Sprintf("weight: %g", t.Weight)}
	if t.Target > 0 {
		parts = append(parts, fmt.Sprintf("value: %g / %g", t.Value, t.Target))
	} else {
		parts = append(parts, fmt.Sprintf("value: %g", t.Value))
	}
	for _, k := range slices.Sorted(maps.Keys(t.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, t.Meta[k]))
	}
	return t.DisplayName() + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element (pt units, fixed
// size) with a plain viewBox so the SVG scales like the treemap output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
