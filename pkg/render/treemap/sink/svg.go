package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/popdyn/pkg/treemap"
)

const tileInteractionCSS = `
    .tile { transition: opacity 0.2s ease; }
    .group.dim .tile { opacity: 0.35; }
    .tile-text { pointer-events: none; }`

const tileInteractionJS = `
    document.querySelectorAll('.group').forEach(g => {
      g.addEventListener('mouseenter', () => document.querySelectorAll('.group').forEach(o => o.classList.toggle('dim', o !== g)));
      g.addEventListener('mouseleave', () => document.querySelectorAll('.group').forEach(o => o.classList.remove('dim')));
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	popups      bool
	labels      bool
	interactive bool
	background  string
}

// WithPopups adds a hover card to every tile with value, target and weight.
func WithPopups() SVGOption { return func(r *svgRenderer) { r.popups = true } }

// WithoutLabels suppresses tile labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithStatic omits the embedded CSS and script (for PNG/PDF conversion).
func WithStatic() SVGOption { return func(r *svgRenderer) { r.interactive = false } }

// WithBackground sets the frame fill color.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{labels: true, interactive: true, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders res as a standalone SVG document of the layout's frame
// size. Tiles are drawn group by group; a label is drawn only when it fits
// its tile.
func RenderSVG(res treemap.Result, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	colors := Colors(res)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		res.Width, res.Height, res.Width, res.Height)
	fmt.Fprintf(&buf, `  <rect class="frame" x="0" y="0" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		res.Width, res.Height, escapeXML(r.background))

	byGroup := tilesByGroup(res)
	for _, g := range res.Groups {
		fill := colors[g.Key]
		fmt.Fprintf(&buf, `  <g class="group" data-group="%s">`+"\n", escapeXML(g.Key))
		fmt.Fprintf(&buf, "    <title>%s (%d)</title>\n", escapeXML(g.Key), g.Count)
		fmt.Fprintf(&buf, `    <rect class="group-frame" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="1"/>`+"\n",
			g.Outer.X, g.Outer.Y, g.Outer.Width, g.Outer.Height, fill)
		for _, t := range byGroup[g.Key] {
			renderTile(&buf, r, t, fill)
		}
		buf.WriteString("  </g>\n")
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tileInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", tileInteractionJS)
	}
	if r.popups {
		for _, t := range res.Tiles {
			renderPopup(&buf, t)
		}
		if r.interactive {
			renderPopupScript(&buf)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderTile(buf *bytes.Buffer, r svgRenderer, t treemap.Tile, fill string) {
	if t.Degenerate() {
		return
	}
	fmt.Fprintf(buf, `    <rect id="tile-%s" class="tile" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#ffffff" stroke-width="1"/>`+"\n",
		escapeXML(t.ID), t.X, t.Y, t.Width, t.Height, fill)
	if !r.labels {
		return
	}
	name := t.DisplayName()
	size := fontSize(t.Width, t.Height, len([]rune(name)))
	label, ok := fitLabel(name, t.Width, t.Height, size)
	if !ok {
		return
	}
	fmt.Fprintf(buf, `    <text class="tile-text" data-tile="%s" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="Helvetica, Arial, sans-serif" font-size="%.1f" fill="%s">%s</text>`+"\n",
		escapeXML(t.ID), t.CenterX(), t.CenterY(), size, textColor(fill), escapeXML(label))
}

func tilesByGroup(res treemap.Result) map[string][]treemap.Tile {
	out := make(map[string][]treemap.Tile, len(res.Groups))
	for _, t := range res.Tiles {
		out[t.Group] = append(out[t.Group], t)
	}
	return out
}
