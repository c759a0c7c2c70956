package sink

import (
	"github.com/matzehuels/popdyn/pkg/render"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the layout as PDF via SVG conversion. Scripts and
// popups are dropped since a PDF cannot run them.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(res treemap.Result, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svg := RenderSVG(res, append(r.svgOpts, WithStatic())...)
	return render.ToPDF(svg)
}
