package pipeline

import (
	"fmt"

	"github.com/matzehuels/popdyn/pkg/render/hierarchy"
	"github.com/matzehuels/popdyn/pkg/render/treemap/sink"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// RenderFromLayout renders every format in opts.Formats without caching.
// Options must have been validated with [Options.ValidateForRender].
func RenderFromLayout(res treemap.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(res, format, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		opts.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(res treemap.Result, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(res, svgOptions(opts)...), nil
	case FormatJSON:
		return sink.RenderJSON(res, sink.WithJSONMeta(), sink.WithJSONIndent())
	case FormatPNG:
		return sink.RenderPNG(res, sink.WithScale(opts.Scale), sink.WithPNGSVGOptions(svgOptions(opts)...))
	case FormatPDF:
		return sink.RenderPDF(res, sink.WithPDFSVGOptions(svgOptions(opts)...))
	case FormatText:
		return []byte(sink.RenderText(res, opts.Columns, opts.Rows, sink.WithLegend())), nil
	case FormatDOT:
		return []byte(hierarchy.ToDOT(res, hierarchy.Options{Detailed: opts.Detailed})), nil
	default:
		return nil, ValidateFormat(format)
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Popups {
		out = append(out, sink.WithPopups())
	}
	if opts.NoLabels {
		out = append(out, sink.WithoutLabels())
	}
	return out
}
