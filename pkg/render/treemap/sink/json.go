package sink

import (
	"encoding/json"

	"github.com/matzehuels/popdyn/pkg/treemap"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	meta   bool
	indent bool
}

// WithJSONMeta includes each item's free-form metadata.
func WithJSONMeta() JSONOption { return func(r *jsonRenderer) { r.meta = true } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	GroupBy string      `json:"group_by"`
	Padding float64     `json:"padding"`
	Groups  []jsonGroup `json:"groups"`
	Tiles   []jsonTile  `json:"tiles"`
}

type jsonGroup struct {
	Key    string   `json:"key"`
	Weight float64  `json:"weight"`
	Count  int      `json:"count"`
	Color  string   `json:"color"`
	Outer  jsonRect `json:"outer"`
	Inner  jsonRect `json:"inner"`
}

type jsonRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonTile struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Group  string         `json:"group"`
	Value  float64        `json:"value"`
	Target float64        `json:"target,omitempty"`
	Ratio  float64        `json:"ratio,omitempty"`
	Weight float64        `json:"weight"`
	Sector string         `json:"sector,omitempty"`
	Color  string         `json:"color"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Meta   map[string]any `json:"meta,omitempty"`
}

func rectOf(r treemap.Rect) jsonRect {
	return jsonRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// RenderJSON renders the layout for web front ends: every group and tile
// with its rectangle and the color the SVG sink would give it.
func RenderJSON(res treemap.Result, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	colors := Colors(res)

	out := jsonOutput{
		Width:   res.Width,
		Height:  res.Height,
		GroupBy: res.GroupBy.String(),
		Padding: res.Padding,
		Groups:  make([]jsonGroup, len(res.Groups)),
		Tiles:   make([]jsonTile, len(res.Tiles)),
	}
	for i, g := range res.Groups {
		out.Groups[i] = jsonGroup{
			Key:    g.Key,
			Weight: g.Weight,
			Count:  g.Count,
			Color:  colors[g.Key],
			Outer:  rectOf(g.Outer),
			Inner:  rectOf(g.Inner),
		}
	}
	for i, t := range res.Tiles {
		jt := jsonTile{
			ID:     t.ID,
			Name:   t.DisplayName(),
			Group:  t.Group,
			Value:  t.Value,
			Target: t.Target,
			Ratio:  t.Ratio(),
			Weight: t.Weight,
			Sector: t.Sector,
			Color:  colors[t.Group],
			X:      t.X,
			Y:      t.Y,
			Width:  t.Width,
			Height: t.Height,
		}
		if r.meta {
			jt.Meta = t.Meta
		}
		out.Tiles[i] = jt
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
