package sink

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/popdyn/pkg/treemap"
)

func buildResult(t *testing.T, by treemap.GroupBy) treemap.Result {
	t.Helper()
	items := []treemap.Item{
		{ID: "births", Name: "Birth rate", Value: 95, Target: 100, Weight: 6, Sector: "Health"},
		{ID: "deaths", Name: "Mortality <5y>", Value: 60, Target: 100, Weight: 2, Sector: "Health"},
		{ID: "migration", Name: "Net migration", Value: 40, Target: 50, Weight: 2, Sector: "Mobility"},
	}
	res, err := treemap.Build(items, 400, 300, by)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return res
}

func TestRenderSVG(t *testing.T) {
	res := buildResult(t, treemap.GroupBySector)
	svg := string(RenderSVG(res))

	// must be well-formed XML
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("SVG is not well-formed: %v", err)
		}
	}

	for _, want := range []string{
		`viewBox="0 0 400.0 300.0"`,
		`data-group="Health"`,
		`data-group="Mobility"`,
		`id="tile-births"`,
		`id="tile-migration"`,
		`>Birth rate</text>`,
		`Mortality &lt;`,
		`<script`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, `class="popup"`) {
		t.Error("popups rendered without WithPopups")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	res := buildResult(t, treemap.GroupBySector)

	svg := string(RenderSVG(res, WithPopups()))
	if !strings.Contains(svg, `class="popup" data-for="births"`) {
		t.Error("WithPopups should add a popup per tile")
	}
	if !strings.Contains(svg, "Value: 95 / 100 (95%)") {
		t.Error("popup should show value against target")
	}

	svg = string(RenderSVG(res, WithoutLabels(), WithStatic()))
	if strings.Contains(svg, `class="tile-text"`) {
		t.Error("WithoutLabels should suppress tile labels")
	}
	if strings.Contains(svg, "<script") {
		t.Error("WithStatic should omit scripts")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	res, err := treemap.Build(nil, 100, 50, treemap.GroupBySector)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(RenderSVG(res))
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Errorf("empty layout should still produce a document:\n%s", svg)
	}
}

func TestColors(t *testing.T) {
	res := buildResult(t, treemap.GroupBySector)
	colors := Colors(res)
	if colors["Health"] != palette[0] || colors["Mobility"] != palette[1] {
		t.Errorf("sector colors = %v, want palette order", colors)
	}

	res = buildResult(t, treemap.GroupByPerformance)
	colors = Colors(res)
	if colors[treemap.BucketExcellent] != bucketColors[treemap.BucketExcellent] {
		t.Errorf("Excellent color = %s", colors[treemap.BucketExcellent])
	}
	if colors[treemap.BucketNeedsAttention] != bucketColors[treemap.BucketNeedsAttention] {
		t.Errorf("Needs Attention color = %s", colors[treemap.BucketNeedsAttention])
	}
}

func TestTextColor(t *testing.T) {
	tests := []struct{ fill, want string }{
		{"#ffffff", "#000000"},
		{"#000000", "#ffffff"},
		{"#edc948", "#000000"},
		{"#1b5e20", "#ffffff"},
		{"teal", "#000000"},
	}
	for _, tt := range tests {
		if got := textColor(tt.fill); got != tt.want {
			t.Errorf("textColor(%s) = %s, want %s", tt.fill, got, tt.want)
		}
	}
}

func TestFitLabel(t *testing.T) {
	if _, ok := fitLabel("Birth rate", 10, 10, 8); ok {
		t.Error("label should not fit a 10x10 tile")
	}
	got, ok := fitLabel("Birth rate", 200, 40, 12)
	if !ok || got != "Birth rate" {
		t.Errorf("fitLabel() = %q, %v", got, ok)
	}
	got, ok = fitLabel("A very long indicator name", 60, 40, 10)
	if !ok || !strings.HasSuffix(got, "..") {
		t.Errorf("long label should be truncated, got %q", got)
	}
}

func TestRenderJSON(t *testing.T) {
	res := buildResult(t, treemap.GroupByPerformance)
	data, err := RenderJSON(res, WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.GroupBy != "performance" || len(out.Tiles) != 3 || len(out.Groups) != len(res.Groups) {
		t.Errorf("unexpected output: %+v", out)
	}
	for _, tile := range out.Tiles {
		if tile.Color == "" {
			t.Errorf("tile %s has no color", tile.ID)
		}
		if tile.Meta != nil {
			t.Errorf("tile %s has meta without WithJSONMeta", tile.ID)
		}
	}
}

func TestRenderText(t *testing.T) {
	res := buildResult(t, treemap.GroupBySector)
	out := RenderText(res, 60, 20, WithLegend())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	if len(lines) != 20+len(res.Groups) {
		t.Fatalf("got %d lines, want %d grid rows plus legend", len(lines), 20+len(res.Groups))
	}
	for i, line := range lines[:20] {
		if w := lipgloss.Width(line); w != 60 {
			t.Errorf("row %d width = %d, want 60", i, w)
		}
	}
	if !strings.Contains(out, "Birth rate") {
		t.Error("largest tile should carry its label")
	}
	if !strings.Contains(lines[20], "Health (2)") {
		t.Errorf("legend line = %q", lines[20])
	}
}

func TestRenderTextDegenerate(t *testing.T) {
	res := buildResult(t, treemap.GroupBySector)
	if RenderText(res, 0, 10) != "" {
		t.Error("zero columns should render nothing")
	}
}
