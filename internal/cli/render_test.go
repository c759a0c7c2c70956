package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/popdyn/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , txt ", []string{"svg", "txt"}},
		{"trailing comma", "dot,", []string{"dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid txt", []string{"txt"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid all", []string{"svg", "json", "png", "pdf", "txt", "dot"}, false},
		{"invalid format", []string{"invalid"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got := parseList(" Health, ,Mobility ")
	if len(got) != 2 || got[0] != "Health" || got[1] != "Mobility" {
		t.Errorf("parseList() = %q, want [Health Mobility]", got)
	}
	if got := parseList(""); got != nil {
		t.Errorf("parseList(\"\") = %q, want nil", got)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "data/indicators.json", "data/indicators"},
		{"output with format extension", "out/map.svg", "in.json", "out/map"},
		{"output with txt extension", "out/map.txt", "in.json", "out/map"},
		{"output without extension", "out/map", "in.json", "out/map"},
		{"output with unknown extension", "out/map.v2", "in.json", "out/map.v2"},
		{"remote input", "", "https://example.com/data/indicators.yaml?v=2", "indicators"},
		{"remote input without path", "", "https://example.com", "example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	}

	t.Run("single format to exact path", func(t *testing.T) {
		out := filepath.Join(dir, "exact.image")
		paths, err := writeArtifacts(artifacts, []string{"svg"}, out, "in.json")
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		if len(paths) != 1 || paths[0] != out {
			t.Errorf("paths = %v, want [%s]", paths, out)
		}
		data, _ := os.ReadFile(out)
		if string(data) != "<svg/>" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("multiple formats next to base", func(t *testing.T) {
		base := filepath.Join(dir, "multi")
		paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, base+".svg", "in.json")
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		want := []string{base + ".svg", base + ".json"}
		for i, p := range want {
			if paths[i] != p {
				t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
			}
			if _, err := os.Stat(p); err != nil {
				t.Errorf("missing %s: %v", p, err)
			}
		}
	})
}
