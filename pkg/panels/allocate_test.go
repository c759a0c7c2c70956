package panels

import (
	"testing"
)

func TestBreakpointFor(t *testing.T) {
	tests := []struct {
		px   int
		want Breakpoint
	}{
		{0, Mobile},
		{767, Mobile},
		{768, Tablet},
		{1279, Tablet},
		{1280, Desktop},
		{1919, Desktop},
		{1920, Wide},
		{3840, Wide},
	}

	for _, tt := range tests {
		if got := BreakpointFor(tt.px); got != tt.want {
			t.Errorf("BreakpointFor(%d) = %s, want %s", tt.px, got, tt.want)
		}
	}
}

func TestAllocate(t *testing.T) {
	r := Ranking{Hero: Monitoring, Scores: map[PanelID]float64{Monitoring: 40}}

	tests := []struct {
		name     string
		viewport int
		variant  Variant
		hero     float64
		other    float64
		stacked  bool
	}{
		{"mobile stacks", 375, Asymmetric, 100, 100, true},
		{"mobile focal stacks", 375, Focal, 100, 100, true},
		{"tablet asymmetric", 1024, Asymmetric, 50, 25, false},
		{"desktop asymmetric", 1440, Asymmetric, 50, 25, false},
		{"wide asymmetric", 2560, Asymmetric, 40, 30, false},
		{"tablet focal", 1024, Focal, 60, 20, false},
		{"desktop focal", 1600, Focal, 60, 20, false},
		{"wide focal", 1920, Focal, 50, 25, false},
		{"unknown variant falls back", 1440, Variant("bento"), 50, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Allocate(r, tt.viewport, tt.variant)
			if a.Stacked != tt.stacked {
				t.Errorf("Stacked = %v, want %v", a.Stacked, tt.stacked)
			}
			if a.Hero != Monitoring || a.Order[0] != Monitoring {
				t.Errorf("hero = %s, order = %v, want monitoring first", a.Hero, a.Order)
			}
			var total float64
			for _, id := range All {
				want := tt.other
				if id == Monitoring {
					want = tt.hero
				}
				if got := a.Widths[id]; got != want {
					t.Errorf("width[%s] = %v, want %v", id, got, want)
				}
				total += a.Widths[id]
			}
			if !tt.stacked && total != 100 {
				t.Errorf("side-by-side widths sum to %v, want 100", total)
			}
		})
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"", Asymmetric, false},
		{"focal", Focal, false},
		{"ASYMMETRIC", Asymmetric, false},
		{"grid", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVariant(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseVariant(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
