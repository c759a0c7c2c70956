package treemap

import (
	"math"
	"testing"
)

func TestSquarifyEqualWeightsFormGrid(t *testing.T) {
	got := squarify([]float64{1, 1, 1, 1}, Rect{Width: 100, Height: 100}, DefaultMaxRowSize)

	want := []placement{
		{0, Rect{0, 0, 50, 50}},
		{1, Rect{50, 0, 50, 50}},
		{2, Rect{0, 50, 50, 50}},
		{3, Rect{50, 50, 50, 50}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d placements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].index != want[i].index || !rectNear(got[i].rect, want[i].rect, 1e-9) {
			t.Errorf("placement %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSquarifyOrdersByDescendingWeight(t *testing.T) {
	got := squarify([]float64{1, 5, 3, 5}, Rect{Width: 40, Height: 30}, DefaultMaxRowSize)

	wantOrder := []int{1, 3, 2, 0}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d placements, want %d", len(got), len(wantOrder))
	}
	for i, idx := range wantOrder {
		if got[i].index != idx {
			t.Errorf("placement %d index = %d, want %d", i, got[i].index, idx)
		}
	}
}

func TestSquarifyAreasSumToBounds(t *testing.T) {
	weights := []float64{13, 7, 7, 5, 3, 2, 2, 1, 1, 0.5, 0.25}
	bounds := Rect{X: 10, Y: 20, Width: 320, Height: 180}

	for _, maxRow := range []int{1, 2, DefaultMaxRowSize, 100} {
		placed := squarify(weights, bounds, maxRow)
		if len(placed) != len(weights) {
			t.Fatalf("maxRow=%d: got %d placements, want %d", maxRow, len(placed), len(weights))
		}

		var sum float64
		for _, p := range placed {
			sum += p.rect.Area()
			if !bounds.Contains(p.rect, 1e-6) {
				t.Errorf("maxRow=%d: %+v escapes bounds %+v", maxRow, p.rect, bounds)
			}
		}
		if math.Abs(sum-bounds.Area()) > 1e-6 {
			t.Errorf("maxRow=%d: total area = %v, want %v", maxRow, sum, bounds.Area())
		}
	}
}

func TestSquarifyDegenerateInput(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		bounds  Rect
	}{
		{"no weights", nil, Rect{Width: 10, Height: 10}},
		{"all zero", []float64{0, 0}, Rect{Width: 10, Height: 10}},
		{"zero width", []float64{1}, Rect{Width: 0, Height: 10}},
		{"zero height", []float64{1}, Rect{Width: 10, Height: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := squarify(tt.weights, tt.bounds, DefaultMaxRowSize); len(got) != 0 {
				t.Errorf("squarify() = %+v, want nothing", got)
			}
		})
	}
}

func TestSquarifySkipsZeroWeights(t *testing.T) {
	got := squarify([]float64{0, 4, 0}, Rect{Width: 10, Height: 10}, DefaultMaxRowSize)
	if len(got) != 1 || got[0].index != 1 {
		t.Fatalf("squarify() = %+v, want single placement for index 1", got)
	}
	if !rectNear(got[0].rect, Rect{Width: 10, Height: 10}, 1e-9) {
		t.Errorf("rect = %+v, want full bounds", got[0].rect)
	}
}

func TestSquarifyRowCap(t *testing.T) {
	// Twelve equal weights in a square: the greedy pass puts at least three of
	// them in the first row along the top edge unless the row is capped.
	weights := make([]float64, 12)
	for i := range weights {
		weights[i] = 1
	}
	bounds := Rect{Width: 100, Height: 100}

	topRow := func(placed []placement) int {
		n := 0
		for _, p := range placed {
			if p.rect.Y == 0 {
				n++
			}
		}
		return n
	}

	if n := topRow(squarify(weights, bounds, DefaultMaxRowSize)); n < 3 {
		t.Errorf("uncapped first row holds %d nodes, want at least 3", n)
	}
	if n := topRow(squarify(weights, bounds, 2)); n != 2 {
		t.Errorf("capped first row holds %d nodes, want 2", n)
	}
}

func TestWorstRatio(t *testing.T) {
	// rowWidth = 100/10 = 10, each height 5.
	row := []node{{area: 50}, {area: 50}}
	if got := worstRatio(row, 10); math.Abs(got-2) > 1e-12 {
		t.Errorf("worstRatio() = %v, want 2", got)
	}
	if got := worstRatio([]node{{area: 100}}, 10); math.Abs(got-1) > 1e-12 {
		t.Errorf("worstRatio(square) = %v, want 1", got)
	}
	if got := worstRatio(row, 0); !math.IsInf(got, 1) {
		t.Errorf("worstRatio(side=0) = %v, want +Inf", got)
	}
}

func rectNear(a, b Rect, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps &&
		math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.Width-b.Width) <= eps &&
		math.Abs(a.Height-b.Height) <= eps
}
