package treemap_test

import (
	"fmt"

	"github.com/matzehuels/popdyn/pkg/treemap"
)

func ExampleBuild() {
	items := []treemap.Item{
		{ID: "a", Weight: 6, Sector: "X"},
		{ID: "b", Weight: 2, Sector: "X"},
		{ID: "c", Weight: 2, Sector: "Y"},
	}

	res, err := treemap.Build(items, 100, 100, treemap.GroupBySector)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, g := range res.Groups {
		fmt.Printf("group %s: %.0f,%.0f %.0fx%.0f\n", g.Key, g.Outer.X, g.Outer.Y, g.Outer.Width, g.Outer.Height)
	}
	for _, t := range res.Tiles {
		fmt.Printf("tile %s: %.0f,%.0f %.0fx%.0f\n", t.ID, t.X, t.Y, t.Width, t.Height)
	}
	// Output:
	// group X: 0,0 100x80
	// group Y: 0,80 100x20
	// tile a: 2,2 72x76
	// tile b: 74,2 24x76
	// tile c: 2,82 96x16
}

func ExampleLayout() {
	items := []treemap.Item{
		{ID: "births", Weight: 3, Value: 95, Target: 100},
		{ID: "deaths", Weight: 1, Value: 60, Target: 100},
	}

	tiles, err := treemap.Layout(items, 200, 100, treemap.GroupByPerformance, treemap.WithPadding(0))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, t := range tiles {
		fmt.Printf("%s in %q: %.0f\n", t.ID, t.Group, t.Area())
	}
	// Output:
	// births in "Excellent": 15000
	// deaths in "Needs Attention": 5000
}
