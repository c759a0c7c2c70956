// Package pipeline runs the filter → layout → render pipeline shared by the
// CLI, the HTTP server and the terminal dashboard.
//
// # Stages
//
//  1. Filter: apply the search query and category selection
//  2. Layout: compute the two-level treemap for the remaining items
//  3. Render: produce the requested output formats
//
// Layouts are cached by a hash of the filtered items plus every layout
// option; artifacts are cached per format by a hash of the layout.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, items, pipeline.Options{
//	    Width:   1200,
//	    Height:  800,
//	    GroupBy: "performance",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Stages can also be run individually with [Runner.Layout] and
// [Runner.Render], or without a cache via [ComputeLayout] and
// [RenderFromLayout].
package pipeline
